package table

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTSV = "gene_idx\tcell_idx\tcount\n0\t1\t3.0\n0\t2\t0\n1\t1\t2.5\n"

func TestRead(t *testing.T) {
	tab, err := Read(strings.NewReader(testTSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"gene_idx", "cell_idx", "count"}, tab.Header)
	assert.Len(t, tab.Rows, 3)
	assert.Equal(t, 2, tab.Column("count"))
	assert.Equal(t, -1, tab.Column("sample_id"))
}

func TestReadErrors(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err, "empty input should not parse")

	_, err = Read(strings.NewReader("a\tb\n1\t2\t3\n"))
	assert.Error(t, err, "rows wider than the header should not parse")
}

func TestShortRowsPadded(t *testing.T) {
	tab, err := Read(strings.NewReader("gene_idx\tcell_idx\tcount\n0\t0\t5\n1\t1\n"))
	require.NoError(t, err)
	require.Len(t, tab.Rows, 2)
	assert.Equal(t, []string{"1", "1", ""}, tab.Rows[1])
}

func TestMissingValuesAreNaN(t *testing.T) {
	tab, err := Read(strings.NewReader("gene_idx\tcell_idx\tcount\n0\t0\t5\n1\t1\t\n2\t2\n3\t3\tNaN\n"))
	require.NoError(t, err)
	values, err := tab.Floats("count")
	require.NoError(t, err)
	require.Len(t, values, 4)
	assert.Equal(t, 5.0, values[0])
	for _, v := range values[1:] {
		assert.True(t, math.IsNaN(v), "expected NaN, got %v", v)
	}
}

func TestColumnExactMatch(t *testing.T) {
	tab, err := Read(strings.NewReader("gene_idx\tcell_idx\t count\n0\t0\t5\n"))
	require.NoError(t, err)
	assert.Equal(t, -1, tab.Column("count"))
	assert.Equal(t, []string{"count"}, tab.MissingColumns("gene_idx", "cell_idx", "count"))
}

func TestMissingColumns(t *testing.T) {
	tab, err := Read(strings.NewReader("gene_idx\tcell_idx\n0\t1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"count"}, tab.MissingColumns("gene_idx", "cell_idx", "count"))
	assert.Empty(t, tab.MissingColumns("gene_idx"))
}

func TestFloats(t *testing.T) {
	tab, err := Read(strings.NewReader(testTSV))
	require.NoError(t, err)
	values, err := tab.Floats("count")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 0, 2.5}, values)

	bad, err := Read(strings.NewReader("count\nabc\n"))
	require.NoError(t, err)
	_, err = bad.Floats("count")
	assert.Error(t, err)
}

func TestUniqueAndFilter(t *testing.T) {
	tab, err := Read(strings.NewReader(testTSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, tab.Unique("gene_idx"))
	assert.Equal(t, []string{"1", "2"}, tab.Unique("cell_idx"))

	filtered := tab.Filter(func(i int, row []string) bool { return row[2] != "0" })
	assert.Len(t, filtered.Rows, 2)
	assert.Len(t, tab.Rows, 3, "filtering must not modify the source table")
}

func TestWriteRoundTrip(t *testing.T) {
	tab, err := Read(strings.NewReader(testTSV))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, tab.Write(&buf))
	assert.Equal(t, testTSV, buf.String())

	path := filepath.Join(t.TempDir(), "out.tsv")
	require.NoError(t, tab.WriteFile(path))
	reloaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tab, reloaded)
}
