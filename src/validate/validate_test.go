package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/will-rowe/fauxseq/src/table"
)

func writeInput(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "sparse_counts.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidate(t *testing.T) {
	input := writeInput(t, "gene_idx\tcell_idx\tcount\n0\t0\t1500.0\n0\t1\t0\n1\t1\t2.5\n2\t3\t-1\n2\t3\t1000\n")
	outDir := filepath.Join(t.TempDir(), "validated")

	report, err := Validate(input, outDir)
	require.NoError(t, err)
	assert.Equal(t, 5, report.OriginalEntries)
	assert.Equal(t, 3, report.NonZeroEntries)
	assert.Equal(t, 3, report.UniqueGenes)
	assert.Equal(t, 3, report.UniqueCells)
	assert.InDelta(t, 2502.5, report.TotalCounts, 1e-9)

	// the filtered matrix keeps only the strictly positive rows
	validated, err := table.ReadFile(filepath.Join(outDir, MatrixFile))
	require.NoError(t, err)
	assert.Equal(t, RequiredColumns, validated.Header)
	assert.Len(t, validated.Rows, 3)

	text, err := os.ReadFile(filepath.Join(outDir, ReportFile))
	require.NoError(t, err)
	assert.Equal(t, "Input Validation Report\n======================\nOriginal entries: 5\nNon-zero entries: 3\nUnique genes: 3\nUnique cells: 3\nTotal counts: 2,502", string(text))
}

func TestMissingCount(t *testing.T) {
	input := writeInput(t, "gene_idx\tcell_idx\n0\t0\n")
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := Validate(input, outDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count")

	require.NoError(t, WriteFailure(outDir, err))
	text, err := os.ReadFile(filepath.Join(outDir, ReportFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(text), "ERROR: missing required columns"))
	_, err = os.Stat(filepath.Join(outDir, MatrixFile))
	assert.True(t, os.IsNotExist(err), "no matrix should be written on failure")
}

func TestMissingCountValuesFiltered(t *testing.T) {
	input := writeInput(t, "gene_idx\tcell_idx\tcount\n0\t0\t5\n1\t1\t\n2\t2\n3\t3\tNaN\n")
	outDir := filepath.Join(t.TempDir(), "out")

	report, err := Validate(input, outDir)
	require.NoError(t, err)
	assert.Equal(t, 4, report.OriginalEntries)
	assert.Equal(t, 1, report.NonZeroEntries)
	assert.Equal(t, 5.0, report.TotalCounts)

	validated, err := table.ReadFile(filepath.Join(outDir, MatrixFile))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"0", "0", "5"}}, validated.Rows)
}

func TestUnparseable(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	_, err := Validate(filepath.Join(t.TempDir(), "missing.tsv"), outDir)
	assert.Error(t, err)
	_, statErr := os.Stat(outDir)
	assert.NoError(t, statErr, "output directory should exist even on failure")

	_, err = Validate(writeInput(t, "gene_idx\tcell_idx\tcount\n0\t0\tmany\n"), outDir)
	assert.Error(t, err)
}

func TestReportThousands(t *testing.T) {
	report := &Report{OriginalEntries: 1234567, NonZeroEntries: 1000, UniqueGenes: 999, UniqueCells: 12000, TotalCounts: 9876543.5}
	text := report.String()
	assert.Contains(t, text, "Original entries: 1,234,567")
	assert.Contains(t, text, "Unique cells: 12,000")
	assert.Contains(t, text, "Total counts: 9,876,544")
}
