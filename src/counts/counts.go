// Package counts generates synthetic long-format RNA-seq count tables and their sample metadata.
package counts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Entry is a single (gene, sample, count) triple
type Entry struct {
	GeneID   string
	SampleID string
	Count    float64
}

// Matrix is a long-format count table
type Matrix struct {
	Genes   []string
	Samples []string
	Entries []Entry

	// Integer counts are written without a decimal point
	Integer bool
}

// SampleStats summarises the counts of one sample
type SampleStats struct {
	SampleID string
	Sum      float64
	Mean     float64
	StdDev   float64
}

// GeneID formats the one-based, zero-padded gene identifier
func GeneID(i int) string {
	return fmt.Sprintf("GENE_%05d", i)
}

// FormatFloat writes the shortest representation of a float, integral values keep a trailing .0
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// formatCount formats a count according to the matrix type
func (Matrix *Matrix) formatCount(v float64) string {
	if Matrix.Integer {
		return strconv.FormatInt(int64(v), 10)
	}
	return FormatFloat(v)
}

// WriteTSV is a method to write the matrix as gene_id, sample_id, count rows
func (Matrix *Matrix) WriteTSV(w io.Writer, header bool) error {
	buf := bufio.NewWriter(w)
	if header {
		fmt.Fprintf(buf, "gene_id\tsample_id\tcount\n")
	}
	for _, entry := range Matrix.Entries {
		if _, err := fmt.Fprintf(buf, "%v\t%v\t%v\n", entry.GeneID, entry.SampleID, Matrix.formatCount(entry.Count)); err != nil {
			return err
		}
	}
	return buf.Flush()
}

// WriteFile is a method to write the matrix to disk
func (Matrix *Matrix) WriteFile(path string, header bool) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Matrix.WriteTSV(fh, header); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// Counts returns every count in entry order
func (Matrix *Matrix) Counts() []float64 {
	values := make([]float64, len(Matrix.Entries))
	for i, entry := range Matrix.Entries {
		values[i] = entry.Count
	}
	return values
}

// SampleSummary returns the sum, mean and sample standard deviation of the counts for each sample
func (Matrix *Matrix) SampleSummary() []SampleStats {
	perSample := make(map[string][]float64, len(Matrix.Samples))
	for _, entry := range Matrix.Entries {
		perSample[entry.SampleID] = append(perSample[entry.SampleID], entry.Count)
	}
	summary := make([]SampleStats, 0, len(Matrix.Samples))
	for _, sample := range Matrix.Samples {
		values := perSample[sample]
		stats := SampleStats{SampleID: sample}
		for _, v := range values {
			stats.Sum += v
		}
		if len(values) > 1 {
			stats.Mean, stats.StdDev = stat.MeanStdDev(values, nil)
		} else if len(values) == 1 {
			stats.Mean = values[0]
		}
		summary = append(summary, stats)
	}
	return summary
}
