// Package validate checks that a sparse count matrix has the expected columns and removes non-positive entries.
package validate

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/will-rowe/fauxseq/src/misc"
	"github.com/will-rowe/fauxseq/src/table"
)

// output file names
const (
	MatrixFile = "validated_matrix.tsv"
	ReportFile = "validation_report.txt"
)

// RequiredColumns are the columns a sparse matrix must carry
var RequiredColumns = []string{"gene_idx", "cell_idx", "count"}

// Report summarises a successful validation
type Report struct {
	OriginalEntries int
	NonZeroEntries  int
	UniqueGenes     int
	UniqueCells     int
	TotalCounts     float64
}

// String renders the report as written to validation_report.txt
func (Report *Report) String() string {
	return fmt.Sprintf(`Input Validation Report
======================
Original entries: %v
Non-zero entries: %v
Unique genes: %v
Unique cells: %v
Total counts: %v`,
		humanize.Comma(int64(Report.OriginalEntries)),
		humanize.Comma(int64(Report.NonZeroEntries)),
		humanize.Comma(int64(Report.UniqueGenes)),
		humanize.Comma(int64(Report.UniqueCells)),
		humanize.Comma(int64(math.RoundToEven(Report.TotalCounts))))
}

// Validate is a function to check an input matrix, write the filtered matrix and the report to outputDir.
// The output directory is created before anything else so that a failure report can always be written.
func Validate(inputFile, outputDir string) (*Report, error) {
	if err := misc.EnsureDir(outputDir); err != nil {
		return nil, err
	}
	matrix, err := table.ReadFile(inputFile)
	if err != nil {
		return nil, err
	}
	if missing := matrix.MissingColumns(RequiredColumns...); len(missing) != 0 {
		return nil, fmt.Errorf("missing required columns: %v", missing)
	}
	counts, err := matrix.Floats("count")
	if err != nil {
		return nil, err
	}

	// remove zero, negative and missing (NaN) counts
	total := 0.0
	filtered := matrix.Filter(func(i int, row []string) bool {
		if counts[i] > 0 {
			total += counts[i]
			return true
		}
		return false
	})
	if err := filtered.WriteFile(filepath.Join(outputDir, MatrixFile)); err != nil {
		return nil, err
	}
	report := &Report{
		OriginalEntries: len(matrix.Rows),
		NonZeroEntries:  len(filtered.Rows),
		UniqueGenes:     len(filtered.Unique("gene_idx")),
		UniqueCells:     len(filtered.Unique("cell_idx")),
		TotalCounts:     total,
	}
	if err := os.WriteFile(filepath.Join(outputDir, ReportFile), []byte(report.String()), 0644); err != nil {
		return nil, err
	}
	return report, nil
}

// WriteFailure is a function to record a validation error in the report file
func WriteFailure(outputDir string, failure error) error {
	if err := misc.EnsureDir(outputDir); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputDir, ReportFile), []byte(fmt.Sprintf("ERROR: %v", failure)), 0644)
}
