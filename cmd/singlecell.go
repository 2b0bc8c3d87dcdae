// Copyright © 2017 Will Rowe <will.rowe@stfc.ac.uk>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"log"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/will-rowe/fauxseq/src/misc"
	"github.com/will-rowe/fauxseq/src/reporting"
	"github.com/will-rowe/fauxseq/src/sparse"
)

// the command line arguments
var (
	scCells     *int     // number of cells
	scGenes     *int     // number of genes
	scCellTypes *int     // number of cell types
	scFillRate  *float64 // fraction of the matrix to draw entries for
	scSeed      *int64   // random seed
	scOutDir    *string  // directory to write raw/ and synthetic/ to
	scPlot      *bool    // write a count histogram
)

// the singlecell command (used by cobra)
var singlecellCmd = &cobra.Command{
	Use:   "singlecell",
	Short: "Generate a sparse single-cell count table with cell type signatures",
	Long: `Generate a sparse single-cell count table with cell type signatures.

Writes <outDir>/raw/sparse_counts.tsv (gene_idx, cell_idx, count) and summary
statistics to <outDir>/synthetic/metadata.json.`,
}

// a function to initialise the command line arguments
func init() {
	// Run is assigned here rather than in the literal to avoid an initialization cycle (singlecellCmd -> run -> startLog(singlecellCmd))
	singlecellCmd.Run = func(cmd *cobra.Command, args []string) {
		runSinglecell()
	}
	scCells = singlecellCmd.Flags().IntP("cells", "c", 1000, "number of cells")
	scGenes = singlecellCmd.Flags().IntP("genes", "g", 2000, "number of genes")
	scCellTypes = singlecellCmd.Flags().IntP("cellTypes", "t", 5, "number of cell types")
	scFillRate = singlecellCmd.Flags().Float64P("fillRate", "f", 0.15, "fraction of the matrix to draw entries for")
	scSeed = singlecellCmd.Flags().Int64P("seed", "s", 42, "random seed")
	scOutDir = singlecellCmd.Flags().StringP("outDir", "o", "data", "directory to write the dataset to")
	scPlot = singlecellCmd.Flags().Bool("plot", false, "plot a histogram of log10(count+1)")
	RootCmd.AddCommand(singlecellCmd)
}

// runSinglecell is the main function for the singlecell sub-command
func runSinglecell() {
	if *profiling {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}
	if logFH := startLog(singlecellCmd); logFH != nil {
		defer logFH.Close()
	}
	start := time.Now()
	params := sparse.Params{Cells: *scCells, Genes: *scGenes, CellTypes: *scCellTypes, Seed: *scSeed, FillRate: *scFillRate}
	log.Printf("generating synthetic data:")
	log.Printf("\tcells: %v", humanize.Comma(int64(params.Cells)))
	log.Printf("\tgenes: %v", humanize.Comma(int64(params.Genes)))
	log.Printf("\tcell types: %d", params.CellTypes)
	log.Printf("\tfill rate: %.3f", params.FillRate)
	log.Printf("\tseed: %d", params.Seed)
	result, err := sparse.Run(*scOutDir, params)
	misc.ErrorCheck(err)
	summary := result.Summary
	log.Printf("data generation completed")
	log.Printf("\toutput: %v", result.CountsFile)
	log.Printf("\tentries: %v", humanize.Comma(int64(summary.TotalEntries)))
	log.Printf("\tgenes: %v", humanize.Comma(int64(summary.UniqueGenes)))
	log.Printf("\tcells: %v", humanize.Comma(int64(summary.UniqueCells)))
	log.Printf("\ttotal counts: %v", humanize.Commaf(float64(int64(summary.TotalCounts+0.5))))
	log.Printf("\tmean count: %.2f", summary.MeanCount)
	log.Printf("\tsparsity: %.3f", summary.Sparsity)
	if *scPlot {
		plotFile := filepath.Join(*scOutDir, sparse.SyntheticDir, "count_histogram.png")
		misc.ErrorCheck(reporting.PlotCountHistogram(sparse.Counts(result.Entries), "single-cell counts", plotFile))
		log.Printf("\thistogram saved to %v", plotFile)
	}
	log.Printf("finished in %s", time.Since(start))
}
