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
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/will-rowe/fauxseq/src/counts"
	"github.com/will-rowe/fauxseq/src/misc"
	"github.com/will-rowe/fauxseq/src/reporting"
)

// the command line arguments
var (
	bulkGenes    *int    // number of genes
	bulkSamples  *int    // number of samples
	bulkOutput   *string // count table to write
	bulkMetadata *string // metadata table to write
	bulkSeed     *int64  // random seed
	bulkTestSets *bool   // write the small, medium and large presets instead
	bulkOutDir   *string // parent directory for the presets
	bulkPlot     *bool   // write a count histogram
	bulkArchive  *bool   // archive each preset directory
)

// the counts command (used by cobra)
var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Generate raw bulk RNA-seq counts with batch and treatment effects",
	Long: `Generate raw bulk RNA-seq counts with batch and treatment effects.

Counts are written in long format (gene_id, sample_id, count) without a header,
along with a batch metadata table.`,
}

// a function to initialise the command line arguments
func init() {
	// Run is assigned here rather than in the literal to avoid an initialization cycle (countsCmd -> run -> startLog(countsCmd))
	countsCmd.Run = func(cmd *cobra.Command, args []string) {
		runCounts()
	}
	bulkGenes = countsCmd.Flags().IntP("genes", "g", 1000, "number of genes")
	bulkSamples = countsCmd.Flags().IntP("samples", "n", 12, "number of samples")
	bulkOutput = countsCmd.Flags().StringP("output", "o", counts.RawCountsFile, "output count file")
	bulkMetadata = countsCmd.Flags().StringP("metadata", "m", counts.BatchMetadataFile, "output metadata file")
	bulkSeed = countsCmd.Flags().Int64P("seed", "s", 42, "random seed")
	bulkTestSets = countsCmd.Flags().Bool("createTestSets", false, "create the small, medium and large test datasets")
	bulkOutDir = countsCmd.Flags().String("outDir", ".", "directory to create the test datasets in")
	bulkPlot = countsCmd.Flags().Bool("plot", false, "plot a histogram of log10(count+1)")
	bulkArchive = countsCmd.Flags().Bool("archive", false, "bundle each test dataset into a .tar.gz")
	RootCmd.AddCommand(countsCmd)
}

// countsParamCheck is a function to check user supplied parameters
func countsParamCheck() error {
	if *bulkTestSets {
		return misc.EnsureDir(*bulkOutDir)
	}
	for _, file := range []string{*bulkOutput, *bulkMetadata} {
		if err := misc.EnsureDir(filepath.Dir(file)); err != nil {
			return fmt.Errorf("can't create directory for %v: %w", file, err)
		}
	}
	return nil
}

// runCounts is the main function for the counts sub-command
func runCounts() {
	if *profiling {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}
	if logFH := startLog(countsCmd); logFH != nil {
		defer logFH.Close()
	}
	start := time.Now()
	log.Printf("checking parameters...")
	misc.ErrorCheck(countsParamCheck())
	log.Printf("\tseed: %d", *bulkSeed)

	// preset fan-out
	if *bulkTestSets {
		dirs, err := counts.CreateBulkTestSets(counts.BatchOptions{BaseDir: *bulkOutDir, Seed: *bulkSeed, Plot: *bulkPlot, Archive: *bulkArchive})
		misc.ErrorCheck(err)
		log.Printf("created %d test datasets", len(dirs))
		log.Printf("finished in %s", time.Since(start))
		return
	}
	log.Printf("\tgenes: %d", *bulkGenes)
	log.Printf("\tsamples: %d", *bulkSamples)
	log.Printf("generating count data...")
	matrix, err := counts.WriteBulk(*bulkSeed, *bulkGenes, *bulkSamples, *bulkOutput, *bulkMetadata)
	misc.ErrorCheck(err)
	log.Printf("\tcount data saved to %v", *bulkOutput)
	log.Printf("\tbatch metadata saved to %v", *bulkMetadata)
	if *bulkPlot {
		plotFile := filepath.Join(filepath.Dir(*bulkOutput), counts.HistogramFile)
		misc.ErrorCheck(reporting.PlotCountHistogram(matrix.Counts(), "raw counts", plotFile))
		log.Printf("\thistogram saved to %v", plotFile)
	}
	log.Printf("finished in %s", time.Since(start))
}
