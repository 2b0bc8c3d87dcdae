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

// file names used when converting an existing table
const (
	convertedCountsFile   = "realistic_normalized_counts.tsv"
	convertedMetadataFile = "realistic_sample_metadata.tsv"
)

// the command line arguments
var (
	deGenes           *int    // number of genes
	deSamplesPerGroup *int    // samples in each of the control and treatment groups
	deOutput          *string // count table to write
	deMetadata        *string // metadata table to write
	deSeed            *int64  // random seed
	deTestSets        *bool   // write the small, medium and large presets instead
	deConvert         *string // existing long-format table to convert
	deOutDir          *string // parent directory for presets and converted tables
	dePlot            *bool   // write a count histogram
	deArchive         *bool   // archive each preset directory
)

// the diffexpr command (used by cobra)
var diffexprCmd = &cobra.Command{
	Use:   "diffexpr",
	Short: "Generate normalized counts for a two group differential expression experiment",
	Long: `Generate normalized counts for a two group differential expression experiment.

The first 10% of genes are upregulated and the next 10% downregulated in the treatment
group. An existing gene_id/sample_id/count table can instead be converted, in which case
sample groups are guessed from the sample names.`,
}

// a function to initialise the command line arguments
func init() {
	// Run is assigned here rather than in the literal to avoid an initialization cycle (diffexprCmd -> run -> startLog(diffexprCmd))
	diffexprCmd.Run = func(cmd *cobra.Command, args []string) {
		runDiffexpr()
	}
	deGenes = diffexprCmd.Flags().IntP("genes", "g", 1000, "number of genes")
	deSamplesPerGroup = diffexprCmd.Flags().IntP("samplesPerGroup", "n", 6, "number of samples per group")
	deOutput = diffexprCmd.Flags().StringP("output", "o", counts.NormalizedCountsFile, "output count file")
	deMetadata = diffexprCmd.Flags().StringP("metadata", "m", counts.SampleMetadataFile, "output metadata file")
	deSeed = diffexprCmd.Flags().Int64P("seed", "s", 42, "random seed")
	deTestSets = diffexprCmd.Flags().Bool("createTestSets", false, "create the small, medium and large test datasets")
	deConvert = diffexprCmd.Flags().String("convertExisting", "", "convert an existing count file to the differential expression format")
	deOutDir = diffexprCmd.Flags().String("outDir", ".", "directory for test datasets and converted files")
	dePlot = diffexprCmd.Flags().Bool("plot", false, "plot a histogram of log10(count+1)")
	deArchive = diffexprCmd.Flags().Bool("archive", false, "bundle each test dataset into a .tar.gz")
	RootCmd.AddCommand(diffexprCmd)
}

// diffexprParamCheck is a function to check user supplied parameters
func diffexprParamCheck() error {
	if *deConvert != "" {
		if err := misc.CheckFile(*deConvert); err != nil {
			return err
		}
		return misc.EnsureDir(*deOutDir)
	}
	if *deTestSets {
		return misc.EnsureDir(*deOutDir)
	}
	for _, file := range []string{*deOutput, *deMetadata} {
		if err := misc.EnsureDir(filepath.Dir(file)); err != nil {
			return fmt.Errorf("can't create directory for %v: %w", file, err)
		}
	}
	return nil
}

// runDiffexpr is the main function for the diffexpr sub-command
func runDiffexpr() {
	if *profiling {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}
	if logFH := startLog(diffexprCmd); logFH != nil {
		defer logFH.Close()
	}
	start := time.Now()
	log.Printf("checking parameters...")
	misc.ErrorCheck(diffexprParamCheck())

	switch {
	case *deConvert != "":
		log.Printf("converting existing count data from %v", *deConvert)
		countsFile := filepath.Join(*deOutDir, convertedCountsFile)
		metadataFile := filepath.Join(*deOutDir, convertedMetadataFile)
		existing, metadata, err := counts.ConvertExisting(*deConvert, countsFile, metadataFile)
		misc.ErrorCheck(err)
		log.Printf("\tread %d entries, found %d genes and %d samples", len(existing.Rows), len(existing.Unique("gene_id")), len(metadata.Rows))
		log.Printf("\tcount data saved to %v", countsFile)
		log.Printf("\tmetadata saved to %v", metadataFile)
	case *deTestSets:
		log.Printf("\tseed: %d", *deSeed)
		dirs, err := counts.CreateDETestSets(counts.BatchOptions{BaseDir: *deOutDir, Seed: *deSeed, Plot: *dePlot, Archive: *deArchive})
		misc.ErrorCheck(err)
		log.Printf("created %d differential expression test datasets", len(dirs))
	default:
		log.Printf("\tseed: %d", *deSeed)
		log.Printf("\tgenes: %d", *deGenes)
		log.Printf("\tsamples per group: %d", *deSamplesPerGroup)
		log.Printf("generating normalized counts...")
		matrix, err := counts.WriteDE(*deSeed, *deGenes, *deSamplesPerGroup, *deOutput, *deMetadata)
		misc.ErrorCheck(err)
		log.Printf("\tnormalized count data saved to %v", *deOutput)
		log.Printf("\tsample metadata saved to %v", *deMetadata)
		if *dePlot {
			plotFile := filepath.Join(filepath.Dir(*deOutput), counts.HistogramFile)
			misc.ErrorCheck(reporting.PlotCountHistogram(matrix.Counts(), "normalized counts", plotFile))
			log.Printf("\thistogram saved to %v", plotFile)
		}
	}
	log.Printf("finished in %s", time.Since(start))
}
