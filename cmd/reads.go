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
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/will-rowe/fauxseq/src/misc"
	"github.com/will-rowe/fauxseq/src/pipeline"
	"github.com/will-rowe/fauxseq/src/version"
)

// the command line arguments
var (
	numTranscripts *int     // number of transcripts to generate
	numReads       *int     // total number of reads to distribute across transcripts
	readLength     *int     // length of every read
	kmerSize       *int     // size of k-mer used for the index
	errorRate      *float64 // per-base substitution probability
	readsSeed      *int64   // seed for the run
	minLength      *int     // minimum transcript length
	maxLength      *int     // maximum transcript length
	readsOutDir    *string  // directory to write the fixtures to
	indexFormat    *string  // json or msgpack
	writeBAM       *bool    // also write an unaligned BAM
)

// the reads command (used by cobra)
var readsCmd = &cobra.Command{
	Use:   "reads",
	Short: "Simulate transcripts, a k-mer index and error-containing reads",
	Long: `Simulate transcripts, a k-mer index and error-containing reads.

Transcripts get a log-normal expression level and reads are allocated in proportion
to it. The ground truth expression profile is written alongside the reads.`,
}

// a function to initialise the command line arguments
func init() {
	// Run is assigned here rather than in the literal to avoid an initialization cycle (readsCmd -> run -> startLog(readsCmd))
	readsCmd.Run = func(cmd *cobra.Command, args []string) {
		runReads()
	}
	numTranscripts = readsCmd.Flags().Int("numTranscripts", 500, "number of transcripts to generate")
	numReads = readsCmd.Flags().IntP("numReads", "n", 50000, "number of reads to simulate")
	readLength = readsCmd.Flags().IntP("readLength", "l", 100, "length of simulated reads")
	kmerSize = readsCmd.Flags().IntP("kmerSize", "k", 31, "size of k-mer for the index")
	errorRate = readsCmd.Flags().Float64P("errorRate", "e", 0.02, "per-base substitution error rate")
	readsSeed = readsCmd.Flags().Int64P("seed", "s", 42, "random seed")
	minLength = readsCmd.Flags().Int("minLength", 500, "minimum transcript length")
	maxLength = readsCmd.Flags().Int("maxLength", 3000, "maximum transcript length")
	readsOutDir = readsCmd.Flags().StringP("outDir", "o", "data", "directory to write the fixtures to")
	indexFormat = readsCmd.Flags().String("indexFormat", pipeline.IndexJSON, "format of the k-mer index (json or msgpack)")
	writeBAM = readsCmd.Flags().Bool("bam", false, "also write the reads as an unaligned BAM file")
	RootCmd.AddCommand(readsCmd)
}

// readsParamCheck is a function to check user supplied parameters
func readsParamCheck(info *pipeline.Info) error {
	if err := info.CheckParameters(); err != nil {
		return err
	}
	if err := misc.EnsureDir(info.OutDir); err != nil {
		return fmt.Errorf("can't create specified output directory: %w", err)
	}
	return nil
}

// runReads is the main function for the reads sub-command
func runReads() {

	// set up profiling
	if *profiling {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}

	// start logging
	if logFH := startLog(readsCmd); logFH != nil {
		defer logFH.Close()
	}
	start := time.Now()

	// set up the runtime info and check it
	info := &pipeline.Info{
		Version:        version.GetVersion(),
		Seed:           *readsSeed,
		NumTranscripts: *numTranscripts,
		MinLength:      *minLength,
		MaxLength:      *maxLength,
		NumReads:       *numReads,
		ReadLength:     *readLength,
		KmerSize:       *kmerSize,
		ErrorRate:      *errorRate,
		OutDir:         *readsOutDir,
		IndexFormat:    *indexFormat,
		BAM:            *writeBAM,
	}
	log.Printf("checking parameters...")
	misc.ErrorCheck(readsParamCheck(info))
	log.Printf("\tseed: %d", info.Seed)
	log.Printf("\ttranscripts: %d (length %d-%d)", info.NumTranscripts, info.MinLength, info.MaxLength)
	log.Printf("\treads: %d", info.NumReads)
	log.Printf("\tread length: %d", info.ReadLength)
	log.Printf("\terror rate: %.4f", info.ErrorRate)
	log.Printf("\tk-mer size: %d", info.KmerSize)
	log.Printf("\tindex format: %v", info.IndexFormat)
	log.Printf("\toutput directory: %v", info.OutDir)

	// create the pipeline
	log.Printf("initialising reads pipeline...")
	readsPipeline := pipeline.NewPipeline()

	// initialise processes
	log.Printf("\tinitialising the processes")
	transcriptGenerator := pipeline.NewTranscriptGenerator(info)
	expressionProfiler := pipeline.NewExpressionProfiler(info)
	kmerIndexer := pipeline.NewKmerIndexer(info)
	readSimulator := pipeline.NewReadSimulator(info)
	fixtureWriter := pipeline.NewFixtureWriter(info)

	// connect the pipeline processes
	log.Printf("\tconnecting data streams")
	expressionProfiler.Connect(transcriptGenerator)
	kmerIndexer.Connect(expressionProfiler)
	readSimulator.Connect(kmerIndexer)
	fixtureWriter.Connect(readSimulator)

	// submit each process to the pipeline and run it
	readsPipeline.AddProcesses(transcriptGenerator, expressionProfiler, kmerIndexer, readSimulator, fixtureWriter)
	log.Printf("\tnumber of processes added to the reads pipeline: %d\n", readsPipeline.GetNumProcesses())
	log.Print("running pipeline...")
	readsPipeline.Run()

	// report
	numReadsWritten, numErrors := info.GetReadStats()
	log.Printf("\treads written: %d", numReadsWritten)
	if numReadsWritten > 0 {
		log.Printf("\tobserved error rate: %.4f", float64(numErrors)/float64(numReadsWritten*info.ReadLength))
	}
	log.Println(misc.PrintMemUsage())
	log.Printf("finished in %s", time.Since(start))
}
