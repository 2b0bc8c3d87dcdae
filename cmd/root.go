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
	"os"

	"github.com/spf13/cobra"

	"github.com/will-rowe/fauxseq/src/misc"
	"github.com/will-rowe/fauxseq/src/version"
)

// the command line arguments
var (
	logFile   *string // filename for log file, stdout is used when unset
	profiling *bool   // create profile for go pprof
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "fauxseq",
	Short: "generate synthetic test fixtures for bioinformatics and ML pipelines",
	Long: `
#####################################################################################
		FAUXSEQ: synthetic fixtures for sequencing and expression pipelines
#####################################################################################

 fauxseq generates small, seeded and fully reproducible test data.

 It can simulate transcripts and error-containing short reads (with a k-mer index and
 the true expression profile), bulk and differential expression count tables, sparse
 single-cell counts and a tiny ONNX scoring model. It also carries a validator for
 sparse count tables.`,
}

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fauxseq",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersion())
	},
}

/*
  A function to add all child commands to the root command and sets flags appropriately
*/
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

/*
  A function to initalise the command line arguments
*/
func init() {
	logFile = RootCmd.PersistentFlags().String("logFile", "", "filename for log file, default = stdout")
	profiling = RootCmd.PersistentFlags().Bool("profiling", false, "create the files needed to profile fauxseq using the go tool pprof")
	RootCmd.AddCommand(versionCmd)
}

// startLog points the logger at the log file (or stdout) and logs the subcommand's flags, the returned file is nil for stdout
func startLog(subcommand *cobra.Command) *os.File {
	var logFH *os.File
	if *logFile != "" {
		logFH = misc.StartLogging(*logFile)
		log.SetOutput(logFH)
	} else {
		log.SetOutput(os.Stdout)
	}
	log.Print(version.Banner())
	log.Printf("starting the %v subcommand", subcommand.Name())
	misc.LogFlags(subcommand.Flags())
	return logFH
}
