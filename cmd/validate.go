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
	"time"

	"github.com/spf13/cobra"

	"github.com/will-rowe/fauxseq/src/validate"
)

// the validate command (used by cobra)
var validateCmd = &cobra.Command{
	Use:   "validate <input_file> <output_dir>",
	Short: "Validate a sparse count table and drop non-positive entries",
	Long: `Validate a sparse count table and drop non-positive entries.

The input must carry gene_idx, cell_idx and count columns. The filtered matrix and a
short report are written to the output directory. On failure an ERROR report is
written and fauxseq exits with status 1.`,
	Args: cobra.ExactArgs(2),
}

// a function to initialise the command line arguments
func init() {
	// Run is assigned here rather than in the literal to avoid an initialization cycle (validateCmd -> run -> startLog(validateCmd))
	validateCmd.Run = func(cmd *cobra.Command, args []string) {
		runValidate(args[0], args[1])
	}
	RootCmd.AddCommand(validateCmd)
}

// runValidate is the main function for the validate sub-command
func runValidate(inputFile, outputDir string) {
	if logFH := startLog(validateCmd); logFH != nil {
		defer logFH.Close()
	}
	start := time.Now()
	log.Printf("\tinput: %v", inputFile)
	log.Printf("\toutput directory: %v", outputDir)
	report, err := validate.Validate(inputFile, outputDir)
	if err != nil {
		fmt.Printf("Validation failed: %v\n", err)
		if writeErr := validate.WriteFailure(outputDir, err); writeErr != nil {
			log.Printf("could not write failure report: %v", writeErr)
		}
		os.Exit(1)
	}
	log.Printf("validation completed successfully")
	log.Printf("\tnon-zero entries: %d of %d", report.NonZeroEntries, report.OriginalEntries)
	log.Printf("finished in %s", time.Since(start))
}
