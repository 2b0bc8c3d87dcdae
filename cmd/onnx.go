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

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/will-rowe/fauxseq/src/misc"
	"github.com/will-rowe/fauxseq/src/onnx"
)

// the command line arguments
var (
	modelOut *string // file to write the ONNX model to
)

// the onnx command (used by cobra)
var onnxCmd = &cobra.Command{
	Use:   "onnx",
	Short: "Write a small variant scoring model in ONNX format",
	Long: `Write a small variant scoring model in ONNX format.

The model scores 5 features (ref length, alt length, node degree, centrality and
complexity) as sigmoid(features x weights + bias) with fixed weights.`,
}

// a function to initialise the command line arguments
func init() {
	// Run is assigned here rather than in the literal to avoid an initialization cycle (onnxCmd -> run -> startLog(onnxCmd))
	onnxCmd.Run = func(cmd *cobra.Command, args []string) {
		runONNX()
	}
	modelOut = onnxCmd.Flags().StringP("out", "o", "variant_model.onnx", "file to write the model to")
	RootCmd.AddCommand(onnxCmd)
}

// onnxParamCheck is a function to check user supplied parameters
func onnxParamCheck() error {
	if err := misc.CheckExt(*modelOut, []string{"onnx"}); err != nil {
		return err
	}
	return misc.CheckDir(filepath.Dir(*modelOut))
}

// runONNX is the main function for the onnx sub-command
func runONNX() {
	if *profiling {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}
	if logFH := startLog(onnxCmd); logFH != nil {
		defer logFH.Close()
	}
	start := time.Now()
	log.Printf("checking parameters...")
	misc.ErrorCheck(onnxParamCheck())
	model := onnx.VariantScoringModel()
	log.Printf("\tgraph: %v", model.Graph.Name)
	log.Printf("\tIR version: %d, opset: %d", onnx.IRVersion, onnx.OpsetVersion)

	// sanity check the graph before writing it
	scores, err := model.Evaluate([][]float64{make([]float64, onnx.NumFeatures)})
	misc.ErrorCheck(err)
	log.Printf("\tscore for an all-zero feature vector: %.4f", scores[0])
	misc.ErrorCheck(model.Save(*modelOut))
	log.Printf("sample ONNX model saved to %v", *modelOut)
	log.Printf("finished in %s", time.Since(start))
}
