package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/will-rowe/fauxseq/src/kmer"
	"github.com/will-rowe/fauxseq/src/seqio"
)

// output file names
const (
	ReadsFile      = "reads.fastq"
	BAMFile        = "reads.bam"
	TranscriptFile = "transcripts.fasta"
	IndexJSONFile  = "kmer_index.json"
	IndexBinFile   = "kmer_index.msgpack"
	ExpressionFile = "true_expression.tsv"
)

// index formats
const (
	IndexJSON    = "json"
	IndexMsgpack = "msgpack"
)

// Info stores the runtime information
type Info struct {
	Version        string
	Seed           int64
	NumTranscripts int
	MinLength      int
	MaxLength      int
	NumReads       int
	ReadLength     int
	KmerSize       int
	ErrorRate      float64
	OutDir         string
	IndexFormat    string
	BAM            bool

	// the following fields are collected while the pipeline runs
	Transcripts []*seqio.Transcript
	index       *kmer.Index
	readCount   int
	errorCount  int
}

// CheckParameters is a method to reject settings that make a run impossible
func (Info *Info) CheckParameters() error {
	if Info.KmerSize < 1 {
		return fmt.Errorf("k-mer size must be at least 1")
	}
	if Info.IndexFormat != IndexJSON && Info.IndexFormat != IndexMsgpack {
		return fmt.Errorf("unknown index format: %v (please choose json or msgpack)", Info.IndexFormat)
	}
	if Info.MinLength > Info.MaxLength {
		return fmt.Errorf("minimum transcript length (%d) is greater than the maximum (%d)", Info.MinLength, Info.MaxLength)
	}
	return nil
}

// AttachIndex is a method to attach a k-mer index to the runtime
func (Info *Info) AttachIndex(index *kmer.Index) {
	Info.index = index
}

// GetIndex returns the k-mer index built during the run
func (Info *Info) GetIndex() *kmer.Index {
	return Info.index
}

// GetReadStats returns the number of reads written and the number of substituted bases across them
func (Info *Info) GetReadStats() (int, int) {
	return Info.readCount, Info.errorCount
}

// IndexPath returns where the k-mer index is written for the selected format
func (Info *Info) IndexPath() string {
	if Info.IndexFormat == IndexMsgpack {
		return filepath.Join(Info.OutDir, IndexBinFile)
	}
	return filepath.Join(Info.OutDir, IndexJSONFile)
}
