package pipeline

/*
 this part of the pipeline generates transcripts, profiles their expression, indexes their k-mers and samples reads from them
*/

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/will-rowe/fauxseq/src/kmer"
	"github.com/will-rowe/fauxseq/src/misc"
	"github.com/will-rowe/fauxseq/src/rng"
	"github.com/will-rowe/fauxseq/src/seqio"
	"github.com/will-rowe/fauxseq/src/version"
)

// names of the random streams, one per stage that draws
const (
	transcriptStream = "transcripts"
	expressionStream = "expression"
	readStream       = "reads"
)

// TranscriptGenerator is a pipeline process that generates random transcripts
type TranscriptGenerator struct {
	info   *Info
	output chan *seqio.Transcript
}

// NewTranscriptGenerator is the constructor
func NewTranscriptGenerator(info *Info) *TranscriptGenerator {
	return &TranscriptGenerator{info: info, output: make(chan *seqio.Transcript, BUFFERSIZE)}
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *TranscriptGenerator) Run() {
	defer close(proc.output)
	r := rng.NewStream(proc.info.Seed, transcriptStream)
	for i := 0; i < proc.info.NumTranscripts; i++ {
		length := proc.info.MinLength + r.IntN(proc.info.MaxLength-proc.info.MinLength+1)
		proc.output <- seqio.NewTranscript(r, i, length)
	}
}

// ExpressionProfiler is a pipeline process that assigns a log-normal expression level to each transcript
type ExpressionProfiler struct {
	info   *Info
	input  chan *seqio.Transcript
	output chan *seqio.Transcript
}

// NewExpressionProfiler is the constructor
func NewExpressionProfiler(info *Info) *ExpressionProfiler {
	return &ExpressionProfiler{info: info, output: make(chan *seqio.Transcript, BUFFERSIZE)}
}

// Connect is the method to connect the ExpressionProfiler to the output of a TranscriptGenerator
func (proc *ExpressionProfiler) Connect(previous *TranscriptGenerator) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *ExpressionProfiler) Run() {
	defer close(proc.output)
	r := rng.NewStream(proc.info.Seed, expressionStream)

	// read counts depend on the total expression, so collect every transcript first
	transcripts := []*seqio.Transcript{}
	total := 0.0
	for transcript := range proc.input {
		transcript.Expression = math.Exp(rng.Normal(r, 2, 1.5))
		total += transcript.Expression
		transcripts = append(transcripts, transcript)
	}
	for _, transcript := range transcripts {
		transcript.Weight = transcript.Expression / total
		transcript.ReadCount = int(float64(proc.info.NumReads) * transcript.Weight)
	}
	proc.info.Transcripts = transcripts
	for _, transcript := range transcripts {
		proc.output <- transcript
	}
}

// KmerIndexer is a pipeline process that adds transcripts to a k-mer membership index
type KmerIndexer struct {
	info   *Info
	input  chan *seqio.Transcript
	output chan *seqio.Transcript
}

// NewKmerIndexer is the constructor
func NewKmerIndexer(info *Info) *KmerIndexer {
	return &KmerIndexer{info: info, output: make(chan *seqio.Transcript, BUFFERSIZE)}
}

// Connect is the method to connect the KmerIndexer to the output of an ExpressionProfiler
func (proc *KmerIndexer) Connect(previous *ExpressionProfiler) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *KmerIndexer) Run() {
	index := kmer.NewIndex(proc.info.KmerSize)
	for transcript := range proc.input {
		misc.ErrorCheck(index.Add(transcript.ID, transcript.Seq))
		proc.output <- transcript
	}

	// the index must be attached before the channel is closed
	proc.info.AttachIndex(index)
	close(proc.output)
	log.Printf("\tdistinct k-mers in index: %d", index.Len())
	log.Printf("\tk-mer occurrences: %d", index.Occurrences())
}

// ReadSimulator is a pipeline process that samples error-containing reads from transcripts
type ReadSimulator struct {
	info   *Info
	input  chan *seqio.Transcript
	output chan *seqio.Read
}

// NewReadSimulator is the constructor
func NewReadSimulator(info *Info) *ReadSimulator {
	return &ReadSimulator{info: info, output: make(chan *seqio.Read, BUFFERSIZE)}
}

// Connect is the method to connect the ReadSimulator to the output of a KmerIndexer
func (proc *ReadSimulator) Connect(previous *KmerIndexer) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *ReadSimulator) Run() {
	defer close(proc.output)
	r := rng.NewStream(proc.info.Seed, readStream)
	reads := []*seqio.Read{}
	skipped := 0
	for transcript := range proc.input {
		if transcript.ReadCount == 0 {
			continue
		}
		if len(transcript.Seq) < proc.info.ReadLength {
			skipped++
			continue
		}
		for i := 0; i < transcript.ReadCount; i++ {
			read, err := transcript.SampleRead(r, proc.info.ReadLength, proc.info.ErrorRate)
			misc.ErrorCheck(err)
			reads = append(reads, read)
		}
	}
	if skipped > 0 {
		log.Printf("\ttranscripts shorter than the read length (skipped): %d", skipped)
	}

	// shuffle so reads from a transcript are not contiguous, then number them
	r.Shuffle(len(reads), func(i, j int) {
		reads[i], reads[j] = reads[j], reads[i]
	})
	for i, read := range reads {
		read.ID = seqio.ReadID(i)
		proc.output <- read
	}
}

// FixtureWriter is a pipeline process that writes the reads, transcripts, index and expression profile to disk
type FixtureWriter struct {
	info  *Info
	input chan *seqio.Read
}

// NewFixtureWriter is the constructor
func NewFixtureWriter(info *Info) *FixtureWriter {
	return &FixtureWriter{info: info}
}

// Connect is the method to connect the FixtureWriter to the output of a ReadSimulator
func (proc *FixtureWriter) Connect(previous *ReadSimulator) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *FixtureWriter) Run() {
	misc.ErrorCheck(misc.EnsureDir(proc.info.OutDir))
	misc.ErrorCheck(proc.writeReads())
	log.Printf("\twrote reads: %v", filepath.Join(proc.info.OutDir, ReadsFile))
	misc.ErrorCheck(proc.writeTranscripts())
	log.Printf("\twrote transcripts: %v", filepath.Join(proc.info.OutDir, TranscriptFile))
	misc.ErrorCheck(proc.writeIndex())
	log.Printf("\twrote k-mer index: %v", proc.info.IndexPath())
	misc.ErrorCheck(proc.writeExpression())
	log.Printf("\twrote true expression: %v", filepath.Join(proc.info.OutDir, ExpressionFile))
}

// writeReads streams the reads to FASTQ (and BAM if requested)
func (proc *FixtureWriter) writeReads() error {
	fh, err := os.Create(filepath.Join(proc.info.OutDir, ReadsFile))
	if err != nil {
		return err
	}
	defer fh.Close()
	fastqWriter := seqio.NewFASTQWriter(fh)
	var bamWriter *seqio.BAMWriter
	if proc.info.BAM {
		bamFH, err := os.Create(filepath.Join(proc.info.OutDir, BAMFile))
		if err != nil {
			return err
		}
		defer bamFH.Close()
		if bamWriter, err = seqio.NewBAMWriter(bamFH, version.Program, version.GetVersion()); err != nil {
			return err
		}
	}
	for read := range proc.input {
		if err := fastqWriter.Write(read); err != nil {
			return err
		}
		if bamWriter != nil {
			if err := bamWriter.Write(read); err != nil {
				return err
			}
		}
		proc.info.readCount++
		proc.info.errorCount += read.Errors
	}
	if bamWriter != nil {
		if err := bamWriter.Close(); err != nil {
			return err
		}
	}
	return fastqWriter.Flush()
}

// writeTranscripts writes every transcript as a FASTA record
func (proc *FixtureWriter) writeTranscripts() error {
	fh, err := os.Create(filepath.Join(proc.info.OutDir, TranscriptFile))
	if err != nil {
		return err
	}
	defer fh.Close()
	width := 1
	for _, transcript := range proc.info.Transcripts {
		if len(transcript.Seq) > width {
			width = len(transcript.Seq)
		}
	}
	w := seqio.NewFASTAWriter(fh, width)
	for _, transcript := range proc.info.Transcripts {
		if err := w.Write(&transcript.Sequence); err != nil {
			return err
		}
	}
	return w.Flush()
}

// writeIndex writes the k-mer index in the requested format
func (proc *FixtureWriter) writeIndex() error {
	index := proc.info.GetIndex()
	if index == nil {
		return fmt.Errorf("no k-mer index was built")
	}
	if proc.info.IndexFormat == IndexMsgpack {
		return index.Dump(proc.info.IndexPath())
	}
	fh, err := os.Create(proc.info.IndexPath())
	if err != nil {
		return err
	}
	defer fh.Close()
	return index.WriteJSON(fh)
}

// writeExpression writes the ground-truth expression table, ordered by transcript ID
func (proc *FixtureWriter) writeExpression() error {
	fh, err := os.Create(filepath.Join(proc.info.OutDir, ExpressionFile))
	if err != nil {
		return err
	}
	defer fh.Close()
	transcripts := make([]*seqio.Transcript, len(proc.info.Transcripts))
	copy(transcripts, proc.info.Transcripts)
	sort.SliceStable(transcripts, func(i, j int) bool {
		return transcripts[i].ID < transcripts[j].ID
	})
	w := bufio.NewWriter(fh)
	fmt.Fprintf(w, "transcript_id\ttrue_expression\n")
	for _, transcript := range transcripts {
		fmt.Fprintf(w, "%v\t%.6f\n", transcript.ID, transcript.Expression)
	}
	return w.Flush()
}
