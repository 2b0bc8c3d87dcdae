package seqio

import (
	"bufio"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// Quality is the Phred score given to every simulated base ('I' in Sanger encoding)
const Quality alphabet.Qphred = 40

// FASTAWriter writes transcripts as single-line FASTA records
type FASTAWriter struct {
	buf *bufio.Writer
	fw  *fasta.Writer
}

// NewFASTAWriter is the constructor, width must be at least the length of the longest sequence to avoid line wrapping
func NewFASTAWriter(w io.Writer, width int) *FASTAWriter {
	if width < 1 {
		width = 1
	}
	buf := bufio.NewWriter(w)
	return &FASTAWriter{buf: buf, fw: fasta.NewWriter(buf, width)}
}

// Write is a method to write a single sequence as a FASTA record
func (FASTAWriter *FASTAWriter) Write(s *Sequence) error {
	_, err := FASTAWriter.fw.Write(linear.NewSeq(s.ID, alphabet.BytesToLetters(s.Seq), alphabet.DNA))
	return err
}

// Flush is a method to flush any buffered records to the underlying writer
func (FASTAWriter *FASTAWriter) Flush() error {
	return FASTAWriter.buf.Flush()
}

// FASTQWriter writes reads as 4-line FASTQ records with a constant quality string
type FASTQWriter struct {
	buf *bufio.Writer
	fw  *fastq.Writer
}

// NewFASTQWriter is the constructor
func NewFASTQWriter(w io.Writer) *FASTQWriter {
	buf := bufio.NewWriter(w)
	return &FASTQWriter{buf: buf, fw: fastq.NewWriter(buf)}
}

// Write is a method to write a single read as a FASTQ record
func (FASTQWriter *FASTQWriter) Write(read *Read) error {
	qletters := make([]alphabet.QLetter, len(read.Seq))
	for i, base := range read.Seq {
		qletters[i] = alphabet.QLetter{L: alphabet.Letter(base), Q: Quality}
	}
	_, err := FASTQWriter.fw.Write(linear.NewQSeq(read.ID, qletters, alphabet.DNA, alphabet.Sanger))
	return err
}

// Flush is a method to flush any buffered records to the underlying writer
func (FASTQWriter *FASTQWriter) Flush() error {
	return FASTQWriter.buf.Flush()
}

// BAMWriter writes reads as unaligned BAM records
type BAMWriter struct {
	bw *bam.Writer
}

// NewBAMWriter is the constructor, it writes a header carrying the program name and version
func NewBAMWriter(w io.Writer, program, version string) (*BAMWriter, error) {
	header, err := sam.NewHeader(nil, nil)
	if err != nil {
		return nil, err
	}
	header.Version = "1.5"
	programInfo := sam.NewProgram("1", program, program+" reads", "", version)
	if err := header.AddProgram(programInfo); err != nil {
		return nil, err
	}
	bw, err := bam.NewWriter(w, header, 1)
	if err != nil {
		return nil, err
	}
	return &BAMWriter{bw: bw}, nil
}

// Write is a method to write a single read as an unmapped record
func (BAMWriter *BAMWriter) Write(read *Read) error {
	qual := make([]byte, len(read.Seq))
	for i := range qual {
		qual[i] = byte(Quality)
	}
	record, err := sam.NewRecord(read.ID, nil, nil, -1, -1, 0, 0, nil, read.Seq, qual, nil)
	if err != nil {
		return err
	}
	record.Flags = sam.Unmapped
	return BAMWriter.bw.Write(record)
}

// Close is a method to flush and close the BAM stream (the underlying writer is not closed)
func (BAMWriter *BAMWriter) Close() error {
	return BAMWriter.bw.Close()
}
