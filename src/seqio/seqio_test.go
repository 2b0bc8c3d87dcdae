package seqio

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/will-rowe/fauxseq/src/rng"
)

// setup variables
var (
	testSeed   int64 = 42
	readLength       = 100
	errorRate        = 0.02
)

func isBase(b byte) bool {
	return bytes.IndexByte(Bases, b) != -1
}

// begin the tests
func TestIDs(t *testing.T) {
	if id := TranscriptID(7); id != "transcript_0007" {
		t.Errorf("unexpected transcript ID: %v", id)
	}
	if id := ReadID(12); id != "read_00000012" {
		t.Errorf("unexpected read ID: %v", id)
	}
}

func TestRandomSequence(t *testing.T) {
	a := RandomSequence(rng.NewStream(testSeed, "test"), 1000)
	b := RandomSequence(rng.NewStream(testSeed, "test"), 1000)
	if !bytes.Equal(a, b) {
		t.Fatal("same seed produced different sequences")
	}
	if len(a) != 1000 {
		t.Fatalf("wrong sequence length: %d", len(a))
	}
	for _, base := range a {
		if !isBase(base) {
			t.Fatalf("non ATGC base generated: %v", string(base))
		}
	}
}

func TestSubstitute(t *testing.T) {
	r := rng.NewStream(testSeed, "test")
	seq := RandomSequence(r, 200000)

	// no errors requested, sequence comes back untouched
	unchanged, n := Substitute(r, seq, 0)
	if n != 0 || !bytes.Equal(unchanged, seq) {
		t.Fatal("zero error rate modified the sequence")
	}

	mutated, n := Substitute(r, seq, errorRate)
	diffs := 0
	for i := range seq {
		if seq[i] != mutated[i] {
			diffs++
		}
		if !isBase(mutated[i]) {
			t.Fatalf("substitution produced a non ATGC base: %v", string(mutated[i]))
		}
	}
	if diffs != n {
		t.Fatalf("reported %d substitutions but found %d", n, diffs)
	}
	expected := float64(len(seq)) * errorRate
	if math.Abs(float64(n)-expected) > 0.1*expected {
		t.Errorf("substitution count %d too far from expectation %.0f", n, expected)
	}
}

func TestSampleRead(t *testing.T) {
	r := rng.NewStream(testSeed, "test")
	transcript := NewTranscript(r, 0, 500)
	for i := 0; i < 100; i++ {
		read, err := transcript.SampleRead(r, readLength, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(read.Seq) != readLength {
			t.Fatalf("read has length %d", len(read.Seq))
		}
		if !bytes.Contains(transcript.Seq, read.Seq) {
			t.Fatal("error-free read is not a substring of its transcript")
		}
		if read.Source != transcript.ID {
			t.Fatal("read source not recorded")
		}
	}
	short := NewTranscript(r, 1, readLength-1)
	if _, err := short.SampleRead(r, readLength, errorRate); err == nil {
		t.Fatal("sampled a read from a transcript shorter than the read length")
	}
}

func TestFASTAWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewFASTAWriter(&buf, 10)
	for _, s := range []*Sequence{{ID: "transcript_0000", Seq: []byte("ATGCATGCAT")}, {ID: "transcript_0001", Seq: []byte("GGCC")}} {
		if err := w.Write(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	expected := ">transcript_0000\nATGCATGCAT\n>transcript_0001\nGGCC\n"
	if buf.String() != expected {
		t.Fatalf("unexpected FASTA output:\n%q", buf.String())
	}
}

func TestFASTQWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewFASTQWriter(&buf)
	read := &Read{Sequence: Sequence{ID: ReadID(0), Seq: []byte("ACGTAC")}}
	if err := w.Write(read); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines per FASTQ record, got %d", len(lines))
	}
	if lines[0] != "@read_00000000" || lines[1] != "ACGTAC" || lines[2] != "+" || lines[3] != "IIIIII" {
		t.Fatalf("unexpected FASTQ record: %q", lines)
	}
}

func TestBAMWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewBAMWriter(&buf, "fauxseq", "0.0.0")
	if err != nil {
		t.Fatal(err)
	}
	reads := []*Read{
		{Sequence: Sequence{ID: ReadID(0), Seq: []byte("ACGTACGT")}},
		{Sequence: Sequence{ID: ReadID(1), Seq: []byte("TTTTGGGG")}},
	}
	for _, read := range reads {
		if err := w.Write(read); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	br, err := bam.NewReader(&buf, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer br.Close()
	i := 0
	for {
		rec, err := br.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if rec.Name != reads[i].ID {
			t.Errorf("record %d has name %v", i, rec.Name)
		}
		if rec.Flags&sam.Unmapped == 0 {
			t.Errorf("record %d is not flagged as unmapped", i)
		}
		if string(rec.Seq.Expand()) != string(reads[i].Seq) {
			t.Errorf("record %d has sequence %v", i, string(rec.Seq.Expand()))
		}
		i++
	}
	if i != len(reads) {
		t.Fatalf("read back %d records, wrote %d", i, len(reads))
	}
}
