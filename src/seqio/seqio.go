/*
	the seqio package contains custom types and methods for generating, mutating and writing sequence data
*/
package seqio

import (
	"fmt"
	"math/rand/v2"
)

// Bases is the nucleotide alphabet used for simulated sequence, in draw order
var Bases = []byte{'A', 'T', 'G', 'C'}

// otherBases is the lookup table used during substitution, giving the three alternatives for each base
var otherBases = map[byte][]byte{
	'A': {'T', 'G', 'C'},
	'T': {'A', 'G', 'C'},
	'G': {'A', 'T', 'C'},
	'C': {'A', 'T', 'G'},
}

// Sequence is the base type for transcripts and reads
type Sequence struct {
	ID  string
	Seq []byte
}

// Transcript is a simulated RNA sequence, along with its ground-truth expression
type Transcript struct {
	Sequence
	Expression float64 // unnormalised expression level
	Weight     float64 // expression as a fraction of the total
	ReadCount  int     // number of reads to sample from this transcript
}

// Read is a simulated sequencing fragment
type Read struct {
	Sequence
	Source string // the ID of the transcript the read was sampled from
	Errors int    // number of substituted bases
}

// TranscriptID formats the sequential, zero-padded transcript identifier
func TranscriptID(i int) string {
	return fmt.Sprintf("transcript_%04d", i)
}

// ReadID formats the sequential, zero-padded read identifier
func ReadID(i int) string {
	return fmt.Sprintf("read_%08d", i)
}

// RandomSequence returns n bases drawn uniformly from the alphabet
func RandomSequence(r *rand.Rand, n int) []byte {
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = Bases[r.IntN(len(Bases))]
	}
	return seq
}

// NewTranscript generates a transcript with a random sequence
func NewTranscript(r *rand.Rand, i, length int) *Transcript {
	return &Transcript{
		Sequence: Sequence{
			ID:  TranscriptID(i),
			Seq: RandomSequence(r, length),
		},
	}
}

// Substitute returns a copy of seq where each base is independently replaced, with probability rate,
// by one of the three other bases. The number of substitutions is also returned.
func Substitute(r *rand.Rand, seq []byte, rate float64) ([]byte, int) {
	mutated := make([]byte, len(seq))
	copy(mutated, seq)
	if rate <= 0 {
		return mutated, 0
	}
	errors := 0
	for i, base := range mutated {
		if r.Float64() < rate {
			alts, ok := otherBases[base]
			if !ok {
				alts = Bases
			}
			mutated[i] = alts[r.IntN(len(alts))]
			errors++
		}
	}
	return mutated, errors
}

// SampleRead takes a window of the transcript, starting uniformly at random, and applies substitution errors
func (Transcript *Transcript) SampleRead(r *rand.Rand, readLength int, errorRate float64) (*Read, error) {
	if len(Transcript.Seq) < readLength {
		return nil, fmt.Errorf("transcript %v is shorter than the read length (%d vs. %d)", Transcript.ID, len(Transcript.Seq), readLength)
	}
	start := r.IntN(len(Transcript.Seq) - readLength + 1)
	seq, errors := Substitute(r, Transcript.Seq[start:start+readLength], errorRate)
	return &Read{
		Sequence: Sequence{Seq: seq},
		Source:   Transcript.ID,
		Errors:   errors,
	}, nil
}
