// Package kmer builds the k-mer to transcript membership index written alongside simulated reads.
package kmer

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"sort"

	"github.com/will-rowe/ntHash"
	"gopkg.in/vmihailenco/msgpack.v2"
)

// CANONICAL tells ntHash to return the hash of the canonical k-mer (min of forward and reverse complement)
const CANONICAL = true

// Record is a single k-mer along with the transcripts that contain it
type Record struct {
	Kmer                string   `json:"kmer" msgpack:"kmer"`
	Transcripts         []string `json:"transcripts" msgpack:"transcripts"`
	TranscriptPositions []int    `json:"transcript_positions" msgpack:"-"`
	Hash                uint64   `json:"-" msgpack:"hash"`
}

// Index maps every k-mer seen to the set of transcripts containing it
type Index struct {
	K           int
	records     []*Record
	lookup      map[string]*Record
	members     map[string]map[string]struct{}
	occurrences int
}

// dump is the on-disk layout of a msgpack index
type dump struct {
	K       int       `msgpack:"k"`
	Records []*Record `msgpack:"records"`
}

// NewIndex is the constructor
func NewIndex(k int) *Index {
	return &Index{
		K:       k,
		lookup:  make(map[string]*Record),
		members: make(map[string]map[string]struct{}),
	}
}

// Add is a method to decompose a transcript into k-mers and record membership for each.
// Sequences shorter than k contribute nothing.
func (Index *Index) Add(transcriptID string, seq []byte) error {
	numKmers := len(seq) - Index.K + 1
	if Index.K < 1 || numKmers < 1 {
		return nil
	}

	// hash the transcript once, giving a hash per window
	hashes, err := Index.hashKmers(seq, numKmers)
	if err != nil {
		return err
	}
	for i := 0; i < numKmers; i++ {
		kmer := string(seq[i : i+Index.K])
		rec, ok := Index.lookup[kmer]
		if !ok {
			rec = &Record{Kmer: kmer}
			if hashes != nil {
				rec.Hash = hashes[i]
			}
			Index.lookup[kmer] = rec
			Index.members[kmer] = make(map[string]struct{})
			Index.records = append(Index.records, rec)
		}
		if _, seen := Index.members[kmer][transcriptID]; !seen {
			Index.members[kmer][transcriptID] = struct{}{}
			rec.Transcripts = append(rec.Transcripts, transcriptID)
		}
		Index.occurrences++
	}
	return nil
}

// hashKmers runs the rolling ntHash over a sequence, nil is returned if the hasher skipped any windows
func (Index *Index) hashKmers(seq []byte, numKmers int) ([]uint64, error) {
	hasher, err := ntHash.New(&seq, uint(Index.K))
	if err != nil {
		return nil, fmt.Errorf("could not hash k-mers: %w", err)
	}
	hashes := make([]uint64, 0, numKmers)
	for hv := range hasher.Hash(CANONICAL) {
		hashes = append(hashes, hv)
	}
	if len(hashes) != numKmers {
		return nil, nil
	}
	return hashes, nil
}

// Records returns the index entries in the order the k-mers were first seen, with sorted transcript sets
func (Index *Index) Records() []*Record {
	for _, rec := range Index.records {
		sort.Strings(rec.Transcripts)
	}
	return Index.records
}

// Len returns the number of distinct k-mers
func (Index *Index) Len() int {
	return len(Index.records)
}

// Occurrences returns the number of k-mer windows added, before de-duplication
func (Index *Index) Occurrences() int {
	return Index.occurrences
}

// Lookup returns the sorted transcript set for a k-mer
func (Index *Index) Lookup(kmer string) ([]string, bool) {
	rec, ok := Index.lookup[kmer]
	if !ok {
		return nil, false
	}
	sort.Strings(rec.Transcripts)
	return rec.Transcripts, true
}

// WriteJSON is a method to write the index as an indented JSON array
func (Index *Index) WriteJSON(w io.Writer) error {
	records := Index.Records()
	if records == nil {
		records = []*Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Dump is a method to dump the index to file using msgpack
func (Index *Index) Dump(path string) error {
	b, err := msgpack.Marshal(&dump{K: Index.K, Records: Index.Records()})
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, b, 0644)
}

// Load is a method to load an index from a msgpack file
func (Index *Index) Load(path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return fmt.Errorf("k-mer index file appears empty: %v", path)
	}
	imported := &dump{}
	if err := msgpack.Unmarshal(b, imported); err != nil {
		return err
	}
	*Index = *NewIndex(imported.K)
	for _, rec := range imported.Records {
		Index.lookup[rec.Kmer] = rec
		Index.members[rec.Kmer] = make(map[string]struct{}, len(rec.Transcripts))
		for _, id := range rec.Transcripts {
			Index.members[rec.Kmer][id] = struct{}{}
		}
		Index.records = append(Index.records, rec)
	}
	return nil
}
