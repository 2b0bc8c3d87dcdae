package kmer

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

// test data
var (
	testK           = 3
	testTranscripts = map[string]string{
		"transcript_0000": "ATGCATGCAA",
		"transcript_0001": "GGGATGCCCA",
	}
	testOrder = []string{"transcript_0000", "transcript_0001"}
)

func buildTestIndex(t *testing.T) *Index {
	idx := NewIndex(testK)
	for _, id := range testOrder {
		if err := idx.Add(id, []byte(testTranscripts[id])); err != nil {
			t.Fatal(err)
		}
	}
	return idx
}

func TestOccurrences(t *testing.T) {
	idx := buildTestIndex(t)
	if idx.Occurrences() != 2*(10-3+1) {
		t.Fatalf("expected 16 k-mer occurrences, got %d", idx.Occurrences())
	}
	if idx.Len() > idx.Occurrences() {
		t.Fatal("more distinct k-mers than occurrences")
	}
}

func TestMembership(t *testing.T) {
	idx := buildTestIndex(t)
	for _, rec := range idx.Records() {
		if len(rec.Kmer) != testK {
			t.Fatalf("k-mer of wrong length: %v", rec.Kmer)
		}
		// the transcript set must be exactly the transcripts containing the k-mer
		var expected []string
		for _, id := range testOrder {
			if strings.Contains(testTranscripts[id], rec.Kmer) {
				expected = append(expected, id)
			}
		}
		if strings.Join(expected, ",") != strings.Join(rec.Transcripts, ",") {
			t.Errorf("k-mer %v: expected %v, got %v", rec.Kmer, expected, rec.Transcripts)
		}
	}
	shared, ok := idx.Lookup("ATG")
	if !ok || len(shared) != 2 {
		t.Fatalf("ATG should be shared by both transcripts: %v", shared)
	}
	if _, ok := idx.Lookup("TTT"); ok {
		t.Fatal("found a k-mer that is not in any transcript")
	}
}

func TestFirstSeenOrder(t *testing.T) {
	idx := buildTestIndex(t)
	records := idx.Records()
	if records[0].Kmer != "ATG" || records[1].Kmer != "TGC" || records[2].Kmer != "GCA" {
		t.Fatalf("records not in first-seen order: %v %v %v", records[0].Kmer, records[1].Kmer, records[2].Kmer)
	}
}

func TestShortSequence(t *testing.T) {
	idx := NewIndex(31)
	if err := idx.Add("transcript_0000", []byte("ATGC")); err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 0 || idx.Occurrences() != 0 {
		t.Fatal("sequence shorter than k added k-mers")
	}
}

func TestWriteJSON(t *testing.T) {
	idx := buildTestIndex(t)
	var buf bytes.Buffer
	if err := idx.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"transcript_positions": null`) {
		t.Fatal("transcript_positions should be written as null")
	}
	var decoded []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != idx.Len() {
		t.Fatalf("decoded %d records, expected %d", len(decoded), idx.Len())
	}
	if _, ok := decoded[0]["hash"]; ok {
		t.Fatal("hash should not be part of the JSON index")
	}
}

func TestDumpLoad(t *testing.T) {
	idx := buildTestIndex(t)
	path := filepath.Join(t.TempDir(), "kmer_index.msgpack")
	if err := idx.Dump(path); err != nil {
		t.Fatal(err)
	}
	loaded := new(Index)
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.K != testK || loaded.Len() != idx.Len() {
		t.Fatalf("loaded index does not match: k=%d len=%d", loaded.K, loaded.Len())
	}
	for i, rec := range loaded.Records() {
		orig := idx.Records()[i]
		if rec.Kmer != orig.Kmer || rec.Hash != orig.Hash || strings.Join(rec.Transcripts, ",") != strings.Join(orig.Transcripts, ",") {
			t.Fatalf("record %d changed after reload", i)
		}
	}
}

func TestCanonicalHash(t *testing.T) {
	// a k-mer and its reverse complement share a canonical hash
	idx := NewIndex(testK)
	if err := idx.Add("a", []byte("AAC")); err != nil {
		t.Fatal(err)
	}
	if err := idx.Add("b", []byte("GTT")); err != nil {
		t.Fatal(err)
	}
	records := idx.Records()
	if records[0].Hash == 0 || records[0].Hash != records[1].Hash {
		t.Fatalf("expected equal canonical hashes, got %d and %d", records[0].Hash, records[1].Hash)
	}
}
