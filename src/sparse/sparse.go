// Package sparse generates synthetic single-cell count data as a sparse (gene, cell, count) table.
package sparse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/will-rowe/fauxseq/src/counts"
	"github.com/will-rowe/fauxseq/src/misc"
	"github.com/will-rowe/fauxseq/src/rng"
)

// output layout below the run directory
const (
	RawDir       = "raw"
	SyntheticDir = "synthetic"
	CountsFile   = "sparse_counts.tsv"
	MetadataFile = "metadata.json"
)

// Params are the generation parameters, also recorded in the metadata
type Params struct {
	Cells     int     `json:"n_cells"`
	Genes     int     `json:"n_genes"`
	CellTypes int     `json:"n_cell_types"`
	Seed      int64   `json:"seed"`
	FillRate  float64 `json:"-"`
}

// Entry is a single non-zero matrix cell
type Entry struct {
	Gene  int
	Cell  int
	Count float64
}

// Summary is written to metadata.json, field order matters
type Summary struct {
	TotalEntries     int       `json:"total_entries"`
	UniqueGenes      int       `json:"unique_genes"`
	UniqueCells      int       `json:"unique_cells"`
	TotalCounts      jsonFloat `json:"total_counts"`
	MeanCount        jsonFloat `json:"mean_count"`
	MedianCount      jsonFloat `json:"median_count"`
	MaxCount         jsonFloat `json:"max_count"`
	MinCount         jsonFloat `json:"min_count"`
	GenerationParams Params    `json:"generation_parameters"`
	Sparsity         jsonFloat `json:"sparsity"`
}

// jsonFloat always encodes with a decimal point
type jsonFloat float64

// MarshalJSON satisfies json.Marshaler
func (f jsonFloat) MarshalJSON() ([]byte, error) {
	return []byte(counts.FormatFloat(float64(f))), nil
}

// CellType returns the cell type of a cell
func CellType(cell, cellTypes int) int {
	return cell % cellTypes
}

// InSignature reports whether a gene falls in the signature block of a cell type
func InSignature(gene, cellType, genes, cellTypes int) bool {
	blockSize := genes / cellTypes
	start := cellType * blockSize
	end := int(math.Min(float64((cellType+1)*blockSize), float64(genes)))
	return start <= gene && gene < end
}

// Generate is a function to draw a sparse count table. Duplicate (gene, cell) draws keep their maximum,
// entries are sorted by gene then cell and signature genes of each cell's type are boosted.
func Generate(params Params) []Entry {
	r := rng.NewStream(params.Seed, "singlecell")
	target := int(float64(params.Cells) * float64(params.Genes) * params.FillRate)
	type key struct{ gene, cell int }
	drawn := make(map[key]float64)
	if params.Cells > 0 && params.Genes > 0 {
		for i := 0; i < target; i++ {
			gene := r.IntN(params.Genes)
			cell := r.IntN(params.Cells)
			baseRate := rng.Exponential(r, 1.5)
			count := math.Max(1, float64(rng.Poisson(r, baseRate)+1))
			k := key{gene, cell}
			if prev, ok := drawn[k]; !ok || count > prev {
				drawn[k] = count
			}
		}
	}
	entries := make([]Entry, 0, len(drawn))
	for k, count := range drawn {
		entries = append(entries, Entry{Gene: k.gene, Cell: k.cell, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Gene != entries[j].Gene {
			return entries[i].Gene < entries[j].Gene
		}
		return entries[i].Cell < entries[j].Cell
	})

	// boosts are drawn in sorted order so the stream stays deterministic
	if params.CellTypes > 0 {
		for i := range entries {
			cellType := CellType(entries[i].Cell, params.CellTypes)
			if InSignature(entries[i].Gene, cellType, params.Genes, params.CellTypes) {
				entries[i].Count *= rng.Uniform(r, 2, 4)
			}
		}
	}
	return entries
}

// Summarise is a function to compute the metadata statistics for a set of entries
func Summarise(entries []Entry, params Params) *Summary {
	summary := &Summary{TotalEntries: len(entries), GenerationParams: params, Sparsity: 1}
	if len(entries) == 0 {
		return summary
	}
	genes := make(map[int]struct{})
	cells := make(map[int]struct{})
	values := make([]float64, len(entries))
	for i, entry := range entries {
		genes[entry.Gene] = struct{}{}
		cells[entry.Cell] = struct{}{}
		values[i] = entry.Count
	}
	summary.UniqueGenes = len(genes)
	summary.UniqueCells = len(cells)
	summary.TotalCounts = jsonFloat(floats.Sum(values))
	summary.MeanCount = jsonFloat(stat.Mean(values, nil))
	summary.MaxCount = jsonFloat(floats.Max(values))
	summary.MinCount = jsonFloat(floats.Min(values))
	summary.MedianCount = jsonFloat(median(values))
	summary.Sparsity = jsonFloat(1 - float64(summary.TotalEntries)/float64(summary.UniqueGenes*summary.UniqueCells))
	return summary
}

// median averages the two middle values of an even-length sample
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// WriteCounts is a function to write the sparse table with a gene_idx, cell_idx, count header
func WriteCounts(path string, entries []Entry) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	w := bufio.NewWriter(fh)
	fmt.Fprintf(w, "gene_idx\tcell_idx\tcount\n")
	for _, entry := range entries {
		if _, err := fmt.Fprintf(w, "%d\t%d\t%v\n", entry.Gene, entry.Cell, counts.FormatFloat(entry.Count)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteMetadata is a function to write the summary as indented JSON
func WriteMetadata(path string, summary *Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Result describes a completed single-cell run
type Result struct {
	CountsFile string
	Entries    []Entry
	Summary    *Summary
}

// Run is a function to generate and write a single-cell dataset below outDir.
// A metadata failure is logged and does not fail the run.
func Run(outDir string, params Params) (*Result, error) {
	rawDir := filepath.Join(outDir, RawDir)
	syntheticDir := filepath.Join(outDir, SyntheticDir)
	for _, dir := range []string{rawDir, syntheticDir} {
		if err := misc.EnsureDir(dir); err != nil {
			return nil, err
		}
	}
	entries := Generate(params)
	countsFile := filepath.Join(rawDir, CountsFile)
	if err := WriteCounts(countsFile, entries); err != nil {
		return nil, err
	}
	summary := Summarise(entries, params)
	metadataFile := filepath.Join(syntheticDir, MetadataFile)
	if err := WriteMetadata(metadataFile, summary); err != nil {
		log.Printf("could not save metadata, continuing without it: %v", err)
	} else {
		log.Printf("\tmetadata saved to: %v", metadataFile)
	}
	return &Result{CountsFile: countsFile, Entries: entries, Summary: summary}, nil
}

// Counts returns the count column
func Counts(entries []Entry) []float64 {
	values := make([]float64, len(entries))
	for i, entry := range entries {
		values[i] = entry.Count
	}
	return values
}
