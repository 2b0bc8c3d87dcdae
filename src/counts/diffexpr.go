package counts

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/will-rowe/fauxseq/src/rng"
	"github.com/will-rowe/fauxseq/src/table"
)

// MinNormalizedCount is the floor applied to every normalized count
const MinNormalizedCount = 0.1

// Category is the simulated differential expression class of a gene
type Category int

// the gene categories
const (
	Unchanged Category = iota
	Upregulated
	Downregulated
)

func (c Category) String() string {
	switch c {
	case Upregulated:
		return "upregulated"
	case Downregulated:
		return "downregulated"
	}
	return "unchanged"
}

// foldRange gives the uniform fold change bounds for a category
func (c Category) foldRange() (float64, float64) {
	switch c {
	case Upregulated:
		return 2.0, 8.0
	case Downregulated:
		return 0.125, 0.5
	}
	return 0.8, 1.25
}

// GeneCategories assigns categories by position: the first 10% of genes are upregulated, the next 10% downregulated
func GeneCategories(numGenes int) []Category {
	numUp := int(0.1 * float64(numGenes))
	numDown := int(0.1 * float64(numGenes))
	categories := make([]Category, numGenes)
	for i := range categories {
		switch {
		case i < numUp:
			categories[i] = Upregulated
		case i < numUp+numDown:
			categories[i] = Downregulated
		}
	}
	return categories
}

// GroupSampleIDs returns Control_Rep1..n followed by Treatment_Rep1..n
func GroupSampleIDs(perGroup int) []string {
	samples := make([]string, 0, 2*perGroup)
	for _, group := range conditions {
		for i := 0; i < perGroup; i++ {
			samples = append(samples, fmt.Sprintf("%v_Rep%d", group, i+1))
		}
	}
	return samples
}

// GenerateNormalizedCounts is a function to simulate continuous normalized counts for a two-group experiment
func GenerateNormalizedCounts(r *rand.Rand, numGenes, perGroup int) (*Matrix, []Category) {
	categories := GeneCategories(numGenes)
	samples := GroupSampleIDs(perGroup)
	matrix := &Matrix{
		Genes:   make([]string, numGenes),
		Samples: samples,
		Entries: make([]Entry, 0, numGenes*len(samples)),
	}
	for i, category := range categories {
		gene := GeneID(i + 1)
		matrix.Genes[i] = gene
		baseExpression := rng.LogNormal(r, 4, 1.5)
		for _, sample := range samples[:perGroup] {
			noise := rng.LogNormal(r, 0, 0.3)
			matrix.Entries = append(matrix.Entries, Entry{gene, sample, math.Max(MinNormalizedCount, baseExpression*noise)})
		}
		low, high := category.foldRange()
		for _, sample := range samples[perGroup:] {
			fold := rng.Uniform(r, low, high)
			noise := rng.LogNormal(r, 0, 0.3)
			matrix.Entries = append(matrix.Entries, Entry{gene, sample, math.Max(MinNormalizedCount, baseExpression*fold*noise)})
		}
	}
	return matrix, categories
}

// SampleMetadata is a function to derive group, replicate and a cyclic batch assignment from sample IDs
func SampleMetadata(samples []string) *table.Table {
	metadata := &table.Table{Header: []string{"sample_id", "group", "condition", "replicate", "batch"}}
	for _, sample := range samples {
		group := "Unknown"
		switch {
		case strings.HasPrefix(sample, "Control"):
			group = "Control"
		case strings.HasPrefix(sample, "Treatment"):
			group = "Treatment"
		}
		replicate := "1"
		if idx := strings.Index(sample, "_Rep"); idx != -1 {
			replicate = strings.SplitN(sample[idx+len("_Rep"):], "_Rep", 2)[0]
		}
		rep, err := strconv.Atoi(replicate)
		if err != nil {
			rep = 1
		}
		batch := fmt.Sprintf("Batch%d", ((rep-1)%3+3)%3+1)
		metadata.Rows = append(metadata.Rows, []string{sample, group, group, replicate, batch})
	}
	return metadata
}

// ConvertExisting is a function to re-emit an existing gene_id/sample_id/count table and build
// metadata for it by guessing each sample's group from its name
func ConvertExisting(inputFile, countsFile, metadataFile string) (*table.Table, *table.Table, error) {
	existing, err := table.ReadFile(inputFile)
	if err != nil {
		return nil, nil, err
	}
	if missing := existing.MissingColumns("gene_id", "sample_id"); len(missing) != 0 {
		return nil, nil, fmt.Errorf("missing required columns: %v", missing)
	}
	metadata := &table.Table{Header: []string{"sample_id", "group", "condition", "replicate"}}
	groupSizes := make(map[string]int)
	for _, sample := range existing.Unique("sample_id") {
		var group string
		switch {
		case strings.Contains(sample, "Control") || strings.Contains(sample, "control"):
			group = "Control"
		case strings.Contains(sample, "Treat") || strings.Contains(sample, "treatment"):
			group = "Treatment"
		case len(metadata.Rows)%2 == 0:
			group = "Control"
		default:
			group = "Treatment"
		}
		groupSizes[group]++
		metadata.Rows = append(metadata.Rows, []string{sample, group, group, strconv.Itoa(groupSizes[group])})
	}
	if err := metadata.WriteFile(metadataFile); err != nil {
		return nil, nil, err
	}
	if err := existing.WriteFile(countsFile); err != nil {
		return nil, nil, err
	}
	return existing, metadata, nil
}
