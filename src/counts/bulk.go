package counts

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/will-rowe/fauxseq/src/rng"
	"github.com/will-rowe/fauxseq/src/table"
)

var (
	conditions = []string{"Control", "Treatment"}
	batches    = []string{"Batch1", "Batch2", "Batch3"}
)

// BulkSampleIDs names samples by cycling conditions and batches independently
func BulkSampleIDs(n int) []string {
	samples := make([]string, n)
	for i := range samples {
		samples[i] = fmt.Sprintf("%v_%v_Rep%d", conditions[i%len(conditions)], batches[i%len(batches)], i/len(conditions)+1)
	}
	return samples
}

// batchEffect returns the multiplicative batch factor for a sample
func batchEffect(sample string) float64 {
	switch {
	case strings.Contains(sample, "Batch2"):
		return 1.5
	case strings.Contains(sample, "Batch3"):
		return 0.7
	}
	return 1.0
}

// treatmentEffect returns the multiplicative treatment factor for a gene in a sample.
// Treated genes are those whose ID ends in 1-5; the parity of the numeric part then picks up or down.
func treatmentEffect(gene, sample string) float64 {
	if !strings.Contains(sample, "Treatment") || !strings.ContainsAny(gene[len(gene)-1:], "12345") {
		return 1.0
	}
	// suffix and parity disagree: the last digit picks treated genes, the whole number picks direction (GENE_00010 untreated, GENE_00012 up)
	num, err := strconv.Atoi(gene[strings.Index(gene, "_")+1:])
	if err == nil && num%2 == 0 {
		return 2.0
	}
	return 0.5
}

// GenerateRawCounts is a function to simulate integer RNA-seq counts with batch and treatment effects
func GenerateRawCounts(r *rand.Rand, numGenes, numSamples int) *Matrix {
	matrix := &Matrix{
		Genes:   make([]string, numGenes),
		Samples: BulkSampleIDs(numSamples),
		Entries: make([]Entry, 0, numGenes*numSamples),
		Integer: true,
	}
	for i := range matrix.Genes {
		gene := GeneID(i + 1)
		matrix.Genes[i] = gene
		baseExpression := rng.LogNormal(r, 5, 2)
		for _, sample := range matrix.Samples {
			expected := baseExpression * batchEffect(sample) * treatmentEffect(gene, sample)
			matrix.Entries = append(matrix.Entries, Entry{
				GeneID:   gene,
				SampleID: sample,
				Count:    float64(rng.Poisson(r, expected)),
			})
		}
	}
	return matrix
}

// BatchMetadata is a function to derive condition, batch and replicate columns by splitting sample IDs on "_"
func BatchMetadata(samples []string) *table.Table {
	metadata := &table.Table{Header: []string{"sample_id", "condition", "batch", "replicate"}}
	for _, sample := range samples {
		parts := strings.Split(sample, "_")
		condition, batch, replicate := parts[0], "", "Rep1"
		if len(parts) > 1 {
			batch = parts[1]
		}
		if len(parts) > 2 {
			replicate = parts[2]
		}
		metadata.Rows = append(metadata.Rows, []string{sample, condition, batch, replicate})
	}
	return metadata
}
