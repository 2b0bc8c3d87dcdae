package counts

import (
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/mholt/archiver"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/will-rowe/fauxseq/src/misc"
	"github.com/will-rowe/fauxseq/src/reporting"
	"github.com/will-rowe/fauxseq/src/rng"
)

// the stream every count generator draws from
const countStream = "counts"

// file names used inside a preset directory
const (
	RawCountsFile        = "raw_counts.tsv"
	BatchMetadataFile    = "batch_metadata.tsv"
	NormalizedCountsFile = "normalized_counts.tsv"
	SampleMetadataFile   = "sample_metadata.tsv"
	ReadmeFile           = "README.md"
	ExpectedResultsFile  = "expected_results.txt"
	HistogramFile        = "count_histogram.png"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("counts").Funcs(template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"title": cases.Title(language.English).String,
	"mul":   func(a, b int) int { return a * b },
	"fraction": func(n int, f float64) int {
		return int(f * float64(n))
	},
}).ParseFS(templateFS, "templates/*.tmpl"))

// Preset is a named dataset size. For differential expression presets Samples is the per-group size.
type Preset struct {
	Name    string
	Genes   int
	Samples int
}

// BulkPresets are written to test_data_<name>
var BulkPresets = []Preset{
	{"small", 100, 6},
	{"medium", 1000, 12},
	{"large", 5000, 24},
}

// DEPresets are written to the_test_data_<name>
var DEPresets = []Preset{
	{"small", 100, 3},
	{"medium", 1000, 6},
	{"large", 5000, 12},
}

// BatchOptions control a preset fan-out run
type BatchOptions struct {
	BaseDir string
	Seed    int64
	Plot    bool
	Archive bool
}

// WriteBulk is a function to generate raw counts and write them (headerless) along with the batch metadata
func WriteBulk(seed int64, genes, samples int, countsFile, metadataFile string) (*Matrix, error) {
	matrix := GenerateRawCounts(rng.NewStream(seed, countStream), genes, samples)
	if err := matrix.WriteFile(countsFile, false); err != nil {
		return nil, err
	}
	if err := BatchMetadata(matrix.Samples).WriteFile(metadataFile); err != nil {
		return nil, err
	}
	logSummary(matrix)
	return matrix, nil
}

// WriteDE is a function to generate normalized counts and write them along with the sample metadata
func WriteDE(seed int64, genes, perGroup int, countsFile, metadataFile string) (*Matrix, error) {
	matrix, categories := GenerateNormalizedCounts(rng.NewStream(seed, countStream), genes, perGroup)
	if err := matrix.WriteFile(countsFile, true); err != nil {
		return nil, err
	}
	if err := SampleMetadata(matrix.Samples).WriteFile(metadataFile); err != nil {
		return nil, err
	}
	logSummary(matrix)
	tally := make(map[Category]int)
	for _, category := range categories {
		tally[category]++
	}
	for _, category := range []Category{Upregulated, Downregulated, Unchanged} {
		percent := 0.0
		if genes > 0 {
			percent = float64(tally[category]) / float64(genes) * 100
		}
		log.Printf("\t%v genes: %d (%.1f%%)", category, tally[category], percent)
	}
	return matrix, nil
}

// logSummary logs the per-sample summary statistics
func logSummary(matrix *Matrix) {
	log.Printf("\tgenes: %d, samples: %d, entries: %v", len(matrix.Genes), len(matrix.Samples), humanize.Comma(int64(len(matrix.Entries))))
	for _, s := range matrix.SampleSummary() {
		log.Printf("\t%v\tsum=%.2f\tmean=%.2f\tstd=%.2f", s.SampleID, s.Sum, s.Mean, s.StdDev)
	}
}

// CreateBulkTestSets is a function to write every bulk preset, returning the directories created
func CreateBulkTestSets(opts BatchOptions) ([]string, error) {
	dirs := []string{}
	for _, preset := range BulkPresets {
		dir := filepath.Join(opts.BaseDir, "test_data_"+preset.Name)
		log.Printf("creating %v dataset in %v", preset.Name, dir)
		if err := misc.EnsureDir(dir); err != nil {
			return nil, err
		}
		matrix, err := WriteBulk(opts.Seed, preset.Genes, preset.Samples, filepath.Join(dir, RawCountsFile), filepath.Join(dir, BatchMetadataFile))
		if err != nil {
			return nil, err
		}
		if err := renderTemplate("bulk_readme.tmpl", filepath.Join(dir, ReadmeFile), preset); err != nil {
			return nil, err
		}
		if err := finishPreset(dir, matrix, opts); err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

// CreateDETestSets is a function to write every differential expression preset, returning the directories created
func CreateDETestSets(opts BatchOptions) ([]string, error) {
	dirs := []string{}
	for _, preset := range DEPresets {
		dir := filepath.Join(opts.BaseDir, "the_test_data_"+preset.Name)
		log.Printf("creating %v differential expression dataset in %v", preset.Name, dir)
		if err := misc.EnsureDir(dir); err != nil {
			return nil, err
		}
		matrix, err := WriteDE(opts.Seed, preset.Genes, preset.Samples, filepath.Join(dir, NormalizedCountsFile), filepath.Join(dir, SampleMetadataFile))
		if err != nil {
			return nil, err
		}
		if err := renderTemplate("de_readme.tmpl", filepath.Join(dir, ReadmeFile), preset); err != nil {
			return nil, err
		}
		if err := renderTemplate("de_expected.tmpl", filepath.Join(dir, ExpectedResultsFile), preset); err != nil {
			return nil, err
		}
		if err := finishPreset(dir, matrix, opts); err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

// finishPreset adds the optional histogram and archive to a preset directory
func finishPreset(dir string, matrix *Matrix, opts BatchOptions) error {
	if opts.Plot {
		if err := reporting.PlotCountHistogram(matrix.Counts(), filepath.Base(dir), filepath.Join(dir, HistogramFile)); err != nil {
			return err
		}
	}
	if opts.Archive {
		archive, err := ArchiveDir(dir)
		if err != nil {
			return err
		}
		log.Printf("\tarchived to %v", archive)
	}
	return nil
}

// ArchiveDir is a function to bundle a directory into <dir>.tar.gz, replacing any earlier archive
func ArchiveDir(dir string) (string, error) {
	archive := filepath.Clean(dir) + ".tar.gz"
	if err := os.Remove(archive); err != nil && !os.IsNotExist(err) {
		return "", err
	}
	if err := archiver.Archive([]string{dir}, archive); err != nil {
		return "", fmt.Errorf("could not archive %v: %w", dir, err)
	}
	return archive, nil
}

// renderTemplate executes a named template into a file
func renderTemplate(name, path string, preset Preset) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := templates.ExecuteTemplate(fh, name, preset); err != nil {
		fh.Close()
		return fmt.Errorf("could not render %v: %w", name, err)
	}
	return fh.Close()
}
