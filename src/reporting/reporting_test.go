package reporting

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLogCounts(t *testing.T) {
	values := LogCounts([]float64{0, 9, 99, -1})
	if len(values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(values))
	}
	if values[0] != 0 || values[1] != 1 || values[2] != 2 {
		t.Fatalf("unexpected log counts: %v", values)
	}
}

func TestPlotCountHistogram(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "count_histogram.png")
	counts := []float64{}
	for i := 0; i < 500; i++ {
		counts = append(counts, float64(i*i%97))
	}
	if err := PlotCountHistogram(counts, "test counts", fileName); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(fileName); err != nil || info.Size() == 0 {
		t.Fatal("histogram image was not written")
	}
	if err := PlotCountHistogram(nil, "empty", fileName); err == nil {
		t.Fatal("plotting no counts should fail")
	}
}
