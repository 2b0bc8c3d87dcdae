package reporting

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// HistogramBins is the number of bins used for count histograms
const HistogramBins = 50

// LogCounts transforms counts to log10(count+1), dropping negative values
func LogCounts(counts []float64) plotter.Values {
	values := make(plotter.Values, 0, len(counts))
	for _, c := range counts {
		if c < 0 {
			continue
		}
		values = append(values, math.Log10(c+1))
	}
	return values
}

// PlotCountHistogram is a function to save a histogram of log10(count+1) as an image (format taken from the file extension)
func PlotCountHistogram(counts []float64, title, fileName string) error {
	values := LogCounts(counts)
	if len(values) == 0 {
		return fmt.Errorf("no counts to plot for %v", title)
	}
	histPlot := plot.New()
	histPlot.Title.Text = title
	histPlot.X.Label.Text = "log10(count + 1)"
	histPlot.Y.Label.Text = "number of entries"
	hist, err := plotter.NewHist(values, HistogramBins)
	if err != nil {
		return err
	}
	histPlot.Add(hist)
	return histPlot.Save(6*vg.Inch, 4*vg.Inch, fileName)
}
