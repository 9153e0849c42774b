package bench

import (
	"errors"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotFPS saves a bar chart of the frames per second of each result. The
// image format follows the extension of path.
func PlotFPS(results []Result, path string) error {
	if len(results) == 0 {
		return errors.New("no results to plot")
	}
	values := make(plotter.Values, len(results))
	names := make([]string, len(results))
	for i, r := range results {
		values[i] = r.FPS
		names[i] = r.Backend
	}

	p := plot.New()
	p.Title.Text = "Animation throughput"
	p.Y.Label.Text = "frames per second"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return err
	}
	bars.Color = color.NRGBA{R: 0x46, G: 0x89, B: 0x66, A: 0xFF}
	bars.LineStyle.Width = 0
	p.Add(bars, plotter.NewGrid())
	p.NominalX(names...)

	return p.Save(vg.Length(len(results)+2)*vg.Inch, 4*vg.Inch, path)
}
