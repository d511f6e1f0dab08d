package report

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ayusman/samadhi/internal/evaluate"
)

// Plot size of the PNG output.
const (
	plotWidth  = 14 * vg.Inch
	plotHeight = 6 * vg.Inch
)

func newPlot(curves []evaluate.LambdaCurve) (*plot.Plot, error) {
	if len(curves) == 0 {
		return nil, ErrNoCurves
	}

	p := plot.New()
	p.Title.Text = "Accuracy by threshold: " + subtitle(curves)
	p.X.Label.Text = "Threshold"
	p.Y.Label.Text = "Accuracy (%)"
	p.X.Min, p.X.Max = 0, evaluate.MaxThreshold
	p.Y.Min, p.Y.Max = 0, 100
	p.Add(plotter.NewGrid())

	for i, c := range curves {
		pts := make(plotter.XYs, len(c.Curve))
		for j, t := range c.Curve {
			pts[j] = plotter.XY{X: float64(t.Threshold), Y: t.Accuracy * 100}
		}

		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", seriesName(c), err)
		}
		l.Color = plotutil.Color(i)
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(seriesName(c), l)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SavePNG writes the accuracy curves to a PNG file.
func SavePNG(path string, curves []evaluate.LambdaCurve) error {
	p, err := newPlot(curves)
	if err != nil {
		return err
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("save accuracy plot: %w", err)
	}
	return nil
}

// WritePNG writes the accuracy curves as PNG to w.
func WritePNG(w io.Writer, curves []evaluate.LambdaCurve) error {
	p, err := newPlot(curves)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
