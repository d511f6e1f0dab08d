package report

import (
	"bytes"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ayusman/samadhi/internal/evaluate"
)

// AssetsHost is where the rendered page loads the echarts script from.
var AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// RenderHTML writes a page with the accuracy curves and a bar chart of the
// best accuracy per blend weight.
func RenderHTML(w io.Writer, curves []evaluate.LambdaCurve) error {
	if len(curves) == 0 {
		return ErrNoCurves
	}

	thresholds := make([]string, 0, evaluate.MaxThreshold+1)
	for t := 0; t <= evaluate.MaxThreshold; t++ {
		thresholds = append(thresholds, strconv.Itoa(t))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Pose similarity accuracy", Width: "1200px", Height: "600px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Accuracy by threshold", Subtitle: subtitle(curves)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Threshold", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Accuracy (%)", Min: 0, Max: 100}),
	)
	line.SetXAxis(thresholds)
	for _, c := range curves {
		data := make([]opts.LineData, len(c.Curve))
		for i, p := range c.Curve {
			data[i] = opts.LineData{Value: round1(p.Accuracy * 100)}
		}
		line.AddSeries(seriesName(c), data)
	}

	names := make([]string, len(curves))
	best := make([]opts.BarData, len(curves))
	for i, c := range curves {
		names[i] = seriesName(c)
		best[i] = opts.BarData{Value: round1(c.Best.Accuracy * 100)}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "400px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Best accuracy per lambda"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("best accuracy", best,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.SetAssetsHost(AssetsHost)
	page.AddCharts(line, bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
