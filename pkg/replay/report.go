package replay

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderReport writes an HTML report for a replayed session: tracker
// commands per frame, and anchor scale drift per sticker.
func RenderReport(w io.Writer, title string, c *Collector) error {
	sum := c.Summary()

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Tracker commands per frame",
			Subtitle: fmt.Sprintf("frames=%d mean=%.2f median=%.0f p95=%.0f", sum.Frames, sum.MeanCommands, sum.MedianCommands, sum.P95Commands),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "commands"}),
	)
	data := make([]opts.ScatterData, 0, len(c.Commands()))
	for i, v := range c.Commands() {
		data = append(data, opts.ScatterData{Value: []interface{}{i, v}})
	}
	scatter.AddSeries("commands", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Anchor scale drift", Subtitle: "anchor scale at first and last sighting"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	x := []string{}
	first := []opts.BarData{}
	last := []opts.BarData{}
	for _, d := range sum.Drift {
		x = append(x, fmt.Sprintf("sticker %d", d.StickerID))
		first = append(first, opts.BarData{Value: d.First})
		last = append(last, opts.BarData{Value: d.Last})
	}
	bar.SetXAxis(x).
		AddSeries("first", first, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"})).
		AddSeries("last", last, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))

	page := components.NewPage()
	page.AddCharts(scatter, bar)
	return page.Render(w)
}
