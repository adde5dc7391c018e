package chart

import (
	"fmt"
	"io"
	"math"

	"github.com/KaramelBytes/csvdash/internal/table"
	gochart "github.com/wcharczuk/go-chart/v2"
)

const (
	barWidth   = 40
	barSpacing = 24
)

func provider(format string) gochart.RendererProvider {
	if format == "svg" {
		return gochart.SVG
	}
	return gochart.PNG
}

func renderBar(w io.Writer, t *table.Table, req Request) error {
	series, err := BarSeries(t, req.X, req.Y)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return ErrNoData
	}
	lo, hi := 0.0, 0.0
	bars := make([]gochart.Value, len(series))
	for i, b := range series {
		bars[i] = gochart.Value{Label: b.Label, Value: b.Value}
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	if lo == hi {
		hi = lo + 1
	}
	width := len(bars)*(barWidth+barSpacing) + 160
	if width < 640 {
		width = 640
	}
	graph := gochart.BarChart{
		Title:        fmt.Sprintf("%s by %s", req.Y, req.X),
		Background:   gochart.Style{Padding: gochart.Box{Top: 48}},
		Width:        width,
		Height:       480,
		BarWidth:     barWidth,
		BarSpacing:   barSpacing,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: gochart.YAxis{
			Name:  req.Y,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
	if err := graph.Render(provider(req.Format), w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

func renderPie(w io.Writer, t *table.Table, req Request) error {
	slices, err := PieSlices(t, req.X)
	if err != nil {
		return err
	}
	if len(slices) == 0 {
		return ErrNoData
	}
	values := make([]gochart.Value, len(slices))
	for i, s := range slices {
		values[i] = gochart.Value{
			Label: fmt.Sprintf("%s %.1f%%", s.Label, s.Percent),
			Value: float64(s.Count),
		}
	}
	pie := gochart.PieChart{
		Title:  req.X,
		Width:  560,
		Height: 560,
		Values: values,
	}
	if err := pie.Render(provider(req.Format), w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}
