package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/KaramelBytes/csvdash/internal/analysis"
	"github.com/KaramelBytes/csvdash/internal/table"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Row 0 of the
// matrix is drawn at the top.
type corrGrid struct{ m *analysis.CorrMatrix }

func (g corrGrid) Dims() (c, r int) { n := len(g.m.Columns); return n, n }
func (g corrGrid) Z(c, r int) float64 {
	return g.m.Values[len(g.m.Columns)-1-r][c]
}
func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

func renderHeatmap(w io.Writer, t *table.Table, req Request) error {
	m := analysis.Correlation(t)
	if m.Empty() {
		return ErrNoNumericColumns
	}
	n := len(m.Columns)

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{m}, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.White

	p := plot.New()
	p.Title.Text = "Correlation heatmap"
	p.Add(hm)

	var xys plotter.XYs
	var labels []string
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := m.Values[r][c]
			if math.IsNaN(v) {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(n - 1 - r)})
			labels = append(labels, fmt.Sprintf("%.2f", v))
		}
	}
	if len(xys) > 0 {
		annot, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return fmt.Errorf("heatmap labels: %w", err)
		}
		for i := range annot.TextStyle {
			annot.TextStyle[i].XAlign = text.XCenter
			annot.TextStyle[i].YAlign = text.YCenter
		}
		p.Add(annot)
	}

	yNames := make([]string, n)
	for i, name := range m.Columns {
		yNames[n-1-i] = name
	}
	p.NominalX(m.Columns...)
	p.NominalY(yNames...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	format := req.Format
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write heatmap: %w", err)
	}
	return nil
}
