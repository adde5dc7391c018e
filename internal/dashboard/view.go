package dashboard

import (
	"errors"
	"net/url"

	"github.com/KaramelBytes/csvdash/internal/analysis"
	"github.com/KaramelBytes/csvdash/internal/chart"
	"github.com/KaramelBytes/csvdash/internal/table"
)

// Selections are the current widget values. Every page render derives all
// outputs from the loaded Table and these values.
type Selections struct {
	FilterColumn string
	Keyword      string
	ChartKind    string
	X            string
	Y            string
	Question     string
}

// Options tunes rendering.
type Options struct {
	PreviewRows int
}

type Grid struct {
	Header []string
	Rows   [][]string
}

type ColumnInfo struct {
	Name string
	Kind table.Kind
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

// AIPanel is the outcome of one AI request. Level is success, warning or error.
type AIPanel struct {
	Title string
	Level string
	Text  string
}

// View is everything the dashboard page displays.
type View struct {
	Loaded   bool
	FileName string
	Error    string

	Rows    int
	Cols    int
	Columns []ColumnInfo
	Preview Grid
	Stats   Grid

	FilterOptions []Option
	Keyword       string
	Filtered      *Grid

	ChartKinds []Option
	XOptions   []Option
	YOptions   []Option
	ChartURL   string
	ChartNote  string

	Selections Selections
	AI         *AIPanel
}

// Render computes the page for t under sel. It has no side effects; a nil
// Table yields the empty "upload a file" view.
func Render(t *table.Table, sel Selections, opt Options) View {
	if t == nil {
		return View{}
	}
	if opt.PreviewRows <= 0 {
		opt.PreviewRows = 5
	}
	sel = normalize(t, sel)
	rows, cols := t.Shape()
	v := View{
		Loaded:     true,
		FileName:   t.Name,
		Rows:       rows,
		Cols:       cols,
		Keyword:    sel.Keyword,
		Selections: sel,
	}
	for _, c := range t.Columns {
		v.Columns = append(v.Columns, ColumnInfo{Name: c.Name, Kind: c.Kind})
	}
	v.Preview = gridOf(t.Head(opt.PreviewRows))

	rep := analysis.Describe(t, analysis.Options{})
	v.Stats.Header = append([]string{""}, t.Header()...)
	for i, row := range rep.StatGrid() {
		v.Stats.Rows = append(v.Stats.Rows, append([]string{analysis.StatLabels[i]}, row...))
	}

	v.FilterOptions = options(t.Header(), sel.FilterColumn)
	if sel.Keyword != "" {
		if filtered, err := table.Filter(t, sel.FilterColumn, sel.Keyword); err == nil {
			g := gridOf(filtered)
			v.Filtered = &g
		}
	}

	for _, k := range chart.Kinds {
		v.ChartKinds = append(v.ChartKinds, Option{Value: string(k), Label: k.Label(), Selected: string(k) == sel.ChartKind})
	}
	v.XOptions = options(t.Header(), sel.X)
	v.YOptions = options(t.NumericColumns(), sel.Y)

	req := chart.Request{Kind: chart.Kind(sel.ChartKind), X: sel.X, Y: sel.Y}
	if err := req.Validate(t); err != nil {
		v.ChartNote = chartNote(err)
	} else {
		q := url.Values{"kind": {sel.ChartKind}, "x": {sel.X}}
		if req.Kind.NeedsY() {
			q.Set("y", sel.Y)
		}
		v.ChartURL = "/chart?" + q.Encode()
	}
	return v
}

// normalize replaces empty or stale selections with the first valid choice.
func normalize(t *table.Table, sel Selections) Selections {
	header := t.Header()
	if _, ok := t.ColumnIndex(sel.FilterColumn); !ok && len(header) > 0 {
		sel.FilterColumn = header[0]
	}
	if k, err := chart.ParseKind(sel.ChartKind); err == nil {
		sel.ChartKind = string(k)
	} else {
		sel.ChartKind = string(chart.Bar)
	}
	if _, ok := t.ColumnIndex(sel.X); !ok && len(header) > 0 {
		sel.X = header[0]
	}
	numeric := t.NumericColumns()
	validY := false
	for _, n := range numeric {
		if n == sel.Y {
			validY = true
		}
	}
	if !validY {
		sel.Y = ""
		if len(numeric) > 0 {
			sel.Y = numeric[0]
		}
	}
	return sel
}

func chartNote(err error) string {
	switch {
	case errors.Is(err, chart.ErrNoNumericColumns):
		return "This dataset has no numeric columns. Choose Pie Chart, or upload data with a numeric column to draw a bar chart or heatmap."
	case errors.Is(err, chart.ErrNoData):
		return "Nothing to plot: the selected columns have no usable values. Pick other columns."
	default:
		return "Cannot draw this chart: " + err.Error()
	}
}

func gridOf(t *table.Table) Grid {
	return Grid{Header: t.Header(), Rows: t.Records()}
}

func options(values []string, selected string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v, Selected: v == selected}
	}
	return out
}
