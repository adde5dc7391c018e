// Package chart renders bar, pie and correlation heatmap images from a Table.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/csvdash/internal/table"
)

// Kind selects which rendering algorithm is applied.
type Kind string

const (
	Bar     Kind = "bar"
	Pie     Kind = "pie"
	Heatmap Kind = "heatmap"
)

// Kinds lists the chart kinds in menu order.
var Kinds = []Kind{Bar, Pie, Heatmap}

// Label is the human-readable menu label for k.
func (k Kind) Label() string {
	switch k {
	case Bar:
		return "Bar Chart"
	case Pie:
		return "Pie Chart"
	case Heatmap:
		return "Heatmap"
	}
	return string(k)
}

// NeedsY reports whether the kind uses the y column.
func (k Kind) NeedsY() bool { return k == Bar }

var (
	ErrUnknownKind      = errors.New("unknown chart kind")
	ErrNoNumericColumns = errors.New("no numeric columns available")
	ErrNoData           = errors.New("no data to plot")
)

// ParseKind accepts either the short name or the menu label, in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bar", "bar chart":
		return Bar, nil
	case "pie", "pie chart":
		return Pie, nil
	case "heatmap", "heat map":
		return Heatmap, nil
	}
	return "", fmt.Errorf("%w: %q (use bar|pie|heatmap)", ErrUnknownKind, s)
}

// Request is one chart render.
type Request struct {
	Kind Kind
	X    string
	// Y must name a numeric column; only bar charts use it.
	Y string
	// Format is "png" (default) or "svg".
	Format string
}

// ContentType returns the MIME type of the rendered image.
func (r Request) ContentType() string {
	if r.Format == "svg" {
		return "image/svg+xml"
	}
	return "image/png"
}

// Validate checks that the request can be rendered against t.
func (r Request) Validate(t *table.Table) error {
	switch r.Format {
	case "", "png", "svg":
	default:
		return fmt.Errorf("unsupported format %q (use png|svg)", r.Format)
	}
	switch r.Kind {
	case Heatmap:
		if len(t.NumericColumns()) == 0 {
			return ErrNoNumericColumns
		}
		return nil
	case Pie:
		if _, ok := t.ColumnIndex(r.X); !ok {
			return fmt.Errorf("x: %w: %q", table.ErrUnknownColumn, r.X)
		}
		if slices, _ := PieSlices(t, r.X); len(slices) == 0 {
			return fmt.Errorf("%w: column %q has no values", ErrNoData, r.X)
		}
		return nil
	case Bar:
		if len(t.NumericColumns()) == 0 {
			return ErrNoNumericColumns
		}
		if _, ok := t.ColumnIndex(r.X); !ok {
			return fmt.Errorf("x: %w: %q", table.ErrUnknownColumn, r.X)
		}
		j, ok := t.ColumnIndex(r.Y)
		if !ok {
			return fmt.Errorf("y: %w: %q", table.ErrUnknownColumn, r.Y)
		}
		if t.Columns[j].Kind != table.KindNumeric {
			return fmt.Errorf("y column %q is %s, want numeric", r.Y, t.Columns[j].Kind)
		}
		if bars, _ := BarSeries(t, r.X, r.Y); len(bars) == 0 {
			return fmt.Errorf("%w: no row has both %q and a finite %q", ErrNoData, r.X, r.Y)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
}

// Render validates req and writes the chart image to w.
func Render(w io.Writer, t *table.Table, req Request) error {
	if err := req.Validate(t); err != nil {
		return err
	}
	switch req.Kind {
	case Bar:
		return renderBar(w, t, req)
	case Pie:
		return renderPie(w, t, req)
	default:
		return renderHeatmap(w, t, req)
	}
}
