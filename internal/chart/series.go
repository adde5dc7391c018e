package chart

import (
	"math"
	"sort"

	"github.com/KaramelBytes/csvdash/internal/table"
)

// BarValue is one bar: the x category and the bar height.
type BarValue struct {
	Label string
	Value float64
	N     int
}

// BarSeries groups rows by the x value, in first-appearance order, and sets
// each bar to the mean of the finite y values in its group. Null, infinite
// and NaN y cells are skipped; a group left without values gets no bar.
func BarSeries(t *table.Table, x, y string) ([]BarValue, error) {
	jx, ok := t.ColumnIndex(x)
	if !ok {
		return nil, table.ErrUnknownColumn
	}
	jy, ok := t.ColumnIndex(y)
	if !ok {
		return nil, table.ErrUnknownColumn
	}
	pos := map[string]int{}
	var bars []BarValue
	for i := 0; i < t.Len(); i++ {
		cx, cy := t.Cell(i, jx), t.Cell(i, jy)
		if cx.Null || cy.Null || !finite(cy.Num) {
			continue
		}
		label := t.Value(i, jx)
		k, seen := pos[label]
		if !seen {
			k = len(bars)
			pos[label] = k
			bars = append(bars, BarValue{Label: label})
		}
		// running mean; a plain sum overflows near math.MaxFloat64
		bars[k].N++
		bars[k].Value += (cy.Num - bars[k].Value) / float64(bars[k].N)
	}
	out := bars[:0]
	for _, b := range bars {
		if finite(b.Value) {
			out = append(out, b)
		}
	}
	return out, nil
}

func finite(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }

// Slice is one pie slice.
type Slice struct {
	Label   string
	Count   int
	Percent float64
}

// PieSlices counts the distinct non-null values of column x, most frequent
// first; ties keep first-appearance order.
func PieSlices(t *table.Table, x string) ([]Slice, error) {
	jx, ok := t.ColumnIndex(x)
	if !ok {
		return nil, table.ErrUnknownColumn
	}
	pos := map[string]int{}
	var slices []Slice
	total := 0
	for i := 0; i < t.Len(); i++ {
		if t.Cell(i, jx).Null {
			continue
		}
		label := t.Value(i, jx)
		k, seen := pos[label]
		if !seen {
			k = len(slices)
			pos[label] = k
			slices = append(slices, Slice{Label: label})
		}
		slices[k].Count++
		total++
	}
	sort.SliceStable(slices, func(a, b int) bool { return slices[a].Count > slices[b].Count })
	for i := range slices {
		slices[i].Percent = float64(slices[i].Count) * 100 / float64(total)
	}
	return slices, nil
}
