package analysis

import (
	"math"

	"github.com/KaramelBytes/csvdash/internal/table"
	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Empty reports whether the matrix has no columns.
func (m *CorrMatrix) Empty() bool { return m == nil || len(m.Columns) == 0 }

// Correlation computes pairwise-complete Pearson correlations over the
// numeric columns of t. Pairs with fewer than two shared values, or with a
// constant side, are NaN. A table without numeric columns yields an empty
// matrix.
func Correlation(t *table.Table) *CorrMatrix {
	var idx []int
	m := &CorrMatrix{}
	for j, c := range t.Columns {
		if c.Kind == table.KindNumeric {
			idx = append(idx, j)
			m.Columns = append(m.Columns, c.Name)
		}
	}
	n := len(idx)
	m.Values = make([][]float64, n)
	for a := range m.Values {
		m.Values[a] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := pairCorr(t, idx[a], idx[b])
			m.Values[a][b] = r
			m.Values[b][a] = r
		}
	}
	return m
}

func pairCorr(t *table.Table, ja, jb int) float64 {
	xs := make([]float64, 0, t.Len())
	ys := make([]float64, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		x, y := t.Cell(i, ja), t.Cell(i, jb)
		if x.Null || y.Null {
			continue
		}
		xs = append(xs, x.Num)
		ys = append(ys, y.Num)
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}
