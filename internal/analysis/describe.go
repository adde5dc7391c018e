package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/csvdash/internal/table"
	"gonum.org/v1/gonum/stat"
)

// Options controls which optional sections a Report carries.
type Options struct {
	// SampleRows determines how many leading rows to include in the report.
	SampleRows int
	// TopValues caps the category list kept per text column.
	TopValues int
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
}

// DefaultOptions returns reasonable defaults for dataset summaries.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 8, Correlations: true}
}

// Report is the descriptive summary of a Table.
type Report struct {
	Name    string
	Rows    int
	Cols    []ColumnSummary
	Samples [][]string
	Corr    *CorrMatrix
}

// ColumnSummary captures statistics for one column. Fields that do not apply
// to the column kind are left zero and reported as absent.
type ColumnSummary struct {
	Name    string
	Kind    table.Kind
	Count   int
	Missing int
	// text and datetime
	Unique int
	Top    string
	Freq   int
	// numeric
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	// datetime
	TimeMean   time.Time
	TimeMin    time.Time
	TimeQ1     time.Time
	TimeMedian time.Time
	TimeQ3     time.Time
	TimeMax    time.Time

	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// Describe summarizes every column of t.
func Describe(t *table.Table, opt Options) *Report {
	rows, ncol := t.Shape()
	rep := &Report{Name: t.Name, Rows: rows, Cols: make([]ColumnSummary, 0, ncol)}
	for j, c := range t.Columns {
		s := ColumnSummary{Name: c.Name, Kind: c.Kind}
		switch c.Kind {
		case table.KindNumeric:
			describeNumeric(t, j, &s)
		case table.KindDate:
			describeDates(t, j, &s)
			describeCategories(t, j, &s, opt.TopValues)
		default:
			describeCategories(t, j, &s, opt.TopValues)
		}
		s.Missing = rows - s.Count
		rep.Cols = append(rep.Cols, s)
	}
	if opt.SampleRows > 0 {
		rep.Samples = t.Head(opt.SampleRows).Records()
	}
	if opt.Correlations {
		rep.Corr = Correlation(t)
	}
	return rep
}

func describeNumeric(t *table.Table, j int, s *ColumnSummary) {
	vals := make([]float64, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if c := t.Cell(i, j); !c.Null {
			vals = append(vals, c.Num)
		}
	}
	s.Count = len(vals)
	if len(vals) == 0 {
		return
	}
	s.Mean, s.Std = stat.MeanStdDev(vals, nil)
	if len(vals) < 2 {
		s.Std = math.NaN()
	}
	sort.Float64s(vals)
	s.Min = vals[0]
	s.Max = vals[len(vals)-1]
	s.Q1 = quantile(vals, 0.25)
	s.Median = quantile(vals, 0.5)
	s.Q3 = quantile(vals, 0.75)
}

func describeDates(t *table.Table, j int, s *ColumnSummary) {
	secs := make([]float64, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if c := t.Cell(i, j); !c.Null {
			secs = append(secs, float64(c.Time.UnixNano())/1e9)
		}
	}
	if len(secs) == 0 {
		return
	}
	sort.Float64s(secs)
	s.TimeMean = fromUnix(stat.Mean(secs, nil))
	s.TimeMin = fromUnix(secs[0])
	s.TimeQ1 = fromUnix(quantile(secs, 0.25))
	s.TimeMedian = fromUnix(quantile(secs, 0.5))
	s.TimeQ3 = fromUnix(quantile(secs, 0.75))
	s.TimeMax = fromUnix(secs[len(secs)-1])
}

// describeCategories counts distinct display values; ties on frequency keep
// first-appearance order.
func describeCategories(t *table.Table, j int, s *ColumnSummary, limit int) {
	counts := map[string]int{}
	var order []string
	for i := 0; i < t.Len(); i++ {
		if t.Cell(i, j).Null {
			continue
		}
		v := t.Value(i, j)
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
		s.Count++
	}
	s.Unique = len(order)
	tops := make([]CategoryCount, len(order))
	for i, v := range order {
		tops[i] = CategoryCount{Value: v, Count: counts[v]}
	}
	sort.SliceStable(tops, func(a, b int) bool { return tops[a].Count > tops[b].Count })
	if len(tops) > 0 {
		s.Top = tops[0].Value
		s.Freq = tops[0].Count
	}
	if limit > 0 && len(tops) > limit {
		tops = tops[:limit]
	}
	s.TopValues = tops
}

func fromUnix(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

// quantile interpolates linearly between closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
