package analysis

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/KaramelBytes/csvdash/internal/table"
)

func load(t *testing.T, s string) *table.Table {
	t.Helper()
	tb, err := table.Load(strings.NewReader(s))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return tb
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDescribeShapeMatchesTable(t *testing.T) {
	tb := load(t, "name,score\nA,10\nB,20\nC,30\n")
	rep := Describe(tb, DefaultOptions())
	rows, cols := tb.Shape()
	if rep.Rows != rows || len(rep.Cols) != cols {
		t.Fatalf("report shape (%d,%d) != table shape (%d,%d)", rep.Rows, len(rep.Cols), rows, cols)
	}
	if rows != 3 || cols != 2 {
		t.Fatalf("unexpected shape (%d,%d)", rows, cols)
	}
}

func TestDescribeNumeric(t *testing.T) {
	tb := load(t, "x\n1\n2\n3\n4\n\n")
	s := Describe(tb, DefaultOptions()).Cols[0]
	if s.Count != 4 || s.Missing != 0 {
		t.Fatalf("count=%d missing=%d", s.Count, s.Missing)
	}
	checks := map[string][2]float64{
		"mean": {s.Mean, 2.5},
		"min":  {s.Min, 1},
		"25%":  {s.Q1, 1.75},
		"50%":  {s.Median, 2.5},
		"75%":  {s.Q3, 3.25},
		"max":  {s.Max, 4},
		"std":  {s.Std, math.Sqrt(5.0 / 3.0)},
	}
	for name, c := range checks {
		if !approx(c[0], c[1]) {
			t.Errorf("%s = %v, want %v", name, c[0], c[1])
		}
	}
}

func TestDescribeSingleValueStdIsNaN(t *testing.T) {
	s := Describe(load(t, "x\n5\n"), DefaultOptions()).Cols[0]
	if !math.IsNaN(s.Std) {
		t.Fatalf("std of one value = %v, want NaN", s.Std)
	}
}

func TestDescribeText(t *testing.T) {
	tb := load(t, "city\nNY\nBoston\nNY\nNA\nBoston\nLA\n")
	s := Describe(tb, DefaultOptions()).Cols[0]
	if s.Count != 5 || s.Missing != 1 {
		t.Fatalf("count=%d missing=%d", s.Count, s.Missing)
	}
	if s.Unique != 3 || s.Top != "NY" || s.Freq != 2 {
		t.Fatalf("unique=%d top=%q freq=%d", s.Unique, s.Top, s.Freq)
	}
}

func TestStatGrid(t *testing.T) {
	tb := load(t, "name,score,day\nA,10,2024-01-01\nB,20,2024-01-03\nA,30,2024-01-05\n")
	grid := Describe(tb, DefaultOptions()).StatGrid()
	if len(grid) != len(StatLabels) {
		t.Fatalf("grid rows = %d", len(grid))
	}
	row := func(label string) []string {
		for i, l := range StatLabels {
			if l == label {
				return grid[i]
			}
		}
		t.Fatalf("no row %s", label)
		return nil
	}
	if got := row("count"); got[0] != "3" || got[1] != "3" || got[2] != "3" {
		t.Errorf("count row = %v", got)
	}
	if got := row("top"); got[0] != "A" || got[1] != "" {
		t.Errorf("top row = %v", got)
	}
	if got := row("mean"); got[0] != "" || got[1] != "20.000000" || got[2] != "2024-01-03" {
		t.Errorf("mean row = %v", got)
	}
	if got := row("unique"); got[1] != "" || got[2] != "3" {
		t.Errorf("unique row = %v", got)
	}
}

func TestCorrelation(t *testing.T) {
	tb := load(t, "a,b,c,label\n1,2,5,x\n2,4,5,y\n3,6,5,z\n4,8,5,w\n")
	m := Correlation(tb)
	if len(m.Columns) != 3 {
		t.Fatalf("columns = %v, want numeric only", m.Columns)
	}
	if !approx(m.Values[0][1], 1) || !approx(m.Values[1][0], 1) || !approx(m.Values[0][0], 1) {
		t.Fatalf("a~b = %v", m.Values[0][1])
	}
	if !math.IsNaN(m.Values[0][2]) || !math.IsNaN(m.Values[2][2]) {
		t.Fatalf("constant column should give NaN, got %v", m.Values[0][2])
	}
}

func TestCorrelationNoNumericColumns(t *testing.T) {
	m := Correlation(load(t, "a,b\nx,y\n"))
	if !m.Empty() {
		t.Fatalf("expected empty matrix, got %v", m.Columns)
	}
}

func TestMarkdown(t *testing.T) {
	tb := load(t, "name,score,bonus\nA,10,1\nB,20,2\nC,30,4\n")
	tb.Name = "scores.csv"
	md := Describe(tb, DefaultOptions()).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: scores.csv",
		"Shape: (3, 3)",
		"- score: numeric (non-null 3, missing 0.0%)",
		"- name: text",
		"[CORRELATIONS]",
		"score ~ bonus",
		"[HEAD AND SAMPLE ROWS]",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownClipsLongCellsByRune(t *testing.T) {
	long := strings.Repeat("é", 100)
	tb := load(t, "note\n"+long+"\n")
	md := Describe(tb, DefaultOptions()).Markdown()
	if !utf8.ValidString(md) {
		t.Fatalf("markdown is not valid UTF-8")
	}
	want := strings.Repeat("é", 77) + "..."
	if !strings.Contains(md, "| "+want+" |") {
		t.Fatalf("long cell not clipped to 80 runes:\n%s", md)
	}
	if got := clip("naïve", 80); got != "naïve" {
		t.Fatalf("short value changed: %q", got)
	}
}
