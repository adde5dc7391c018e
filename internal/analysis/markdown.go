package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KaramelBytes/csvdash/internal/table"
)

// StatLabels are the row labels of the statistics grid, in display order.
var StatLabels = []string{"count", "unique", "top", "freq", "mean", "std", "min", "25%", "50%", "75%", "max"}

// StatGrid returns the statistics grid: one row per StatLabels entry and one
// column per table column. Statistics that do not apply to a column are "".
func (r *Report) StatGrid() [][]string {
	grid := make([][]string, len(StatLabels))
	for i := range grid {
		grid[i] = make([]string, len(r.Cols))
	}
	for j, c := range r.Cols {
		grid[0][j] = strconv.Itoa(c.Count)
		switch c.Kind {
		case table.KindNumeric:
			if c.Count == 0 {
				continue
			}
			for i, v := range []float64{c.Mean, c.Std, c.Min, c.Q1, c.Median, c.Q3, c.Max} {
				grid[4+i][j] = formatNum(v)
			}
		case table.KindDate:
			grid[1][j] = strconv.Itoa(c.Unique)
			if c.Count == 0 {
				continue
			}
			grid[4][j] = formatStamp(c.TimeMean)
			for i, v := range []time.Time{c.TimeMin, c.TimeQ1, c.TimeMedian, c.TimeQ3, c.TimeMax} {
				grid[6+i][j] = formatStamp(v)
			}
		default:
			grid[1][j] = strconv.Itoa(c.Unique)
			if c.Count > 0 {
				grid[2][j] = c.Top
				grid[3][j] = strconv.Itoa(c.Freq)
			}
		}
	}
	return grid
}

// Markdown renders a compact report suitable for prompts or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Shape: (%d, %d)\n\n", r.Rows, len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		missPct := 0.0
		if r.Rows > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(r.Rows)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.Count, missPct))
		switch c.Kind {
		case table.KindNumeric:
			if c.Count > 0 {
				b.WriteString(fmt.Sprintf(" — min %.4g, median %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Median, c.Max, c.Mean, c.Std))
			}
		case table.KindDate:
			if c.Count > 0 {
				b.WriteString(fmt.Sprintf(" — from %s to %s", formatStamp(c.TimeMin), formatStamp(c.TimeMax)))
			}
		default:
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	if !r.Corr.Empty() && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if v := r.Corr.Values[i][j]; !math.IsNaN(v) {
					pairs = append(pairs, pr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: v})
				}
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai := math.Abs(pairs[i].R)
			aj := math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n|")
		for range r.Cols {
			b.WriteString(" --- |")
		}
		b.WriteString("\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i, val := range row {
				if i > 0 {
					b.WriteString(" | ")
				}
				b.WriteString(safeVal(clip(val, 80)))
			}
			b.WriteString(" |\n")
		}
	}
	return b.String()
}

func formatNum(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatStamp(ts time.Time) string {
	if ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 && ts.Nanosecond() == 0 {
		return ts.Format("2006-01-02")
	}
	return ts.Format("2006-01-02 15:04:05")
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
