package table

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind is the inferred type of a column, fixed at load time.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindDate    Kind = "datetime"
	KindText    Kind = "text"
)

var (
	// ErrEmpty is returned when an upload has no header to build columns from.
	ErrEmpty = errors.New("no columns to parse from file")
	// ErrUnknownColumn is returned when a selection names a column the Table lacks.
	ErrUnknownColumn = errors.New("unknown column")
)

// Column describes one column of a Table.
type Column struct {
	Name string
	Kind Kind
	// withClock is set on datetime columns where any value has a time of day.
	withClock bool
}

// Cell holds the raw text of a value plus its parsed form for its column kind.
type Cell struct {
	Raw  string
	Null bool
	Num  float64
	Time time.Time
}

// Table is the loaded dataset. It is never mutated after Load; Filter and Head
// return derived tables that share cells with the original.
type Table struct {
	Name    string
	Columns []Column
	rows    [][]Cell
}

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) {
	if t == nil {
		return 0, 0
	}
	return len(t.rows), len(t.Columns)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Header returns the column names in order.
func (t *Table) Header() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// ColumnIndex looks up a column by exact name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// NumericColumns returns the names of numeric columns in table order.
func (t *Table) NumericColumns() []string {
	var out []string
	for _, c := range t.Columns {
		if c.Kind == KindNumeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// Cell returns the cell at (row, col).
func (t *Table) Cell(row, col int) Cell { return t.rows[row][col] }

// Value returns the display text of a cell; null cells render as "".
func (t *Table) Value(row, col int) string {
	c := t.rows[row][col]
	if c.Null {
		return ""
	}
	if t.Columns[col].Kind == KindDate {
		return formatTime(c.Time, t.Columns[col].withClock)
	}
	return c.Raw
}

// Row returns the display text of one row.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.Columns))
	for j := range t.Columns {
		out[j] = t.Value(i, j)
	}
	return out
}

// Records returns the display text of every row.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Head returns a view of the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return &Table{Name: t.Name, Columns: t.Columns, rows: t.rows[:n:n]}
}

func (t *Table) subset(idx []int) *Table {
	rows := make([][]Cell, len(idx))
	for i, r := range idx {
		rows[i] = t.rows[r]
	}
	return &Table{Name: t.Name, Columns: t.Columns, rows: rows}
}

// Filter returns the rows whose value in column contains keyword, ignoring
// case. An empty keyword returns t itself. Null cells never match.
func Filter(t *Table, column, keyword string) (*Table, error) {
	col, ok := t.ColumnIndex(column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if keyword == "" {
		return t, nil
	}
	needle := strings.ToLower(keyword)
	var idx []int
	for i := range t.rows {
		if t.rows[i][col].Null {
			continue
		}
		if strings.Contains(strings.ToLower(t.Value(i, col)), needle) {
			idx = append(idx, i)
		}
	}
	return t.subset(idx), nil
}

func formatTime(ts time.Time, withClock bool) string {
	if withClock {
		return ts.Format("2006-01-02 15:04:05")
	}
	return ts.Format("2006-01-02")
}
