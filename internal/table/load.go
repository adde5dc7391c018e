package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// missingMarkers are read as null cells, matching common spreadsheet exports.
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// Month-first layouts come before day-first ones; "1/2/2006" also accepts
// zero-padded fields.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1-2-2006",
	"2-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02.01.2006",
}

// Load parses comma-delimited text with a header row into a Table and tags
// every column with its inferred kind.
func Load(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	if ncol == 0 {
		return nil, ErrEmpty
	}

	t := &Table{Columns: make([]Column, ncol)}
	for i, name := range uniqueNames(header) {
		t.Columns[i] = Column{Name: name}
	}

	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.rows)+1, err)
		}
		if len(rec) > ncol {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", ncol, line, len(rec))
		}
		row := make([]Cell, ncol)
		for j := range row {
			if j >= len(rec) {
				row[j] = Cell{Null: true}
				continue
			}
			_, miss := missingMarkers[strings.TrimSpace(rec[j])]
			row[j] = Cell{Raw: rec[j], Null: miss}
		}
		t.rows = append(t.rows, row)
	}

	for j := range t.Columns {
		inferKind(t, j)
	}
	return t, nil
}

// inferKind tags column j as numeric, datetime or text. The date pass only
// runs on columns that are not numeric; a column that fails it stays text.
func inferKind(t *Table, j int) {
	col := &t.Columns[j]
	nonNull := 0
	numeric := true
	for _, row := range t.rows {
		c := &row[j]
		if c.Null {
			continue
		}
		nonNull++
		if !numeric {
			continue
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(c.Raw), 64)
		if err != nil {
			numeric = false
			continue
		}
		c.Num = x
	}
	if nonNull == 0 {
		col.Kind = KindText
		return
	}
	if numeric {
		col.Kind = KindNumeric
		return
	}
	col.Kind = KindText
	parsed := make([]time.Time, len(t.rows))
	withClock := false
	for i, row := range t.rows {
		if row[j].Null {
			continue
		}
		ts, ok := parseTimeMaybe(strings.TrimSpace(row[j].Raw))
		if !ok {
			return
		}
		if ts.Hour() != 0 || ts.Minute() != 0 || ts.Second() != 0 || ts.Nanosecond() != 0 {
			withClock = true
		}
		parsed[i] = ts
	}
	for i, row := range t.rows {
		row[j].Time = parsed[i]
	}
	col.Kind = KindDate
	col.withClock = withClock
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if ts, err := time.Parse(l, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// uniqueNames fills blank header names and suffixes duplicates with ".N".
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}
