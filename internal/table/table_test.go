package table

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func mustLoad(t *testing.T, s string) *Table {
	t.Helper()
	tb, err := Load(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return tb
}

func TestLoadInfersKinds(t *testing.T) {
	tb := mustLoad(t, "when,city,score,note\n"+
		"2024-08-10,NY,10,first\n"+
		"2024-08-12,ny,2.5,\n"+
		"2024-08-15 13:30:00,Boston,NA,third\n")

	rows, cols := tb.Shape()
	if rows != 3 || cols != 4 {
		t.Fatalf("shape = (%d,%d), want (3,4)", rows, cols)
	}
	want := []Kind{KindDate, KindText, KindNumeric, KindText}
	for i, k := range want {
		if tb.Columns[i].Kind != k {
			t.Errorf("column %s kind = %s, want %s", tb.Columns[i].Name, tb.Columns[i].Kind, k)
		}
	}
	if !tb.Cell(2, 2).Null {
		t.Errorf("expected NA to load as null")
	}
	if got := tb.Cell(1, 2).Num; got != 2.5 {
		t.Errorf("score[1] = %v, want 2.5", got)
	}
	if got := tb.Value(0, 0); got != "2024-08-10 00:00:00" {
		t.Errorf("date with clock column rendered %q", got)
	}
	if got := tb.NumericColumns(); len(got) != 1 || got[0] != "score" {
		t.Errorf("NumericColumns = %v", got)
	}
}

func TestLoadDateCoercionFallsBackToText(t *testing.T) {
	tb := mustLoad(t, "a,b\n2024-01-02,x\nnot a date,y\n")
	if tb.Columns[0].Kind != KindText {
		t.Fatalf("mixed column kind = %s, want text", tb.Columns[0].Kind)
	}
	if tb.Value(1, 0) != "not a date" || tb.Value(0, 0) != "2024-01-02" {
		t.Fatalf("text fallback changed values: %v", tb.Records())
	}
	if tb.Columns[1].Kind != KindText {
		t.Fatalf("other columns must still load, got %s", tb.Columns[1].Kind)
	}
}

func TestLoadMonthFirstDates(t *testing.T) {
	tb := mustLoad(t, "d\n03/04/2024\n12/31/2024\n")
	if tb.Columns[0].Kind != KindDate {
		t.Fatalf("kind = %s, want datetime", tb.Columns[0].Kind)
	}
	if got := tb.Value(0, 0); got != "2024-03-04" {
		t.Fatalf("month-first parse got %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "no columns"},
		{"too many fields", "a,b\n1,2\n1,2,3\n", "expected 2 fields in line 3, saw 3"},
		{"bad quote", "a,b\n\"1,2\n", "read row"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(c.in))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("error %q does not mention %q", err, c.want)
			}
		})
	}
	if _, err := Load(strings.NewReader("")); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestLoadPadsShortRowsAndNamesColumns(t *testing.T) {
	tb := mustLoad(t, "\ufeffa,,a\n1\n")
	if got := strings.Join(tb.Header(), "|"); got != "a|Unnamed: 1|a.1" {
		t.Fatalf("header = %q", got)
	}
	if !tb.Cell(0, 1).Null || !tb.Cell(0, 2).Null {
		t.Fatalf("short row not padded with nulls")
	}
}

func TestHeaderOnly(t *testing.T) {
	tb := mustLoad(t, "x,y\n")
	if rows, cols := tb.Shape(); rows != 0 || cols != 2 {
		t.Fatalf("shape = (%d,%d)", rows, cols)
	}
	if tb.Columns[0].Kind != KindText {
		t.Fatalf("empty column kind = %s", tb.Columns[0].Kind)
	}
}

func TestExportRoundTrip(t *testing.T) {
	src := "name,score,joined\nA,10,2024-01-02\n\"B, Jr\",20.5,2024-02-03\nC,,2024-03-04\n"
	tb := mustLoad(t, src)
	var buf bytes.Buffer
	if err := Export(&buf, tb); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if buf.String() != src {
		t.Fatalf("export mismatch:\n got %q\nwant %q", buf.String(), src)
	}
	again := mustLoad(t, buf.String())
	r1, c1 := tb.Shape()
	r2, c2 := again.Shape()
	if r1 != r2 || c1 != c2 {
		t.Fatalf("shape changed across round trip")
	}
	for i := 0; i < tb.Len(); i++ {
		if strings.Join(tb.Row(i), "|") != strings.Join(again.Row(i), "|") {
			t.Fatalf("row %d changed: %v vs %v", i, tb.Row(i), again.Row(i))
		}
	}
}

func TestExportNormalizesDates(t *testing.T) {
	tb := mustLoad(t, "d\n1/2/2024\n")
	b, err := tb.CSV()
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	if string(b) != "d\n2024-01-02\n" {
		t.Fatalf("got %q", b)
	}
}

func TestFilter(t *testing.T) {
	tb := mustLoad(t, "name,city\nA,NY\nB,ny\nC,Boston\nD,\n")
	cases := []struct {
		col, kw string
		want    int
	}{
		{"city", "", 4},
		{"city", "ny", 2},
		{"city", "NY", 2},
		{"city", "zzz", 0},
		{"name", "a", 1},
	}
	for _, c := range cases {
		got, err := Filter(tb, c.col, c.kw)
		if err != nil {
			t.Fatalf("Filter(%s,%s): %v", c.col, c.kw, err)
		}
		if got.Len() != c.want {
			t.Errorf("Filter(%s,%q) = %d rows, want %d", c.col, c.kw, got.Len(), c.want)
		}
	}
	if _, err := Filter(tb, "missing", "x"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
	if tb.Len() != 4 {
		t.Fatalf("filter mutated the source table")
	}
}

func TestFilterNumericText(t *testing.T) {
	tb := mustLoad(t, "score\n10\n20\n100\n")
	got, err := Filter(tb, "score", "10")
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 2 {
		t.Fatalf("got %d rows, want 2", got.Len())
	}
}

func TestHead(t *testing.T) {
	tb := mustLoad(t, "a\n1\n2\n3\n")
	if tb.Head(2).Len() != 2 || tb.Head(10).Len() != 3 || tb.Head(-1).Len() != 0 {
		t.Fatalf("Head bounds wrong")
	}
}
