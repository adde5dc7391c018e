package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// Export writes t as comma-delimited UTF-8 text with a header row and no
// index column. Numeric and text cells are written verbatim.
func Export(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range t.rows {
		if err := cw.Write(t.Row(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// CSV returns the exported bytes of t.
func (t *Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := Export(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
