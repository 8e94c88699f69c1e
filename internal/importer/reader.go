package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewReader wraps r in a CSV reader that tolerates a UTF-8 byte-order mark
// and ragged rows (institution exports routinely omit trailing cells).
func NewReader(r io.Reader) *csv.Reader {
	br := bufio.NewReader(r)
	if peeked, err := br.Peek(len(utf8BOM)); err == nil && string(peeked) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// Row gives typed access to one CSV record through a column map.
type Row struct {
	columns ColumnMap
	cells   []string
}

// NewRow binds a record to the column map.
func NewRow(columns ColumnMap, cells []string) Row {
	return Row{columns: columns, cells: cells}
}

// Empty reports whether every cell is blank.
func (r Row) Empty() bool {
	for _, cell := range r.cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// String returns the trimmed cell for the field, or "" when the field is
// unmapped or the row is too short.
func (r Row) String(field string) string {
	idx, ok := r.columns[field]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

// Float returns the numeric cell for the field. Unmapped fields and blank
// cells default to 0; a non-blank cell that does not parse is an error so the
// row can be reported rather than silently zeroed.
func (r Row) Float(field string) (float64, error) {
	raw := r.String(field)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: not a number: %q", field, raw)
	}
	return value, nil
}

// Int behaves like Float for integer fields.
func (r Row) Int(field string) (int, error) {
	raw := r.String(field)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("field %s: not an integer: %q", field, raw)
	}
	return value, nil
}
