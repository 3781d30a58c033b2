// Package source reads raw ingestion files (delimited text, line-oriented
// text and spreadsheets) into row-oriented data.
package source

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a fully loaded source with a header row.
type Table struct {
	Header []string
	Rows   [][]string
	// Rejected counts lines the parser could not read; they are not in Rows.
	Rejected int

	cols map[string]int
}

// NormalizeHeader lowercases a column name, trims it, and converts inner
// spaces to underscores so "Serv Phone Num " matches "serv_phone_num".
func NormalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "_")
}

// NewTable builds a table from a header and data rows.
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{Rows: rows, cols: make(map[string]int, len(header))}
	t.Header = make([]string, len(header))
	for i, h := range header {
		n := NormalizeHeader(h)
		t.Header[i] = n
		if _, dup := t.cols[n]; !dup {
			t.cols[n] = i
		}
	}
	return t
}

// Column returns the index of the named column.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.cols[NormalizeHeader(name)]
	return i, ok
}

// ColumnContaining returns the first column, in header order, whose name
// contains sub.
func (t *Table) ColumnContaining(sub string) (int, bool) {
	sub = NormalizeHeader(sub)
	for i, h := range t.Header {
		if strings.Contains(h, sub) {
			return i, true
		}
	}
	return -1, false
}

// Require returns the indexes of every named column, or an error listing the
// missing ones together with the columns found.
func (t *Table) Require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		c, ok := t.Column(n)
		if !ok {
			missing = append(missing, n)
			continue
		}
		idx[i] = c
	}
	if len(missing) > 0 {
		return nil, eris.Wrapf(ErrMissingColumns, "required %v, found %v", missing, t.Header)
	}
	return idx, nil
}

// Cell returns the trimmed value at idx, or "" when the row is short or idx
// is negative.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ErrMissingColumns is returned when a source lacks a required column.
var ErrMissingColumns = eris.New("source: missing required columns")

// ErrEmpty is returned when a source has no header row.
var ErrEmpty = eris.New("source: file is empty")

// Options configures ReadTable.
type Options struct {
	Delimiter rune // delimited text only; default ';'
	Sheet     string
}

// IsSpreadsheet reports whether path has a spreadsheet extension.
func IsSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}

// ReadTable loads path as a spreadsheet or delimited text, chosen by
// extension. The first row is the header.
func ReadTable(ctx context.Context, path string, opts Options) (*Table, error) {
	if IsSpreadsheet(path) {
		rows, err := ReadXLSX(path, XLSXOptions{SheetName: opts.Sheet})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, eris.Wrapf(ErrEmpty, "%s", filepath.Base(path))
		}
		return NewTable(rows[0], rows[1:]), nil
	}
	return ReadDelimited(ctx, path, opts.Delimiter)
}
