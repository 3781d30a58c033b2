package source

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ISODate is the layout used for spreadsheet cells holding a date value.
const ISODate = "2006-01-02"

// XLSXOptions configures the XLSX parser.
type XLSXOptions struct {
	SheetName string // default: the first sheet
}

// ReadXLSX reads an XLSX sheet and returns all rows as string slices.
// Date-formatted numeric cells are rendered as ISODate so callers never see
// locale-dependent display formats. Fully blank rows are dropped.
func ReadXLSX(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := rowToStrings(row, f.Date1904)
		if blank(cells) {
			continue
		}
		rows = append(rows, cells)
	}

	return rows, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if len(f.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no sheets")
	}

	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row, date1904 bool) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		if cell.Type() == xlsx.CellTypeNumeric && isDateFormat(cell.GetNumberFormat()) {
			if t, err := cell.GetTime(date1904); err == nil {
				cells[j] = t.Format(ISODate)
				continue
			}
		}
		cells[j] = cell.String()
	}
	return cells
}

// isDateFormat reports whether a number format renders a date. Bracketed
// sections ("[Red]", "[$-409]") and quoted literals are ignored.
func isDateFormat(format string) bool {
	f := strings.ToLower(format)
	if f == "" || f == "general" || f == "@" {
		return false
	}
	var b strings.Builder
	inBracket, inQuote := false, false
	for _, r := range f {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case !inBracket:
			b.WriteRune(r)
		}
	}
	clean := b.String()
	return strings.ContainsAny(clean, "dy") || strings.Contains(clean, "m/") || strings.Contains(clean, "mmm")
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
