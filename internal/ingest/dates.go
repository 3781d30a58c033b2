package ingest

import (
	"strings"
	"time"

	"github.com/sells-group/dnc-processor/internal/source"
)

var isoLayouts = []string{
	source.ISODate,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
}

var dayFirstLayouts = []string{
	"02/01/2006", "2/1/2006", "02/01/06", "2/1/06",
	"02-01-2006", "2-1-2006", "02.01.2006",
	"02/01/2006 15:04", "02/01/2006 15:04:05",
}

var monthFirstLayouts = []string{
	"01/02/2006", "1/2/2006", "01/02/06", "1/2/06",
	"01-02-2006", "1-2-2006",
	"01/02/2006 15:04", "01/02/2006 15:04:05",
}

var namedLayouts = []string{
	"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006", "02-Jan-2006", "02-Jan-06",
}

// parseSaleDate reads a sale date cell. ISO forms are tried first; numeric
// forms are read day first for spreadsheets and month first for delimited
// text. ok is false for a value that could not be read; a blank cell is
// (nil, true).
func parseSaleDate(raw string, dayFirst bool) (date *time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}

	numeric := monthFirstLayouts
	if dayFirst {
		numeric = dayFirstLayouts
	}
	for _, group := range [][]string{isoLayouts, numeric, namedLayouts} {
		for _, layout := range group {
			if d, err := time.Parse(layout, raw); err == nil {
				d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
				return &d, true
			}
		}
	}
	return nil, false
}
