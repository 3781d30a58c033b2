// Package jurisdiction infers the two-letter jurisdiction code of a registry
// file from its name.
package jurisdiction

import (
	"path/filepath"
	"strings"

	"github.com/sells-group/dnc-processor/internal/model"
)

// Codes is the fixed lookup order. When a filename contains more than one
// code, the earliest code in this list wins.
var Codes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
	"DC",
}

// Valid reports whether code is one of Codes (case-insensitive).
func Valid(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Codes {
		if c == code {
			return true
		}
	}
	return false
}

// FromFilename resolves the jurisdiction encoded in path. Exact names
// ("TX.txt"), prefixes ("TX_list.txt") and suffixes ("list_TX.txt") are
// checked first; then any occurrence of a code inside the name. The
// extension is never scanned, so ".txt" does not read as TX.
// It returns model.UnknownJurisdiction and false when nothing matches.
func FromFilename(path string) (string, bool) {
	base := strings.ToUpper(filepath.Base(path))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	for _, c := range Codes {
		if stem == c || strings.HasPrefix(stem, c+"_") || strings.HasSuffix(stem, "_"+c) {
			return c, true
		}
	}
	for _, c := range Codes {
		if strings.Contains(stem, c) {
			return c, true
		}
	}
	return model.UnknownJurisdiction, false
}
