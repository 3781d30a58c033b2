// Package phone extracts and validates phone numbers from raw cell values.
package phone

import (
	"strconv"
	"strings"
)

// Minimum digit counts per target kind.
const (
	MinSuppressionDigits = 9
	MinRegistryDigits    = 10
	SalesDigits          = 10
)

// Reason explains why a raw value was rejected. The zero value means accepted.
type Reason string

const (
	ReasonEmpty    Reason = "empty"
	ReasonTooShort Reason = "too_short"
	ReasonOverflow Reason = "overflow"
)

// Digits returns only the ASCII digits of s. Spreadsheet cells that carry a
// numeric value rendered as a float ("5551234567.0") lose the fractional
// zeros first so they do not leak into the number.
func Digits(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i > 0 && strings.Trim(s[i+1:], "0") == "" && isAllDigits(s[:i]) {
		s = s[:i]
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// Normalize strips every non-digit from raw and accepts the result when it has
// at least minDigits digits and fits a BIGINT column.
func Normalize(raw string, minDigits int) (int64, Reason) {
	d := Digits(raw)
	if d == "" {
		return 0, ReasonEmpty
	}
	if len(d) < minDigits {
		return 0, ReasonTooShort
	}
	n, err := strconv.ParseInt(d, 10, 64)
	if err != nil {
		return 0, ReasonOverflow
	}
	return n, ""
}

// SplitSales reads a combined sales phone field: digits 1-10 are the primary
// number and, when at least 20 digits are present, digits 11-20 are the
// alternate. Anything past the 20th digit is ignored.
func SplitSales(raw string) (primary int64, alternate *int64, reason Reason) {
	d := Digits(raw)
	if d == "" {
		return 0, nil, ReasonEmpty
	}
	if len(d) < SalesDigits {
		return 0, nil, ReasonTooShort
	}
	primary, _ = strconv.ParseInt(d[:SalesDigits], 10, 64)
	if len(d) >= 2*SalesDigits {
		alt, _ := strconv.ParseInt(d[SalesDigits:2*SalesDigits], 10, 64)
		alternate = &alt
	}
	return primary, alternate, ""
}

// SalesNumber reads a single-number sales column. The first ten digits are
// kept; fewer than ten digits is a rejection.
func SalesNumber(raw string) (int64, Reason) {
	d := Digits(raw)
	if d == "" {
		return 0, ReasonEmpty
	}
	if len(d) < SalesDigits {
		return 0, ReasonTooShort
	}
	n, _ := strconv.ParseInt(d[:SalesDigits], 10, 64)
	return n, ""
}
