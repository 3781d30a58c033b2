// Package merge collapses rows that share a phone number into one canonical
// record per number.
package merge

import (
	"sort"
	"strings"

	"github.com/sells-group/dnc-processor/internal/model"
)

// CommoditySeparator joins labels in a combined commodity string.
const CommoditySeparator = " and "

// CombineCommodities deduplicates labels, sorts them and joins them with
// CommoditySeparator. Blank labels are ignored.
func CombineCommodities(labels []string) string {
	seen := make(map[string]struct{}, len(labels))
	uniq := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		uniq = append(uniq, l)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, CommoditySeparator)
}

// Commodity merges an incoming combined label into the stored one.
// A stored label that already contains incoming is kept as is, the sentinel
// label, or an empty one, is replaced, and anything else gets incoming
// appended. The containment test is a raw substring match, so "GAS" is
// considered present in "GASOLINE".
func Commodity(existing, incoming string) string {
	switch {
	case incoming == "":
		return existing
	case existing == "":
		return incoming
	case strings.Contains(existing, incoming):
		return existing
	case existing == model.UnknownCommodity:
		return incoming
	default:
		return existing + CommoditySeparator + incoming
	}
}
