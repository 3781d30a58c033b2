package merge

import (
	"sort"

	"github.com/sells-group/dnc-processor/internal/model"
)

// Suppression groups rows by number and combines their commodity labels.
// The result is ordered by number.
func Suppression(rows []model.SuppressionRow) []model.SuppressionRecord {
	groups := make(map[int64][]string, len(rows))
	for _, r := range rows {
		groups[r.Number] = append(groups[r.Number], r.Commodity)
	}

	out := make([]model.SuppressionRecord, 0, len(groups))
	for n, labels := range groups {
		out = append(out, model.SuppressionRecord{
			Number:    n,
			Commodity: CombineCommodities(labels),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
