package merge

import (
	"sort"
	"strings"

	"github.com/sells-group/dnc-processor/internal/model"
)

// AnnotationDateLayout formats later sale dates inside the provider field.
const AnnotationDateLayout = "02/01/06"

const notAvailable = "N/A"

// Sales groups transactions by primary number. Within a group the earliest
// dated transaction is canonical; undated rows sort after dated ones and ties
// keep file order. Every later transaction is appended to the canonical
// provider as " (Provider: dd/mm/yy)". The result is ordered by primary
// number.
func Sales(rows []model.SalesRow) []model.SalesRecord {
	groups := make(map[int64][]model.SalesRow, len(rows))
	var order []int64
	for _, r := range rows {
		if _, ok := groups[r.Primary]; !ok {
			order = append(order, r.Primary)
		}
		groups[r.Primary] = append(groups[r.Primary], r)
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := make([]model.SalesRecord, 0, len(order))
	for _, n := range order {
		out = append(out, canonicalSale(groups[n]))
	}
	return out
}

func canonicalSale(group []model.SalesRow) model.SalesRecord {
	sort.SliceStable(group, func(i, j int) bool {
		a, b := group[i].SaleDate, group[j].SaleDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})

	first := group[0]
	var provider strings.Builder
	provider.WriteString(first.Provider)
	for _, r := range group[1:] {
		name := r.Provider
		if name == "" {
			name = notAvailable
		}
		date := notAvailable
		if r.SaleDate != nil {
			date = r.SaleDate.Format(AnnotationDateLayout)
		}
		provider.WriteString(" (")
		provider.WriteString(name)
		provider.WriteString(": ")
		provider.WriteString(date)
		provider.WriteString(")")
	}

	return model.SalesRecord{
		PrimaryNumber:   first.Primary,
		SaleDate:        first.SaleDate,
		AlternateNumber: first.Alternate,
		Provider:        provider.String(),
		Commodity:       first.Commodity,
		Comments:        first.Comments,
	}
}
