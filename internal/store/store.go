// Package store owns the three destination tables: schema bootstrap, the
// per-batch write policies used by the writer, and the operator queries.
package store

import "github.com/sells-group/dnc-processor/internal/model"

// Destination tables.
const (
	TableRegistry    = "dnc_records"
	TableSuppression = "suppression_records"
	TableSales       = "sales_records"
)

// Tables lists every destination table in display order.
var Tables = []string{TableRegistry, TableSuppression, TableSales}

var (
	registryColumns    = []string{"number", "state", "created_at"}
	suppressionColumns = []string{"number", "commodity", "updated_at"}
	salesColumns       = []string{
		"primary_number", "sale_date", "alternate_number",
		"provider", "commodity", "comments", "updated_at",
	}
)

// Stats holds row counts for the destination tables.
type Stats struct {
	Tables         map[string]int64 `json:"tables" yaml:"tables"`
	ByJurisdiction []StateCount     `json:"by_jurisdiction" yaml:"by_jurisdiction"`
}

// StateCount is the number of registry records for one jurisdiction.
type StateCount struct {
	State string `json:"state" yaml:"state"`
	Count int64  `json:"count" yaml:"count"`
}

// LookupResult collects every record stored for one number.
type LookupResult struct {
	Number      int64                    `json:"number"`
	Registry    *model.RegistryRecord    `json:"registry,omitempty"`
	Suppression *model.SuppressionRecord `json:"suppression,omitempty"`
	Sales       []model.SalesRecord      `json:"sales,omitempty"`
}

// Found reports whether any table matched.
func (r LookupResult) Found() bool {
	return r.Registry != nil || r.Suppression != nil || len(r.Sales) > 0
}
