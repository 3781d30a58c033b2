// Package model defines the record kinds loaded by the ingestion pipeline.
package model

import "time"

// UnknownJurisdiction is stored when no jurisdiction code can be resolved.
const UnknownJurisdiction = "UNKNOWN"

// UnknownCommodity replaces blank commodity labels in suppression sources.
const UnknownCommodity = "UNKNOWN COMMODITY. CONTACT ADMIN"

// RegistryRecord is a do-not-call entry. The number is unique; the first
// write wins.
type RegistryRecord struct {
	Number       int64     `json:"number"`
	Jurisdiction string    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
}

// SuppressionRow is one parsed line of a suppression source, before merging.
type SuppressionRow struct {
	Number    int64
	Commodity string
}

// SuppressionRecord is the canonical suppression entry for a number. Commodity
// holds every label joined with " and ".
type SuppressionRecord struct {
	Number    int64     `json:"number"`
	Commodity string    `json:"commodity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SalesRow is one parsed sales transaction, before merging.
type SalesRow struct {
	Primary   int64
	Alternate *int64
	SaleDate  *time.Time
	Provider  string
	Commodity string
	Comments  *string
}

// SalesRecord is the canonical sales entry for a primary number.
type SalesRecord struct {
	PrimaryNumber   int64      `json:"primary_number"`
	SaleDate        *time.Time `json:"sale_date,omitempty"`
	AlternateNumber *int64     `json:"alternate_number,omitempty"`
	Provider        string     `json:"provider"`
	Commodity       string     `json:"commodity"`
	Comments        *string    `json:"comments,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
