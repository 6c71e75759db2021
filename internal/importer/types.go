// Package importer implements the CSV-to-relational import pipeline:
// feed retrieval, mapping-driven CSV reading, reconciliation by SKU,
// type coercion with per-field fallback policies, business-rule filtering,
// price validation and an atomic truncate-and-reload into PostgreSQL.
// It also serves the read path (single-SKU lookups over the loaded tables).
package importer

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Raw field names shared by the feed mappings and the transform stage.
// All raw values are strings; coercion happens later.
const (
	FieldSKU          = "sku"
	FieldName         = "name"
	FieldEAN          = "ean"
	FieldProducerName = "producer_name"
	FieldCategory     = "category"
	FieldIsWire       = "is_wire"
	FieldShipping     = "shipping"
	FieldAvailable    = "available"
	FieldDefaultImage = "default_image"
	FieldUnit         = "unit"
	FieldQty          = "qty"
	FieldShippingCost = "shipping_cost"
	FieldNetPrice     = "net_price"
)

// RawRow is one unvalidated CSV row, keyed by the mapping's field names.
// Absent or garbled values are tolerated here.
type RawRow map[string]string

// Product is the canonical persisted product record.
type Product struct {
	SKU          string
	Name         string
	EAN          string
	Manufacturer string
	Category     string
	ImageURL     string
}

// Inventory is the canonical persisted stock record. Qty and ShippingCost
// are nullable: a failed parse stores SQL NULL, never an error.
type Inventory struct {
	SKU          string
	Qty          pgtype.Int4
	ShippingCost pgtype.Numeric
	Unit         string
}

// Price is the canonical persisted price record.
type Price struct {
	SKU      string
	NetPrice pgtype.Numeric
}

// ProductView is the denormalized join result for one SKU. It is built on
// lookup only, never persisted. Nil pointers mean the SKU had no matching
// inventory or price row.
type ProductView struct {
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	EAN          string  `json:"ean"`
	Manufacturer string  `json:"manufacturer"`
	Category     string  `json:"category"`
	ImageURL     string  `json:"imageUrl"`
	Qty          *int32  `json:"qty"`
	ShippingCost *string `json:"shippingCost"`
	Unit         *string `json:"unit"`
	NetPrice     *string `json:"netPrice"`
}

// SourceDiagnostics summarizes reconciliation for one feed. The reconciler
// produces these as data; formatting and logging are the caller's job.
type SourceDiagnostics struct {
	Source        string   `json:"source"`
	Total         int      `json:"total"`
	Kept          int      `json:"kept"`
	MissingKey    int      `json:"missingKey"`
	DuplicateKeys []string `json:"duplicateKeys,omitempty"`
}

// RejectedPrice identifies one price record excluded by validation.
type RejectedPrice struct {
	SKU      string `json:"sku"`
	NetPrice string `json:"netPrice"` // empty when the price failed to parse
}

// RejectionReport lists rejected prices. Sample is capped at
// RejectionSampleLimit entries; Total always carries the full count.
type RejectionReport struct {
	Total  int             `json:"total"`
	Sample []RejectedPrice `json:"sample,omitempty"`
}

// ImportSummary is the diagnostic result of one successful import run.
type ImportSummary struct {
	ImportID         string            `json:"importId"`
	Products         SourceDiagnostics `json:"products"`
	Inventory        SourceDiagnostics `json:"inventory"`
	Prices           SourceDiagnostics `json:"prices"`
	ProductsImported int               `json:"productsImported"`
	ProductsFiltered int               `json:"productsFiltered"`
	InventoryLoaded  int               `json:"inventoryLoaded"`
	PricesLoaded     int               `json:"pricesLoaded"`
	RejectedPrices   RejectionReport   `json:"rejectedPrices"`
	DurationMs       int64             `json:"durationMs"`
}
