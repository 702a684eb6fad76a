// Package reports provides read-only aggregation over the sales log and the
// current catalog snapshot. It never mutates either.
package reports

import (
	"tiendapos/internal/core/types"
	"tiendapos/internal/domain/sales"
)

// Kind selects the report variant.
type Kind string

const (
	// KindDaily filters by exact calendar sale date.
	KindDaily Kind = "daily"

	// KindDailyProducts groups sold items by product code over a date range.
	KindDailyProducts Kind = "daily_products"

	// KindWeekly filters by timestamp within the current ISO week
	// (Monday 00:00 UTC through the following Monday, exclusive).
	KindWeekly Kind = "weekly"

	// KindAnnual filters by timestamp year (UTC).
	KindAnnual Kind = "annual"

	// KindRange filters by inclusive sale-date range.
	KindRange Kind = "range"

	// KindProfit is KindRange plus snapshot-based profit totals.
	KindProfit Kind = "profit"
)

// IsValid reports whether k is a known report kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindDaily, KindDailyProducts, KindWeekly, KindAnnual, KindRange, KindProfit:
		return true
	}
	return false
}

// Params carries the report inputs. Dates use the fixed sale-date format.
type Params struct {
	// Date selects the day for KindDaily.
	Date string `json:"date,omitempty"`

	// StartDate/EndDate bound KindDailyProducts, KindRange, and KindProfit
	// (inclusive on both ends).
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// SoldProductTotal is one row of the grouped sold-products view.
type SoldProductTotal struct {
	ProductCode  string         `json:"productCode"`
	Description  string         `json:"description"`
	QuantitySold types.Quantity `json:"quantitySold"`
}

// StockLine is one row of the current-stock view.
type StockLine struct {
	ProductCode string         `json:"productCode"`
	Description string         `json:"description"`
	Quantity    types.Quantity `json:"quantity"`
	UnitType    string         `json:"unitType"`
	Category    string         `json:"category"`

	// Valuation is quantity × current reference price.
	Valuation types.Money `json:"valuation"`
}

// Result is a fully materialized report.
type Result struct {
	Kind Kind `json:"kind"`

	// Sales holds the filtered records (empty for KindDailyProducts).
	Sales []*sales.SaleRecord `json:"sales,omitempty"`

	// Totals over the filtered records.
	TotalRef       types.Money `json:"totalRef"`
	TotalSecondary types.Money `json:"totalSecondary"`

	// Profit totals, populated for KindProfit only. Computed strictly
	// from sale-item snapshots, never from live products.
	ProfitRef       types.Money `json:"profitRef,omitempty"`
	ProfitSecondary types.Money `json:"profitSecondary,omitempty"`

	// SoldProducts is the grouped view for KindDailyProducts.
	SoldProducts []SoldProductTotal `json:"soldProducts,omitempty"`

	// Stock is the current catalog snapshot with valuation, carried by
	// the non-profit, non-grouped kinds.
	Stock []StockLine `json:"stock,omitempty"`
}
