// Package sales provides the sale transaction and reversal processors and the
// append-style sales log they maintain.
package sales

import (
	"time"

	"tiendapos/internal/core/id"
	"tiendapos/internal/core/types"
	"tiendapos/internal/domain/catalog"
	"tiendapos/internal/domain/permissions"
)

// SaleDateFormat is the fixed-width calendar date format used by sale records
// and report range filters.
const SaleDateFormat = "2006-01-02"

// SaleItem is an immutable line-item snapshot. Every value is copied from the
// product at sale time so the record stays meaningful after the product is
// edited or deleted.
type SaleItem struct {
	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductCode string `db:"product_code" json:"productCode"`
	Description string `db:"description" json:"description"`

	QuantitySold types.Quantity `db:"quantity_sold" json:"quantitySold"`
	UnitType     string         `db:"unit_type" json:"unitType"`

	PriceAtSaleRef               types.Money `db:"price_at_sale_ref" json:"priceAtSaleRef"`
	PriceAtSaleSecondary         types.Money `db:"price_at_sale_secondary" json:"priceAtSaleSecondary"`
	PurchasePriceAtSaleRef       types.Money `db:"purchase_price_at_sale_ref" json:"purchasePriceAtSaleRef"`
	PurchasePriceAtSaleSecondary types.Money `db:"purchase_price_at_sale_secondary" json:"purchasePriceAtSaleSecondary"`

	ItemTotalRef       types.Money `db:"item_total_ref" json:"itemTotalRef"`
	ItemTotalSecondary types.Money `db:"item_total_secondary" json:"itemTotalSecondary"`
}

// Margin returns the snapshot profit for the line in the reference currency.
func (i SaleItem) Margin() types.Money {
	return i.PriceAtSaleRef.Sub(i.PurchasePriceAtSaleRef).Mul(i.QuantitySold)
}

// MarginSecondary returns the snapshot profit in the secondary currency.
func (i SaleItem) MarginSecondary() types.Money {
	return i.PriceAtSaleSecondary.Sub(i.PurchasePriceAtSaleSecondary).Mul(i.QuantitySold)
}

// SaleRecord is a completed sale. Created only by the transaction processor,
// deleted only by the reversal processor, never otherwise mutated.
type SaleRecord struct {
	ID       id.ID `db:"id" json:"id"`
	TenantID id.ID `db:"tenant_id" json:"tenantId"`

	Items []SaleItem `db:"-" json:"items"`

	// Timestamp is the completion instant; SaleDate is the calendar date
	// the sale is booked under (they can differ for backdated sales).
	Timestamp time.Time `db:"ts" json:"timestamp"`
	SaleDate  string    `db:"sale_date" json:"saleDate"`

	TotalRef       types.Money `db:"total_ref" json:"totalRef"`
	TotalSecondary types.Money `db:"total_secondary" json:"totalSecondary"`

	SoldBy     id.ID            `db:"sold_by" json:"soldBy"`
	SoldByRole permissions.Role `db:"sold_by_role" json:"soldByRole"`

	// ExchangeRateAtSale freezes the tenant rate for historical accuracy.
	ExchangeRateAtSale types.Money `db:"exchange_rate_at_sale" json:"exchangeRateAtSale"`
}

// CartLine is one requested product/quantity pair.
type CartLine struct {
	ProductID    id.ID          `json:"productId"`
	QuantitySold types.Quantity `json:"quantitySold"`
}

// newSaleItem snapshots a product's current state for the given quantity.
func newSaleItem(product *catalog.Product, quantity types.Quantity) SaleItem {
	return SaleItem{
		ProductID:                    product.ID,
		ProductCode:                  product.Code,
		Description:                  product.Description,
		QuantitySold:                 quantity,
		UnitType:                     product.UnitType,
		PriceAtSaleRef:               product.PriceRef,
		PriceAtSaleSecondary:         product.PriceSecondary,
		PurchasePriceAtSaleRef:       product.PurchasePriceRef,
		PurchasePriceAtSaleSecondary: product.PurchasePriceSecondary,
		ItemTotalRef:                 product.PriceRef.Mul(quantity),
		ItemTotalSecondary:           product.PriceSecondary.Mul(quantity),
	}
}
