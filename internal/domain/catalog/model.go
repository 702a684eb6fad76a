// Package catalog provides the per-tenant stock ledger: the authoritative
// collection of products, their quantity on hand, and their pricing.
package catalog

import (
	"context"
	"strings"
	"time"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/internal/core/types"
)

// Product is a stock ledger entry. Quantity is the single source of truth for
// stock and is mutated only through the ledger's own operations, sale
// processing, and reversal.
type Product struct {
	ID       id.ID `db:"id" json:"id"`
	TenantID id.ID `db:"tenant_id" json:"tenantId"`

	// Code is unique within the tenant at all times.
	Code        string `db:"code" json:"productCode"`
	Description string `db:"description" json:"description"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`
	UnitType string         `db:"unit_type" json:"unitType"`
	Category string         `db:"category" json:"category"`

	// Reference currency prices and their secondary-currency counterparts.
	PriceRef               types.Money `db:"price_ref" json:"priceRef"`
	PriceSecondary         types.Money `db:"price_secondary" json:"priceSecondary"`
	PurchasePriceRef       types.Money `db:"purchase_price_ref" json:"purchasePriceRef"`
	PurchasePriceSecondary types.Money `db:"purchase_price_secondary" json:"purchasePriceSecondary"`

	// Version for optimistic locking (incremented on each update).
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates a Product from a creation spec.
func NewProduct(tenantID id.ID, spec ProductSpec) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:                     id.New(),
		TenantID:               tenantID,
		Code:                   spec.Code,
		Description:            spec.Description,
		Quantity:               spec.Quantity,
		UnitType:               spec.UnitType,
		Category:               spec.Category,
		PriceRef:               spec.PriceRef,
		PriceSecondary:         spec.PriceSecondary,
		PurchasePriceRef:       spec.PurchasePriceRef,
		PurchasePriceSecondary: spec.PurchasePriceSecondary,
		Version:                1,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// Validate checks the product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Code) == "" {
		return apperror.NewValidation("product code is required").
			WithDetail("field", "productCode")
	}
	if strings.TrimSpace(p.Description) == "" {
		return apperror.NewValidation("description is required").
			WithDetail("field", "description")
	}
	if strings.TrimSpace(p.UnitType) == "" {
		return apperror.NewValidation("unit type is required").
			WithDetail("field", "unitType")
	}
	if strings.TrimSpace(p.Category) == "" {
		return apperror.NewValidation("category is required").
			WithDetail("field", "category")
	}
	if p.Quantity.IsNegative() {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}
	for field, price := range map[string]types.Money{
		"priceRef":               p.PriceRef,
		"priceSecondary":         p.PriceSecondary,
		"purchasePriceRef":       p.PurchasePriceRef,
		"purchasePriceSecondary": p.PurchasePriceSecondary,
	} {
		if price.IsNegative() {
			return apperror.NewValidation("price cannot be negative").
				WithDetail("field", field)
		}
	}
	return nil
}

// ProductSpec carries the fields for product creation.
type ProductSpec struct {
	Code                   string         `json:"productCode"`
	Description            string         `json:"description"`
	Quantity               types.Quantity `json:"quantity"`
	UnitType               string         `json:"unitType"`
	Category               string         `json:"category"`
	PriceRef               types.Money    `json:"priceRef"`
	PriceSecondary         types.Money    `json:"priceSecondary"`
	PurchasePriceRef       types.Money    `json:"purchasePriceRef"`
	PurchasePriceSecondary types.Money    `json:"purchasePriceSecondary"`
}

// ProductPatch carries optional updates. Nil fields are left untouched.
type ProductPatch struct {
	Code                   *string         `json:"productCode,omitempty"`
	Description            *string         `json:"description,omitempty"`
	Quantity               *types.Quantity `json:"quantity,omitempty"`
	UnitType               *string         `json:"unitType,omitempty"`
	Category               *string         `json:"category,omitempty"`
	PriceRef               *types.Money    `json:"priceRef,omitempty"`
	PriceSecondary         *types.Money    `json:"priceSecondary,omitempty"`
	PurchasePriceRef       *types.Money    `json:"purchasePriceRef,omitempty"`
	PurchasePriceSecondary *types.Money    `json:"purchasePriceSecondary,omitempty"`
}

// Apply writes the non-nil patch fields onto the product.
func (p ProductPatch) Apply(product *Product) {
	if p.Code != nil {
		product.Code = *p.Code
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}
	if p.UnitType != nil {
		product.UnitType = *p.UnitType
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.PriceRef != nil {
		product.PriceRef = *p.PriceRef
	}
	if p.PriceSecondary != nil {
		product.PriceSecondary = *p.PriceSecondary
	}
	if p.PurchasePriceRef != nil {
		product.PurchasePriceRef = *p.PurchasePriceRef
	}
	if p.PurchasePriceSecondary != nil {
		product.PurchasePriceSecondary = *p.PurchasePriceSecondary
	}
}

// Filter describes catalog query criteria, combined with logical AND.
type Filter struct {
	// Search matches a case-insensitive substring of description or code.
	Search string

	// LowStockThreshold keeps products with quantity ≤ threshold.
	LowStockThreshold *types.Quantity

	// Category keeps products with an exact category match.
	Category string
}
