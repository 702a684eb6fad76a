package dto

import (
	"tiendapos/internal/core/types"
	"tiendapos/internal/domain/catalog"
)

// CreateProductRequest carries the fields for product creation.
type CreateProductRequest struct {
	Code                   string         `json:"productCode" binding:"required"`
	Description            string         `json:"description" binding:"required"`
	Quantity               types.Quantity `json:"quantity"`
	UnitType               string         `json:"unitType" binding:"required"`
	Category               string         `json:"category" binding:"required"`
	PriceRef               types.Money    `json:"priceRef"`
	PriceSecondary         types.Money    `json:"priceSecondary"`
	PurchasePriceRef       types.Money    `json:"purchasePriceRef"`
	PurchasePriceSecondary types.Money    `json:"purchasePriceSecondary"`
}

// ToSpec converts the request to a domain creation spec.
func (r CreateProductRequest) ToSpec() catalog.ProductSpec {
	return catalog.ProductSpec{
		Code:                   r.Code,
		Description:            r.Description,
		Quantity:               r.Quantity,
		UnitType:               r.UnitType,
		Category:               r.Category,
		PriceRef:               r.PriceRef,
		PriceSecondary:         r.PriceSecondary,
		PurchasePriceRef:       r.PurchasePriceRef,
		PurchasePriceSecondary: r.PurchasePriceSecondary,
	}
}

// UpdateProductRequest carries optional product updates.
// Absent fields are left untouched.
type UpdateProductRequest struct {
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

// ToPatch converts the request to a domain patch.
func (r UpdateProductRequest) ToPatch() catalog.ProductPatch {
	return catalog.ProductPatch{
		Code:                   r.Code,
		Description:            r.Description,
		Quantity:               r.Quantity,
		UnitType:               r.UnitType,
		Category:               r.Category,
		PriceRef:               r.PriceRef,
		PriceSecondary:         r.PriceSecondary,
		PurchasePriceRef:       r.PurchasePriceRef,
		PurchasePriceSecondary: r.PurchasePriceSecondary,
	}
}

// ListProductsQuery carries catalog filter query parameters.
type ListProductsQuery struct {
	// Search matches a case-insensitive substring of description or code.
	Search string `form:"search"`

	// LowStock keeps products at or below the tenant threshold.
	LowStock bool `form:"lowStock"`

	// Category keeps products with an exact category match.
	Category string `form:"category"`
}
