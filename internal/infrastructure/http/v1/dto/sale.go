package dto

import (
	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/internal/core/types"
	"tiendapos/internal/domain/sales"
)

// SaleLineRequest is one requested cart line.
type SaleLineRequest struct {
	ProductID    string         `json:"productId" binding:"required"`
	QuantitySold types.Quantity `json:"quantitySold"`
}

// CompleteSaleRequest carries a cart to be processed into a sale.
type CompleteSaleRequest struct {
	Items []SaleLineRequest `json:"items" binding:"required"`

	// SaleDate books the sale under a calendar date; empty means today.
	SaleDate string `json:"saleDate"`
}

// ToCart converts the request lines to domain cart lines.
func (r CompleteSaleRequest) ToCart() ([]sales.CartLine, error) {
	cart := make([]sales.CartLine, 0, len(r.Items))
	for i, line := range r.Items {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("productId", line.ProductID).
				WithDetail("lineNo", i+1)
		}
		cart = append(cart, sales.CartLine{
			ProductID:    productID,
			QuantitySold: line.QuantitySold,
		})
	}
	return cart, nil
}
