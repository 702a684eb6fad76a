package catalog

import (
	"context"

	"tiendapos/internal/core/id"
)

// Repository is the persistence contract for the stock ledger.
// All methods are scoped to a single tenant; cross-tenant access is invalid.
type Repository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product.
	GetByID(ctx context.Context, tenantID, productID id.ID) (*Product, error)

	// GetForUpdate retrieves a product and locks it against concurrent
	// writers until the surrounding transaction ends. Must be called
	// inside a transaction.
	GetForUpdate(ctx context.Context, tenantID, productID id.ID) (*Product, error)

	// Update persists a modified product with optimistic locking on its
	// version. Returns CONCURRENT_MODIFICATION when the version moved.
	Update(ctx context.Context, product *Product) error

	// Delete removes a product unconditionally. Historical sale records
	// that reference it by snapshot are not touched.
	Delete(ctx context.Context, tenantID, productID id.ID) error

	// ExistsByCode reports whether another product in the tenant already
	// uses the code. excludeID skips the product being edited.
	ExistsByCode(ctx context.Context, tenantID id.ID, code string, excludeID id.ID) (bool, error)

	// List returns a snapshot of products matching the filter.
	List(ctx context.Context, tenantID id.ID, filter Filter) ([]*Product, error)
}
