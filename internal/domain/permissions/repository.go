package permissions

import (
	"context"

	"tiendapos/internal/core/id"
)

// Repository persists the per-tenant role→capability matrix.
type Repository interface {
	// GetMatrix returns the stored matrix for the tenant.
	// An unconfigured tenant yields an empty matrix, not an error.
	GetMatrix(ctx context.Context, tenantID id.ID) (Matrix, error)

	// SaveMatrix replaces the stored matrix for the tenant.
	SaveMatrix(ctx context.Context, tenantID id.ID, matrix Matrix) error
}
