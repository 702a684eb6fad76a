package sales

import (
	"context"
	"time"

	"tiendapos/internal/core/id"
)

// Repository is the persistence contract for the sales log.
// The log is append/delete-only: records are never updated in place.
type Repository interface {
	// Create persists a sale record with all its items.
	Create(ctx context.Context, record *SaleRecord) error

	// GetByID retrieves a sale record with items.
	GetByID(ctx context.Context, tenantID, saleID id.ID) (*SaleRecord, error)

	// Delete removes a sale record and its items.
	// Returns NOT_FOUND when the record no longer exists.
	Delete(ctx context.Context, tenantID, saleID id.ID) error

	// ListBySaleDateRange returns records with from ≤ saleDate ≤ to
	// (inclusive, fixed-width calendar dates), newest first.
	ListBySaleDateRange(ctx context.Context, tenantID id.ID, from, to string) ([]*SaleRecord, error)

	// ListByTimestampRange returns records with from ≤ timestamp < to,
	// newest first.
	ListByTimestampRange(ctx context.Context, tenantID id.ID, from, to time.Time) ([]*SaleRecord, error)
}
