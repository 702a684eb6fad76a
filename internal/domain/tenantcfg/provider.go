// Package tenantcfg supplies per-tenant operational settings.
// The ledger core reads these; managing them belongs to the settings surface.
package tenantcfg

import (
	"context"

	"github.com/shopspring/decimal"

	"tiendapos/internal/core/id"
	"tiendapos/internal/core/types"
)

// DefaultLowStockThreshold applies when a tenant has not configured one.
var DefaultLowStockThreshold = decimal.NewFromInt(5)

// Settings holds the per-tenant configuration the core depends on.
type Settings struct {
	// ExchangeRate is the current secondary-units-per-reference-unit rate.
	// It is snapshotted onto each sale record at completion time.
	ExchangeRate types.Money `db:"exchange_rate" json:"exchangeRate"`

	// LowStockThreshold is the default replenishment flag threshold.
	LowStockThreshold types.Quantity `db:"low_stock_threshold" json:"lowStockThreshold"`
}

// Provider reads tenant settings. Implementations must treat an unconfigured
// tenant as having defaults, not as an error.
type Provider interface {
	Get(ctx context.Context, tenantID id.ID) (Settings, error)
}

// DefaultSettings returns the fallback configuration.
func DefaultSettings() Settings {
	return Settings{
		ExchangeRate:      decimal.Zero,
		LowStockThreshold: DefaultLowStockThreshold,
	}
}
