package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tiendapos/internal/core/id"
	"tiendapos/internal/domain/tenantcfg"
)

// Compile-time check that SettingsRepo implements tenantcfg.Store.
var _ tenantcfg.Store = (*SettingsRepo)(nil)

// SettingsRepo reads and writes per-tenant operational settings. A tenant
// without a row gets the defaults.
type SettingsRepo struct {
	txm *TxManager
}

// NewSettingsRepo creates a new tenant settings repository.
func NewSettingsRepo(txm *TxManager) *SettingsRepo {
	return &SettingsRepo{txm: txm}
}

func (r *SettingsRepo) Get(ctx context.Context, tenantID id.ID) (tenantcfg.Settings, error) {
	var settings tenantcfg.Settings
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		"SELECT exchange_rate, low_stock_threshold FROM tenant_settings WHERE tenant_id = $1", tenantID,
	).Scan(&settings.ExchangeRate, &settings.LowStockThreshold)
	if errors.Is(err, pgx.ErrNoRows) {
		return tenantcfg.DefaultSettings(), nil
	}
	if err != nil {
		return tenantcfg.Settings{}, fmt.Errorf("get tenant settings: %w", err)
	}
	return settings, nil
}

// Save upserts the tenant settings row.
func (r *SettingsRepo) Save(ctx context.Context, tenantID id.ID, settings tenantcfg.Settings) error {
	_, err := r.txm.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO tenant_settings (tenant_id, exchange_rate, low_stock_threshold, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (tenant_id)
		DO UPDATE SET exchange_rate = EXCLUDED.exchange_rate,
		              low_stock_threshold = EXCLUDED.low_stock_threshold,
		              updated_at = now()`,
		tenantID, settings.ExchangeRate, settings.LowStockThreshold,
	)
	if err != nil {
		return fmt.Errorf("save tenant settings: %w", err)
	}
	return nil
}
