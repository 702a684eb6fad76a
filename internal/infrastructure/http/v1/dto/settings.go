package dto

import (
	"tiendapos/internal/core/types"
	"tiendapos/internal/domain/tenantcfg"
)

// SettingsRequest carries a full replacement of tenant settings.
type SettingsRequest struct {
	ExchangeRate      types.Money    `json:"exchangeRate"`
	LowStockThreshold types.Quantity `json:"lowStockThreshold"`
}

// ToSettings converts the request to domain settings.
func (r SettingsRequest) ToSettings() tenantcfg.Settings {
	return tenantcfg.Settings{
		ExchangeRate:      r.ExchangeRate,
		LowStockThreshold: r.LowStockThreshold,
	}
}
