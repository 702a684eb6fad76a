package tenantcfg

import (
	"context"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/internal/domain/permissions"
	"tiendapos/pkg/logger"
)

// Store extends Provider with write access to tenant settings.
type Store interface {
	Provider
	Save(ctx context.Context, tenantID id.ID, settings Settings) error
}

// Service gates settings access behind the settings capabilities.
type Service struct {
	store Store
	perms *permissions.Service
}

// NewService creates a new settings service.
func NewService(store Store, perms *permissions.Service) *Service {
	return &Service{store: store, perms: perms}
}

// Get returns the tenant settings, falling back to defaults.
func (s *Service) Get(ctx context.Context, actor permissions.Actor) (Settings, error) {
	if err := s.perms.Require(ctx, actor, permissions.CapAccessSettings); err != nil {
		return Settings{}, err
	}
	return s.store.Get(ctx, actor.TenantID)
}

// Update replaces the tenant settings.
func (s *Service) Update(ctx context.Context, actor permissions.Actor, settings Settings) error {
	if err := s.perms.Require(ctx, actor, permissions.CapChangeGeneralSettings); err != nil {
		return err
	}

	if settings.ExchangeRate.IsNegative() {
		return apperror.NewValidation("exchange rate cannot be negative").
			WithDetail("field", "exchangeRate")
	}
	if settings.LowStockThreshold.IsNegative() {
		return apperror.NewValidation("low stock threshold cannot be negative").
			WithDetail("field", "lowStockThreshold")
	}

	if err := s.store.Save(ctx, actor.TenantID, settings); err != nil {
		return err
	}

	logger.Info(ctx, "tenant settings updated",
		"exchange_rate", settings.ExchangeRate,
		"low_stock_threshold", settings.LowStockThreshold,
	)
	return nil
}
