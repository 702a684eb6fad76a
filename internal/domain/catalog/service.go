package catalog

import (
	"context"
	"fmt"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/internal/core/tx"
	"tiendapos/internal/core/types"
	"tiendapos/internal/domain/permissions"
	"tiendapos/internal/domain/tenantcfg"
	"tiendapos/pkg/logger"
)

// Service provides business operations for the stock ledger.
// All mutating operations require the manage-warehouse capability.
type Service struct {
	repo      Repository
	perms     *permissions.Service
	settings  tenantcfg.Provider
	txManager tx.Manager
}

// NewService creates a new catalog service.
func NewService(repo Repository, perms *permissions.Service, settings tenantcfg.Provider, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		perms:     perms,
		settings:  settings,
		txManager: txManager,
	}
}

// Create inserts a new product. Fails with DUPLICATE_CODE when the product
// code is already taken within the tenant.
func (s *Service) Create(ctx context.Context, actor permissions.Actor, spec ProductSpec) (*Product, error) {
	if err := s.perms.Require(ctx, actor, permissions.CapManageWarehouse); err != nil {
		return nil, err
	}

	product := NewProduct(actor.TenantID, spec)
	err := s.fillSecondaryPrices(ctx, actor.TenantID, product,
		spec.PriceSecondary.IsZero(), spec.PurchasePriceSecondary.IsZero())
	if err != nil {
		return nil, err
	}
	if err := product.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.repo.ExistsByCode(ctx, actor.TenantID, product.Code, id.Nil())
		if err != nil {
			return fmt.Errorf("check code uniqueness: %w", err)
		}
		if exists {
			return apperror.NewDuplicateCode(product.Code)
		}
		return s.repo.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "product created",
		"product_id", product.ID,
		"code", product.Code,
	)
	return product, nil
}

// Update applies a patch to an existing product, re-checking code uniqueness
// and non-negativity for the patched fields.
func (s *Service) Update(ctx context.Context, actor permissions.Actor, productID id.ID, patch ProductPatch) (*Product, error) {
	if err := s.perms.Require(ctx, actor, permissions.CapManageWarehouse); err != nil {
		return nil, err
	}

	var updated *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		product, err := s.repo.GetForUpdate(ctx, actor.TenantID, productID)
		if err != nil {
			return err
		}

		patch.Apply(product)
		err = s.fillSecondaryPrices(ctx, actor.TenantID, product,
			patch.PriceRef != nil && patch.PriceSecondary == nil,
			patch.PurchasePriceRef != nil && patch.PurchasePriceSecondary == nil)
		if err != nil {
			return err
		}
		if err := product.Validate(ctx); err != nil {
			return err
		}

		if patch.Code != nil {
			exists, err := s.repo.ExistsByCode(ctx, actor.TenantID, product.Code, product.ID)
			if err != nil {
				return fmt.Errorf("check code uniqueness: %w", err)
			}
			if exists {
				return apperror.NewDuplicateCode(product.Code)
			}
		}

		if err := s.repo.Update(ctx, product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "product updated", "product_id", productID)
	return updated, nil
}

// fillSecondaryPrices derives secondary-currency prices from the tenant
// exchange rate for the flagged fields, the same auto-fill the product form
// applies when only the reference price is entered. A zero rate derives zero.
func (s *Service) fillSecondaryPrices(ctx context.Context, tenantID id.ID, product *Product, fillSale, fillPurchase bool) error {
	if !fillSale && !fillPurchase {
		return nil
	}

	settings, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("load tenant settings: %w", err)
	}
	if fillSale {
		product.PriceSecondary = types.SecondaryFromReference(product.PriceRef, settings.ExchangeRate)
	}
	if fillPurchase {
		product.PurchasePriceSecondary = types.SecondaryFromReference(product.PurchasePriceRef, settings.ExchangeRate)
	}
	return nil
}

// Delete removes a product. Sale records that snapshotted it stay intact.
func (s *Service) Delete(ctx context.Context, actor permissions.Actor, productID id.ID) error {
	if err := s.perms.Require(ctx, actor, permissions.CapManageWarehouse); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, actor.TenantID, productID); err != nil {
		return err
	}

	logger.Info(ctx, "product deleted", "product_id", productID)
	return nil
}

// GetByID retrieves a single product.
func (s *Service) GetByID(ctx context.Context, actor permissions.Actor, productID id.ID) (*Product, error) {
	if err := s.perms.Require(ctx, actor, permissions.CapManageWarehouse); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, actor.TenantID, productID)
}

// Query returns a snapshot of products matching the filter.
func (s *Service) Query(ctx context.Context, actor permissions.Actor, filter Filter) ([]*Product, error) {
	if err := s.perms.Require(ctx, actor, permissions.CapManageWarehouse); err != nil {
		return nil, err
	}

	if filter.LowStockThreshold != nil && filter.LowStockThreshold.IsNegative() {
		return nil, apperror.NewValidation("low stock threshold cannot be negative").
			WithDetail("field", "lowStockThreshold")
	}

	return s.repo.List(ctx, actor.TenantID, filter)
}
