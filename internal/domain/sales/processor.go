package sales

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/internal/core/tx"
	"tiendapos/internal/core/types"
	"tiendapos/internal/domain/catalog"
	"tiendapos/internal/domain/permissions"
	"tiendapos/internal/domain/tenantcfg"
	"tiendapos/pkg/logger"
)

// Service is the sale transaction and reversal processor. It is the only
// component allowed to create or delete sale records, and it mutates product
// quantities exclusively through locked read-modify-write cycles inside a
// single transaction.
type Service struct {
	products  catalog.Repository
	repo      Repository
	perms     *permissions.Service
	settings  tenantcfg.Provider
	txManager tx.Manager

	now func() time.Time
}

// NewService creates a new sales service.
func NewService(
	products catalog.Repository,
	repo Repository,
	perms *permissions.Service,
	settings tenantcfg.Provider,
	txManager tx.Manager,
) *Service {
	return &Service{
		products:  products,
		repo:      repo,
		perms:     perms,
		settings:  settings,
		txManager: txManager,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Complete processes a cart into an immutable sale record, decrementing the
// stock of every line atomically. Either all lines commit together with the
// new record, or none do.
//
// The quantity check and the decrement happen against the locked,
// authoritative product row; a stale quantity read before the transaction is
// never the basis for the insufficient-stock decision.
func (s *Service) Complete(ctx context.Context, actor permissions.Actor, cart []CartLine, saleDate string) (*SaleRecord, error) {
	if err := s.perms.Require(ctx, actor, permissions.CapManageSales); err != nil {
		return nil, err
	}

	lines, err := normalizeCart(cart)
	if err != nil {
		return nil, err
	}

	if saleDate == "" {
		saleDate = s.now().Format(SaleDateFormat)
	} else if _, err := time.Parse(SaleDateFormat, saleDate); err != nil {
		return nil, apperror.NewValidation("sale date must be formatted YYYY-MM-DD").
			WithDetail("saleDate", saleDate)
	}

	settings, err := s.settings.Get(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("get tenant settings: %w", err)
	}

	record := &SaleRecord{
		ID:                 id.New(),
		TenantID:           actor.TenantID,
		Items:              make([]SaleItem, 0, len(lines)),
		Timestamp:          s.now(),
		SaleDate:           saleDate,
		SoldBy:             actor.ID,
		SoldByRole:         actor.Role,
		ExchangeRateAtSale: settings.ExchangeRate,
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		totalRef := types.Zero()
		totalSecondary := types.Zero()

		for _, line := range lines {
			product, err := s.products.GetForUpdate(ctx, actor.TenantID, line.ProductID)
			if err != nil {
				return err
			}

			if product.Quantity.LessThan(line.QuantitySold) {
				return apperror.NewInsufficientStock(
					product.ID.String(),
					line.QuantitySold.String(),
					product.Quantity.String(),
				).WithDetail("productCode", product.Code)
			}

			item := newSaleItem(product, line.QuantitySold)
			record.Items = append(record.Items, item)
			totalRef = totalRef.Add(item.ItemTotalRef)
			totalSecondary = totalSecondary.Add(item.ItemTotalSecondary)

			product.Quantity = product.Quantity.Sub(line.QuantitySold)
			if err := s.products.Update(ctx, product); err != nil {
				return err
			}
		}

		record.TotalRef = types.Round2(totalRef)
		record.TotalSecondary = types.Round2(totalSecondary)

		return s.repo.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale completed",
		"sale_id", record.ID,
		"items", len(record.Items),
		"total_ref", record.TotalRef,
	)
	return record, nil
}

// Reverse deletes a sale record and restores the stock it consumed, as one
// atomic unit. Reversing a sale that no longer exists returns NOT_FOUND so a
// double reversal can never restore stock twice.
//
// Items whose product was deleted since the sale are skipped with a warning;
// the remaining stock is still restored and the record removed.
func (s *Service) Reverse(ctx context.Context, actor permissions.Actor, saleID id.ID) error {
	if err := s.perms.Require(ctx, actor, permissions.CapDeleteSales); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		record, err := s.repo.GetByID(ctx, actor.TenantID, saleID)
		if err != nil {
			return err
		}

		// Stable lock order across concurrent reversals and sales.
		items := make([]SaleItem, len(record.Items))
		copy(items, record.Items)
		sort.Slice(items, func(i, j int) bool {
			return items[i].ProductID.String() < items[j].ProductID.String()
		})

		for _, item := range items {
			product, err := s.products.GetForUpdate(ctx, actor.TenantID, item.ProductID)
			if err != nil {
				if apperror.IsNotFound(err) {
					logger.Warn(ctx, "reversal skipped deleted product",
						"sale_id", saleID,
						"product_id", item.ProductID,
						"quantity", item.QuantitySold,
					)
					continue
				}
				return err
			}

			product.Quantity = product.Quantity.Add(item.QuantitySold)
			if err := s.products.Update(ctx, product); err != nil {
				return err
			}
		}

		return s.repo.Delete(ctx, actor.TenantID, saleID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale reversed", "sale_id", saleID)
	return nil
}

// GetByID retrieves a single sale record.
func (s *Service) GetByID(ctx context.Context, actor permissions.Actor, saleID id.ID) (*SaleRecord, error) {
	if err := s.perms.Require(ctx, actor, permissions.CapManageSales); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, actor.TenantID, saleID)
}

// ListForDay returns the sales booked under the given calendar date, newest
// first. An empty date defaults to today.
func (s *Service) ListForDay(ctx context.Context, actor permissions.Actor, date string) ([]*SaleRecord, error) {
	if err := s.perms.Require(ctx, actor, permissions.CapManageSales); err != nil {
		return nil, err
	}

	if date == "" {
		date = s.now().Format(SaleDateFormat)
	} else if _, err := time.Parse(SaleDateFormat, date); err != nil {
		return nil, apperror.NewValidation("date must be formatted YYYY-MM-DD").
			WithDetail("date", date)
	}

	return s.repo.ListBySaleDateRange(ctx, actor.TenantID, date, date)
}

// normalizeCart validates the cart, merges duplicate product lines, and
// returns the lines sorted by product ID for a stable lock order.
func normalizeCart(cart []CartLine) ([]CartLine, error) {
	if len(cart) == 0 {
		return nil, apperror.NewValidation("cart must not be empty").
			WithDetail("field", "cart")
	}

	merged := make(map[id.ID]types.Quantity, len(cart))
	order := make([]id.ID, 0, len(cart))
	for i, line := range cart {
		if id.IsNil(line.ProductID) {
			return nil, apperror.NewValidation("product is required").
				WithDetail("field", "cart").
				WithDetail("lineNo", i+1)
		}
		if !line.QuantitySold.IsPositive() {
			return nil, apperror.NewValidation("quantity sold must be positive").
				WithDetail("field", "cart").
				WithDetail("lineNo", i+1)
		}
		if _, seen := merged[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		merged[line.ProductID] = merged[line.ProductID].Add(line.QuantitySold)
	}

	lines := make([]CartLine, 0, len(order))
	for _, productID := range order {
		lines = append(lines, CartLine{ProductID: productID, QuantitySold: merged[productID]})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})
	return lines, nil
}
