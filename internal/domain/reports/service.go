package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/tx"
	"tiendapos/internal/core/types"
	"tiendapos/internal/domain/catalog"
	"tiendapos/internal/domain/permissions"
	"tiendapos/internal/domain/sales"
)

// Service is the report aggregator. Pure reads; requires view-reports.
type Service struct {
	salesRepo   sales.Repository
	catalogRepo catalog.Repository
	perms       *permissions.Service
	txManager   tx.ReadOnlyManager

	now func() time.Time
}

// NewService creates a new reports service.
func NewService(salesRepo sales.Repository, catalogRepo catalog.Repository, perms *permissions.Service, txManager tx.ReadOnlyManager) *Service {
	return &Service{
		salesRepo:   salesRepo,
		catalogRepo: catalogRepo,
		perms:       perms,
		txManager:   txManager,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run materializes the requested report for the actor's tenant.
func (s *Service) Run(ctx context.Context, actor permissions.Actor, kind Kind, params Params) (*Result, error) {
	if err := s.perms.Require(ctx, actor, permissions.CapViewReports); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, apperror.NewValidation("unknown report kind").
			WithDetail("kind", string(kind))
	}

	// Non-profit, non-grouped kinds also carry the current-stock view.
	wantStock := kind != KindProfit && kind != KindDailyProducts

	// All reads happen in one read-only pass so the sale records, their items,
	// and the stock view come from a single snapshot. Without it a concurrent
	// reversal can delete a record's items between the two statements and the
	// record would aggregate with a total but no margin.
	var (
		filtered []*sales.SaleRecord
		stock    []StockLine
	)
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if filtered, err = s.filterSales(ctx, actor, kind, params); err != nil {
			return err
		}
		if wantStock {
			stock, err = s.stockSnapshot(ctx, actor)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Kind: kind, Stock: stock}

	switch kind {
	case KindDailyProducts:
		result.SoldProducts = groupSoldProducts(filtered)
	default:
		result.Sales = filtered
		for _, sale := range filtered {
			result.TotalRef = result.TotalRef.Add(sale.TotalRef)
			result.TotalSecondary = result.TotalSecondary.Add(sale.TotalSecondary)
		}
		result.TotalRef = types.Round2(result.TotalRef)
		result.TotalSecondary = types.Round2(result.TotalSecondary)
	}

	if kind == KindProfit {
		for _, sale := range filtered {
			for _, item := range sale.Items {
				result.ProfitRef = result.ProfitRef.Add(item.Margin())
				result.ProfitSecondary = result.ProfitSecondary.Add(item.MarginSecondary())
			}
		}
		result.ProfitRef = types.Round2(result.ProfitRef)
		result.ProfitSecondary = types.Round2(result.ProfitSecondary)
	}

	return result, nil
}

// filterSales applies the kind-specific filter against the sales log.
func (s *Service) filterSales(ctx context.Context, actor permissions.Actor, kind Kind, params Params) ([]*sales.SaleRecord, error) {
	switch kind {
	case KindDaily:
		date := params.Date
		if date == "" {
			date = s.now().Format(sales.SaleDateFormat)
		} else if err := validateDate(date, "date"); err != nil {
			return nil, err
		}
		return s.salesRepo.ListBySaleDateRange(ctx, actor.TenantID, date, date)

	case KindDailyProducts, KindRange, KindProfit:
		if err := validateDate(params.StartDate, "startDate"); err != nil {
			return nil, err
		}
		if err := validateDate(params.EndDate, "endDate"); err != nil {
			return nil, err
		}
		if params.StartDate > params.EndDate {
			return nil, apperror.NewValidation("startDate must not be after endDate").
				WithDetail("startDate", params.StartDate).
				WithDetail("endDate", params.EndDate)
		}
		return s.salesRepo.ListBySaleDateRange(ctx, actor.TenantID, params.StartDate, params.EndDate)

	case KindWeekly:
		start, end := isoWeekBounds(s.now())
		return s.salesRepo.ListByTimestampRange(ctx, actor.TenantID, start, end)

	case KindAnnual:
		year := s.now().Year()
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0)
		return s.salesRepo.ListByTimestampRange(ctx, actor.TenantID, start, end)
	}

	return nil, apperror.NewValidation("unknown report kind").WithDetail("kind", string(kind))
}

// stockSnapshot reads the full current catalog and values it at the current
// reference price.
func (s *Service) stockSnapshot(ctx context.Context, actor permissions.Actor) ([]StockLine, error) {
	products, err := s.catalogRepo.List(ctx, actor.TenantID, catalog.Filter{})
	if err != nil {
		return nil, fmt.Errorf("catalog snapshot: %w", err)
	}

	lines := make([]StockLine, 0, len(products))
	for _, p := range products {
		lines = append(lines, StockLine{
			ProductCode: p.Code,
			Description: p.Description,
			Quantity:    p.Quantity,
			UnitType:    p.UnitType,
			Category:    p.Category,
			Valuation:   types.Round2(p.Quantity.Mul(p.PriceRef)),
		})
	}
	return lines, nil
}

// groupSoldProducts folds sale items into per-product-code quantity totals.
// Grouping is by the snapshotted code, so renamed or deleted products keep
// their historical identity.
func groupSoldProducts(records []*sales.SaleRecord) []SoldProductTotal {
	totals := make(map[string]*SoldProductTotal)
	order := make([]string, 0)

	for _, record := range records {
		for _, item := range record.Items {
			if existing, ok := totals[item.ProductCode]; ok {
				existing.QuantitySold = existing.QuantitySold.Add(item.QuantitySold)
				continue
			}
			totals[item.ProductCode] = &SoldProductTotal{
				ProductCode:  item.ProductCode,
				Description:  item.Description,
				QuantitySold: item.QuantitySold,
			}
			order = append(order, item.ProductCode)
		}
	}

	sort.Strings(order)
	out := make([]SoldProductTotal, 0, len(order))
	for _, code := range order {
		out = append(out, *totals[code])
	}
	return out
}

// isoWeekBounds returns [Monday 00:00 UTC, next Monday 00:00 UTC) for the
// week containing t. ISO 8601 convention; the original behavior was
// locale-dependent, so the boundary is pinned here.
func isoWeekBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(weekday - 1))
	return start, start.AddDate(0, 0, 7)
}

func validateDate(date, field string) error {
	if date == "" {
		return apperror.NewValidation(field+" is required").WithDetail("field", field)
	}
	if _, err := time.Parse(sales.SaleDateFormat, date); err != nil {
		return apperror.NewValidation(field+" must be formatted YYYY-MM-DD").
			WithDetail(field, date)
	}
	return nil
}
