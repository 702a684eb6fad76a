package reports_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/internal/core/tx"
	"tiendapos/internal/domain/catalog"
	"tiendapos/internal/domain/permissions"
	"tiendapos/internal/domain/reports"
	"tiendapos/internal/domain/sales"
	"tiendapos/internal/domain/tenantcfg"
	"tiendapos/internal/infrastructure/storage/memory"
)

type env struct {
	store   *memory.Store
	catalog *catalog.Service
	sales   *sales.Service
	reports *reports.Service
	owner   permissions.Actor
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.NewStore()
	perms := permissions.NewService(store.Permissions())
	owner := permissions.Actor{ID: id.New(), TenantID: id.New(), Role: permissions.RoleSuperuser}

	store.SetSettings(owner.TenantID, tenantcfg.Settings{
		ExchangeRate:      decimal.RequireFromString("36.50"),
		LowStockThreshold: tenantcfg.DefaultLowStockThreshold,
	})

	return &env{
		store:   store,
		catalog: catalog.NewService(store.Products(), perms, store.Settings(), store),
		sales:   sales.NewService(store.Products(), store.Sales(), perms, store.Settings(), store),
		reports: reports.NewService(store.Sales(), store.Products(), perms, store),
		owner:   owner,
	}
}

func (e *env) addProduct(t *testing.T, code string, quantity, priceRef, purchaseRef int64) *catalog.Product {
	t.Helper()
	product, err := e.catalog.Create(context.Background(), e.owner, catalog.ProductSpec{
		Code:                   code,
		Description:            "Producto " + code,
		Quantity:               decimal.NewFromInt(quantity),
		UnitType:               "unidad",
		Category:               "General",
		PriceRef:               decimal.NewFromInt(priceRef),
		PriceSecondary:         decimal.NewFromInt(priceRef * 36),
		PurchasePriceRef:       decimal.NewFromInt(purchaseRef),
		PurchasePriceSecondary: decimal.NewFromInt(purchaseRef * 36),
	})
	require.NoError(t, err)
	return product
}

func (e *env) sell(t *testing.T, product *catalog.Product, quantity int64, saleDate string) *sales.SaleRecord {
	t.Helper()
	record, err := e.sales.Complete(context.Background(), e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(quantity)},
	}, saleDate)
	require.NoError(t, err)
	return record
}

func TestRun_DailyFiltersByExactDate(t *testing.T) {
	e := newEnv(t)
	product := e.addProduct(t, "HAR-001", 100, 100, 60)
	e.sell(t, product, 1, "2026-02-01")
	e.sell(t, product, 2, "2026-02-01")
	e.sell(t, product, 5, "2026-02-02")

	result, err := e.reports.Run(context.Background(), e.owner, reports.KindDaily, reports.Params{Date: "2026-02-01"})

	require.NoError(t, err)
	assert.Len(t, result.Sales, 2)
	assert.True(t, result.TotalRef.Equal(decimal.NewFromInt(300)))
	assert.NotEmpty(t, result.Stock, "daily report carries the stock view")
}

func TestRun_RangeIsInclusiveOnBothEnds(t *testing.T) {
	e := newEnv(t)
	product := e.addProduct(t, "HAR-001", 100, 100, 60)
	e.sell(t, product, 1, "2026-02-01")
	e.sell(t, product, 1, "2026-02-10")
	e.sell(t, product, 1, "2026-02-11")

	result, err := e.reports.Run(context.Background(), e.owner, reports.KindRange, reports.Params{
		StartDate: "2026-02-01",
		EndDate:   "2026-02-10",
	})

	require.NoError(t, err)
	assert.Len(t, result.Sales, 2)
	assert.True(t, result.TotalRef.Equal(decimal.NewFromInt(200)))
}

func TestRun_ProfitComesFromItemSnapshots(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	product := e.addProduct(t, "HAR-001", 10, 100, 60)
	e.sell(t, product, 4, "2026-02-01")

	// Repricing the product after the sale must not affect the report.
	newPrice := decimal.NewFromInt(500)
	_, err := e.catalog.Update(ctx, e.owner, product.ID, catalog.ProductPatch{PriceRef: &newPrice})
	require.NoError(t, err)

	result, err := e.reports.Run(ctx, e.owner, reports.KindProfit, reports.Params{
		StartDate: "2026-02-01",
		EndDate:   "2026-02-01",
	})

	require.NoError(t, err)
	assert.True(t, result.ProfitRef.Equal(decimal.NewFromInt(160)), "(100-60)*4")
	assert.True(t, result.TotalRef.Equal(decimal.NewFromInt(400)))
	assert.Empty(t, result.Stock, "profit report carries no stock view")
}

func TestRun_DailyProductsGroupsBySnapshotCode(t *testing.T) {
	e := newEnv(t)
	flour := e.addProduct(t, "HAR-001", 100, 100, 60)
	rice := e.addProduct(t, "ARR-001", 100, 50, 30)
	e.sell(t, flour, 2, "2026-02-01")
	e.sell(t, flour, 3, "2026-02-02")
	e.sell(t, rice, 7, "2026-02-01")

	result, err := e.reports.Run(context.Background(), e.owner, reports.KindDailyProducts, reports.Params{
		StartDate: "2026-02-01",
		EndDate:   "2026-02-02",
	})

	require.NoError(t, err)
	require.Len(t, result.SoldProducts, 2)
	assert.Equal(t, "ARR-001", result.SoldProducts[0].ProductCode)
	assert.True(t, result.SoldProducts[0].QuantitySold.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, "HAR-001", result.SoldProducts[1].ProductCode)
	assert.True(t, result.SoldProducts[1].QuantitySold.Equal(decimal.NewFromInt(5)))
	assert.Empty(t, result.Sales, "grouped view omits raw records")
}

func TestRun_GroupingSurvivesProductDeletion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	flour := e.addProduct(t, "HAR-001", 100, 100, 60)
	e.sell(t, flour, 2, "2026-02-01")
	require.NoError(t, e.catalog.Delete(ctx, e.owner, flour.ID))

	result, err := e.reports.Run(ctx, e.owner, reports.KindDailyProducts, reports.Params{
		StartDate: "2026-02-01",
		EndDate:   "2026-02-01",
	})

	require.NoError(t, err)
	require.Len(t, result.SoldProducts, 1)
	assert.Equal(t, "HAR-001", result.SoldProducts[0].ProductCode)
}

func TestRun_WeeklyUsesMondayBoundedWeek(t *testing.T) {
	e := newEnv(t)
	product := e.addProduct(t, "HAR-001", 100, 100, 60)

	// 2026-03-11 is a Wednesday; its week runs Mon 2026-03-09 .. Sun 2026-03-15.
	clock := time.Date(2026, time.March, 11, 12, 0, 0, 0, time.UTC)
	e.sales.WithClock(func() time.Time { return clock })
	e.reports.WithClock(func() time.Time { return clock })

	e.sell(t, product, 1, "")

	// A sale stamped the previous Sunday must fall outside the week.
	e.sales.WithClock(func() time.Time {
		return time.Date(2026, time.March, 8, 23, 59, 0, 0, time.UTC)
	})
	e.sell(t, product, 5, "")

	result, err := e.reports.Run(context.Background(), e.owner, reports.KindWeekly, reports.Params{})

	require.NoError(t, err)
	assert.Len(t, result.Sales, 1)
	assert.True(t, result.TotalRef.Equal(decimal.NewFromInt(100)))
}

func TestRun_AnnualFiltersByTimestampYear(t *testing.T) {
	e := newEnv(t)
	product := e.addProduct(t, "HAR-001", 100, 100, 60)

	e.sales.WithClock(func() time.Time {
		return time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)
	})
	e.sell(t, product, 1, "")

	e.sales.WithClock(func() time.Time {
		return time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)
	})
	e.sell(t, product, 2, "")

	e.reports.WithClock(func() time.Time {
		return time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	})

	result, err := e.reports.Run(context.Background(), e.owner, reports.KindAnnual, reports.Params{})

	require.NoError(t, err)
	assert.Len(t, result.Sales, 1)
	assert.True(t, result.TotalRef.Equal(decimal.NewFromInt(200)))
}

func TestRun_StockLinesCarryValuation(t *testing.T) {
	e := newEnv(t)
	e.addProduct(t, "HAR-001", 4, 100, 60)

	result, err := e.reports.Run(context.Background(), e.owner, reports.KindDaily, reports.Params{Date: "2026-02-01"})

	require.NoError(t, err)
	require.Len(t, result.Stock, 1)
	assert.True(t, result.Stock[0].Valuation.Equal(decimal.NewFromInt(400)), "4 × 100")
}

func TestRun_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.reports.Run(ctx, e.owner, reports.Kind("monthly"), reports.Params{})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "unknown kind")

	_, err = e.reports.Run(ctx, e.owner, reports.KindRange, reports.Params{
		StartDate: "2026-02-10", EndDate: "2026-02-01",
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "inverted range")

	_, err = e.reports.Run(ctx, e.owner, reports.KindProfit, reports.Params{StartDate: "2026-02-01"})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "missing endDate")
}

// readOnlyTracker wraps the store's read-only pass and records whether
// repository reads happen inside one. A read outside the pass can observe a
// sale record whose items a concurrent reversal already deleted.
type readOnlyTracker struct {
	tx.ReadOnlyManager
	mu     sync.Mutex
	passes int
	depth  int
	stray  int
}

func (tr *readOnlyTracker) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	tr.mu.Lock()
	tr.passes++
	tr.depth++
	tr.mu.Unlock()
	defer func() {
		tr.mu.Lock()
		tr.depth--
		tr.mu.Unlock()
	}()
	return tr.ReadOnlyManager.ReadOnly(ctx, fn)
}

func (tr *readOnlyTracker) noteRead() {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.depth == 0 {
		tr.stray++
	}
}

type trackedSaleRepo struct {
	sales.Repository
	tracker *readOnlyTracker
}

func (r *trackedSaleRepo) ListBySaleDateRange(ctx context.Context, tenantID id.ID, from, to string) ([]*sales.SaleRecord, error) {
	r.tracker.noteRead()
	return r.Repository.ListBySaleDateRange(ctx, tenantID, from, to)
}

func (r *trackedSaleRepo) ListByTimestampRange(ctx context.Context, tenantID id.ID, from, to time.Time) ([]*sales.SaleRecord, error) {
	r.tracker.noteRead()
	return r.Repository.ListByTimestampRange(ctx, tenantID, from, to)
}

type trackedCatalogRepo struct {
	catalog.Repository
	tracker *readOnlyTracker
}

func (r *trackedCatalogRepo) List(ctx context.Context, tenantID id.ID, filter catalog.Filter) ([]*catalog.Product, error) {
	r.tracker.noteRead()
	return r.Repository.List(ctx, tenantID, filter)
}

func TestRun_ReadsShareOneReadOnlyPass(t *testing.T) {
	e := newEnv(t)
	product := e.addProduct(t, "HAR-001", 100, 100, 60)
	e.sell(t, product, 2, "2026-02-01")

	tracker := &readOnlyTracker{ReadOnlyManager: e.store}
	perms := permissions.NewService(e.store.Permissions())
	svc := reports.NewService(
		&trackedSaleRepo{Repository: e.store.Sales(), tracker: tracker},
		&trackedCatalogRepo{Repository: e.store.Products(), tracker: tracker},
		perms,
		tracker,
	)

	result, err := svc.Run(context.Background(), e.owner, reports.KindDaily, reports.Params{Date: "2026-02-01"})

	require.NoError(t, err)
	require.Len(t, result.Sales, 1)
	require.NotEmpty(t, result.Stock)
	assert.Equal(t, 1, tracker.passes, "sales and stock reads share a single pass")
	assert.Zero(t, tracker.stray, "no repository read outside the pass")
}

func TestRun_RequiresViewReports(t *testing.T) {
	e := newEnv(t)
	seller := permissions.Actor{ID: id.New(), TenantID: e.owner.TenantID, Role: permissions.RoleSeller}

	_, err := e.reports.Run(context.Background(), seller, reports.KindDaily, reports.Params{})

	assert.True(t, apperror.IsPermissionDenied(err))
}
