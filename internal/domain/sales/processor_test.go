package sales_test

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
	"tiendapos/internal/domain/catalog"
	"tiendapos/internal/domain/permissions"
	"tiendapos/internal/domain/sales"
	"tiendapos/internal/domain/tenantcfg"
	"tiendapos/internal/infrastructure/storage/memory"
)

type env struct {
	store   *memory.Store
	catalog *catalog.Service
	sales   *sales.Service
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
		owner:   owner,
	}
}

// addProduct creates a product with the given stock, sale price 100 and
// purchase price 60 in the reference currency.
func (e *env) addProduct(t *testing.T, code string, quantity int64) *catalog.Product {
	t.Helper()
	product, err := e.catalog.Create(context.Background(), e.owner, catalog.ProductSpec{
		Code:                   code,
		Description:            "Producto " + code,
		Quantity:               decimal.NewFromInt(quantity),
		UnitType:               "unidad",
		Category:               "General",
		PriceRef:               decimal.NewFromInt(100),
		PriceSecondary:         decimal.NewFromInt(3650),
		PurchasePriceRef:       decimal.NewFromInt(60),
		PurchasePriceSecondary: decimal.NewFromInt(2190),
	})
	require.NoError(t, err)
	return product
}

func (e *env) stockOf(t *testing.T, productID id.ID) decimal.Decimal {
	t.Helper()
	product, err := e.catalog.GetByID(context.Background(), e.owner, productID)
	require.NoError(t, err)
	return product.Quantity
}

func TestComplete_DecrementsStockAndSnapshotsPrices(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	product := e.addProduct(t, "HAR-001", 10)

	record, err := e.sales.Complete(ctx, e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(4)},
	}, "")

	require.NoError(t, err)
	assert.True(t, e.stockOf(t, product.ID).Equal(decimal.NewFromInt(6)))
	assert.True(t, record.TotalRef.Equal(decimal.NewFromInt(400)))

	require.Len(t, record.Items, 1)
	item := record.Items[0]
	assert.Equal(t, "HAR-001", item.ProductCode)
	assert.True(t, item.PriceAtSaleRef.Equal(decimal.NewFromInt(100)))
	assert.True(t, item.PurchasePriceAtSaleRef.Equal(decimal.NewFromInt(60)))
	assert.True(t, item.ItemTotalRef.Equal(decimal.NewFromInt(400)))
	assert.True(t, record.ExchangeRateAtSale.Equal(decimal.RequireFromString("36.50")))
}

func TestComplete_InsufficientStockAbortsWholeCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	plenty := e.addProduct(t, "AAA-001", 100)
	scarce := e.addProduct(t, "ZZZ-001", 1)

	_, err := e.sales.Complete(ctx, e.owner, []sales.CartLine{
		{ProductID: plenty.ID, QuantitySold: decimal.NewFromInt(5)},
		{ProductID: scarce.ID, QuantitySold: decimal.NewFromInt(2)},
	}, "")

	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.True(t, e.stockOf(t, plenty.ID).Equal(decimal.NewFromInt(100)),
		"no line may commit when any line fails")
	assert.True(t, e.stockOf(t, scarce.ID).Equal(decimal.NewFromInt(1)))
}

func TestComplete_ExactStockSellsOut(t *testing.T) {
	e := newEnv(t)
	product := e.addProduct(t, "HAR-001", 4)

	_, err := e.sales.Complete(context.Background(), e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(4)},
	}, "")

	require.NoError(t, err)
	assert.True(t, e.stockOf(t, product.ID).IsZero())
}

func TestComplete_MergesDuplicateLines(t *testing.T) {
	e := newEnv(t)
	product := e.addProduct(t, "HAR-001", 10)

	record, err := e.sales.Complete(context.Background(), e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(2)},
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(3)},
	}, "")

	require.NoError(t, err)
	require.Len(t, record.Items, 1)
	assert.True(t, record.Items[0].QuantitySold.Equal(decimal.NewFromInt(5)))
	assert.True(t, e.stockOf(t, product.ID).Equal(decimal.NewFromInt(5)))
}

func TestComplete_ValidatesCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	product := e.addProduct(t, "HAR-001", 10)

	_, err := e.sales.Complete(ctx, e.owner, nil, "")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "empty cart")

	_, err = e.sales.Complete(ctx, e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.Zero},
	}, "")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "zero quantity")

	_, err = e.sales.Complete(ctx, e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(-1)},
	}, "")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "negative quantity")

	_, err = e.sales.Complete(ctx, e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(1)},
	}, "31-12-2025")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "malformed sale date")
}

func TestComplete_UnknownProductFailsCart(t *testing.T) {
	e := newEnv(t)

	_, err := e.sales.Complete(context.Background(), e.owner, []sales.CartLine{
		{ProductID: id.New(), QuantitySold: decimal.NewFromInt(1)},
	}, "")

	assert.True(t, apperror.IsNotFound(err))
}

func TestComplete_RequiresManageSales(t *testing.T) {
	e := newEnv(t)
	product := e.addProduct(t, "HAR-001", 10)
	seller := permissions.Actor{ID: id.New(), TenantID: e.owner.TenantID, Role: permissions.RoleSeller}

	_, err := e.sales.Complete(context.Background(), seller, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(1)},
	}, "")

	assert.True(t, apperror.IsPermissionDenied(err))
	assert.True(t, e.stockOf(t, product.ID).Equal(decimal.NewFromInt(10)))
}

func TestComplete_BackdatedSaleKeepsRequestedDate(t *testing.T) {
	e := newEnv(t)
	product := e.addProduct(t, "HAR-001", 10)

	record, err := e.sales.Complete(context.Background(), e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(1)},
	}, "2026-01-15")

	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", record.SaleDate)
}

func TestReverse_RestoresStockAndDeletesRecord(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	product := e.addProduct(t, "HAR-001", 10)

	record, err := e.sales.Complete(ctx, e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(4)},
	}, "")
	require.NoError(t, err)

	require.NoError(t, e.sales.Reverse(ctx, e.owner, record.ID))

	assert.True(t, e.stockOf(t, product.ID).Equal(decimal.NewFromInt(10)))
	_, err = e.sales.GetByID(ctx, e.owner, record.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReverse_DoubleReversalIsNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	product := e.addProduct(t, "HAR-001", 10)

	record, err := e.sales.Complete(ctx, e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(4)},
	}, "")
	require.NoError(t, err)

	require.NoError(t, e.sales.Reverse(ctx, e.owner, record.ID))
	err = e.sales.Reverse(ctx, e.owner, record.ID)

	assert.True(t, apperror.IsNotFound(err))
	assert.True(t, e.stockOf(t, product.ID).Equal(decimal.NewFromInt(10)),
		"stock must never be restored twice")
}

func TestReverse_SkipsDeletedProductsButRestoresTheRest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	kept := e.addProduct(t, "AAA-001", 10)
	doomed := e.addProduct(t, "ZZZ-001", 10)

	record, err := e.sales.Complete(ctx, e.owner, []sales.CartLine{
		{ProductID: kept.ID, QuantitySold: decimal.NewFromInt(3)},
		{ProductID: doomed.ID, QuantitySold: decimal.NewFromInt(2)},
	}, "")
	require.NoError(t, err)

	require.NoError(t, e.catalog.Delete(ctx, e.owner, doomed.ID))
	require.NoError(t, e.sales.Reverse(ctx, e.owner, record.ID))

	assert.True(t, e.stockOf(t, kept.ID).Equal(decimal.NewFromInt(10)))
	_, err = e.sales.GetByID(ctx, e.owner, record.ID)
	assert.True(t, apperror.IsNotFound(err), "record is removed even with skipped items")
}

func TestReverse_RequiresDeleteSales(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	product := e.addProduct(t, "HAR-001", 10)

	record, err := e.sales.Complete(ctx, e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(1)},
	}, "")
	require.NoError(t, err)

	seller := permissions.Actor{ID: id.New(), TenantID: e.owner.TenantID, Role: permissions.RoleSeller}
	err = e.sales.Reverse(ctx, seller, record.ID)

	assert.True(t, apperror.IsPermissionDenied(err))
}

func TestListForDay_FiltersBySaleDate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	product := e.addProduct(t, "HAR-001", 10)

	_, err := e.sales.Complete(ctx, e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(1)},
	}, "2026-02-01")
	require.NoError(t, err)
	_, err = e.sales.Complete(ctx, e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(1)},
	}, "2026-02-02")
	require.NoError(t, err)

	day, err := e.sales.ListForDay(ctx, e.owner, "2026-02-01")
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "2026-02-01", day[0].SaleDate)
}

func TestComplete_ConcurrentSalesNeverOversell(t *testing.T) {
	e := newEnv(t)
	product := e.addProduct(t, "HAR-001", 10)

	const workers = 8
	var wg sync.WaitGroup
	completed := make(chan struct{}, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.sales.Complete(context.Background(), e.owner, []sales.CartLine{
				{ProductID: product.ID, QuantitySold: decimal.NewFromInt(3)},
			}, "")
			if err == nil {
				completed <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(completed)

	succeeded := len(completed)
	assert.LessOrEqual(t, succeeded, 3, "10 units allow at most 3 sales of 3")

	remaining := e.stockOf(t, product.ID)
	expected := decimal.NewFromInt(10).Sub(decimal.NewFromInt(int64(succeeded * 3)))
	assert.True(t, remaining.Equal(expected),
		"remaining stock %s must equal 10 - 3*%d", remaining, succeeded)
	assert.False(t, remaining.IsNegative())
}

func TestComplete_ClockControlsDefaultSaleDate(t *testing.T) {
	e := newEnv(t)
	product := e.addProduct(t, "HAR-001", 10)

	fixed := time.Date(2026, time.March, 9, 15, 4, 5, 0, time.UTC)
	e.sales.WithClock(func() time.Time { return fixed })

	record, err := e.sales.Complete(context.Background(), e.owner, []sales.CartLine{
		{ProductID: product.ID, QuantitySold: decimal.NewFromInt(1)},
	}, "")

	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", record.SaleDate)
	assert.True(t, record.Timestamp.Equal(fixed))
}
