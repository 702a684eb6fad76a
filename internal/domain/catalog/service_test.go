package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/internal/core/types"
	"tiendapos/internal/domain/catalog"
	"tiendapos/internal/domain/permissions"
	"tiendapos/internal/domain/tenantcfg"
	"tiendapos/internal/infrastructure/storage/memory"
)

func newCatalogService(t *testing.T) (*catalog.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	perms := permissions.NewService(store.Permissions())
	return catalog.NewService(store.Products(), perms, store.Settings(), store), store
}

func superuser() permissions.Actor {
	return permissions.Actor{ID: id.New(), TenantID: id.New(), Role: permissions.RoleSuperuser}
}

func flourSpec() catalog.ProductSpec {
	return catalog.ProductSpec{
		Code:                   "HAR-001",
		Description:            "Harina de trigo",
		Quantity:               decimal.NewFromInt(10),
		UnitType:               "unidad",
		Category:               "Alimentos",
		PriceRef:               decimal.NewFromInt(100),
		PriceSecondary:         decimal.NewFromInt(3650),
		PurchasePriceRef:       decimal.NewFromInt(60),
		PurchasePriceSecondary: decimal.NewFromInt(2190),
	}
}

func TestCreate_AssignsIdentityAndVersion(t *testing.T) {
	svc, _ := newCatalogService(t)
	owner := superuser()

	product, err := svc.Create(context.Background(), owner, flourSpec())

	require.NoError(t, err)
	assert.False(t, id.IsNil(product.ID))
	assert.Equal(t, owner.TenantID, product.TenantID)
	assert.Equal(t, 1, product.Version)
}

func TestCreate_RejectsDuplicateCode(t *testing.T) {
	svc, _ := newCatalogService(t)
	owner := superuser()
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, flourSpec())
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner, flourSpec())
	assert.True(t, apperror.IsDuplicateCode(err))
}

func TestCreate_AllowsSameCodeAcrossTenants(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, superuser(), flourSpec())
	require.NoError(t, err)

	_, err = svc.Create(ctx, superuser(), flourSpec())
	assert.NoError(t, err, "code uniqueness is per tenant")
}

func TestCreate_ValidatesRequiredFieldsAndNegatives(t *testing.T) {
	svc, _ := newCatalogService(t)
	owner := superuser()
	ctx := context.Background()

	spec := flourSpec()
	spec.Code = "  "
	_, err := svc.Create(ctx, owner, spec)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	spec = flourSpec()
	spec.Quantity = decimal.NewFromInt(-1)
	_, err = svc.Create(ctx, owner, spec)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	spec = flourSpec()
	spec.PurchasePriceRef = decimal.NewFromInt(-5)
	_, err = svc.Create(ctx, owner, spec)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCreate_RequiresManageWarehouse(t *testing.T) {
	svc, _ := newCatalogService(t)
	seller := permissions.Actor{ID: id.New(), TenantID: id.New(), Role: permissions.RoleSeller}

	_, err := svc.Create(context.Background(), seller, flourSpec())

	assert.True(t, apperror.IsPermissionDenied(err))
}

func setRate(store *memory.Store, tenantID id.ID, rate string) {
	store.SetSettings(tenantID, tenantcfg.Settings{
		ExchangeRate:      decimal.RequireFromString(rate),
		LowStockThreshold: tenantcfg.DefaultLowStockThreshold,
	})
}

func TestCreate_DerivesSecondaryPricesFromRate(t *testing.T) {
	svc, store := newCatalogService(t)
	owner := superuser()
	setRate(store, owner.TenantID, "36.50")

	spec := flourSpec()
	spec.PriceSecondary = decimal.Zero
	spec.PurchasePriceSecondary = decimal.Zero

	product, err := svc.Create(context.Background(), owner, spec)

	require.NoError(t, err)
	assert.True(t, product.PriceSecondary.Equal(decimal.NewFromInt(3650)), "100 × 36.50")
	assert.True(t, product.PurchasePriceSecondary.Equal(decimal.NewFromInt(2190)), "60 × 36.50")
}

func TestCreate_KeepsExplicitSecondaryPrices(t *testing.T) {
	svc, store := newCatalogService(t)
	owner := superuser()
	setRate(store, owner.TenantID, "36.50")

	spec := flourSpec()
	spec.PriceSecondary = decimal.NewFromInt(3700)

	product, err := svc.Create(context.Background(), owner, spec)

	require.NoError(t, err)
	assert.True(t, product.PriceSecondary.Equal(decimal.NewFromInt(3700)))
}

func TestCreate_UnsetRateDerivesZeroSecondary(t *testing.T) {
	svc, _ := newCatalogService(t)

	spec := flourSpec()
	spec.PriceSecondary = decimal.Zero
	spec.PurchasePriceSecondary = decimal.Zero

	product, err := svc.Create(context.Background(), superuser(), spec)

	require.NoError(t, err)
	assert.True(t, product.PriceSecondary.IsZero())
	assert.True(t, product.PurchasePriceSecondary.IsZero())
}

func TestUpdate_RederivesSecondaryWhenOnlyReferenceChanges(t *testing.T) {
	svc, store := newCatalogService(t)
	owner := superuser()
	ctx := context.Background()
	setRate(store, owner.TenantID, "36.50")

	product, err := svc.Create(ctx, owner, flourSpec())
	require.NoError(t, err)

	newRef := types.Money(decimal.NewFromInt(200))
	updated, err := svc.Update(ctx, owner, product.ID, catalog.ProductPatch{PriceRef: &newRef})
	require.NoError(t, err)
	assert.True(t, updated.PriceSecondary.Equal(decimal.NewFromInt(7300)), "200 × 36.50")

	// An explicit secondary price in the same patch wins over derivation.
	newRef = types.Money(decimal.NewFromInt(300))
	explicit := types.Money(decimal.NewFromInt(11111))
	updated, err = svc.Update(ctx, owner, product.ID, catalog.ProductPatch{
		PriceRef:       &newRef,
		PriceSecondary: &explicit,
	})
	require.NoError(t, err)
	assert.True(t, updated.PriceSecondary.Equal(decimal.NewFromInt(11111)))
}

func TestUpdate_PatchesOnlyProvidedFields(t *testing.T) {
	svc, _ := newCatalogService(t)
	owner := superuser()
	ctx := context.Background()

	product, err := svc.Create(ctx, owner, flourSpec())
	require.NoError(t, err)

	newPrice := types.Money(decimal.NewFromInt(120))
	updated, err := svc.Update(ctx, owner, product.ID, catalog.ProductPatch{PriceRef: &newPrice})

	require.NoError(t, err)
	assert.True(t, updated.PriceRef.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, product.Code, updated.Code)
	assert.Equal(t, product.Version+1, updated.Version)
}

func TestUpdate_RejectsCodeCollision(t *testing.T) {
	svc, _ := newCatalogService(t)
	owner := superuser()
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, flourSpec())
	require.NoError(t, err)

	other := flourSpec()
	other.Code = "ARR-001"
	second, err := svc.Create(ctx, owner, other)
	require.NoError(t, err)

	taken := "HAR-001"
	_, err = svc.Update(ctx, owner, second.ID, catalog.ProductPatch{Code: &taken})
	assert.True(t, apperror.IsDuplicateCode(err))
}

func TestUpdate_KeepingOwnCodeIsNotACollision(t *testing.T) {
	svc, _ := newCatalogService(t)
	owner := superuser()
	ctx := context.Background()

	product, err := svc.Create(ctx, owner, flourSpec())
	require.NoError(t, err)

	same := product.Code
	_, err = svc.Update(ctx, owner, product.ID, catalog.ProductPatch{Code: &same})
	assert.NoError(t, err)
}

func TestDelete_UnknownProductIsNotFound(t *testing.T) {
	svc, _ := newCatalogService(t)

	err := svc.Delete(context.Background(), superuser(), id.New())

	assert.True(t, apperror.IsNotFound(err))
}

func TestQuery_FiltersCombineWithAND(t *testing.T) {
	svc, _ := newCatalogService(t)
	owner := superuser()
	ctx := context.Background()

	mk := func(code, desc, category string, qty int64) {
		spec := flourSpec()
		spec.Code = code
		spec.Description = desc
		spec.Category = category
		spec.Quantity = decimal.NewFromInt(qty)
		_, err := svc.Create(ctx, owner, spec)
		require.NoError(t, err)
	}
	mk("HAR-001", "Harina de trigo", "Alimentos", 2)
	mk("HAR-002", "Harina de maíz", "Alimentos", 50)
	mk("JAB-001", "Jabón harina-scented", "Higiene", 1)

	threshold := types.Quantity(decimal.NewFromInt(5))
	got, err := svc.Query(ctx, owner, catalog.Filter{
		Search:            "harina",
		LowStockThreshold: &threshold,
		Category:          "Alimentos",
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "HAR-001", got[0].Code)
}

func TestQuery_SearchMatchesCodeOrDescription(t *testing.T) {
	svc, _ := newCatalogService(t)
	owner := superuser()
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, flourSpec())
	require.NoError(t, err)

	byCode, err := svc.Query(ctx, owner, catalog.Filter{Search: "har-0"})
	require.NoError(t, err)
	assert.Len(t, byCode, 1)

	byDesc, err := svc.Query(ctx, owner, catalog.Filter{Search: "TRIGO"})
	require.NoError(t, err)
	assert.Len(t, byDesc, 1)
}

func TestQuery_RejectsNegativeThreshold(t *testing.T) {
	svc, _ := newCatalogService(t)

	threshold := types.Quantity(decimal.NewFromInt(-1))
	_, err := svc.Query(context.Background(), superuser(), catalog.Filter{LowStockThreshold: &threshold})

	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
