package memory

import (
	"context"
	"sort"
	"strings"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/internal/domain/catalog"
)

type productRepo struct {
	store *Store
}

func (r *productRepo) Create(ctx context.Context, product *catalog.Product) error {
	defer r.store.lock(ctx)()

	byTenant := r.store.products[product.TenantID]
	if byTenant == nil {
		byTenant = make(map[id.ID]*catalog.Product)
		r.store.products[product.TenantID] = byTenant
	}
	for _, existing := range byTenant {
		if existing.Code == product.Code {
			return apperror.NewDuplicateCode(product.Code)
		}
	}

	stored := *product
	byTenant[product.ID] = &stored
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, tenantID, productID id.ID) (*catalog.Product, error) {
	defer r.store.lock(ctx)()
	return r.get(tenantID, productID)
}

// GetForUpdate is equivalent to GetByID here: the surrounding transaction
// already holds the store lock, which covers every product row.
func (r *productRepo) GetForUpdate(ctx context.Context, tenantID, productID id.ID) (*catalog.Product, error) {
	defer r.store.lock(ctx)()
	return r.get(tenantID, productID)
}

func (r *productRepo) get(tenantID, productID id.ID) (*catalog.Product, error) {
	stored, ok := r.store.products[tenantID][productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	copied := *stored
	return &copied, nil
}

func (r *productRepo) Update(ctx context.Context, product *catalog.Product) error {
	defer r.store.lock(ctx)()

	stored, ok := r.store.products[product.TenantID][product.ID]
	if !ok {
		return apperror.NewNotFound("product", product.ID.String())
	}
	if stored.Version != product.Version {
		return apperror.NewConcurrentModification("product", product.ID.String())
	}

	product.Version++
	product.UpdatedAt = nowUTC()
	copied := *product
	r.store.products[product.TenantID][product.ID] = &copied
	return nil
}

func (r *productRepo) Delete(ctx context.Context, tenantID, productID id.ID) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.products[tenantID][productID]; !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	delete(r.store.products[tenantID], productID)
	return nil
}

func (r *productRepo) ExistsByCode(ctx context.Context, tenantID id.ID, code string, excludeID id.ID) (bool, error) {
	defer r.store.lock(ctx)()

	for _, product := range r.store.products[tenantID] {
		if product.Code == code && product.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *productRepo) List(ctx context.Context, tenantID id.ID, filter catalog.Filter) ([]*catalog.Product, error) {
	defer r.store.lock(ctx)()

	search := strings.ToLower(filter.Search)
	out := make([]*catalog.Product, 0)
	for _, product := range r.store.products[tenantID] {
		if search != "" &&
			!strings.Contains(strings.ToLower(product.Description), search) &&
			!strings.Contains(strings.ToLower(product.Code), search) {
			continue
		}
		if filter.LowStockThreshold != nil && product.Quantity.GreaterThan(*filter.LowStockThreshold) {
			continue
		}
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		copied := *product
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
