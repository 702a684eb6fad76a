package memory

import (
	"context"
	"sort"
	"time"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/internal/domain/sales"
)

type saleRepo struct {
	store *Store
}

func (r *saleRepo) Create(ctx context.Context, record *sales.SaleRecord) error {
	defer r.store.lock(ctx)()

	byTenant := r.store.sales[record.TenantID]
	if byTenant == nil {
		byTenant = make(map[id.ID]*sales.SaleRecord)
		r.store.sales[record.TenantID] = byTenant
	}
	byTenant[record.ID] = cloneSale(record)
	return nil
}

func (r *saleRepo) GetByID(ctx context.Context, tenantID, saleID id.ID) (*sales.SaleRecord, error) {
	defer r.store.lock(ctx)()

	stored, ok := r.store.sales[tenantID][saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return cloneSale(stored), nil
}

func (r *saleRepo) Delete(ctx context.Context, tenantID, saleID id.ID) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.sales[tenantID][saleID]; !ok {
		return apperror.NewNotFound("sale", saleID.String())
	}
	delete(r.store.sales[tenantID], saleID)
	return nil
}

func (r *saleRepo) ListBySaleDateRange(ctx context.Context, tenantID id.ID, from, to string) ([]*sales.SaleRecord, error) {
	defer r.store.lock(ctx)()

	out := make([]*sales.SaleRecord, 0)
	for _, record := range r.store.sales[tenantID] {
		if record.SaleDate >= from && record.SaleDate <= to {
			out = append(out, cloneSale(record))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *saleRepo) ListByTimestampRange(ctx context.Context, tenantID id.ID, from, to time.Time) ([]*sales.SaleRecord, error) {
	defer r.store.lock(ctx)()

	out := make([]*sales.SaleRecord, 0)
	for _, record := range r.store.sales[tenantID] {
		if !record.Timestamp.Before(from) && record.Timestamp.Before(to) {
			out = append(out, cloneSale(record))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(records []*sales.SaleRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}
