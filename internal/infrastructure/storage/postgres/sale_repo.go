package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/internal/domain/sales"
)

const (
	saleTable     = "sale_records"
	saleItemTable = "sale_items"
)

var saleColumns = []string{
	"id", "tenant_id", "ts", "sale_date",
	"total_ref", "total_secondary",
	"sold_by", "sold_by_role", "exchange_rate_at_sale",
}

var saleItemColumns = []string{
	"sale_id", "line_no", "product_id", "product_code", "description",
	"quantity_sold", "unit_type",
	"price_at_sale_ref", "price_at_sale_secondary",
	"purchase_price_at_sale_ref", "purchase_price_at_sale_secondary",
	"item_total_ref", "item_total_secondary",
}

// Compile-time check that SaleRepo implements sales.Repository.
var _ sales.Repository = (*SaleRepo)(nil)

// SaleRepo is the PostgreSQL sales log. Records and their items are written
// together; items cascade on delete.
type SaleRepo struct {
	txm *TxManager
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *TxManager) *SaleRepo {
	return &SaleRepo{txm: txm}
}

func (r *SaleRepo) Create(ctx context.Context, record *sales.SaleRecord) error {
	q := builder().
		Insert(saleTable).
		Columns(saleColumns...).
		Values(
			record.ID, record.TenantID, record.Timestamp, record.SaleDate,
			record.TotalRef, record.TotalSecondary,
			record.SoldBy, record.SoldByRole, record.ExchangeRateAtSale,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	if len(record.Items) == 0 {
		return nil
	}

	itemsQ := builder().
		Insert(saleItemTable).
		Columns(saleItemColumns...)
	for lineNo, item := range record.Items {
		itemsQ = itemsQ.Values(
			record.ID, lineNo+1, item.ProductID, item.ProductCode, item.Description,
			item.QuantitySold, item.UnitType,
			item.PriceAtSaleRef, item.PriceAtSaleSecondary,
			item.PurchasePriceAtSaleRef, item.PurchasePriceAtSaleSecondary,
			item.ItemTotalRef, item.ItemTotalSecondary,
		)
	}

	sql, args, err = itemsQ.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale items: %w", err)
	}

	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, tenantID, saleID id.ID) (*sales.SaleRecord, error) {
	q := builder().
		Select(saleColumns...).
		From(saleTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	record := &sales.SaleRecord{}
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, record, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	items, err := r.loadItems(ctx, []id.ID{saleID})
	if err != nil {
		return nil, err
	}
	record.Items = items[saleID]

	return record, nil
}

func (r *SaleRepo) Delete(ctx context.Context, tenantID, saleID id.ID) error {
	q := builder().
		Delete(saleTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID.String())
	}

	return nil
}

func (r *SaleRepo) ListBySaleDateRange(ctx context.Context, tenantID id.ID, from, to string) ([]*sales.SaleRecord, error) {
	q := builder().
		Select(saleColumns...).
		From(saleTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.GtOrEq{"sale_date": from}).
		Where(squirrel.LtOrEq{"sale_date": to}).
		OrderBy("ts DESC")

	return r.list(ctx, q)
}

func (r *SaleRepo) ListByTimestampRange(ctx context.Context, tenantID id.ID, from, to time.Time) ([]*sales.SaleRecord, error) {
	q := builder().
		Select(saleColumns...).
		From(saleTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(squirrel.GtOrEq{"ts": from}).
		Where(squirrel.Lt{"ts": to}).
		OrderBy("ts DESC")

	return r.list(ctx, q)
}

func (r *SaleRepo) list(ctx context.Context, q squirrel.SelectBuilder) ([]*sales.SaleRecord, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	records := make([]*sales.SaleRecord, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if len(records) == 0 {
		return records, nil
	}

	saleIDs := make([]id.ID, 0, len(records))
	for _, record := range records {
		saleIDs = append(saleIDs, record.ID)
	}

	items, err := r.loadItems(ctx, saleIDs)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		record.Items = items[record.ID]
	}

	return records, nil
}

// saleItemRow carries the sale_id join column alongside the item snapshot.
type saleItemRow struct {
	SaleID id.ID `db:"sale_id"`
	LineNo int   `db:"line_no"`
	sales.SaleItem
}

func (r *SaleRepo) loadItems(ctx context.Context, saleIDs []id.ID) (map[id.ID][]sales.SaleItem, error) {
	q := builder().
		Select(saleItemColumns...).
		From(saleItemTable).
		Where(squirrel.Eq{"sale_id": saleIDs}).
		OrderBy("sale_id", "line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	rows := make([]*saleItemRow, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("load sale items: %w", err)
	}

	items := make(map[id.ID][]sales.SaleItem, len(saleIDs))
	for _, row := range rows {
		items[row.SaleID] = append(items[row.SaleID], row.SaleItem)
	}
	return items, nil
}
