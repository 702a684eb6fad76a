package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/internal/domain/catalog"
)

const productTable = "products"

var productColumns = []string{
	"id", "tenant_id", "code", "description",
	"quantity", "unit_type", "category",
	"price_ref", "price_secondary", "purchase_price_ref", "purchase_price_secondary",
	"version", "created_at", "updated_at",
}

// Compile-time check that ProductRepo implements catalog.Repository.
var _ catalog.Repository = (*ProductRepo)(nil)

// ProductRepo is the PostgreSQL stock ledger. Products carry a version column
// for optimistic locking; the repo bumps it on every update.
type ProductRepo struct {
	txm *TxManager
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *TxManager) *ProductRepo {
	return &ProductRepo{txm: txm}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	return builder().Select(productColumns...).From(productTable)
}

func (r *ProductRepo) Create(ctx context.Context, product *catalog.Product) error {
	q := builder().
		Insert(productTable).
		Columns(productColumns...).
		Values(
			product.ID, product.TenantID, product.Code, product.Description,
			product.Quantity, product.UnitType, product.Category,
			product.PriceRef, product.PriceSecondary,
			product.PurchasePriceRef, product.PurchasePriceSecondary,
			product.Version, product.CreatedAt, product.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		// Unique violation on (tenant_id, code)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicateCode(product.Code).WithCause(err)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, tenantID, productID id.ID) (*catalog.Product, error) {
	return r.getOne(ctx, tenantID, productID, "")
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, tenantID, productID id.ID) (*catalog.Product, error) {
	return r.getOne(ctx, tenantID, productID, "FOR UPDATE")
}

func (r *ProductRepo) getOne(ctx context.Context, tenantID, productID id.ID, suffix string) (*catalog.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"tenant_id": tenantID, "id": productID})
	if suffix != "" {
		q = q.Suffix(suffix)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	product := &catalog.Product{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), product, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(productTable, productID.String())
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func (r *ProductRepo) Update(ctx context.Context, product *catalog.Product) error {
	q := builder().
		Update(productTable).
		Set("code", product.Code).
		Set("description", product.Description).
		Set("quantity", product.Quantity).
		Set("unit_type", product.UnitType).
		Set("category", product.Category).
		Set("price_ref", product.PriceRef).
		Set("price_secondary", product.PriceSecondary).
		Set("purchase_price_ref", product.PurchasePriceRef).
		Set("purchase_price_secondary", product.PurchasePriceSecondary).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{
			"tenant_id": product.TenantID,
			"id":        product.ID,
			"version":   product.Version, // optimistic lock: expect current version
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicateCode(product.Code).WithCause(err)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(productTable, product.ID.String())
	}

	product.Version++
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, tenantID, productID id.ID) error {
	q := builder().
		Delete(productTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(productTable, productID.String())
	}

	return nil
}

func (r *ProductRepo) ExistsByCode(ctx context.Context, tenantID id.ID, code string, excludeID id.ID) (bool, error) {
	q := builder().
		Select("1").
		From(productTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "code": code}).
		Where(squirrel.NotEq{"id": excludeID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by code: %w", err)
	}

	return true, nil
}

func (r *ProductRepo) List(ctx context.Context, tenantID id.ID, filter catalog.Filter) ([]*catalog.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"tenant_id": tenantID})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"description": pattern},
			squirrel.ILike{"code": pattern},
		})
	}
	if filter.LowStockThreshold != nil {
		q = q.Where(squirrel.LtOrEq{"quantity": *filter.LowStockThreshold})
	}
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}

	q = q.OrderBy("code ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	products := make([]*catalog.Product, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}
