package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tiendapos/internal/core/id"
	"tiendapos/internal/domain/permissions"
)

// Compile-time check that PermissionRepo implements permissions.Repository.
var _ permissions.Repository = (*PermissionRepo)(nil)

// PermissionRepo stores each tenant's role/capability matrix as a single
// JSONB document. The matrix is small and always read and written whole, so a
// document beats a row-per-capability layout here.
type PermissionRepo struct {
	txm *TxManager
}

// NewPermissionRepo creates a new permission matrix repository.
func NewPermissionRepo(txm *TxManager) *PermissionRepo {
	return &PermissionRepo{txm: txm}
}

func (r *PermissionRepo) GetMatrix(ctx context.Context, tenantID id.ID) (permissions.Matrix, error) {
	var raw []byte
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		"SELECT matrix FROM tenant_permissions WHERE tenant_id = $1", tenantID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return permissions.Matrix{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get permission matrix: %w", err)
	}

	var matrix permissions.Matrix
	if err := json.Unmarshal(raw, &matrix); err != nil {
		return nil, fmt.Errorf("decode permission matrix: %w", err)
	}
	return matrix, nil
}

func (r *PermissionRepo) SaveMatrix(ctx context.Context, tenantID id.ID, matrix permissions.Matrix) error {
	raw, err := json.Marshal(matrix)
	if err != nil {
		return fmt.Errorf("encode permission matrix: %w", err)
	}

	_, err = r.txm.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO tenant_permissions (tenant_id, matrix, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (tenant_id)
		DO UPDATE SET matrix = EXCLUDED.matrix, updated_at = now()`,
		tenantID, raw,
	)
	if err != nil {
		return fmt.Errorf("save permission matrix: %w", err)
	}
	return nil
}
