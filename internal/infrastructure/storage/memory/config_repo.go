package memory

import (
	"context"

	"tiendapos/internal/core/id"
	"tiendapos/internal/domain/permissions"
	"tiendapos/internal/domain/tenantcfg"
)

type matrixRepo struct {
	store *Store
}

func (r *matrixRepo) GetMatrix(ctx context.Context, tenantID id.ID) (permissions.Matrix, error) {
	defer r.store.lock(ctx)()

	matrix, ok := r.store.matrices[tenantID]
	if !ok {
		return permissions.Matrix{}, nil
	}
	return matrix.Clone(), nil
}

func (r *matrixRepo) SaveMatrix(ctx context.Context, tenantID id.ID, matrix permissions.Matrix) error {
	defer r.store.lock(ctx)()

	r.store.matrices[tenantID] = matrix.Clone()
	return nil
}

type settingsRepo struct {
	store *Store
}

func (r *settingsRepo) Get(ctx context.Context, tenantID id.ID) (tenantcfg.Settings, error) {
	defer r.store.lock(ctx)()

	settings, ok := r.store.settings[tenantID]
	if !ok {
		return tenantcfg.DefaultSettings(), nil
	}
	return settings, nil
}

func (r *settingsRepo) Save(ctx context.Context, tenantID id.ID, settings tenantcfg.Settings) error {
	defer r.store.lock(ctx)()

	r.store.settings[tenantID] = settings
	return nil
}
