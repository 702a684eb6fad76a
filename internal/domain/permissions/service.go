package permissions

import (
	"context"
	"fmt"

	"tiendapos/internal/core/apperror"
	"tiendapos/internal/core/id"
	"tiendapos/pkg/logger"
)

// Service loads and maintains the stored role→capability matrix and resolves
// effective permission sets against it.
type Service struct {
	repo Repository
}

// NewService creates a new permissions service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EffectiveSet resolves the actor's effective permissions against the
// tenant's stored matrix. The super-role short-circuits without a read.
func (s *Service) EffectiveSet(ctx context.Context, actor Actor) (PermissionSet, error) {
	if actor.Role == RoleSuperuser {
		return FullSet(), nil
	}

	matrix, err := s.repo.GetMatrix(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("get permission matrix: %w", err)
	}

	return Resolve(actor, matrix), nil
}

// Require returns PermissionDenied unless the actor's effective set grants
// the capability. Callers treat a denial as a hard failure, never a no-op.
func (s *Service) Require(ctx context.Context, actor Actor, capability Capability) error {
	set, err := s.EffectiveSet(ctx, actor)
	if err != nil {
		return err
	}
	if !set.Allows(capability) {
		return apperror.NewPermissionDenied(string(capability)).
			WithDetail("role", string(actor.Role))
	}
	return nil
}

// Matrix returns the stored matrix for a tenant. Requires manage-permissions.
func (s *Service) Matrix(ctx context.Context, actor Actor, tenantID id.ID) (Matrix, error) {
	if err := s.Require(ctx, actor, CapManagePermissions); err != nil {
		return nil, err
	}
	return s.repo.GetMatrix(ctx, tenantID)
}

// UpdateMatrix replaces the stored matrix for a tenant.
// Requires manage-permissions. Rows for the super-role and unknown roles or
// capabilities are rejected so the stored configuration stays closed.
func (s *Service) UpdateMatrix(ctx context.Context, actor Actor, tenantID id.ID, matrix Matrix) error {
	if err := s.Require(ctx, actor, CapManagePermissions); err != nil {
		return err
	}

	for role, set := range matrix {
		if role == RoleSuperuser {
			return apperror.NewValidation("super-role permissions are not configurable").
				WithDetail("role", string(role))
		}
		if !role.IsValid() {
			return apperror.NewValidation("unknown role").
				WithDetail("role", string(role))
		}
		for capability := range set {
			if !capability.IsValid() {
				return apperror.NewValidation("unknown capability").
					WithDetail("role", string(role)).
					WithDetail("capability", string(capability))
			}
		}
	}

	if err := s.repo.SaveMatrix(ctx, tenantID, matrix); err != nil {
		return fmt.Errorf("save permission matrix: %w", err)
	}

	logger.Info(ctx, "permission matrix updated",
		"tenant_id", tenantID,
		"roles", len(matrix),
	)
	return nil
}
