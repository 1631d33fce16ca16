package services

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// RoleReaderSvc defines read operations on the fixed role catalog.
type RoleReaderSvc interface {
	ListRoles(ctx context.Context) ([]domain.Role, error)
	GetRoleByCode(ctx context.Context, code domain.RoleCode) (*domain.Role, error)
}

// RoleWriterSvc defines the only writes roles accept: creation of a fixed code.
// Update and delete exist so callers get an explicit refusal.
type RoleWriterSvc interface {
	// CreateRole persists one of the fixed codes that is not persisted yet.
	CreateRole(ctx context.Context, code domain.RoleCode, label, description string) (*domain.Role, error)

	// UpdateRole always fails with apperrors.ErrImmutableRole.
	UpdateRole(ctx context.Context, code domain.RoleCode, label, description string) error

	// DeleteRole always fails with apperrors.ErrImmutableRole.
	DeleteRole(ctx context.Context, code domain.RoleCode) error

	// SeedRoles creates the missing fixed roles. Running it again changes nothing.
	SeedRoles(ctx context.Context) ([]domain.Role, error)
}

type RoleSvcFacade interface {
	RoleReaderSvc
	RoleWriterSvc
}
