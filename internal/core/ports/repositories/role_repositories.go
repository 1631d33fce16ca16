package repositories

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// RoleReader defines read operations for the role registry
type RoleReader interface {
	// FindRoleByCode retrieves a role by its code, or apperrors.ErrNotFound.
	FindRoleByCode(ctx context.Context, code domain.RoleCode) (*domain.Role, error)

	// FindRoleByID retrieves a role by its identifier.
	FindRoleByID(ctx context.Context, roleID string) (*domain.Role, error)

	// ListRoles retrieves all persisted roles ordered by code.
	ListRoles(ctx context.Context) ([]domain.Role, error)
}

// RoleWriter only inserts. Roles are immutable once persisted, so there is
// deliberately no update or delete operation.
type RoleWriter interface {
	// SaveRole inserts a role. A persisted code yields apperrors.ErrDuplicate.
	SaveRole(ctx context.Context, role domain.Role) error
}

// RoleRepositoryFacade combines all role repository interfaces
type RoleRepositoryFacade interface {
	RoleReader
	RoleWriter
}
