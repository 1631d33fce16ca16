package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/google/uuid"
)

// roleService serves the fixed role catalog.
type roleService struct {
	BaseService
	roleRepo portsrepo.RoleRepositoryFacade
}

// NewRoleService creates a new role service.
func NewRoleService(repo portsrepo.RoleRepositoryFacade) portssvc.RoleSvcFacade {
	return &roleService{roleRepo: repo}
}

var _ portssvc.RoleSvcFacade = (*roleService)(nil)

func (s *roleService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roleRepo.ListRoles(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list roles")
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	if roles == nil {
		return []domain.Role{}, nil
	}
	return roles, nil
}

func (s *roleService) GetRoleByCode(ctx context.Context, code domain.RoleCode) (*domain.Role, error) {
	if !code.IsValid() {
		return nil, fmt.Errorf("%w: unknown role code %q", apperrors.ErrValidation, code)
	}
	role, err := s.roleRepo.FindRoleByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get role", slog.String("code", string(code)))
		}
		return nil, err
	}
	return role, nil
}

// CreateRole persists a fixed code once. Empty label or description fall back to the catalog.
func (s *roleService) CreateRole(ctx context.Context, code domain.RoleCode, label, description string) (*domain.Role, error) {
	def, ok := domain.FixedRole(code)
	if !ok {
		return nil, fmt.Errorf("%w: role code %q is not one of the fixed roles", apperrors.ErrValidation, code)
	}

	if _, err := s.roleRepo.FindRoleByCode(ctx, code); err == nil {
		return nil, fmt.Errorf("%w: role %s", apperrors.ErrDuplicate, code)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check role existence", slog.String("code", string(code)))
		return nil, fmt.Errorf("failed to check role %s: %w", code, err)
	}

	if label == "" {
		label = def.Label
	}
	if description == "" {
		description = def.Description
	}
	role := domain.Role{
		RoleID:      uuid.NewString(),
		Code:        code,
		Label:       label,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.roleRepo.SaveRole(ctx, role); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save role", slog.String("code", string(code)))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Role created", slog.String("code", string(code)))
	return &role, nil
}

func (s *roleService) UpdateRole(ctx context.Context, code domain.RoleCode, label, description string) error {
	s.LogInfo(ctx, "Rejected role update", slog.String("code", string(code)))
	return apperrors.ErrImmutableRole
}

func (s *roleService) DeleteRole(ctx context.Context, code domain.RoleCode) error {
	s.LogInfo(ctx, "Rejected role deletion", slog.String("code", string(code)))
	return apperrors.ErrImmutableRole
}

// SeedRoles looks up or creates every fixed role. A concurrent seeder winning the insert
// is treated as success.
func (s *roleService) SeedRoles(ctx context.Context) ([]domain.Role, error) {
	seeded := make([]domain.Role, 0, len(domain.FixedRoles()))
	for _, def := range domain.FixedRoles() {
		role, err := s.roleRepo.FindRoleByCode(ctx, def.Code)
		if err == nil {
			seeded = append(seeded, *role)
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to look up role during seeding", slog.String("code", string(def.Code)))
			return nil, fmt.Errorf("failed to seed role %s: %w", def.Code, err)
		}

		created, err := s.CreateRole(ctx, def.Code, def.Label, def.Description)
		if errors.Is(err, apperrors.ErrDuplicate) {
			created, err = s.roleRepo.FindRoleByCode(ctx, def.Code)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to seed role %s: %w", def.Code, err)
		}
		seeded = append(seeded, *created)
	}
	return seeded, nil
}
