package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRoleRepository struct {
	BaseRepository
}

func newPgxRoleRepository(pool *pgxpool.Pool) portsrepo.RoleRepositoryFacade {
	return &PgxRoleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RoleRepositoryFacade = (*PgxRoleRepository)(nil)

const roleColumns = `role_id, code, label, description, created_at`

// SaveRole inserts a role row. There is no upsert: a persisted code is never rewritten.
func (r *PgxRoleRepository) SaveRole(ctx context.Context, role domain.Role) error {
	query := `INSERT INTO roles (` + roleColumns + `) VALUES ($1, $2, $3, $4, $5);`
	_, err := r.Pool.Exec(ctx, query, role.RoleID, role.Code, role.Label, role.Description, role.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: role %s already exists", apperrors.ErrDuplicate, role.Code)
		}
		return fmt.Errorf("failed to save role %s: %w", role.Code, err)
	}
	return nil
}

// FindRoleByCode retrieves a role by its code.
func (r *PgxRoleRepository) FindRoleByCode(ctx context.Context, code domain.RoleCode) (*domain.Role, error) {
	return r.findOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE code = $1;`, code)
}

// FindRoleByID retrieves a role by its ID.
func (r *PgxRoleRepository) FindRoleByID(ctx context.Context, roleID string) (*domain.Role, error) {
	return r.findOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE role_id = $1;`, roleID)
}

func (r *PgxRoleRepository) findOne(ctx context.Context, query string, arg any) (*domain.Role, error) {
	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query role: %w", err)
	}
	role, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.Role])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan role: %w", err)
	}
	return &role, nil
}

// ListRoles retrieves all roles ordered by code.
func (r *PgxRoleRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY code;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	roles, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Role])
	if err != nil {
		return nil, fmt.Errorf("failed to scan roles: %w", err)
	}
	return roles, nil
}
