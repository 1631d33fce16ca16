package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/SscSPs/compta_saas_backend/internal/models"
	"github.com/SscSPs/compta_saas_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxMembershipRepository struct {
	BaseRepository
}

func newPgxMembershipRepository(pool *pgxpool.Pool) portsrepo.MembershipRepositoryFacade {
	return &PgxMembershipRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MembershipRepositoryFacade = (*PgxMembershipRepository)(nil)

const membershipColumns = `membership_id, user_id, entreprise_id, role, is_active, created_at, updated_at`

// SaveMembership inserts a membership; the unique (user_id, entreprise_id) constraint
// turns a concurrent duplicate into apperrors.ErrDuplicateMembership.
func (r *PgxMembershipRepository) SaveMembership(ctx context.Context, m domain.Membership) error {
	return insertMembership(ctx, r.Pool, m)
}

func (r *PgxMembershipRepository) FindMembershipByID(ctx context.Context, membershipID string) (*domain.Membership, error) {
	return r.findOne(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE membership_id = $1;`, membershipID)
}

func (r *PgxMembershipRepository) FindMembership(ctx context.Context, userID, entrepriseID string) (*domain.Membership, error) {
	return r.findOne(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 AND entreprise_id = $2;`, userID, entrepriseID)
}

func (r *PgxMembershipRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Membership, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query membership: %w", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Membership])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan membership: %w", err)
	}
	membership := mapping.ToDomainMembership(m)
	return &membership, nil
}

// ListActiveTenantsByUser lists tenants reachable through active memberships, oldest first.
func (r *PgxMembershipRepository) ListActiveTenantsByUser(ctx context.Context, userID string) ([]domain.TenantAccess, error) {
	query := `
		SELECT e.entreprise_id, e.name, e.siret, e.is_active, e.created_at,
		       m.membership_id, m.role, m.created_at AS joined_at
		FROM memberships m
		JOIN entreprises e ON e.entreprise_id = m.entreprise_id
		WHERE m.user_id = $1 AND m.is_active = TRUE
		ORDER BY m.created_at ASC, m.membership_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants for user %s: %w", userID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.TenantAccess])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tenants for user %s: %w", userID, err)
	}
	out := make([]domain.TenantAccess, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainTenantAccess(m)
	}
	return out, nil
}

func (r *PgxMembershipRepository) ListMembershipsByEntreprise(ctx context.Context, entrepriseID string) ([]domain.Membership, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE entreprise_id = $1 ORDER BY created_at ASC;`, entrepriseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships of entreprise %s: %w", entrepriseID, err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Membership])
	if err != nil {
		return nil, fmt.Errorf("failed to scan memberships: %w", err)
	}
	out := make([]domain.Membership, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainMembership(m)
	}
	return out, nil
}

func (r *PgxMembershipRepository) UpdateMembershipRole(ctx context.Context, membershipID string, role domain.MembershipRole, now time.Time) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE memberships SET role = $2, updated_at = $3 WHERE membership_id = $1;`, membershipID, string(role), now)
	if err != nil {
		return fmt.Errorf("failed to update role of membership %s: %w", membershipID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxMembershipRepository) SetMembershipActive(ctx context.Context, membershipID string, active bool, now time.Time) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE memberships SET is_active = $2, updated_at = $3 WHERE membership_id = $1;`, membershipID, active, now)
	if err != nil {
		return fmt.Errorf("failed to update membership %s: %w", membershipID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
