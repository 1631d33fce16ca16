package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/SscSPs/compta_saas_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxEntrepriseRepository struct {
	BaseRepository
}

func newPgxEntrepriseRepository(pool *pgxpool.Pool) portsrepo.EntrepriseRepositoryFacade {
	return &PgxEntrepriseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EntrepriseRepositoryFacade = (*PgxEntrepriseRepository)(nil)

// SaveEntrepriseWithOwner inserts the tenant and its owner membership in one transaction.
func (r *PgxEntrepriseRepository) SaveEntrepriseWithOwner(ctx context.Context, e domain.Entreprise, owner domain.Membership) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO entreprises (entreprise_id, name, siret, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5);`,
			e.EntrepriseID, e.Name, e.Siret, e.IsActive, e.CreatedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("%w: siret %s is already registered", apperrors.ErrDuplicate, e.Siret)
			}
			return fmt.Errorf("failed to insert entreprise: %w", err)
		}

		if err := insertMembership(ctx, tx, owner); err != nil {
			return err
		}
		return nil
	})
}

// FindEntrepriseByID retrieves a tenant by its ID.
func (r *PgxEntrepriseRepository) FindEntrepriseByID(ctx context.Context, entrepriseID string) (*domain.Entreprise, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT entreprise_id, name, siret, is_active, created_at
		FROM entreprises WHERE entreprise_id = $1;`, entrepriseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entreprise %s: %w", entrepriseID, err)
	}
	e, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.Entreprise])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan entreprise %s: %w", entrepriseID, err)
	}
	return &e, nil
}

// SetEntrepriseActive toggles is_active.
func (r *PgxEntrepriseRepository) SetEntrepriseActive(ctx context.Context, entrepriseID string, active bool) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE entreprises SET is_active = $2 WHERE entreprise_id = $1;`, entrepriseID, active)
	if err != nil {
		return fmt.Errorf("failed to update entreprise %s: %w", entrepriseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteEntreprise deletes a tenant; dependent rows follow the foreign key policies.
func (r *PgxEntrepriseRepository) DeleteEntreprise(ctx context.Context, entrepriseID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM entreprises WHERE entreprise_id = $1;`, entrepriseID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewProtectedReferenceError("entreprise " + entrepriseID + " is still referenced")
		}
		return fmt.Errorf("failed to delete entreprise %s: %w", entrepriseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func insertMembership(ctx context.Context, q dbExecutor, m domain.Membership) error {
	model := mapping.ToModelMembership(m)
	_, err := q.Exec(ctx, `
		INSERT INTO memberships (membership_id, user_id, entreprise_id, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		model.MembershipID, model.UserID, model.EntrepriseID, model.Role, model.IsActive, model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) && violatedConstraint(err) == constraintMembershipUserEntreprise {
			return apperrors.ErrDuplicateMembership
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user or entreprise does not exist", apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}
