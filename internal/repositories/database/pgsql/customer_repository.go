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

type PgxCustomerRepository struct {
	BaseRepository
}

func newPgxCustomerRepository(pool *pgxpool.Pool) portsrepo.CustomerRepositoryFacade {
	return &PgxCustomerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CustomerRepositoryFacade = (*PgxCustomerRepository)(nil)

var customerColumns = []string{"customer_id", "entreprise_id", "name", "email", "phone", "address", "vat_number", "created_at"}

func (r *PgxCustomerRepository) SaveCustomer(ctx context.Context, c domain.Customer) error {
	query, args, err := psql.Insert("customers").
		Columns(customerColumns...).
		Values(c.CustomerID, c.EntrepriseID, c.Name, c.Email, c.Phone, c.Address, c.VATNumber, c.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build customer insert: %w", err)
	}
	if _, err := r.Pool.Exec(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: entreprise %s", apperrors.ErrNotFound, c.EntrepriseID)
		}
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

func (r *PgxCustomerRepository) FindCustomerByID(ctx context.Context, entrepriseID, customerID string) (*domain.Customer, error) {
	query, args, err := psql.Select(customerColumns...).
		From("customers").
		Where("entreprise_id = ? AND customer_id = ?", entrepriseID, customerID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build customer query: %w", err)
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer %s: %w", customerID, err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.Customer])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan customer %s: %w", customerID, err)
	}
	return &c, nil
}

func (r *PgxCustomerRepository) ListCustomers(ctx context.Context, entrepriseID string, limit, offset int) ([]domain.Customer, error) {
	query, args, err := psql.Select(customerColumns...).
		From("customers").
		Where("entreprise_id = ?", entrepriseID).
		OrderBy("name ASC", "customer_id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build customer list query: %w", err)
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	customers, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Customer])
	if err != nil {
		return nil, fmt.Errorf("failed to scan customers: %w", err)
	}
	return customers, nil
}

func (r *PgxCustomerRepository) DeleteCustomer(ctx context.Context, entrepriseID, customerID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM customers WHERE entreprise_id = $1 AND customer_id = $2;`, entrepriseID, customerID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewProtectedReferenceError("customer " + customerID + " is referenced by invoices")
		}
		return fmt.Errorf("failed to delete customer %s: %w", customerID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
