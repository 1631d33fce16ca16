package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBankTransactionRepository struct {
	BaseRepository
}

func newPgxBankTransactionRepository(pool *pgxpool.Pool) portsrepo.BankTransactionRepositoryFacade {
	return &PgxBankTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BankTransactionRepositoryFacade = (*PgxBankTransactionRepository)(nil)

var bankTransactionColumns = []string{"bank_transaction_id", "entreprise_id", "date", "label", "amount", "created_at"}

func (r *PgxBankTransactionRepository) SaveBankTransaction(ctx context.Context, t domain.BankTransaction) error {
	query, args, err := psql.Insert("bank_transactions").
		Columns(bankTransactionColumns...).
		Values(t.BankTransactionID, t.EntrepriseID, t.Date, t.Label, t.Amount, t.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build bank transaction insert: %w", err)
	}
	if _, err := r.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save bank transaction: %w", err)
	}
	return nil
}

func (r *PgxBankTransactionRepository) FindBankTransactionByID(ctx context.Context, entrepriseID, bankTransactionID string) (*domain.BankTransaction, error) {
	query, args, err := psql.Select(bankTransactionColumns...).
		From("bank_transactions").
		Where(sq.Eq{"entreprise_id": entrepriseID, "bank_transaction_id": bankTransactionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build bank transaction query: %w", err)
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank transaction %s: %w", bankTransactionID, err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.BankTransaction])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan bank transaction %s: %w", bankTransactionID, err)
	}
	return &t, nil
}

func (r *PgxBankTransactionRepository) ListBankTransactions(ctx context.Context, entrepriseID string, from, to *time.Time) ([]domain.BankTransaction, error) {
	builder := psql.Select(bankTransactionColumns...).
		From("bank_transactions").
		Where(sq.Eq{"entreprise_id": entrepriseID}).
		OrderBy("date ASC", "created_at ASC")
	if from != nil {
		builder = builder.Where(sq.GtOrEq{"date": *from})
	}
	if to != nil {
		builder = builder.Where(sq.LtOrEq{"date": *to})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build bank transaction list query: %w", err)
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}
	txns, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.BankTransaction])
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank transactions: %w", err)
	}
	return txns, nil
}

func (r *PgxBankTransactionRepository) DeleteBankTransaction(ctx context.Context, entrepriseID, bankTransactionID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM bank_transactions WHERE entreprise_id = $1 AND bank_transaction_id = $2;`, entrepriseID, bankTransactionID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewProtectedReferenceError("bank transaction " + bankTransactionID + " is reconciled")
		}
		return fmt.Errorf("failed to delete bank transaction %s: %w", bankTransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

var reconciliationColumns = []string{"reconciliation_id", "entreprise_id", "invoice_id", "bank_transaction_id", "matched_amount", "matched_at", "matched_by"}

// SaveReconciliation inserts a match; uq_reconciliation_triple rejects a repeated triple.
func (r *PgxReconciliationRepository) SaveReconciliation(ctx context.Context, rec domain.Reconciliation) error {
	query, args, err := psql.Insert("reconciliations").
		Columns(reconciliationColumns...).
		Values(rec.ReconciliationID, rec.EntrepriseID, rec.InvoiceID, rec.BankTransactionID, rec.MatchedAmount, rec.MatchedAt, rec.MatchedBy).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build reconciliation insert: %w", err)
	}
	if _, err := r.Pool.Exec(ctx, query, args...); err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: invoice %s is already reconciled with bank transaction %s", apperrors.ErrDuplicate, rec.InvoiceID, rec.BankTransactionID)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: invoice, bank transaction or user does not exist", apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to save reconciliation: %w", err)
	}
	return nil
}

func (r *PgxReconciliationRepository) ListReconciliationsByInvoice(ctx context.Context, entrepriseID, invoiceID string) ([]domain.Reconciliation, error) {
	query, args, err := psql.Select(reconciliationColumns...).
		From("reconciliations").
		Where(sq.Eq{"entreprise_id": entrepriseID, "invoice_id": invoiceID}).
		OrderBy("matched_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build reconciliation list query: %w", err)
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliations: %w", err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Reconciliation])
	if err != nil {
		return nil, fmt.Errorf("failed to scan reconciliations: %w", err)
	}
	return recs, nil
}
