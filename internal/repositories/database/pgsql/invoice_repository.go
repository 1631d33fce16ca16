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
	"github.com/SscSPs/compta_saas_backend/internal/models"
	"github.com/SscSPs/compta_saas_backend/internal/utils/integrity"
	"github.com/SscSPs/compta_saas_backend/internal/utils/mapping"
	"github.com/SscSPs/compta_saas_backend/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxInvoiceRepository struct {
	BaseRepository
}

func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxInvoiceRepository implements portsrepo.InvoiceRepositoryFacade
var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

var invoiceColumns = []string{
	"invoice_id", "entreprise_id", "customer_id", "number", "status", "issue_date", "due_date",
	"total_ht", "total_tva", "total_ttc", "hash_prev", "hash_curr", "locked_at", "created_at", "updated_at",
}

var invoiceLineColumns = []string{
	"invoice_line_id", "entreprise_id", "invoice_id", "position", "label", "qty", "unit_price",
	"vat_rate", "total_ht", "total_tva", "total_ttc",
}

const chainEntryColumns = `chain_entry_id, entreprise_id, invoice_id, seq, kind, hash_prev, hash_curr, recorded_at`

// SaveDraftInvoice inserts the invoice and its lines in one transaction.
func (r *PgxInvoiceRepository) SaveDraftInvoice(ctx context.Context, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		query, args, err := psql.Insert("invoices").
			Columns(invoiceColumns...).
			Values(m.InvoiceID, m.EntrepriseID, m.CustomerID, m.Number, m.Status, m.IssueDate, m.DueDate,
				m.TotalHT, m.TotalTVA, m.TotalTTC, m.HashPrev, m.HashCurr, m.LockedAt, m.CreatedAt, m.UpdatedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build invoice insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("%w: invoice number %s is already used", apperrors.ErrDuplicate, invoice.Number)
			}
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: customer or entreprise does not exist", apperrors.ErrValidation)
			}
			if isNumericOverflow(err) {
				return fmt.Errorf("%w: amount out of range", apperrors.ErrValidation)
			}
			return apperrors.NewAppError(500, "failed to insert invoice "+invoice.InvoiceID, err)
		}
		return insertInvoiceLines(ctx, tx, invoice.Lines)
	})
}

// UpdateDraftInvoice rewrites a draft. The locked_at IS NULL guard makes the statement a
// no-op on sealed invoices, whatever the caller checked before.
func (r *PgxInvoiceRepository) UpdateDraftInvoice(ctx context.Context, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		query, args, err := psql.Update("invoices").
			Set("number", m.Number).
			Set("customer_id", m.CustomerID).
			Set("issue_date", m.IssueDate).
			Set("due_date", m.DueDate).
			Set("total_ht", m.TotalHT).
			Set("total_tva", m.TotalTVA).
			Set("total_ttc", m.TotalTTC).
			Set("updated_at", m.UpdatedAt).
			Where(sq.Eq{"entreprise_id": m.EntrepriseID, "invoice_id": m.InvoiceID, "status": string(domain.InvoiceDraft)}).
			Where("locked_at IS NULL").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build invoice update: %w", err)
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("%w: invoice number %s is already used", apperrors.ErrDuplicate, invoice.Number)
			}
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: customer does not exist", apperrors.ErrValidation)
			}
			if isNumericOverflow(err) {
				return fmt.Errorf("%w: amount out of range", apperrors.ErrValidation)
			}
			return apperrors.NewAppError(500, "failed to update invoice "+invoice.InvoiceID, err)
		}
		if tag.RowsAffected() == 0 {
			return explainRejectedWrite(ctx, tx, m.EntrepriseID, m.InvoiceID)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM invoice_lines WHERE entreprise_id = $1 AND invoice_id = $2;`, m.EntrepriseID, m.InvoiceID); err != nil {
			return apperrors.NewAppError(500, "failed to replace invoice lines", err)
		}
		return insertInvoiceLines(ctx, tx, invoice.Lines)
	})
}

// explainRejectedWrite tells apart the reasons a guarded draft write matched no row.
func explainRejectedWrite(ctx context.Context, q dbExecutor, entrepriseID, invoiceID string) error {
	var status string
	var lockedAt *time.Time
	err := q.QueryRow(ctx, `SELECT status, locked_at FROM invoices WHERE entreprise_id = $1 AND invoice_id = $2;`, entrepriseID, invoiceID).Scan(&status, &lockedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to read invoice %s: %w", invoiceID, err)
	}
	if lockedAt != nil {
		return apperrors.ErrLockedInvoice
	}
	return fmt.Errorf("%w: invoice is %s", apperrors.ErrInvalidTransition, status)
}

func insertInvoiceLines(ctx context.Context, tx pgx.Tx, lines []domain.InvoiceLine) error {
	if len(lines) == 0 {
		return nil
	}
	builder := psql.Insert("invoice_lines").Columns(invoiceLineColumns...)
	for _, l := range lines {
		builder = builder.Values(l.InvoiceLineID, l.EntrepriseID, l.InvoiceID, l.Position, l.Label, l.Qty, l.UnitPrice,
			l.VATRate, l.TotalHT, l.TotalTVA, l.TotalTTC)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build invoice lines insert: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: duplicate line position", apperrors.ErrValidation)
		}
		if isNumericOverflow(err) {
			return fmt.Errorf("%w: line amount out of range", apperrors.ErrValidation)
		}
		return apperrors.NewAppError(500, "failed to insert invoice lines", err)
	}
	return nil
}

// FindInvoiceByID retrieves an invoice with its lines.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, entrepriseID, invoiceID string) (*domain.Invoice, error) {
	return findInvoice(ctx, r.Pool, entrepriseID, invoiceID, false)
}

func findInvoice(ctx context.Context, q dbExecutor, entrepriseID, invoiceID string, forUpdate bool) (*domain.Invoice, error) {
	builder := psql.Select(invoiceColumns...).
		From("invoices").
		Where(sq.Eq{"entreprise_id": entrepriseID, "invoice_id": invoiceID})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build invoice query: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice %s: %w", invoiceID, err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Invoice])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan invoice %s: %w", invoiceID, err)
	}

	invoice := mapping.ToDomainInvoice(m)
	lines, err := findInvoiceLines(ctx, q, entrepriseID, []string{invoiceID})
	if err != nil {
		return nil, err
	}
	invoice.Lines = lines[invoiceID]
	return &invoice, nil
}

func findInvoiceLines(ctx context.Context, q dbExecutor, entrepriseID string, invoiceIDs []string) (map[string][]domain.InvoiceLine, error) {
	query, args, err := psql.Select(invoiceLineColumns...).
		From("invoice_lines").
		Where(sq.Eq{"entreprise_id": entrepriseID, "invoice_id": invoiceIDs}).
		OrderBy("invoice_id", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build invoice lines query: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice lines: %w", err)
	}
	lines, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.InvoiceLine])
	if err != nil {
		return nil, fmt.Errorf("failed to scan invoice lines: %w", err)
	}
	byInvoice := make(map[string][]domain.InvoiceLine, len(invoiceIDs))
	for _, l := range lines {
		byInvoice[l.InvoiceID] = append(byInvoice[l.InvoiceID], l)
	}
	return byInvoice, nil
}

// FindInvoicesByIDs retrieves several invoices of a tenant with their lines.
func (r *PgxInvoiceRepository) FindInvoicesByIDs(ctx context.Context, entrepriseID string, invoiceIDs []string) (map[string]domain.Invoice, error) {
	if len(invoiceIDs) == 0 {
		return map[string]domain.Invoice{}, nil
	}
	query, args, err := psql.Select(invoiceColumns...).
		From("invoices").
		Where(sq.Eq{"entreprise_id": entrepriseID, "invoice_id": invoiceIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build invoices query: %w", err)
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices by IDs: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Invoice])
	if err != nil {
		return nil, fmt.Errorf("failed to scan invoices: %w", err)
	}
	lines, err := findInvoiceLines(ctx, r.Pool, entrepriseID, invoiceIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.Invoice, len(ms))
	for _, m := range ms {
		invoice := mapping.ToDomainInvoice(m)
		invoice.Lines = lines[invoice.InvoiceID]
		out[invoice.InvoiceID] = invoice
	}
	return out, nil
}

// ListInvoices lists invoices newest issue date first with keyset pagination.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, entrepriseID string, filter portsrepo.InvoiceFilter) ([]domain.Invoice, string, error) {
	limit := pagination.NormalizeLimit(filter.Limit)
	builder := psql.Select(invoiceColumns...).
		From("invoices").
		Where(sq.Eq{"entreprise_id": entrepriseID}).
		OrderBy("issue_date DESC", "invoice_id DESC").
		Limit(uint64(limit + 1))

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": string(filter.Status)})
	}
	if filter.CustomerID != "" {
		builder = builder.Where(sq.Eq{"customer_id": filter.CustomerID})
	}
	if filter.From != nil {
		builder = builder.Where(sq.GtOrEq{"issue_date": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(sq.LtOrEq{"issue_date": *filter.To})
	}
	if filter.NextToken != "" {
		issueDate, lastID, err := pagination.DecodeTimeIDToken(filter.NextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		builder = builder.Where("(issue_date, invoice_id) < (?, ?)", issueDate, lastID)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, "", fmt.Errorf("failed to build invoice list query: %w", err)
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list invoices: %w", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Invoice])
	if err != nil {
		return nil, "", fmt.Errorf("failed to scan invoices: %w", err)
	}

	var token string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[len(ms)-1]
		token = pagination.EncodeTimeIDToken(last.IssueDate, last.InvoiceID)
	}
	return mapping.ToDomainInvoices(ms), token, nil
}

// MarkInvoicePaid moves an ISSUED invoice to PAID. The sealed content is untouched.
func (r *PgxInvoiceRepository) MarkInvoicePaid(ctx context.Context, entrepriseID, invoiceID string, now time.Time) (*domain.Invoice, error) {
	var paid *domain.Invoice
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		invoice, err := findInvoice(ctx, tx, entrepriseID, invoiceID, true)
		if err != nil {
			return err
		}
		if !invoice.Status.CanTransitionTo(domain.InvoicePaid) {
			return fmt.Errorf("%w: %s to %s", apperrors.ErrInvalidTransition, invoice.Status, domain.InvoicePaid)
		}
		if err := setInvoiceStatus(ctx, tx, entrepriseID, invoiceID, invoice.Status, domain.InvoicePaid, now); err != nil {
			return err
		}
		invoice.Status = domain.InvoicePaid
		invoice.UpdatedAt = now
		paid = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

func setInvoiceStatus(ctx context.Context, tx pgx.Tx, entrepriseID, invoiceID string, from, to domain.InvoiceStatus, now time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE invoices SET status = $4, updated_at = $5
		WHERE entreprise_id = $1 AND invoice_id = $2 AND status = $3;`,
		entrepriseID, invoiceID, string(from), string(to), now)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update invoice status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %s is no longer %s", apperrors.ErrInvalidTransition, invoiceID, from)
	}
	return nil
}

// IssueInvoice seals a draft and appends it to the tenant chain in one transaction.
// The tail row lock serializes issuance per tenant; tenants never wait on each other.
func (r *PgxInvoiceRepository) IssueInvoice(ctx context.Context, entrepriseID, invoiceID string, now time.Time) (*domain.Invoice, error) {
	now = integrity.Timestamp(now)
	var issued *domain.Invoice

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		tail, err := lockChainTail(ctx, tx, entrepriseID, now)
		if err != nil {
			return err
		}

		invoice, err := findInvoice(ctx, tx, entrepriseID, invoiceID, true)
		if err != nil {
			return err
		}
		if invoice.IsLocked() {
			return apperrors.ErrLockedInvoice
		}
		if !invoice.Status.CanTransitionTo(domain.InvoiceIssued) {
			return fmt.Errorf("%w: %s to %s", apperrors.ErrInvalidTransition, invoice.Status, domain.InvoiceIssued)
		}

		prev := tail.LastHash
		curr := integrity.SealInvoice(entrepriseID, *invoice, prev)

		tag, err := tx.Exec(ctx, `
			UPDATE invoices
			SET status = $3, hash_prev = $4, hash_curr = $5, locked_at = $6, updated_at = $6
			WHERE entreprise_id = $1 AND invoice_id = $2 AND status = 'DRAFT' AND locked_at IS NULL;`,
			entrepriseID, invoiceID, string(domain.InvoiceIssued), prev, curr, now)
		if err != nil {
			return apperrors.NewAppError(500, "failed to seal invoice "+invoiceID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrLockedInvoice
		}

		entry := domain.InvoiceChainEntry{
			ChainEntryID: uuid.NewString(),
			EntrepriseID: entrepriseID,
			InvoiceID:    invoiceID,
			Seq:          tail.LastSeq + 1,
			Kind:         domain.ChainEntryIssue,
			HashPrev:     prev,
			HashCurr:     curr,
			RecordedAt:   now,
		}
		if err := appendChainEntry(ctx, tx, entry); err != nil {
			return err
		}

		invoice.Status = domain.InvoiceIssued
		invoice.HashPrev = &prev
		invoice.HashCurr = &curr
		invoice.LockedAt = &now
		invoice.UpdatedAt = now
		issued = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// CancelInvoice cancels a draft, or an issued invoice with a CANCEL chain entry.
func (r *PgxInvoiceRepository) CancelInvoice(ctx context.Context, entrepriseID, invoiceID string, now time.Time) (*domain.Invoice, error) {
	now = integrity.Timestamp(now)
	var canceled *domain.Invoice

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		tail, err := lockChainTail(ctx, tx, entrepriseID, now)
		if err != nil {
			return err
		}

		invoice, err := findInvoice(ctx, tx, entrepriseID, invoiceID, true)
		if err != nil {
			return err
		}
		if !invoice.Status.CanTransitionTo(domain.InvoiceCanceled) {
			return fmt.Errorf("%w: %s to %s", apperrors.ErrInvalidTransition, invoice.Status, domain.InvoiceCanceled)
		}

		if invoice.IsLocked() {
			prev := tail.LastHash
			curr := integrity.SealCancel(entrepriseID, invoice.Number, *invoice.HashCurr, now, prev)
			entry := domain.InvoiceChainEntry{
				ChainEntryID: uuid.NewString(),
				EntrepriseID: entrepriseID,
				InvoiceID:    invoiceID,
				Seq:          tail.LastSeq + 1,
				Kind:         domain.ChainEntryCancel,
				HashPrev:     prev,
				HashCurr:     curr,
				RecordedAt:   now,
			}
			if err := appendChainEntry(ctx, tx, entry); err != nil {
				return err
			}
		}

		if err := setInvoiceStatus(ctx, tx, entrepriseID, invoiceID, invoice.Status, domain.InvoiceCanceled, now); err != nil {
			return err
		}
		invoice.Status = domain.InvoiceCanceled
		invoice.UpdatedAt = now
		canceled = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return canceled, nil
}

// lockChainTail creates the tenant tail on first use and locks it for the rest of tx.
func lockChainTail(ctx context.Context, tx pgx.Tx, entrepriseID string, now time.Time) (*domain.ChainTail, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO invoice_chain_tails (entreprise_id, last_hash, last_seq, updated_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (entreprise_id) DO NOTHING;`,
		entrepriseID, integrity.Seed, now)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: entreprise %s", apperrors.ErrNotFound, entrepriseID)
		}
		return nil, apperrors.NewAppError(500, "failed to initialise invoice chain", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT entreprise_id, last_hash, last_seq, updated_at
		FROM invoice_chain_tails WHERE entreprise_id = $1
		FOR UPDATE;`, entrepriseID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock invoice chain", err)
	}
	tail, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.ChainTail])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to read invoice chain tail", err)
	}
	return &tail, nil
}

// appendChainEntry inserts entry and moves the tail onto it. The unique constraints on
// (entreprise_id, seq) and (entreprise_id, hash_prev) reject any fork.
func appendChainEntry(ctx context.Context, tx pgx.Tx, entry domain.InvoiceChainEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO invoice_chain_entries (`+chainEntryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		entry.ChainEntryID, entry.EntrepriseID, entry.InvoiceID, entry.Seq, string(entry.Kind),
		entry.HashPrev, entry.HashCurr, entry.RecordedAt)
	if err != nil {
		return chainAppendError(err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE invoice_chain_tails SET last_hash = $2, last_seq = $3, updated_at = $4
		WHERE entreprise_id = $1;`,
		entry.EntrepriseID, entry.HashCurr, entry.Seq, entry.RecordedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to advance invoice chain tail", err)
	}
	return nil
}

// chainAppendError maps a failed chain insert. A fork attempt means another writer
// moved the tail first and surfaces as a conflict.
func chainAppendError(err error) error {
	if isDuplicateKeyError(err) {
		switch violatedConstraint(err) {
		case constraintChainEntriesPrev, constraintChainEntriesSeq:
			return apperrors.NewAppError(409, "invoice chain moved concurrently", fmt.Errorf("%w: %w", apperrors.ErrDuplicate, err))
		}
	}
	return apperrors.NewAppError(500, "failed to append invoice chain entry", err)
}

// ListChainEntries retrieves the tenant chain ordered by seq.
func (r *PgxInvoiceRepository) ListChainEntries(ctx context.Context, entrepriseID string) ([]domain.InvoiceChainEntry, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+chainEntryColumns+` FROM invoice_chain_entries WHERE entreprise_id = $1 ORDER BY seq ASC;`, entrepriseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chain entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.InvoiceChainEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to scan chain entries: %w", err)
	}
	return entries, nil
}

func (r *PgxInvoiceRepository) FindChainTail(ctx context.Context, entrepriseID string) (*domain.ChainTail, error) {
	rows, err := r.Pool.Query(ctx, `SELECT entreprise_id, last_hash, last_seq, updated_at FROM invoice_chain_tails WHERE entreprise_id = $1;`, entrepriseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chain tail: %w", err)
	}
	tail, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.ChainTail])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan chain tail: %w", err)
	}
	return &tail, nil
}

// SaveInvoiceDocument records a rendered PDF. Only locked invoices accept documents.
func (r *PgxInvoiceRepository) SaveInvoiceDocument(ctx context.Context, doc domain.InvoiceDocument) error {
	tag, err := r.Pool.Exec(ctx, `
		INSERT INTO invoice_documents (invoice_document_id, entreprise_id, invoice_id, pdf_path, generated_at)
		SELECT $1, $2, $3, $4, $5
		FROM invoices
		WHERE entreprise_id = $2 AND invoice_id = $3 AND locked_at IS NOT NULL;`,
		doc.InvoiceDocumentID, doc.EntrepriseID, doc.InvoiceID, doc.PDFPath, doc.GeneratedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save invoice document", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.FindInvoiceByID(ctx, doc.EntrepriseID, doc.InvoiceID); err != nil {
			return err
		}
		return fmt.Errorf("%w: documents can only be attached to issued invoices", apperrors.ErrValidation)
	}
	return nil
}

func (r *PgxInvoiceRepository) ListInvoiceDocuments(ctx context.Context, entrepriseID, invoiceID string) ([]domain.InvoiceDocument, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT invoice_document_id, entreprise_id, invoice_id, pdf_path, generated_at
		FROM invoice_documents WHERE entreprise_id = $1 AND invoice_id = $2
		ORDER BY generated_at DESC;`, entrepriseID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice documents: %w", err)
	}
	docs, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.InvoiceDocument])
	if err != nil {
		return nil, fmt.Errorf("failed to scan invoice documents: %w", err)
	}
	return docs, nil
}
