package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// InvoiceFilter narrows invoice listings. Zero values mean no filter.
type InvoiceFilter struct {
	Status     domain.InvoiceStatus
	CustomerID string
	From       *time.Time
	To         *time.Time
	Limit      int
	NextToken  string
}

// InvoiceReader defines read operations for invoices
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice of the tenant with its lines ordered by position.
	FindInvoiceByID(ctx context.Context, entrepriseID, invoiceID string) (*domain.Invoice, error)

	// FindInvoicesByIDs retrieves invoices with their lines, keyed by id.
	FindInvoicesByIDs(ctx context.Context, entrepriseID string, invoiceIDs []string) (map[string]domain.Invoice, error)

	// ListInvoices retrieves invoices without lines, newest issue date first,
	// and the token of the next page ("" on the last page).
	ListInvoices(ctx context.Context, entrepriseID string, filter InvoiceFilter) ([]domain.Invoice, string, error)

	ListInvoiceDocuments(ctx context.Context, entrepriseID, invoiceID string) ([]domain.InvoiceDocument, error)
}

// InvoiceWriter defines write operations for invoices. Writes touching the financial
// content only apply while the invoice is not locked and fail with
// apperrors.ErrLockedInvoice otherwise.
type InvoiceWriter interface {
	// SaveDraftInvoice inserts a draft with its lines. A number already used in the
	// tenant yields apperrors.ErrDuplicate.
	SaveDraftInvoice(ctx context.Context, invoice domain.Invoice) error

	// UpdateDraftInvoice replaces the number, customer, dates, totals and lines of a draft.
	UpdateDraftInvoice(ctx context.Context, invoice domain.Invoice) error

	// MarkInvoicePaid moves an ISSUED invoice to PAID.
	MarkInvoicePaid(ctx context.Context, entrepriseID, invoiceID string, now time.Time) (*domain.Invoice, error)

	SaveInvoiceDocument(ctx context.Context, doc domain.InvoiceDocument) error
}

// InvoiceChainSupport defines the operations appending to and reading the tenant invoice chain.
type InvoiceChainSupport interface {
	// IssueInvoice seals a DRAFT invoice in a single transaction: it locks the tenant
	// chain tail, computes hash_curr over the content and the tail hash, writes
	// hash_prev, hash_curr and locked_at, sets ISSUED, appends the chain entry and
	// advances the tail. Nothing is written when any step fails.
	IssueInvoice(ctx context.Context, entrepriseID, invoiceID string, now time.Time) (*domain.Invoice, error)

	// CancelInvoice moves a DRAFT or ISSUED invoice to CANCELED. Canceling an issued
	// invoice appends a CANCEL entry to the chain in the same transaction.
	CancelInvoice(ctx context.Context, entrepriseID, invoiceID string, now time.Time) (*domain.Invoice, error)

	// ListChainEntries retrieves every chain entry of the tenant ordered by seq.
	ListChainEntries(ctx context.Context, entrepriseID string) ([]domain.InvoiceChainEntry, error)

	// FindChainTail retrieves the tenant chain tail, or apperrors.ErrNotFound before the first issuance.
	FindChainTail(ctx context.Context, entrepriseID string) (*domain.ChainTail, error)
}

// InvoiceRepositoryFacade combines all invoice repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
	InvoiceChainSupport
}
