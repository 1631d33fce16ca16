package services

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
)

// InvoiceDraftSvc edits invoices before issuance.
type InvoiceDraftSvc interface {
	CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest, requestingUserID string) (*domain.Invoice, error)

	// UpdateDraft replaces number, customer, dates and lines, and recomputes totals.
	// Locked invoices fail with apperrors.ErrLockedInvoice.
	UpdateDraft(ctx context.Context, tenantID, invoiceID string, req dto.UpdateInvoiceRequest, requestingUserID string) (*domain.Invoice, error)
}

type InvoiceReaderSvc interface {
	GetInvoice(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, tenantID string, filter portsrepo.InvoiceFilter, requestingUserID string) ([]domain.Invoice, string, error)
}

// InvoiceLifecycleSvc moves invoices through DRAFT, ISSUED, PAID and CANCELED.
type InvoiceLifecycleSvc interface {
	// IssueInvoice seals a draft and appends it to the tenant's integrity chain.
	IssueInvoice(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error)
	MarkPaid(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error)
	// CancelInvoice cancels a draft, or an issued invoice through a CANCEL chain entry.
	CancelInvoice(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error)
}

// InvoiceDocumentSvc serves document generators, which only ever see locked invoices.
type InvoiceDocumentSvc interface {
	GetLockedInvoice(ctx context.Context, tenantID, invoiceID string) (*domain.Invoice, error)
	AttachDocument(ctx context.Context, tenantID, invoiceID, pdfPath, requestingUserID string) (*domain.InvoiceDocument, error)
	ListDocuments(ctx context.Context, tenantID, invoiceID, requestingUserID string) ([]domain.InvoiceDocument, error)
}

// InvoiceChainSvc checks the integrity chain.
type InvoiceChainSvc interface {
	// VerifyChain recomputes the whole chain of tenantID. The error is a
	// *apperrors.ChainMismatchError for the first mismatch. Nothing is repaired.
	VerifyChain(ctx context.Context, tenantID string) (*domain.ChainReport, error)

	// VerifyChainAs authorizes the user, verifies and records the run in the audit log.
	VerifyChainAs(ctx context.Context, tenantID, requestingUserID string) (*domain.ChainReport, error)
}

type InvoiceSvcFacade interface {
	InvoiceDraftSvc
	InvoiceReaderSvc
	InvoiceLifecycleSvc
	InvoiceDocumentSvc
	InvoiceChainSvc
}
