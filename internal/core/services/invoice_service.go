package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/platform/metrics"
	"github.com/SscSPs/compta_saas_backend/internal/utils/accounting"
	"github.com/SscSPs/compta_saas_backend/internal/utils/integrity"
	"github.com/google/uuid"
)

// invoiceService implements the invoice lifecycle and the tenant integrity chain.
type invoiceService struct {
	BaseService
	invoiceRepo  portsrepo.InvoiceRepositoryFacade
	customerRepo portsrepo.CustomerReader
	audit        portssvc.AuditRecorderSvc
	now          func() time.Time
}

// InvoiceOption is a functional option for configuring the invoice service
type InvoiceOption func(*invoiceService)

// WithInvoiceAuthorizer adds the tenant authorizer dependency
func WithInvoiceAuthorizer(authorizer portssvc.TenantAuthorizerSvc) InvoiceOption {
	return func(s *invoiceService) {
		s.TenantAuthorizer = authorizer
	}
}

// WithInvoiceAuditRecorder records lifecycle transitions and chain verifications.
func WithInvoiceAuditRecorder(recorder portssvc.AuditRecorderSvc) InvoiceOption {
	return func(s *invoiceService) {
		s.audit = recorder
	}
}

// WithInvoiceClock overrides the clock used for lock and chain timestamps.
func WithInvoiceClock(now func() time.Time) InvoiceOption {
	return func(s *invoiceService) {
		s.now = now
	}
}

// NewInvoiceService creates a new invoice service with the provided options
func NewInvoiceService(repo portsrepo.InvoiceRepositoryFacade, customers portsrepo.CustomerReader, options ...InvoiceOption) portssvc.InvoiceSvcFacade {
	svc := &invoiceService{
		invoiceRepo:  repo,
		customerRepo: customers,
		now:          time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// buildDraft turns a request into invoice content with computed totals.
func (s *invoiceService) buildDraft(ctx context.Context, tenantID, invoiceID string, req dto.CreateInvoiceRequest) (domain.Invoice, error) {
	req.Number = strings.TrimSpace(req.Number)
	if err := validateStruct(req); err != nil {
		return domain.Invoice{}, err
	}

	if _, err := s.customerRepo.FindCustomerByID(ctx, tenantID, req.CustomerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Invoice{}, fmt.Errorf("%w: customer %s does not exist in this tenant", apperrors.ErrValidation, req.CustomerID)
		}
		return domain.Invoice{}, fmt.Errorf("failed to check customer: %w", err)
	}

	invoice := domain.Invoice{
		InvoiceID:    invoiceID,
		EntrepriseID: tenantID,
		CustomerID:   req.CustomerID,
		Number:       req.Number,
		Status:       domain.InvoiceDraft,
		IssueDate:    dateOnly(req.IssueDate),
		Lines:        make([]domain.InvoiceLine, len(req.Lines)),
	}
	if req.DueDate != nil {
		due := dateOnly(*req.DueDate)
		if due.Before(invoice.IssueDate) {
			return domain.Invoice{}, fmt.Errorf("%w: due date is before issue date", apperrors.ErrValidation)
		}
		invoice.DueDate = &due
	}

	positions := make(map[int]bool, len(req.Lines))
	for i, l := range req.Lines {
		position := l.Position
		if position == 0 {
			position = i + 1
		}
		if positions[position] {
			return domain.Invoice{}, fmt.Errorf("%w: duplicate line position %d", apperrors.ErrValidation, position)
		}
		positions[position] = true

		invoice.Lines[i] = domain.InvoiceLine{
			InvoiceLineID: uuid.NewString(),
			EntrepriseID:  tenantID,
			InvoiceID:     invoiceID,
			Position:      position,
			Label:         strings.TrimSpace(l.Label),
			Qty:           l.Qty,
			UnitPrice:     l.UnitPrice,
			VATRate:       l.VATRate,
		}
	}
	if err := accounting.CalculateInvoiceTotals(&invoice); err != nil {
		return domain.Invoice{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return invoice, nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest, requestingUserID string) (*domain.Invoice, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return nil, err
	}

	invoice, err := s.buildDraft(ctx, tenantID, uuid.NewString(), req)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	if err := s.invoiceRepo.SaveDraftInvoice(ctx, invoice); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to save draft invoice", slog.String("tenant_id", tenantID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Draft invoice created", slog.String("invoice_id", invoice.InvoiceID), slog.String("number", invoice.Number))
	return &invoice, nil
}

func (s *invoiceService) UpdateDraft(ctx context.Context, tenantID, invoiceID string, req dto.UpdateInvoiceRequest, requestingUserID string) (*domain.Invoice, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return nil, err
	}

	existing, err := s.invoiceRepo.FindInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if existing.IsLocked() {
		return nil, apperrors.ErrLockedInvoice
	}
	if existing.Status != domain.InvoiceDraft {
		return nil, fmt.Errorf("%w: only drafts can be edited, invoice is %s", apperrors.ErrInvalidTransition, existing.Status)
	}

	invoice, err := s.buildDraft(ctx, tenantID, invoiceID, dto.CreateInvoiceRequest(req))
	if err != nil {
		return nil, err
	}
	invoice.CreatedAt = existing.CreatedAt
	invoice.UpdatedAt = s.now().UTC()

	// The repository re-checks the draft and lock state under its own guard.
	if err := s.invoiceRepo.UpdateDraftInvoice(ctx, invoice); err != nil {
		if !errors.Is(err, apperrors.ErrLockedInvoice) && !errors.Is(err, apperrors.ErrInvalidTransition) && !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to update draft invoice", slog.String("invoice_id", invoiceID))
		}
		return nil, err
	}
	return &invoice, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID); err != nil {
		return nil, err
	}
	return s.invoiceRepo.FindInvoiceByID(ctx, tenantID, invoiceID)
}

func (s *invoiceService) ListInvoices(ctx context.Context, tenantID string, filter portsrepo.InvoiceFilter, requestingUserID string) ([]domain.Invoice, string, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID); err != nil {
		return nil, "", err
	}
	if filter.Status != "" {
		switch filter.Status {
		case domain.InvoiceDraft, domain.InvoiceIssued, domain.InvoicePaid, domain.InvoiceCanceled:
		default:
			return nil, "", fmt.Errorf("%w: unknown invoice status %q", apperrors.ErrValidation, filter.Status)
		}
	}
	invoices, token, err := s.invoiceRepo.ListInvoices(ctx, tenantID, filter)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list invoices", slog.String("tenant_id", tenantID))
		}
		return nil, "", err
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	return invoices, token, nil
}

// IssueInvoice seals a draft: the repository locks the chain tail and the invoice in one
// transaction, computes the hash and appends the chain entry.
func (s *invoiceService) IssueInvoice(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.IssueInvoice(ctx, tenantID, invoiceID, s.now())
	metrics.ObserveInvoiceTransition(string(domain.InvoiceIssued), err)
	if err != nil {
		s.logTransitionError(ctx, err, "Failed to issue invoice", invoiceID)
		return nil, err
	}

	s.recordAudit(ctx, s.audit, tenantID, requestingUserID, domain.AuditInvoiceIssued, "invoice", invoiceID,
		map[string]any{"number": invoice.Number, "hash_prev": deref(invoice.HashPrev), "hash_curr": deref(invoice.HashCurr)})
	s.LogInfo(ctx, "Invoice issued", slog.String("invoice_id", invoiceID), slog.String("hash_curr", deref(invoice.HashCurr)))
	return invoice, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.MarkInvoicePaid(ctx, tenantID, invoiceID, s.now())
	metrics.ObserveInvoiceTransition(string(domain.InvoicePaid), err)
	if err != nil {
		s.logTransitionError(ctx, err, "Failed to mark invoice paid", invoiceID)
		return nil, err
	}

	s.recordAudit(ctx, s.audit, tenantID, requestingUserID, domain.AuditInvoicePaid, "invoice", invoiceID,
		map[string]any{"number": invoice.Number})
	return invoice, nil
}

// CancelInvoice never deletes: a locked invoice gets a CANCEL entry appended to the chain.
func (s *invoiceService) CancelInvoice(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.CancelInvoice(ctx, tenantID, invoiceID, s.now())
	metrics.ObserveInvoiceTransition(string(domain.InvoiceCanceled), err)
	if err != nil {
		s.logTransitionError(ctx, err, "Failed to cancel invoice", invoiceID)
		return nil, err
	}

	s.recordAudit(ctx, s.audit, tenantID, requestingUserID, domain.AuditInvoiceCanceled, "invoice", invoiceID,
		map[string]any{"number": invoice.Number, "was_locked": invoice.IsLocked()})
	return invoice, nil
}

func (s *invoiceService) logTransitionError(ctx context.Context, err error, msg, invoiceID string) {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrInvalidTransition) || errors.Is(err, apperrors.ErrLockedInvoice) {
		s.LogDebug(ctx, msg, slog.String("invoice_id", invoiceID), slog.String("error", err.Error()))
		return
	}
	s.LogError(ctx, err, msg, slog.String("invoice_id", invoiceID))
}

// GetLockedInvoice is the read path of document generators. Drafts are refused.
func (s *invoiceService) GetLockedInvoice(ctx context.Context, tenantID, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.IsLocked() {
		return nil, fmt.Errorf("%w: invoice %s is not locked", apperrors.ErrValidation, invoiceID)
	}
	return invoice, nil
}

func (s *invoiceService) AttachDocument(ctx context.Context, tenantID, invoiceID, pdfPath, requestingUserID string) (*domain.InvoiceDocument, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return nil, err
	}
	pdfPath = strings.TrimSpace(pdfPath)
	if pdfPath == "" {
		return nil, fmt.Errorf("%w: pdf path is required", apperrors.ErrValidation)
	}

	doc := domain.InvoiceDocument{
		InvoiceDocumentID: uuid.NewString(),
		EntrepriseID:      tenantID,
		InvoiceID:         invoiceID,
		PDFPath:           pdfPath,
		GeneratedAt:       s.now().UTC(),
	}
	if err := s.invoiceRepo.SaveInvoiceDocument(ctx, doc); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to attach invoice document", slog.String("invoice_id", invoiceID))
		}
		return nil, err
	}

	s.recordAudit(ctx, s.audit, tenantID, requestingUserID, domain.AuditInvoiceDocument, "invoice", invoiceID,
		map[string]any{"pdf_path": pdfPath})
	return &doc, nil
}

func (s *invoiceService) ListDocuments(ctx context.Context, tenantID, invoiceID, requestingUserID string) ([]domain.InvoiceDocument, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID); err != nil {
		return nil, err
	}
	docs, err := s.invoiceRepo.ListInvoiceDocuments(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		return []domain.InvoiceDocument{}, nil
	}
	return docs, nil
}

func (s *invoiceService) VerifyChain(ctx context.Context, tenantID string) (*domain.ChainReport, error) {
	entries, err := s.invoiceRepo.ListChainEntries(ctx, tenantID)
	if err != nil {
		metrics.ObserveChainVerification(metrics.ResultError, 0)
		s.LogError(ctx, err, "Failed to load chain entries", slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to load invoice chain: %w", err)
	}

	var tail *domain.ChainTail
	if t, err := s.invoiceRepo.FindChainTail(ctx, tenantID); err == nil {
		tail = t
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		metrics.ObserveChainVerification(metrics.ResultError, 0)
		return nil, fmt.Errorf("failed to load invoice chain tail: %w", err)
	}

	ids := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !seen[e.InvoiceID] {
			seen[e.InvoiceID] = true
			ids = append(ids, e.InvoiceID)
		}
	}
	invoices, err := s.invoiceRepo.FindInvoicesByIDs(ctx, tenantID, ids)
	if err != nil {
		metrics.ObserveChainVerification(metrics.ResultError, 0)
		return nil, fmt.Errorf("failed to load chained invoices: %w", err)
	}

	report, verr := integrity.Verify(integrity.ChainInput{
		TenantID: tenantID,
		Entries:  entries,
		Invoices: invoices,
		Tail:     tail,
	}, s.now().UTC())

	if verr != nil {
		metrics.ObserveChainVerification(metrics.ResultMismatch, len(report.Mismatches))
		s.GetLogger(ctx).Warn("Invoice chain verification failed",
			slog.String("tenant_id", tenantID),
			slog.Int("entries_checked", report.EntriesChecked),
			slog.Int("mismatches", len(report.Mismatches)),
			slog.String("error", verr.Error()))
		return &report, verr
	}
	metrics.ObserveChainVerification(metrics.ResultOK, 0)
	s.LogInfo(ctx, "Invoice chain verified", slog.String("tenant_id", tenantID), slog.Int("entries_checked", report.EntriesChecked))
	return &report, nil
}

func (s *invoiceService) VerifyChainAs(ctx context.Context, tenantID, requestingUserID string) (*domain.ChainReport, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return nil, err
	}
	report, err := s.VerifyChain(ctx, tenantID)
	if report != nil {
		s.recordAudit(ctx, s.audit, tenantID, requestingUserID, domain.AuditChainVerified, "entreprise", tenantID,
			map[string]any{"ok": report.OK(), "entries_checked": report.EntriesChecked, "mismatches": len(report.Mismatches), "tail_hash": report.TailHash})
	}
	return report, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
