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
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/utils/accounting"
	"github.com/google/uuid"
)

type reconciliationService struct {
	BaseService
	reconciliationRepo portsrepo.ReconciliationRepositoryFacade
	invoiceRepo        portsrepo.InvoiceReader
	bankRepo           portsrepo.BankTransactionRepositoryFacade
	audit              portssvc.AuditRecorderSvc
}

// NewReconciliationService creates the reconciliation service.
func NewReconciliationService(
	repo portsrepo.ReconciliationRepositoryFacade,
	invoices portsrepo.InvoiceReader,
	bank portsrepo.BankTransactionRepositoryFacade,
	authorizer portssvc.TenantAuthorizerSvc,
	recorder portssvc.AuditRecorderSvc,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		BaseService:        BaseService{TenantAuthorizer: authorizer},
		reconciliationRepo: repo,
		invoiceRepo:        invoices,
		bankRepo:           bank,
		audit:              recorder,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) Reconcile(ctx context.Context, tenantID string, req dto.ReconcileRequest, requestingUserID string) (*domain.Reconciliation, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := accounting.ValidateMatchedAmount(req.MatchedAmount); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	// Both lookups are tenant-scoped, so a foreign id reads as not found.
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, tenantID, req.InvoiceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("invoice " + req.InvoiceID)
		}
		return nil, err
	}
	if invoice.Status != domain.InvoiceIssued && invoice.Status != domain.InvoicePaid {
		return nil, fmt.Errorf("%w: only issued or paid invoices can be reconciled, invoice is %s", apperrors.ErrValidation, invoice.Status)
	}
	if _, err := s.bankRepo.FindBankTransactionByID(ctx, tenantID, req.BankTransactionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("bank transaction " + req.BankTransactionID)
		}
		return nil, err
	}

	rec := domain.Reconciliation{
		ReconciliationID:  uuid.NewString(),
		EntrepriseID:      tenantID,
		InvoiceID:         req.InvoiceID,
		BankTransactionID: req.BankTransactionID,
		MatchedAmount:     req.MatchedAmount.Round(accounting.MoneyPlaces),
		MatchedAt:         time.Now().UTC(),
		MatchedBy:         requestingUserID,
	}
	if err := s.reconciliationRepo.SaveReconciliation(ctx, rec); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save reconciliation", slog.String("invoice_id", req.InvoiceID))
		}
		return nil, err
	}

	s.recordAudit(ctx, s.audit, tenantID, requestingUserID, domain.AuditReconciled, "reconciliation", rec.ReconciliationID,
		map[string]any{"invoice_id": rec.InvoiceID, "bank_transaction_id": rec.BankTransactionID, "matched_amount": rec.MatchedAmount.StringFixed(accounting.MoneyPlaces)})
	return &rec, nil
}

func (s *reconciliationService) ListReconciliations(ctx context.Context, tenantID, invoiceID, requestingUserID string) ([]domain.Reconciliation, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID); err != nil {
		return nil, err
	}
	recs, err := s.reconciliationRepo.ListReconciliationsByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list reconciliations", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	if recs == nil {
		return []domain.Reconciliation{}, nil
	}
	return recs, nil
}
