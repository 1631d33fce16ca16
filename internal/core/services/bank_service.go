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
	"github.com/SscSPs/compta_saas_backend/internal/utils/accounting"
	"github.com/google/uuid"
)

type bankTransactionService struct {
	BaseService
	bankRepo portsrepo.BankTransactionRepositoryFacade
}

// NewBankTransactionService creates the bank transaction service.
func NewBankTransactionService(repo portsrepo.BankTransactionRepositoryFacade, authorizer portssvc.TenantAuthorizerSvc) portssvc.BankTransactionSvcFacade {
	return &bankTransactionService{
		BaseService: BaseService{TenantAuthorizer: authorizer},
		bankRepo:    repo,
	}
}

var _ portssvc.BankTransactionSvcFacade = (*bankTransactionService)(nil)

// dateOnly drops the time of day; bank and invoice dates are calendar days.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *bankTransactionService) CreateBankTransaction(ctx context.Context, tenantID string, req dto.CreateBankTransactionRequest, requestingUserID string) (*domain.BankTransaction, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return nil, err
	}
	req.Label = strings.TrimSpace(req.Label)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must not be zero", apperrors.ErrValidation)
	}
	if err := accounting.CheckAmount("amount", req.Amount.Round(accounting.MoneyPlaces)); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	txn := domain.BankTransaction{
		BankTransactionID: uuid.NewString(),
		EntrepriseID:      tenantID,
		Date:              dateOnly(req.Date),
		Label:             req.Label,
		Amount:            req.Amount.Round(accounting.MoneyPlaces),
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.bankRepo.SaveBankTransaction(ctx, txn); err != nil {
		s.LogError(ctx, err, "Failed to save bank transaction", slog.String("tenant_id", tenantID))
		return nil, err
	}
	return &txn, nil
}

func (s *bankTransactionService) ListBankTransactions(ctx context.Context, tenantID string, from, to *time.Time, requestingUserID string) ([]domain.BankTransaction, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID); err != nil {
		return nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: from must not be after to", apperrors.ErrValidation)
	}
	txns, err := s.bankRepo.ListBankTransactions(ctx, tenantID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list bank transactions", slog.String("tenant_id", tenantID))
		return nil, err
	}
	if txns == nil {
		return []domain.BankTransaction{}, nil
	}
	return txns, nil
}

func (s *bankTransactionService) DeleteBankTransaction(ctx context.Context, tenantID, bankTransactionID, requestingUserID string) error {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return err
	}
	if err := s.bankRepo.DeleteBankTransaction(ctx, tenantID, bankTransactionID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrProtectedReference) {
			s.LogError(ctx, err, "Failed to delete bank transaction", slog.String("bank_transaction_id", bankTransactionID))
		}
		return err
	}
	return nil
}
