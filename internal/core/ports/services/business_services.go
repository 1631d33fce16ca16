package services

import (
	"context"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
)

type CustomerSvcFacade interface {
	CreateCustomer(ctx context.Context, tenantID string, req dto.CreateCustomerRequest, requestingUserID string) (*domain.Customer, error)
	GetCustomer(ctx context.Context, tenantID, customerID, requestingUserID string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, tenantID string, limit, offset int, requestingUserID string) ([]domain.Customer, error)
	// DeleteCustomer fails with apperrors.ErrProtectedReference while invoices reference the customer.
	DeleteCustomer(ctx context.Context, tenantID, customerID, requestingUserID string) error
}

type BankTransactionSvcFacade interface {
	CreateBankTransaction(ctx context.Context, tenantID string, req dto.CreateBankTransactionRequest, requestingUserID string) (*domain.BankTransaction, error)
	ListBankTransactions(ctx context.Context, tenantID string, from, to *time.Time, requestingUserID string) ([]domain.BankTransaction, error)
	// DeleteBankTransaction fails with apperrors.ErrProtectedReference while reconciled.
	DeleteBankTransaction(ctx context.Context, tenantID, bankTransactionID, requestingUserID string) error
}

type ReconciliationSvcFacade interface {
	// Reconcile records a manual match. The invoice must be ISSUED or PAID and both
	// sides must belong to tenantID.
	Reconcile(ctx context.Context, tenantID string, req dto.ReconcileRequest, requestingUserID string) (*domain.Reconciliation, error)
	ListReconciliations(ctx context.Context, tenantID, invoiceID, requestingUserID string) ([]domain.Reconciliation, error)
}

// AuditRecorderSvc appends audit entries on behalf of other services.
type AuditRecorderSvc interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID string, metadata map[string]any) error
}

type AuditSvcFacade interface {
	AuditRecorderSvc
	ListAuditLogs(ctx context.Context, tenantID string, limit int, nextToken, requestingUserID string) ([]domain.AuditLog, string, error)
}
