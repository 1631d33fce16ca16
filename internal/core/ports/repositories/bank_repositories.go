package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// BankTransactionRepositoryFacade defines operations on imported bank transactions
type BankTransactionRepositoryFacade interface {
	SaveBankTransaction(ctx context.Context, txn domain.BankTransaction) error
	FindBankTransactionByID(ctx context.Context, entrepriseID, bankTransactionID string) (*domain.BankTransaction, error)

	// ListBankTransactions lists transactions dated within [from, to]; nil bounds are open.
	ListBankTransactions(ctx context.Context, entrepriseID string, from, to *time.Time) ([]domain.BankTransaction, error)

	// DeleteBankTransaction fails with apperrors.ErrProtectedReference while reconciled.
	DeleteBankTransaction(ctx context.Context, entrepriseID, bankTransactionID string) error
}

// ReconciliationRepositoryFacade defines operations on invoice/bank transaction matches
type ReconciliationRepositoryFacade interface {
	// SaveReconciliation inserts a match. The same (tenant, invoice, transaction)
	// triple twice yields apperrors.ErrDuplicate.
	SaveReconciliation(ctx context.Context, rec domain.Reconciliation) error

	ListReconciliationsByInvoice(ctx context.Context, entrepriseID, invoiceID string) ([]domain.Reconciliation, error)
}
