package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction is an imported bank statement line. Positive amounts are credits,
// negative amounts debits.
type BankTransaction struct {
	BankTransactionID string          `json:"bankTransactionID" db:"bank_transaction_id"`
	EntrepriseID      string          `json:"entrepriseID" db:"entreprise_id"`
	Date              time.Time       `json:"date" db:"date"`
	Label             string          `json:"label" db:"label"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
}

// Reconciliation records a manual match between one invoice and one bank transaction.
// An invoice may be matched against several transactions (partial payments), but a
// given (tenant, invoice, transaction) triple only once.
type Reconciliation struct {
	ReconciliationID  string          `json:"reconciliationID" db:"reconciliation_id"`
	EntrepriseID      string          `json:"entrepriseID" db:"entreprise_id"`
	InvoiceID         string          `json:"invoiceID" db:"invoice_id"`
	BankTransactionID string          `json:"bankTransactionID" db:"bank_transaction_id"`
	MatchedAmount     decimal.Decimal `json:"matchedAmount" db:"matched_amount"`
	MatchedAt         time.Time       `json:"matchedAt" db:"matched_at"`
	MatchedBy         string          `json:"matchedBy" db:"matched_by"`
}
