package dto

import (
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBankTransactionRequest imports one bank statement line.
// Positive amounts are credits, negative amounts debits.
type CreateBankTransactionRequest struct {
	Date   time.Time       `json:"date" binding:"required" validate:"required"`
	Label  string          `json:"label" binding:"required,max=255" validate:"required,max=255"`
	Amount decimal.Decimal `json:"amount"`
}

type ListBankTransactionsParams struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

type BankTransactionResponse struct {
	BankTransactionID string          `json:"bankTransactionID"`
	EntrepriseID      string          `json:"entrepriseID"`
	Date              time.Time       `json:"date"`
	Label             string          `json:"label"`
	Amount            decimal.Decimal `json:"amount"`
	CreatedAt         time.Time       `json:"createdAt"`
}

type ListBankTransactionsResponse struct {
	BankTransactions []BankTransactionResponse `json:"bankTransactions"`
}

func ToBankTransactionResponse(t *domain.BankTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		BankTransactionID: t.BankTransactionID,
		EntrepriseID:      t.EntrepriseID,
		Date:              t.Date,
		Label:             t.Label,
		Amount:            t.Amount,
		CreatedAt:         t.CreatedAt,
	}
}

func ToListBankTransactionsResponse(ts []domain.BankTransaction) ListBankTransactionsResponse {
	list := make([]BankTransactionResponse, len(ts))
	for i := range ts {
		list[i] = ToBankTransactionResponse(&ts[i])
	}
	return ListBankTransactionsResponse{BankTransactions: list}
}

// ReconcileRequest records a manual match of an invoice against a bank transaction.
type ReconcileRequest struct {
	InvoiceID         string          `json:"invoiceID" binding:"required,uuid" validate:"required,uuid"`
	BankTransactionID string          `json:"bankTransactionID" binding:"required,uuid" validate:"required,uuid"`
	MatchedAmount     decimal.Decimal `json:"matchedAmount"`
}

type ReconciliationResponse struct {
	ReconciliationID  string          `json:"reconciliationID"`
	InvoiceID         string          `json:"invoiceID"`
	BankTransactionID string          `json:"bankTransactionID"`
	MatchedAmount     decimal.Decimal `json:"matchedAmount"`
	MatchedAt         time.Time       `json:"matchedAt"`
	MatchedBy         string          `json:"matchedBy"`
}

type ListReconciliationsResponse struct {
	Reconciliations []ReconciliationResponse `json:"reconciliations"`
}

func ToReconciliationResponse(r *domain.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		ReconciliationID:  r.ReconciliationID,
		InvoiceID:         r.InvoiceID,
		BankTransactionID: r.BankTransactionID,
		MatchedAmount:     r.MatchedAmount,
		MatchedAt:         r.MatchedAt,
		MatchedBy:         r.MatchedBy,
	}
}

func ToListReconciliationsResponse(rs []domain.Reconciliation) ListReconciliationsResponse {
	list := make([]ReconciliationResponse, len(rs))
	for i := range rs {
		list[i] = ToReconciliationResponse(&rs[i])
	}
	return ListReconciliationsResponse{Reconciliations: list}
}
