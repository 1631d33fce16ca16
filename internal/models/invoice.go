package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the invoices table row.
type Invoice struct {
	InvoiceID    string          `db:"invoice_id"`
	EntrepriseID string          `db:"entreprise_id"`
	CustomerID   string          `db:"customer_id"`
	Number       string          `db:"number"`
	Status       string          `db:"status"`
	IssueDate    time.Time       `db:"issue_date"`
	DueDate      sql.NullTime    `db:"due_date"`
	TotalHT      decimal.Decimal `db:"total_ht"`
	TotalTVA     decimal.Decimal `db:"total_tva"`
	TotalTTC     decimal.Decimal `db:"total_ttc"`
	HashPrev     sql.NullString  `db:"hash_prev"`
	HashCurr     sql.NullString  `db:"hash_curr"`
	LockedAt     sql.NullTime    `db:"locked_at"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}
