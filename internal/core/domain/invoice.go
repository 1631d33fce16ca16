package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus indicates the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft    InvoiceStatus = "DRAFT"
	InvoiceIssued   InvoiceStatus = "ISSUED"
	InvoicePaid     InvoiceStatus = "PAID"
	InvoiceCanceled InvoiceStatus = "CANCELED"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:  {InvoiceIssued, InvoiceCanceled},
	InvoiceIssued: {InvoicePaid, InvoiceCanceled},
}

// CanTransitionTo reports whether moving from s to next is allowed.
// PAID and CANCELED are terminal.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s InvoiceStatus) IsTerminal() bool {
	return len(invoiceTransitions[s]) == 0
}

// Invoice is a tenant-scoped invoice. HashPrev, HashCurr and LockedAt are written
// once, at issuance; after that the financial content is sealed.
type Invoice struct {
	InvoiceID    string          `json:"invoiceID"`
	EntrepriseID string          `json:"entrepriseID"`
	CustomerID   string          `json:"customerID"`
	Number       string          `json:"number"`
	Status       InvoiceStatus   `json:"status"`
	IssueDate    time.Time       `json:"issueDate"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	TotalHT      decimal.Decimal `json:"totalHT"`
	TotalTVA     decimal.Decimal `json:"totalTVA"`
	TotalTTC     decimal.Decimal `json:"totalTTC"`
	HashPrev     *string         `json:"hashPrev,omitempty"`
	HashCurr     *string         `json:"hashCurr,omitempty"`
	LockedAt     *time.Time      `json:"lockedAt,omitempty"`
	Lines        []InvoiceLine   `json:"lines,omitempty"`
	Timestamps
}

// IsLocked reports whether the invoice has been sealed by issuance.
func (i *Invoice) IsLocked() bool {
	return i.LockedAt != nil
}

// InvoiceLine is one priced line of an invoice. Position orders lines for display
// and for the integrity hash.
type InvoiceLine struct {
	InvoiceLineID string          `json:"invoiceLineID" db:"invoice_line_id"`
	EntrepriseID  string          `json:"entrepriseID" db:"entreprise_id"`
	InvoiceID     string          `json:"invoiceID" db:"invoice_id"`
	Position      int             `json:"position" db:"position"`
	Label         string          `json:"label" db:"label"`
	Qty           decimal.Decimal `json:"qty" db:"qty"`
	UnitPrice     decimal.Decimal `json:"unitPrice" db:"unit_price"`
	VATRate       decimal.Decimal `json:"vatRate" db:"vat_rate"`
	TotalHT       decimal.Decimal `json:"totalHT" db:"total_ht"`
	TotalTVA      decimal.Decimal `json:"totalTVA" db:"total_tva"`
	TotalTTC      decimal.Decimal `json:"totalTTC" db:"total_ttc"`
}

// InvoiceDocument points at a rendered PDF of a locked invoice.
type InvoiceDocument struct {
	InvoiceDocumentID string    `json:"invoiceDocumentID" db:"invoice_document_id"`
	EntrepriseID      string    `json:"entrepriseID" db:"entreprise_id"`
	InvoiceID         string    `json:"invoiceID" db:"invoice_id"`
	PDFPath           string    `json:"pdfPath" db:"pdf_path"`
	GeneratedAt       time.Time `json:"generatedAt" db:"generated_at"`
}
