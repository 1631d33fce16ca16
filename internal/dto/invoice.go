package dto

import (
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Invoice DTOs ---

// InvoiceLineRequest is one line of a draft. Totals are always computed server-side.
// Position defaults to the line's index (1-based) when omitted.
type InvoiceLineRequest struct {
	Position  int             `json:"position" binding:"omitempty,min=1" validate:"omitempty,min=1"`
	Label     string          `json:"label" binding:"required,max=255" validate:"required,max=255"`
	Qty       decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	VATRate   decimal.Decimal `json:"vatRate"`
}

// CreateInvoiceRequest defines data for creating a draft invoice.
type CreateInvoiceRequest struct {
	CustomerID string               `json:"customerID" binding:"required,uuid" validate:"required,uuid"`
	Number     string               `json:"number" binding:"required,max=50" validate:"required,max=50"`
	IssueDate  time.Time            `json:"issueDate" binding:"required" validate:"required"`
	DueDate    *time.Time           `json:"dueDate"`
	Lines      []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive" validate:"required,min=1,dive"`
}

// UpdateInvoiceRequest replaces the editable content of a draft.
type UpdateInvoiceRequest CreateInvoiceRequest

// ListInvoicesParams defines query parameters for listing invoices.
type ListInvoicesParams struct {
	Status     string     `form:"status" binding:"omitempty,oneof=DRAFT ISSUED PAID CANCELED"`
	CustomerID string     `form:"customerID" binding:"omitempty,uuid"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Limit      int        `form:"limit"`
	NextToken  string     `form:"nextToken"`
}

// AttachDocumentRequest registers a rendered PDF for a locked invoice.
type AttachDocumentRequest struct {
	PDFPath string `json:"pdfPath" binding:"required,max=500"`
}

type InvoiceLineResponse struct {
	InvoiceLineID string          `json:"invoiceLineID"`
	Position      int             `json:"position"`
	Label         string          `json:"label"`
	Qty           decimal.Decimal `json:"qty"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	VATRate       decimal.Decimal `json:"vatRate"`
	TotalHT       decimal.Decimal `json:"totalHT"`
	TotalTVA      decimal.Decimal `json:"totalTVA"`
	TotalTTC      decimal.Decimal `json:"totalTTC"`
}

type InvoiceResponse struct {
	InvoiceID    string                `json:"invoiceID"`
	EntrepriseID string                `json:"entrepriseID"`
	CustomerID   string                `json:"customerID"`
	Number       string                `json:"number"`
	Status       domain.InvoiceStatus  `json:"status"`
	IssueDate    time.Time             `json:"issueDate"`
	DueDate      *time.Time            `json:"dueDate,omitempty"`
	TotalHT      decimal.Decimal       `json:"totalHT"`
	TotalTVA     decimal.Decimal       `json:"totalTVA"`
	TotalTTC     decimal.Decimal       `json:"totalTTC"`
	HashPrev     *string               `json:"hashPrev,omitempty"`
	HashCurr     *string               `json:"hashCurr,omitempty"`
	LockedAt     *time.Time            `json:"lockedAt,omitempty"`
	Lines        []InvoiceLineResponse `json:"lines,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken string            `json:"nextToken,omitempty"`
}

func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		InvoiceID:    inv.InvoiceID,
		EntrepriseID: inv.EntrepriseID,
		CustomerID:   inv.CustomerID,
		Number:       inv.Number,
		Status:       inv.Status,
		IssueDate:    inv.IssueDate,
		DueDate:      inv.DueDate,
		TotalHT:      inv.TotalHT,
		TotalTVA:     inv.TotalTVA,
		TotalTTC:     inv.TotalTTC,
		HashPrev:     inv.HashPrev,
		HashCurr:     inv.HashCurr,
		LockedAt:     inv.LockedAt,
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
	}
	if len(inv.Lines) > 0 {
		resp.Lines = make([]InvoiceLineResponse, len(inv.Lines))
		for i, l := range inv.Lines {
			resp.Lines[i] = InvoiceLineResponse{
				InvoiceLineID: l.InvoiceLineID,
				Position:      l.Position,
				Label:         l.Label,
				Qty:           l.Qty,
				UnitPrice:     l.UnitPrice,
				VATRate:       l.VATRate,
				TotalHT:       l.TotalHT,
				TotalTVA:      l.TotalTVA,
				TotalTTC:      l.TotalTTC,
			}
		}
	}
	return resp
}

func ToListInvoicesResponse(invoices []domain.Invoice, nextToken string) ListInvoicesResponse {
	list := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		list[i] = ToInvoiceResponse(&invoices[i])
	}
	return ListInvoicesResponse{Invoices: list, NextToken: nextToken}
}

type InvoiceDocumentResponse struct {
	InvoiceDocumentID string    `json:"invoiceDocumentID"`
	InvoiceID         string    `json:"invoiceID"`
	PDFPath           string    `json:"pdfPath"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

type ListInvoiceDocumentsResponse struct {
	Documents []InvoiceDocumentResponse `json:"documents"`
}

func ToInvoiceDocumentResponse(d *domain.InvoiceDocument) InvoiceDocumentResponse {
	return InvoiceDocumentResponse{
		InvoiceDocumentID: d.InvoiceDocumentID,
		InvoiceID:         d.InvoiceID,
		PDFPath:           d.PDFPath,
		GeneratedAt:       d.GeneratedAt,
	}
}

func ToListInvoiceDocumentsResponse(docs []domain.InvoiceDocument) ListInvoiceDocumentsResponse {
	list := make([]InvoiceDocumentResponse, len(docs))
	for i := range docs {
		list[i] = ToInvoiceDocumentResponse(&docs[i])
	}
	return ListInvoiceDocumentsResponse{Documents: list}
}

// ChainReportResponse is the result of an invoice chain verification.
type ChainReportResponse struct {
	EntrepriseID   string                 `json:"entrepriseID"`
	OK             bool                   `json:"ok"`
	EntriesChecked int                    `json:"entriesChecked"`
	TailHash       string                 `json:"tailHash"`
	Mismatches     []domain.ChainMismatch `json:"mismatches"`
	VerifiedAt     time.Time              `json:"verifiedAt"`
}

func ToChainReportResponse(r *domain.ChainReport) ChainReportResponse {
	return ChainReportResponse{
		EntrepriseID:   r.EntrepriseID,
		OK:             r.OK(),
		EntriesChecked: r.EntriesChecked,
		TailHash:       r.TailHash,
		Mismatches:     r.Mismatches,
		VerifiedAt:     r.VerifiedAt,
	}
}
