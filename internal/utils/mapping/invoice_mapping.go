package mapping

import (
	"database/sql"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/SscSPs/compta_saas_backend/internal/models"
)

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// ToModelInvoice converts a domain Invoice to a model Invoice. Lines are stored separately.
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:    d.InvoiceID,
		EntrepriseID: d.EntrepriseID,
		CustomerID:   d.CustomerID,
		Number:       d.Number,
		Status:       string(d.Status),
		IssueDate:    d.IssueDate,
		DueDate:      toNullTime(d.DueDate),
		TotalHT:      d.TotalHT,
		TotalTVA:     d.TotalTVA,
		TotalTTC:     d.TotalTTC,
		HashPrev:     toNullString(d.HashPrev),
		HashCurr:     toNullString(d.HashCurr),
		LockedAt:     toNullTime(d.LockedAt),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ToDomainInvoice converts a model Invoice to a domain Invoice without lines.
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:    m.InvoiceID,
		EntrepriseID: m.EntrepriseID,
		CustomerID:   m.CustomerID,
		Number:       m.Number,
		Status:       domain.InvoiceStatus(m.Status),
		IssueDate:    m.IssueDate,
		DueDate:      fromNullTime(m.DueDate),
		TotalHT:      m.TotalHT,
		TotalTVA:     m.TotalTVA,
		TotalTTC:     m.TotalTTC,
		HashPrev:     fromNullString(m.HashPrev),
		HashCurr:     fromNullString(m.HashCurr),
		LockedAt:     fromNullTime(m.LockedAt),
		Timestamps: domain.Timestamps{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

// ToDomainInvoices converts a slice of model invoices.
func ToDomainInvoices(ms []models.Invoice) []domain.Invoice {
	ds := make([]domain.Invoice, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInvoice(m)
	}
	return ds
}
