package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/SscSPs/compta_saas_backend/internal/utils/integrity"
	"github.com/SscSPs/compta_saas_backend/internal/utils/pagination"
	"github.com/google/uuid"
)

func cloneInvoice(inv domain.Invoice, withLines bool) domain.Invoice {
	if withLines && inv.Lines != nil {
		inv.Lines = append([]domain.InvoiceLine(nil), inv.Lines...)
	} else if !withLines {
		inv.Lines = nil
	}
	return inv
}

func (s *Store) checkInvoiceRefsLocked(inv domain.Invoice) error {
	if _, ok := s.entreprises[inv.EntrepriseID]; !ok {
		return fmt.Errorf("%w: customer or entreprise does not exist", apperrors.ErrValidation)
	}
	if _, ok := s.customers[inv.CustomerID]; !ok {
		return fmt.Errorf("%w: customer or entreprise does not exist", apperrors.ErrValidation)
	}
	for id, other := range s.invoices {
		if id != inv.InvoiceID && other.EntrepriseID == inv.EntrepriseID && other.Number == inv.Number {
			return fmt.Errorf("%w: invoice number %s is already used", apperrors.ErrDuplicate, inv.Number)
		}
	}
	seen := make(map[int]bool, len(inv.Lines))
	for _, l := range inv.Lines {
		if seen[l.Position] {
			return fmt.Errorf("%w: duplicate line position", apperrors.ErrValidation)
		}
		seen[l.Position] = true
	}
	return nil
}

func (s *Store) SaveDraftInvoice(_ context.Context, invoice domain.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[invoice.InvoiceID]; ok {
		return fmt.Errorf("%w: invoice %s already exists", apperrors.ErrDuplicate, invoice.InvoiceID)
	}
	if err := s.checkInvoiceRefsLocked(invoice); err != nil {
		return err
	}
	s.invoices[invoice.InvoiceID] = cloneInvoice(invoice, true)
	return nil
}

func (s *Store) UpdateDraftInvoice(_ context.Context, invoice domain.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.invoices[invoice.InvoiceID]
	if !ok || stored.EntrepriseID != invoice.EntrepriseID {
		return apperrors.ErrNotFound
	}
	if stored.IsLocked() {
		return apperrors.ErrLockedInvoice
	}
	if stored.Status != domain.InvoiceDraft {
		return fmt.Errorf("%w: invoice is %s", apperrors.ErrInvalidTransition, stored.Status)
	}
	if err := s.checkInvoiceRefsLocked(invoice); err != nil {
		return err
	}

	stored.Number = invoice.Number
	stored.CustomerID = invoice.CustomerID
	stored.IssueDate = invoice.IssueDate
	stored.DueDate = invoice.DueDate
	stored.TotalHT = invoice.TotalHT
	stored.TotalTVA = invoice.TotalTVA
	stored.TotalTTC = invoice.TotalTTC
	stored.UpdatedAt = invoice.UpdatedAt
	stored.Lines = append([]domain.InvoiceLine(nil), invoice.Lines...)
	s.invoices[invoice.InvoiceID] = stored
	return nil
}

func (s *Store) findInvoiceLocked(entrepriseID, invoiceID string) (domain.Invoice, error) {
	inv, ok := s.invoices[invoiceID]
	if !ok || inv.EntrepriseID != entrepriseID {
		return domain.Invoice{}, apperrors.ErrNotFound
	}
	return inv, nil
}

func (s *Store) FindInvoiceByID(_ context.Context, entrepriseID, invoiceID string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.findInvoiceLocked(entrepriseID, invoiceID)
	if err != nil {
		return nil, err
	}
	out := cloneInvoice(inv, true)
	return &out, nil
}

func (s *Store) FindInvoicesByIDs(_ context.Context, entrepriseID string, invoiceIDs []string) (map[string]domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]domain.Invoice, len(invoiceIDs))
	for _, id := range invoiceIDs {
		if inv, err := s.findInvoiceLocked(entrepriseID, id); err == nil {
			out[id] = cloneInvoice(inv, true)
		}
	}
	return out, nil
}

func (s *Store) ListInvoices(_ context.Context, entrepriseID string, f portsrepo.InvoiceFilter) ([]domain.Invoice, string, error) {
	limit := pagination.NormalizeLimit(f.Limit)

	var (
		afterDate time.Time
		afterID   string
	)
	if f.NextToken != "" {
		var err error
		afterDate, afterID, err = pagination.DecodeTimeIDToken(f.NextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Invoice
	for _, inv := range s.invoices {
		switch {
		case inv.EntrepriseID != entrepriseID:
			continue
		case f.Status != "" && inv.Status != f.Status:
			continue
		case f.CustomerID != "" && inv.CustomerID != f.CustomerID:
			continue
		case f.From != nil && inv.IssueDate.Before(*f.From):
			continue
		case f.To != nil && inv.IssueDate.After(*f.To):
			continue
		case f.NextToken != "" && !keysetBefore(inv.IssueDate, inv.InvoiceID, afterDate, afterID):
			continue
		}
		out = append(out, cloneInvoice(inv, false))
	}
	sort.Slice(out, func(i, j int) bool {
		return keysetBefore(out[j].IssueDate, out[j].InvoiceID, out[i].IssueDate, out[i].InvoiceID)
	})

	var token string
	if len(out) > limit {
		out = out[:limit]
		last := out[len(out)-1]
		token = pagination.EncodeTimeIDToken(last.IssueDate, last.InvoiceID)
	}
	return out, token, nil
}

func (s *Store) MarkInvoicePaid(_ context.Context, entrepriseID, invoiceID string, now time.Time) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.findInvoiceLocked(entrepriseID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransitionTo(domain.InvoicePaid) {
		return nil, fmt.Errorf("%w: %s to %s", apperrors.ErrInvalidTransition, inv.Status, domain.InvoicePaid)
	}
	inv.Status = domain.InvoicePaid
	inv.UpdatedAt = now
	s.invoices[invoiceID] = inv
	out := cloneInvoice(inv, true)
	return &out, nil
}

// tailLocked returns the tenant tail, starting from the seed on first use.
func (s *Store) tailLocked(entrepriseID string, now time.Time) domain.ChainTail {
	tail, ok := s.chainTails[entrepriseID]
	if !ok {
		tail = domain.ChainTail{EntrepriseID: entrepriseID, LastHash: integrity.Seed, UpdatedAt: now}
	}
	return tail
}

func (s *Store) appendChainLocked(entry domain.InvoiceChainEntry) {
	s.chainEntries[entry.EntrepriseID] = append(s.chainEntries[entry.EntrepriseID], entry)
	s.chainTails[entry.EntrepriseID] = domain.ChainTail{
		EntrepriseID: entry.EntrepriseID,
		LastHash:     entry.HashCurr,
		LastSeq:      entry.Seq,
		UpdatedAt:    entry.RecordedAt,
	}
}

func (s *Store) IssueInvoice(_ context.Context, entrepriseID, invoiceID string, now time.Time) (*domain.Invoice, error) {
	now = integrity.Timestamp(now)

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.findInvoiceLocked(entrepriseID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.IsLocked() {
		return nil, apperrors.ErrLockedInvoice
	}
	if !inv.Status.CanTransitionTo(domain.InvoiceIssued) {
		return nil, fmt.Errorf("%w: %s to %s", apperrors.ErrInvalidTransition, inv.Status, domain.InvoiceIssued)
	}

	tail := s.tailLocked(entrepriseID, now)
	prev := tail.LastHash
	curr := integrity.SealInvoice(entrepriseID, inv, prev)

	inv.Status = domain.InvoiceIssued
	inv.HashPrev = &prev
	inv.HashCurr = &curr
	inv.LockedAt = &now
	inv.UpdatedAt = now
	s.invoices[invoiceID] = inv

	s.appendChainLocked(domain.InvoiceChainEntry{
		ChainEntryID: uuid.NewString(),
		EntrepriseID: entrepriseID,
		InvoiceID:    invoiceID,
		Seq:          tail.LastSeq + 1,
		Kind:         domain.ChainEntryIssue,
		HashPrev:     prev,
		HashCurr:     curr,
		RecordedAt:   now,
	})

	out := cloneInvoice(inv, true)
	return &out, nil
}

func (s *Store) CancelInvoice(_ context.Context, entrepriseID, invoiceID string, now time.Time) (*domain.Invoice, error) {
	now = integrity.Timestamp(now)

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.findInvoiceLocked(entrepriseID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransitionTo(domain.InvoiceCanceled) {
		return nil, fmt.Errorf("%w: %s to %s", apperrors.ErrInvalidTransition, inv.Status, domain.InvoiceCanceled)
	}

	if inv.IsLocked() {
		tail := s.tailLocked(entrepriseID, now)
		prev := tail.LastHash
		s.appendChainLocked(domain.InvoiceChainEntry{
			ChainEntryID: uuid.NewString(),
			EntrepriseID: entrepriseID,
			InvoiceID:    invoiceID,
			Seq:          tail.LastSeq + 1,
			Kind:         domain.ChainEntryCancel,
			HashPrev:     prev,
			HashCurr:     integrity.SealCancel(entrepriseID, inv.Number, *inv.HashCurr, now, prev),
			RecordedAt:   now,
		})
	}

	inv.Status = domain.InvoiceCanceled
	inv.UpdatedAt = now
	s.invoices[invoiceID] = inv
	out := cloneInvoice(inv, true)
	return &out, nil
}

func (s *Store) ListChainEntries(_ context.Context, entrepriseID string) ([]domain.InvoiceChainEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.InvoiceChainEntry(nil), s.chainEntries[entrepriseID]...), nil
}

func (s *Store) FindChainTail(_ context.Context, entrepriseID string) (*domain.ChainTail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tail, ok := s.chainTails[entrepriseID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &tail, nil
}

func (s *Store) SaveInvoiceDocument(_ context.Context, doc domain.InvoiceDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.findInvoiceLocked(doc.EntrepriseID, doc.InvoiceID)
	if err != nil {
		return err
	}
	if !inv.IsLocked() {
		return fmt.Errorf("%w: documents can only be attached to issued invoices", apperrors.ErrValidation)
	}
	s.documents = append(s.documents, doc)
	return nil
}

func (s *Store) ListInvoiceDocuments(_ context.Context, entrepriseID, invoiceID string) ([]domain.InvoiceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.InvoiceDocument
	for _, d := range s.documents {
		if d.EntrepriseID == entrepriseID && d.InvoiceID == invoiceID {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	return out, nil
}
