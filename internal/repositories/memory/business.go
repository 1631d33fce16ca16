package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/SscSPs/compta_saas_backend/internal/utils/pagination"
)

func (s *Store) SaveCustomer(_ context.Context, c domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entreprises[c.EntrepriseID]; !ok {
		return fmt.Errorf("%w: entreprise %s", apperrors.ErrNotFound, c.EntrepriseID)
	}
	if _, ok := s.customers[c.CustomerID]; ok {
		return fmt.Errorf("%w: customer %s already exists", apperrors.ErrDuplicate, c.CustomerID)
	}
	s.customers[c.CustomerID] = c
	return nil
}

func (s *Store) FindCustomerByID(_ context.Context, entrepriseID, customerID string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[customerID]
	if !ok || c.EntrepriseID != entrepriseID {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListCustomers(_ context.Context, entrepriseID string, limit, offset int) ([]domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cs []domain.Customer
	for _, c := range s.customers {
		if c.EntrepriseID == entrepriseID {
			cs = append(cs, c)
		}
	}
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Name != cs[j].Name {
			return cs[i].Name < cs[j].Name
		}
		return cs[i].CustomerID < cs[j].CustomerID
	})
	return page(cs, limit, offset), nil
}

func (s *Store) DeleteCustomer(_ context.Context, entrepriseID, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[customerID]
	if !ok || c.EntrepriseID != entrepriseID {
		return apperrors.ErrNotFound
	}
	for _, inv := range s.invoices {
		if inv.CustomerID == customerID {
			return apperrors.NewProtectedReferenceError("customer " + customerID + " is referenced by invoices")
		}
	}
	delete(s.customers, customerID)
	return nil
}

func (s *Store) SaveBankTransaction(_ context.Context, t domain.BankTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entreprises[t.EntrepriseID]; !ok {
		return fmt.Errorf("%w: entreprise %s", apperrors.ErrNotFound, t.EntrepriseID)
	}
	if _, ok := s.bankTxns[t.BankTransactionID]; ok {
		return fmt.Errorf("%w: bank transaction %s already exists", apperrors.ErrDuplicate, t.BankTransactionID)
	}
	s.bankTxns[t.BankTransactionID] = t
	return nil
}

func (s *Store) FindBankTransactionByID(_ context.Context, entrepriseID, bankTransactionID string) (*domain.BankTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.bankTxns[bankTransactionID]
	if !ok || t.EntrepriseID != entrepriseID {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

func (s *Store) ListBankTransactions(_ context.Context, entrepriseID string, from, to *time.Time) ([]domain.BankTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ts []domain.BankTransaction
	for _, t := range s.bankTxns {
		if t.EntrepriseID != entrepriseID {
			continue
		}
		if from != nil && t.Date.Before(*from) {
			continue
		}
		if to != nil && t.Date.After(*to) {
			continue
		}
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date) {
			return ts[i].Date.Before(ts[j].Date)
		}
		return ts[i].CreatedAt.Before(ts[j].CreatedAt)
	})
	return ts, nil
}

func (s *Store) DeleteBankTransaction(_ context.Context, entrepriseID, bankTransactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.bankTxns[bankTransactionID]
	if !ok || t.EntrepriseID != entrepriseID {
		return apperrors.ErrNotFound
	}
	for _, r := range s.reconciliations {
		if r.BankTransactionID == bankTransactionID {
			return apperrors.NewProtectedReferenceError("bank transaction " + bankTransactionID + " is reconciled")
		}
	}
	delete(s.bankTxns, bankTransactionID)
	return nil
}

// SaveReconciliation enforces the (tenant, invoice, bank transaction) uniqueness.
func (s *Store) SaveReconciliation(_ context.Context, rec domain.Reconciliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reconciliations {
		if r.EntrepriseID == rec.EntrepriseID && r.InvoiceID == rec.InvoiceID && r.BankTransactionID == rec.BankTransactionID {
			return fmt.Errorf("%w: invoice %s is already reconciled with bank transaction %s", apperrors.ErrDuplicate, rec.InvoiceID, rec.BankTransactionID)
		}
	}
	_, invOK := s.invoices[rec.InvoiceID]
	_, txOK := s.bankTxns[rec.BankTransactionID]
	_, userOK := s.users[rec.MatchedBy]
	if !invOK || !txOK || !userOK {
		return fmt.Errorf("%w: invoice, bank transaction or user does not exist", apperrors.ErrNotFound)
	}
	s.reconciliations = append(s.reconciliations, rec)
	return nil
}

func (s *Store) ListReconciliationsByInvoice(_ context.Context, entrepriseID, invoiceID string) ([]domain.Reconciliation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Reconciliation
	for _, r := range s.reconciliations {
		if r.EntrepriseID == entrepriseID && r.InvoiceID == invoiceID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchedAt.Before(out[j].MatchedAt) })
	return out, nil
}

func (s *Store) SaveAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[entry.ActorID]; !ok {
		return fmt.Errorf("%w: actor %s", apperrors.ErrNotFound, entry.ActorID)
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, entrepriseID string, limit int, nextToken string) ([]domain.AuditLog, string, error) {
	limit = pagination.NormalizeLimit(limit)

	var (
		afterAt time.Time
		afterID string
	)
	if nextToken != "" {
		var err error
		afterAt, afterID, err = pagination.DecodeTimeIDToken(nextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var logs []domain.AuditLog
	for _, l := range s.auditLogs {
		if l.EntrepriseID == nil || *l.EntrepriseID != entrepriseID {
			continue
		}
		if nextToken != "" && !keysetBefore(l.CreatedAt, l.AuditLogID, afterAt, afterID) {
			continue
		}
		logs = append(logs, l)
	}
	sort.Slice(logs, func(i, j int) bool {
		return keysetBefore(logs[j].CreatedAt, logs[j].AuditLogID, logs[i].CreatedAt, logs[i].AuditLogID)
	})

	var token string
	if len(logs) > limit {
		logs = logs[:limit]
		last := logs[len(logs)-1]
		token = pagination.EncodeTimeIDToken(last.CreatedAt, last.AuditLogID)
	}
	return logs, token, nil
}

// keysetBefore reports whether (at, id) sorts strictly before (refAt, refID)
// in ascending (time, id) order.
func keysetBefore(at time.Time, id string, refAt time.Time, refID string) bool {
	if !at.Equal(refAt) {
		return at.Before(refAt)
	}
	return id < refID
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
