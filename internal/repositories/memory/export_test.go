package memory

import "github.com/SscSPs/compta_saas_backend/internal/core/domain"

// rewriteInvoice changes a stored invoice without any guard, like a direct database edit.
func (s *Store) rewriteInvoice(invoiceID string, mutate func(*domain.Invoice)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return
	}
	inv = cloneInvoice(inv, true)
	mutate(&inv)
	s.invoices[invoiceID] = inv
}
