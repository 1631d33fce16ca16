package integrity

import (
	"sort"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// Mismatch reasons reported by Verify.
const (
	ReasonHashMismatch       = "recomputed hash differs from stored hash_curr"
	ReasonInvoiceMissing     = "chain entry references an unknown invoice"
	ReasonInvoiceLinkBroken  = "invoice hash fields differ from its chain entry"
	ReasonCancelWithoutIssue = "cancel entry has no prior issue entry for the invoice"
	ReasonSequence           = "sequence number out of order"
	ReasonOrphan             = "entry not reachable from the chain seed"
	ReasonFork               = "several entries share the same hash_prev"
	ReasonTail               = "chain tail does not match the last entry"
)

// ChainInput is everything Verify needs for one tenant.
type ChainInput struct {
	TenantID string
	Entries  []domain.InvoiceChainEntry
	// Invoices referenced by ISSUE and CANCEL entries, keyed by invoice id, with their lines.
	Invoices map[string]domain.Invoice
	// Tail is optional.
	Tail *domain.ChainTail
}

// Verify walks the chain from Seed following hash_prev links and recomputes every hash
// from stored content and the stored hash_curr of the previous entry. It never repairs
// anything. The returned error is a *apperrors.ChainMismatchError for the first
// mismatch, or nil when the chain is intact.
func Verify(in ChainInput, now time.Time) (domain.ChainReport, error) {
	report := domain.ChainReport{
		EntrepriseID: in.TenantID,
		TailHash:     Seed,
		Mismatches:   []domain.ChainMismatch{},
		VerifiedAt:   now,
	}

	byPrev := make(map[string]domain.InvoiceChainEntry, len(in.Entries))
	for _, e := range sortedEntries(in.Entries) {
		if _, ok := byPrev[e.HashPrev]; ok {
			report.Mismatches = append(report.Mismatches, domain.ChainMismatch{
				InvoiceID: e.InvoiceID,
				Seq:       e.Seq,
				Stored:    e.HashPrev,
				Reason:    ReasonFork,
			})
			continue
		}
		byPrev[e.HashPrev] = e
	}

	visited := make(map[string]bool, len(in.Entries))
	issueHashes := make(map[string]string)
	prev := Seed
	var expectedSeq int64 = 1

	for {
		e, ok := byPrev[prev]
		if !ok || visited[e.ChainEntryID] {
			break
		}
		visited[e.ChainEntryID] = true
		report.EntriesChecked++

		if e.Seq != expectedSeq {
			report.Mismatches = append(report.Mismatches, domain.ChainMismatch{
				InvoiceID: e.InvoiceID,
				Seq:       e.Seq,
				Reason:    ReasonSequence,
			})
		}
		expectedSeq = e.Seq + 1

		if m := checkEntry(in, e, prev, issueHashes); m != nil {
			report.Mismatches = append(report.Mismatches, *m)
		}

		prev = e.HashCurr
	}
	report.TailHash = prev

	for _, e := range sortedEntries(in.Entries) {
		if visited[e.ChainEntryID] {
			continue
		}
		if existing, ok := byPrev[e.HashPrev]; ok && existing.ChainEntryID != e.ChainEntryID {
			// already reported as a fork
			continue
		}
		report.Mismatches = append(report.Mismatches, domain.ChainMismatch{
			InvoiceID: e.InvoiceID,
			Seq:       e.Seq,
			Stored:    e.HashPrev,
			Reason:    ReasonOrphan,
		})
	}

	if in.Tail != nil && in.Tail.LastHash != report.TailHash {
		report.Mismatches = append(report.Mismatches, domain.ChainMismatch{
			Seq:      in.Tail.LastSeq,
			Expected: report.TailHash,
			Stored:   in.Tail.LastHash,
			Reason:   ReasonTail,
		})
	}

	if report.OK() {
		return report, nil
	}
	first := report.Mismatches[0]
	return report, &apperrors.ChainMismatchError{
		TenantID:  in.TenantID,
		InvoiceID: first.InvoiceID,
		Seq:       first.Seq,
		Expected:  first.Expected,
		Stored:    first.Stored,
		Reason:    first.Reason,
	}
}

func checkEntry(in ChainInput, e domain.InvoiceChainEntry, prev string, issueHashes map[string]string) *domain.ChainMismatch {
	invoice, ok := in.Invoices[e.InvoiceID]
	if !ok {
		return &domain.ChainMismatch{InvoiceID: e.InvoiceID, Seq: e.Seq, Stored: e.HashCurr, Reason: ReasonInvoiceMissing}
	}

	var expected string
	switch e.Kind {
	case domain.ChainEntryCancel:
		issueHash, ok := issueHashes[e.InvoiceID]
		if !ok {
			return &domain.ChainMismatch{InvoiceID: e.InvoiceID, Seq: e.Seq, Stored: e.HashCurr, Reason: ReasonCancelWithoutIssue}
		}
		expected = SealCancel(in.TenantID, invoice.Number, issueHash, e.RecordedAt, prev)
	default:
		expected = SealInvoice(in.TenantID, invoice, prev)
		issueHashes[e.InvoiceID] = e.HashCurr
	}

	if expected != e.HashCurr {
		return &domain.ChainMismatch{InvoiceID: e.InvoiceID, Seq: e.Seq, Expected: expected, Stored: e.HashCurr, Reason: ReasonHashMismatch}
	}

	if e.Kind != domain.ChainEntryCancel {
		if invoice.HashCurr == nil || *invoice.HashCurr != e.HashCurr || invoice.HashPrev == nil || *invoice.HashPrev != e.HashPrev {
			stored := ""
			if invoice.HashCurr != nil {
				stored = *invoice.HashCurr
			}
			return &domain.ChainMismatch{InvoiceID: e.InvoiceID, Seq: e.Seq, Expected: e.HashCurr, Stored: stored, Reason: ReasonInvoiceLinkBroken}
		}
	}
	return nil
}

func sortedEntries(entries []domain.InvoiceChainEntry) []domain.InvoiceChainEntry {
	sorted := make([]domain.InvoiceChainEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Seq < sorted[j].Seq
	})
	return sorted
}
