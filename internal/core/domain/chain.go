package domain

import "time"

// ChainEntryKind distinguishes the events appended to a tenant's invoice chain.
type ChainEntryKind string

const (
	ChainEntryIssue  ChainEntryKind = "ISSUE"
	ChainEntryCancel ChainEntryKind = "CANCEL"
)

// InvoiceChainEntry is one append-only link of a tenant's invoice chain.
// Seq is informational; verification order follows the HashPrev links.
type InvoiceChainEntry struct {
	ChainEntryID string         `json:"chainEntryID" db:"chain_entry_id"`
	EntrepriseID string         `json:"entrepriseID" db:"entreprise_id"`
	InvoiceID    string         `json:"invoiceID" db:"invoice_id"`
	Seq          int64          `json:"seq" db:"seq"`
	Kind         ChainEntryKind `json:"kind" db:"kind"`
	HashPrev     string         `json:"hashPrev" db:"hash_prev"`
	HashCurr     string         `json:"hashCurr" db:"hash_curr"`
	RecordedAt   time.Time      `json:"recordedAt" db:"recorded_at"`
}

// ChainTail is the per-tenant serialization point of chain appends.
type ChainTail struct {
	EntrepriseID string    `json:"entrepriseID" db:"entreprise_id"`
	LastHash     string    `json:"lastHash" db:"last_hash"`
	LastSeq      int64     `json:"lastSeq" db:"last_seq"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// ChainMismatch describes one entry that failed verification.
type ChainMismatch struct {
	InvoiceID string `json:"invoiceID"`
	Seq       int64  `json:"seq"`
	Expected  string `json:"expected"`
	Stored    string `json:"stored"`
	Reason    string `json:"reason"`
}

// ChainReport is the outcome of verifying one tenant's chain.
type ChainReport struct {
	EntrepriseID   string          `json:"entrepriseID"`
	EntriesChecked int             `json:"entriesChecked"`
	TailHash       string          `json:"tailHash"`
	Mismatches     []ChainMismatch `json:"mismatches"`
	VerifiedAt     time.Time       `json:"verifiedAt"`
}

// OK reports whether no mismatch was found.
func (r *ChainReport) OK() bool {
	return len(r.Mismatches) == 0
}
