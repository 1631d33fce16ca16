// Package integrity computes and verifies the per-tenant invoice hash chain.
//
// Every issued invoice is sealed with hash_curr = SHA-256(canonical content + hash_prev),
// where hash_prev is the hash of the previous chain entry of the same tenant, or Seed for
// the first one. Cancellations of issued invoices append their own entry to the chain.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Version prefixes every canonical payload so the format can evolve.
const Version = "v1"

// HashLength is the length of a hex encoded SHA-256 digest.
const HashLength = sha256.Size * 2

// Seed is the hash_prev of the first entry of every tenant chain.
var Seed = strings.Repeat("0", HashLength)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000000Z"
)

// Timestamp normalizes t to what the database stores for a timestamptz column,
// so that hashes computed before and after a round trip agree.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// CanonicalInvoice renders the sealed content of an invoice:
// v1|tenant|number|issue_date|ht;tva;ttc,...|total_ttc|prev
// Lines are rendered in position order whatever the order of invoice.Lines.
func CanonicalInvoice(tenantID string, invoice domain.Invoice, prev string) string {
	lines := make([]domain.InvoiceLine, len(invoice.Lines))
	copy(lines, invoice.Lines)
	sortLines(lines)

	rendered := make([]string, 0, len(lines))
	for _, l := range lines {
		rendered = append(rendered, money(l.TotalHT)+";"+money(l.TotalTVA)+";"+money(l.TotalTTC))
	}

	return strings.Join([]string{
		Version,
		tenantID,
		invoice.Number,
		invoice.IssueDate.Format(dateLayout),
		strings.Join(rendered, ","),
		money(invoice.TotalTTC),
		prev,
	}, "|")
}

// CanonicalCancel renders the content of a cancellation entry.
func CanonicalCancel(tenantID, invoiceNumber, issueHash string, recordedAt time.Time, prev string) string {
	return strings.Join([]string{
		Version,
		"CANCEL",
		tenantID,
		invoiceNumber,
		issueHash,
		Timestamp(recordedAt).Format(timestampLayout),
		prev,
	}, "|")
}

// Sum returns the hex encoded SHA-256 of payload.
func Sum(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// SealInvoice returns hash_curr for invoice chained after prev.
func SealInvoice(tenantID string, invoice domain.Invoice, prev string) string {
	return Sum(CanonicalInvoice(tenantID, invoice, prev))
}

// SealCancel returns hash_curr for a cancellation entry chained after prev.
func SealCancel(tenantID, invoiceNumber, issueHash string, recordedAt time.Time, prev string) string {
	return Sum(CanonicalCancel(tenantID, invoiceNumber, issueHash, recordedAt, prev))
}

func sortLines(lines []domain.InvoiceLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Position < lines[j].Position
	})
}
