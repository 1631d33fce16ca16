package domain

import "time"

// Audit actions recorded by the services.
const (
	AuditMembershipAdded       = "membership.added"
	AuditMembershipRoleChanged = "membership.role_changed"
	AuditMembershipActivated   = "membership.activated"
	AuditMembershipSuspended   = "membership.suspended"
	AuditTenantSwitched        = "tenant.switched"
	AuditInvoiceIssued         = "invoice.issued"
	AuditInvoicePaid           = "invoice.paid"
	AuditInvoiceCanceled       = "invoice.canceled"
	AuditInvoiceDocument       = "invoice.document_attached"
	AuditChainVerified         = "invoice_chain.verified"
	AuditReconciled            = "reconciliation.created"
)

// AuditLog is an append-only record of a user action. EntrepriseID becomes nil when
// the tenant is deleted.
type AuditLog struct {
	AuditLogID   string         `json:"auditLogID" db:"audit_log_id"`
	EntrepriseID *string        `json:"entrepriseID,omitempty" db:"entreprise_id"`
	ActorID      string         `json:"actorID" db:"actor_id"`
	Action       string         `json:"action" db:"action"`
	EntityType   string         `json:"entityType" db:"entity_type"`
	EntityID     string         `json:"entityID" db:"entity_id"`
	Metadata     map[string]any `json:"metadata" db:"metadata"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
}
