package repositories

import (
	"context"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

// AuditLogRepositoryFacade defines the append-only audit trail operations
type AuditLogRepositoryFacade interface {
	SaveAuditLog(ctx context.Context, entry domain.AuditLog) error

	// ListAuditLogs retrieves entries of a tenant newest first and the next page token.
	ListAuditLogs(ctx context.Context, entrepriseID string, limit int, nextToken string) ([]domain.AuditLog, string, error)
}
