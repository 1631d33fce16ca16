package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/google/uuid"
)

type auditService struct {
	BaseService
	auditRepo portsrepo.AuditLogRepositoryFacade
}

// NewAuditService creates the audit log service. The authorizer guards listing only;
// recording is called by other services on behalf of an already authorized actor.
func NewAuditService(repo portsrepo.AuditLogRepositoryFacade, authorizer portssvc.TenantAuthorizerSvc) portssvc.AuditSvcFacade {
	return &auditService{
		BaseService: BaseService{TenantAuthorizer: authorizer},
		auditRepo:   repo,
	}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

func (s *auditService) Record(ctx context.Context, tenantID, actorID, action, entityType, entityID string, metadata map[string]any) error {
	entry := domain.AuditLog{
		AuditLogID: uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if tenantID != "" {
		entry.EntrepriseID = &tenantID
	}
	if err := s.auditRepo.SaveAuditLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit log %s: %w", action, err)
	}
	return nil
}

func (s *auditService) ListAuditLogs(ctx context.Context, tenantID string, limit int, nextToken, requestingUserID string) ([]domain.AuditLog, string, error) {
	if _, err := s.AuthorizeUser(ctx, requestingUserID, tenantID, writerRoles...); err != nil {
		return nil, "", err
	}
	logs, token, err := s.auditRepo.ListAuditLogs(ctx, tenantID, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list audit logs", slog.String("tenant_id", tenantID))
		return nil, "", err
	}
	if logs == nil {
		logs = []domain.AuditLog{}
	}
	return logs, token, nil
}

// recordAudit appends an audit entry after a committed operation. Failures are logged
// and never undo the operation.
func (s *BaseService) recordAudit(ctx context.Context, recorder portssvc.AuditRecorderSvc, tenantID, actorID, action, entityType, entityID string, metadata map[string]any) {
	if recorder == nil {
		return
	}
	if err := recorder.Record(ctx, tenantID, actorID, action, entityType, entityID, metadata); err != nil {
		s.LogError(ctx, err, "Failed to record audit log",
			slog.String("action", action),
			slog.String("entity_id", entityID))
	}
}
