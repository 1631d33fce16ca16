package pgsql

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	"github.com/SscSPs/compta_saas_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAuditLogRepository struct {
	BaseRepository
}

func newPgxAuditLogRepository(pool *pgxpool.Pool) portsrepo.AuditLogRepositoryFacade {
	return &PgxAuditLogRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditLogRepositoryFacade = (*PgxAuditLogRepository)(nil)

var auditLogColumns = []string{"audit_log_id", "entreprise_id", "actor_id", "action", "entity_type", "entity_id", "metadata", "created_at"}

func (r *PgxAuditLogRepository) SaveAuditLog(ctx context.Context, entry domain.AuditLog) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	query, args, err := psql.Insert("audit_logs").
		Columns(auditLogColumns...).
		Values(entry.AuditLogID, entry.EntrepriseID, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, metadata, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build audit log insert: %w", err)
	}
	if _, err := r.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save audit log: %w", err)
	}
	return nil
}

// ListAuditLogs pages newest first using a (created_at, audit_log_id) keyset token.
func (r *PgxAuditLogRepository) ListAuditLogs(ctx context.Context, entrepriseID string, limit int, nextToken string) ([]domain.AuditLog, string, error) {
	limit = pagination.NormalizeLimit(limit)
	builder := psql.Select(auditLogColumns...).
		From("audit_logs").
		Where(sq.Eq{"entreprise_id": entrepriseID}).
		OrderBy("created_at DESC", "audit_log_id DESC").
		Limit(uint64(limit + 1))

	if nextToken != "" {
		createdAt, lastID, err := pagination.DecodeTimeIDToken(nextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		builder = builder.Where("(created_at, audit_log_id) < (?, ?)", createdAt, lastID)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, "", fmt.Errorf("failed to build audit log list query: %w", err)
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list audit logs: %w", err)
	}
	logs, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.AuditLog])
	if err != nil {
		return nil, "", fmt.Errorf("failed to scan audit logs: %w", err)
	}

	var token string
	if len(logs) > limit {
		logs = logs[:limit]
		last := logs[len(logs)-1]
		token = pagination.EncodeTimeIDToken(last.CreatedAt, last.AuditLogID)
	}
	return logs, token, nil
}
