package dto

import (
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
)

type ListAuditLogsParams struct {
	Limit     int    `form:"limit"`
	NextToken string `form:"nextToken"`
}

type AuditLogResponse struct {
	AuditLogID string         `json:"auditLogID"`
	ActorID    string         `json:"actorID"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityID"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type ListAuditLogsResponse struct {
	AuditLogs []AuditLogResponse `json:"auditLogs"`
	NextToken string             `json:"nextToken,omitempty"`
}

func ToListAuditLogsResponse(logs []domain.AuditLog, nextToken string) ListAuditLogsResponse {
	list := make([]AuditLogResponse, len(logs))
	for i, l := range logs {
		list[i] = AuditLogResponse{
			AuditLogID: l.AuditLogID,
			ActorID:    l.ActorID,
			Action:     l.Action,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Metadata:   l.Metadata,
			CreatedAt:  l.CreatedAt,
		}
	}
	return ListAuditLogsResponse{AuditLogs: list, NextToken: nextToken}
}
