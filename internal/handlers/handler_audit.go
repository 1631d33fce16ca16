package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := &auditHandler{auditService: auditService}
	rg.GET("/audit-logs", h.listAuditLogs)
}

// listAuditLogs godoc
// @Summary List the audit trail of the current tenant
// @Description Newest first, keyset paginated through nextToken
// @Tags audit
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListAuditLogsResponse
// @Failure 400 {object} map[string]string "Invalid token"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list audit logs"
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *auditHandler) listAuditLogs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var params dto.ListAuditLogsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logs, next, err := h.auditService.ListAuditLogs(c.Request.Context(), tenantID, params.Limit, params.NextToken, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list audit logs")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAuditLogsResponse(logs, next))
}
