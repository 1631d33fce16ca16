package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// tenantHandler exposes the caller's tenant list, the current tenant and switching.
// Membership management inside the current tenant lives on the same handler.
type tenantHandler struct {
	membershipService portssvc.MembershipSvcFacade
}

func registerTenantRoutes(rg *gin.RouterGroup, membershipService portssvc.MembershipSvcFacade) {
	h := &tenantHandler{membershipService: membershipService}

	tenants := rg.Group("/tenants")
	{
		tenants.GET("", h.listTenants)
		tenants.GET("/current", h.currentTenant)
		tenants.POST("/switch", h.switchTenant)
	}
}

// registerMembershipRoutes registers routes scoped to the resolved tenant.
func registerMembershipRoutes(rg *gin.RouterGroup, membershipService portssvc.MembershipSvcFacade) {
	h := &tenantHandler{membershipService: membershipService}

	members := rg.Group("/memberships")
	{
		members.GET("", h.listMembers)
		members.POST("", h.addMembership)
		members.PATCH("/:membership_id/role", h.updateMembershipRole)
		members.PATCH("/:membership_id/active", h.setMembershipActive)
	}
}

// listTenants godoc
// @Summary List the caller's tenants
// @Description Lists entreprises where the caller holds an active membership, oldest membership first
// @Tags tenants
// @Produce  json
// @Success 200 {object} dto.ListTenantsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list tenants"
// @Security BearerAuth
// @Router /tenants [get]
func (h *tenantHandler) listTenants(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requestUser(c, logger)
	if !ok {
		return
	}

	tenants, err := h.membershipService.ListTenantsFor(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list tenants")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTenantsResponse(tenants))
}

// currentTenant godoc
// @Summary Resolve the current tenant
// @Description Stored selection first, then the legacy default tenant, then the oldest membership
// @Tags tenants
// @Produce  json
// @Success 200 {object} dto.TenantResponse
// @Failure 403 {object} map[string]string "No active membership"
// @Failure 500 {object} map[string]string "Failed to resolve tenant"
// @Security BearerAuth
// @Router /tenants/current [get]
func (h *tenantHandler) currentTenant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requestUser(c, logger)
	if !ok {
		return
	}

	t, err := h.membershipService.CurrentTenant(c.Request.Context(), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to resolve tenant")
		return
	}
	c.JSON(http.StatusOK, dto.ToTenantResponse(t))
}

// switchTenant godoc
// @Summary Switch the current tenant
// @Tags tenants
// @Accept  json
// @Produce  json
// @Param   body body dto.SwitchTenantRequest true "Target tenant"
// @Success 200 {object} dto.TenantResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Not an active member"
// @Failure 500 {object} map[string]string "Failed to switch tenant"
// @Security BearerAuth
// @Router /tenants/switch [post]
func (h *tenantHandler) switchTenant(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requestUser(c, logger)
	if !ok {
		return
	}
	var req dto.SwitchTenantRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	t, err := h.membershipService.SwitchCurrentTenant(c.Request.Context(), userID, req.EntrepriseID)
	if err != nil {
		respondError(c, logger, err, "Failed to switch tenant")
		return
	}
	logger.Info("Switched current tenant", slog.String("entreprise_id", t.EntrepriseID))
	c.JSON(http.StatusOK, dto.ToTenantResponse(t))
}

// listMembers godoc
// @Summary List memberships of the current tenant
// @Tags memberships
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Success 200 {object} dto.ListMembershipsResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list memberships"
// @Security BearerAuth
// @Router /memberships [get]
func (h *tenantHandler) listMembers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	members, err := h.membershipService.ListMembers(c.Request.Context(), tenantID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list memberships")
		return
	}
	c.JSON(http.StatusOK, dto.ToListMembershipsResponse(members))
}

// addMembership godoc
// @Summary Add a member to the current tenant
// @Tags memberships
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   body body dto.AddMembershipRequest true "Membership"
// @Success 201 {object} dto.MembershipResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Membership already exists"
// @Failure 500 {object} map[string]string "Failed to add membership"
// @Security BearerAuth
// @Router /memberships [post]
func (h *tenantHandler) addMembership(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var req dto.AddMembershipRequest
	if !bindJSON(c, logger, &req) {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	m, err := h.membershipService.AddMembership(c.Request.Context(), tenantID, req.UserID, req.Role, active, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to add membership")
		return
	}
	c.JSON(http.StatusCreated, dto.ToMembershipResponse(m))
}

// updateMembershipRole godoc
// @Summary Change a member's role
// @Tags memberships
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   membership_id path string true "Membership ID"
// @Param   body body dto.UpdateMembershipRoleRequest true "New role"
// @Success 200 {object} dto.MembershipResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Membership not found"
// @Failure 500 {object} map[string]string "Failed to update membership"
// @Security BearerAuth
// @Router /memberships/{membership_id}/role [patch]
func (h *tenantHandler) updateMembershipRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var req dto.UpdateMembershipRoleRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	m, err := h.membershipService.UpdateMembershipRole(c.Request.Context(), tenantID, c.Param("membership_id"), req.Role, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update membership")
		return
	}
	c.JSON(http.StatusOK, dto.ToMembershipResponse(m))
}

// setMembershipActive godoc
// @Summary Activate or deactivate a membership
// @Tags memberships
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   membership_id path string true "Membership ID"
// @Param   body body dto.SetActiveRequest true "Desired state"
// @Success 200 {object} dto.MembershipResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Membership not found"
// @Failure 500 {object} map[string]string "Failed to update membership"
// @Security BearerAuth
// @Router /memberships/{membership_id}/active [patch]
func (h *tenantHandler) setMembershipActive(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	m, err := h.membershipService.SetMembershipActive(c.Request.Context(), tenantID, c.Param("membership_id"), *req.IsActive, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update membership")
		return
	}
	c.JSON(http.StatusOK, dto.ToMembershipResponse(m))
}
