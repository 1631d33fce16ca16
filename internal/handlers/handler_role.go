package handlers

import (
	"net/http"

	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type roleHandler struct {
	roleService portssvc.RoleSvcFacade
}

func registerRoleRoutes(rg *gin.RouterGroup, roleService portssvc.RoleSvcFacade) {
	h := &roleHandler{roleService: roleService}

	roles := rg.Group("/roles")
	{
		roles.GET("", h.listRoles)
		roles.GET("/:code", h.getRole)
		roles.PUT("/:code", h.updateRole)
		roles.DELETE("/:code", h.deleteRole)
	}
}

// listRoles godoc
// @Summary List system roles
// @Tags roles
// @Produce  json
// @Success 200 {object} dto.ListRolesResponse
// @Failure 500 {object} map[string]string "Failed to list roles"
// @Security BearerAuth
// @Router /roles [get]
func (h *roleHandler) listRoles(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list roles")
		return
	}
	c.JSON(http.StatusOK, dto.ToListRolesResponse(roles))
}

// getRole godoc
// @Summary Get a system role by code
// @Tags roles
// @Produce  json
// @Param   code path string true "Role code"
// @Success 200 {object} dto.RoleResponse
// @Failure 404 {object} map[string]string "Role not found"
// @Failure 500 {object} map[string]string "Failed to retrieve role"
// @Security BearerAuth
// @Router /roles/{code} [get]
func (h *roleHandler) getRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	role, err := h.roleService.GetRoleByCode(c.Request.Context(), domain.RoleCode(c.Param("code")))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve role")
		return
	}
	c.JSON(http.StatusOK, dto.ToRoleResponse(role))
}

// updateRole godoc
// @Summary Update a system role
// @Description Roles are fixed; this always fails with 405.
// @Tags roles
// @Param   code path string true "Role code"
// @Failure 405 {object} map[string]string "Roles are immutable"
// @Security BearerAuth
// @Router /roles/{code} [put]
func (h *roleHandler) updateRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	err := h.roleService.UpdateRole(c.Request.Context(), domain.RoleCode(c.Param("code")), "", "")
	respondError(c, logger, err, "Failed to update role")
}

// deleteRole godoc
// @Summary Delete a system role
// @Description Roles are fixed; this always fails with 405.
// @Tags roles
// @Param   code path string true "Role code"
// @Failure 405 {object} map[string]string "Roles are immutable"
// @Security BearerAuth
// @Router /roles/{code} [delete]
func (h *roleHandler) deleteRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	err := h.roleService.DeleteRole(c.Request.Context(), domain.RoleCode(c.Param("code")))
	respondError(c, logger, err, "Failed to delete role")
}
