package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// entrepriseHandler handles tenant lifecycle requests. These routes address the
// tenant by path and do not go through the tenant context middleware.
type entrepriseHandler struct {
	entrepriseService portssvc.EntrepriseSvcFacade
}

func registerEntrepriseRoutes(rg *gin.RouterGroup, entrepriseService portssvc.EntrepriseSvcFacade) {
	h := &entrepriseHandler{entrepriseService: entrepriseService}

	entreprises := rg.Group("/entreprises")
	{
		entreprises.POST("", h.createEntreprise)
		entreprises.GET("/:entreprise_id", h.getEntreprise)
		entreprises.PATCH("/:entreprise_id/active", h.setEntrepriseActive)
		entreprises.DELETE("/:entreprise_id", h.deleteEntreprise)
	}
}

// createEntreprise godoc
// @Summary Create an entreprise
// @Description Creates a tenant and makes the caller its TENANT_OWNER
// @Tags entreprises
// @Accept  json
// @Produce  json
// @Param   entreprise body dto.CreateEntrepriseRequest true "Entreprise details"
// @Success 201 {object} dto.EntrepriseResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "SIRET already registered"
// @Failure 500 {object} map[string]string "Failed to create entreprise"
// @Security BearerAuth
// @Router /entreprises [post]
func (h *entrepriseHandler) createEntreprise(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requestUser(c, logger)
	if !ok {
		return
	}
	var req dto.CreateEntrepriseRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	e, err := h.entrepriseService.CreateEntreprise(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create entreprise")
		return
	}
	logger.Info("Entreprise created", slog.String("entreprise_id", e.EntrepriseID))
	c.JSON(http.StatusCreated, dto.ToEntrepriseResponse(e))
}

// getEntreprise godoc
// @Summary Get an entreprise
// @Tags entreprises
// @Produce  json
// @Param   entreprise_id path string true "Entreprise ID"
// @Success 200 {object} dto.EntrepriseResponse
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Entreprise not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entreprise"
// @Security BearerAuth
// @Router /entreprises/{entreprise_id} [get]
func (h *entrepriseHandler) getEntreprise(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requestUser(c, logger)
	if !ok {
		return
	}

	e, err := h.entrepriseService.GetEntreprise(c.Request.Context(), c.Param("entreprise_id"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve entreprise")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntrepriseResponse(e))
}

// setEntrepriseActive godoc
// @Summary Activate or deactivate an entreprise
// @Tags entreprises
// @Accept  json
// @Produce  json
// @Param   entreprise_id path string true "Entreprise ID"
// @Param   body body dto.SetActiveRequest true "Desired state"
// @Success 200 {object} dto.EntrepriseResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to update entreprise"
// @Security BearerAuth
// @Router /entreprises/{entreprise_id}/active [patch]
func (h *entrepriseHandler) setEntrepriseActive(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requestUser(c, logger)
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	e, err := h.entrepriseService.SetEntrepriseActive(c.Request.Context(), c.Param("entreprise_id"), *req.IsActive, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update entreprise")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntrepriseResponse(e))
}

// deleteEntreprise godoc
// @Summary Delete an entreprise
// @Description Only the TENANT_OWNER may delete. Blocked while invoices or other protected rows reference it.
// @Tags entreprises
// @Param   entreprise_id path string true "Entreprise ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Entreprise is still referenced"
// @Failure 500 {object} map[string]string "Failed to delete entreprise"
// @Security BearerAuth
// @Router /entreprises/{entreprise_id} [delete]
func (h *entrepriseHandler) deleteEntreprise(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requestUser(c, logger)
	if !ok {
		return
	}

	entrepriseID := c.Param("entreprise_id")
	if err := h.entrepriseService.DeleteEntreprise(c.Request.Context(), entrepriseID, userID); err != nil {
		respondError(c, logger, err, "Failed to delete entreprise")
		return
	}
	logger.Info("Entreprise deleted", slog.String("entreprise_id", entrepriseID))
	c.Status(http.StatusNoContent)
}
