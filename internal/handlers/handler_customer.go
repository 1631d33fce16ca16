package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type customerHandler struct {
	customerService portssvc.CustomerSvcFacade
}

func registerCustomerRoutes(rg *gin.RouterGroup, customerService portssvc.CustomerSvcFacade) {
	h := &customerHandler{customerService: customerService}

	customers := rg.Group("/customers")
	{
		customers.POST("", h.createCustomer)
		customers.GET("", h.listCustomers)
		customers.GET("/:customer_id", h.getCustomer)
		customers.DELETE("/:customer_id", h.deleteCustomer)
	}
}

// createCustomer godoc
// @Summary Create a customer
// @Tags customers
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   customer body dto.CreateCustomerRequest true "Customer details"
// @Success 201 {object} dto.CustomerResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to create customer"
// @Security BearerAuth
// @Router /customers [post]
func (h *customerHandler) createCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var req dto.CreateCustomerRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	cust, err := h.customerService.CreateCustomer(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create customer")
		return
	}
	logger.Info("Customer created", slog.String("customer_id", cust.CustomerID))
	c.JSON(http.StatusCreated, dto.ToCustomerResponse(cust))
}

// listCustomers godoc
// @Summary List customers of the current tenant
// @Tags customers
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   limit query int false "Page size"
// @Param   offset query int false "Offset"
// @Success 200 {object} dto.ListCustomersResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list customers"
// @Security BearerAuth
// @Router /customers [get]
func (h *customerHandler) listCustomers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var params dto.ListCustomersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	customers, err := h.customerService.ListCustomers(c.Request.Context(), tenantID, params.Limit, params.Offset, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list customers")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCustomersResponse(customers))
}

// getCustomer godoc
// @Summary Get a customer
// @Tags customers
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   customer_id path string true "Customer ID"
// @Success 200 {object} dto.CustomerResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 500 {object} map[string]string "Failed to retrieve customer"
// @Security BearerAuth
// @Router /customers/{customer_id} [get]
func (h *customerHandler) getCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	cust, err := h.customerService.GetCustomer(c.Request.Context(), tenantID, c.Param("customer_id"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve customer")
		return
	}
	c.JSON(http.StatusOK, dto.ToCustomerResponse(cust))
}

// deleteCustomer godoc
// @Summary Delete a customer
// @Description Blocked while invoices reference the customer.
// @Tags customers
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   customer_id path string true "Customer ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Customer not found"
// @Failure 409 {object} map[string]string "Customer is still referenced"
// @Failure 500 {object} map[string]string "Failed to delete customer"
// @Security BearerAuth
// @Router /customers/{customer_id} [delete]
func (h *customerHandler) deleteCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), tenantID, c.Param("customer_id"), userID); err != nil {
		respondError(c, logger, err, "Failed to delete customer")
		return
	}
	c.Status(http.StatusNoContent)
}
