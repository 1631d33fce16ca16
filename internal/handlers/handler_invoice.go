package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/SscSPs/compta_saas_backend/internal/core/domain"
	portsrepo "github.com/SscSPs/compta_saas_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type invoiceHandler struct {
	invoiceService        portssvc.InvoiceSvcFacade
	reconciliationService portssvc.ReconciliationSvcFacade
}

func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := &invoiceHandler{invoiceService: invoiceService, reconciliationService: reconciliationService}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.POST("/chain/verify", h.verifyChain)

		invoice := invoices.Group("/:invoice_id")
		{
			invoice.GET("", h.getInvoice)
			invoice.PUT("", h.updateDraft)
			invoice.POST("/issue", h.issueInvoice)
			invoice.POST("/pay", h.markPaid)
			invoice.POST("/cancel", h.cancelInvoice)
			invoice.GET("/documents", h.listDocuments)
			invoice.POST("/documents", h.attachDocument)
			invoice.GET("/reconciliations", h.listReconciliations)
		}
	}
}

// createInvoice godoc
// @Summary Create a draft invoice
// @Description Line and invoice totals are computed server-side.
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   invoice body dto.CreateInvoiceRequest true "Draft content"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Invoice number already used"
// @Failure 500 {object} map[string]string "Failed to create invoice"
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var req dto.CreateInvoiceRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	inv, err := h.invoiceService.CreateInvoice(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create invoice")
		return
	}
	logger.Info("Draft invoice created", slog.String("invoice_id", inv.InvoiceID))
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(inv))
}

// listInvoices godoc
// @Summary List invoices
// @Tags invoices
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   status query string false "DRAFT, ISSUED, PAID or CANCELED"
// @Param   customerID query string false "Customer filter"
// @Param   from query string false "Issued on or after (YYYY-MM-DD)"
// @Param   to query string false "Issued on or before (YYYY-MM-DD)"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list invoices"
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	filter := portsrepo.InvoiceFilter{
		Status:     domain.InvoiceStatus(params.Status),
		CustomerID: params.CustomerID,
		From:       params.From,
		To:         params.To,
		Limit:      params.Limit,
		NextToken:  params.NextToken,
	}
	invoices, next, err := h.invoiceService.ListInvoices(c.Request.Context(), tenantID, filter, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, dto.ToListInvoicesResponse(invoices, next))
}

// getInvoice godoc
// @Summary Get an invoice with its lines
// @Tags invoices
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   invoice_id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 500 {object} map[string]string "Failed to retrieve invoice"
// @Security BearerAuth
// @Router /invoices/{invoice_id} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	inv, err := h.invoiceService.GetInvoice(c.Request.Context(), tenantID, c.Param("invoice_id"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv))
}

// updateDraft godoc
// @Summary Replace the content of a draft invoice
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   invoice_id path string true "Invoice ID"
// @Param   invoice body dto.UpdateInvoiceRequest true "Draft content"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is locked"
// @Failure 500 {object} map[string]string "Failed to update invoice"
// @Security BearerAuth
// @Router /invoices/{invoice_id} [put]
func (h *invoiceHandler) updateDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var req dto.UpdateInvoiceRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	inv, err := h.invoiceService.UpdateDraft(c.Request.Context(), tenantID, c.Param("invoice_id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv))
}

// issueInvoice godoc
// @Summary Issue an invoice
// @Description Seals the draft: computes its hash, appends it to the tenant chain and locks it.
// @Tags invoices
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   invoice_id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invoice is not a draft"
// @Failure 500 {object} map[string]string "Failed to issue invoice"
// @Security BearerAuth
// @Router /invoices/{invoice_id}/issue [post]
func (h *invoiceHandler) issueInvoice(c *gin.Context) {
	h.transition(c, h.invoiceService.IssueInvoice, "Failed to issue invoice")
}

// markPaid godoc
// @Summary Mark an issued invoice as paid
// @Tags invoices
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   invoice_id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Failure 500 {object} map[string]string "Failed to mark invoice paid"
// @Security BearerAuth
// @Router /invoices/{invoice_id}/pay [post]
func (h *invoiceHandler) markPaid(c *gin.Context) {
	h.transition(c, h.invoiceService.MarkPaid, "Failed to mark invoice paid")
}

// cancelInvoice godoc
// @Summary Cancel an invoice
// @Description Drafts are canceled outright; issued invoices record a CANCEL entry on the chain.
// @Tags invoices
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   invoice_id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 409 {object} map[string]string "Invalid transition"
// @Failure 500 {object} map[string]string "Failed to cancel invoice"
// @Security BearerAuth
// @Router /invoices/{invoice_id}/cancel [post]
func (h *invoiceHandler) cancelInvoice(c *gin.Context) {
	h.transition(c, h.invoiceService.CancelInvoice, "Failed to cancel invoice")
}

type transitionFunc func(ctx context.Context, tenantID, invoiceID, requestingUserID string) (*domain.Invoice, error)

func (h *invoiceHandler) transition(c *gin.Context, apply transitionFunc, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	inv, err := apply(c.Request.Context(), tenantID, c.Param("invoice_id"), userID)
	if err != nil {
		respondError(c, logger, err, fallback)
		return
	}
	logger.Info("Invoice status changed", slog.String("invoice_id", inv.InvoiceID), slog.String("status", string(inv.Status)))
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(inv))
}

// attachDocument godoc
// @Summary Register a rendered PDF for a locked invoice
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   invoice_id path string true "Invoice ID"
// @Param   document body dto.AttachDocumentRequest true "Document"
// @Success 201 {object} dto.InvoiceDocumentResponse
// @Failure 400 {object} map[string]string "Invoice is not locked"
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 500 {object} map[string]string "Failed to attach document"
// @Security BearerAuth
// @Router /invoices/{invoice_id}/documents [post]
func (h *invoiceHandler) attachDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var req dto.AttachDocumentRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	doc, err := h.invoiceService.AttachDocument(c.Request.Context(), tenantID, c.Param("invoice_id"), req.PDFPath, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to attach document")
		return
	}
	c.JSON(http.StatusCreated, dto.ToInvoiceDocumentResponse(doc))
}

// listDocuments godoc
// @Summary List documents of an invoice
// @Tags invoices
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   invoice_id path string true "Invoice ID"
// @Success 200 {object} dto.ListInvoiceDocumentsResponse
// @Failure 404 {object} map[string]string "Invoice not found"
// @Failure 500 {object} map[string]string "Failed to list documents"
// @Security BearerAuth
// @Router /invoices/{invoice_id}/documents [get]
func (h *invoiceHandler) listDocuments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	docs, err := h.invoiceService.ListDocuments(c.Request.Context(), tenantID, c.Param("invoice_id"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list documents")
		return
	}
	c.JSON(http.StatusOK, dto.ToListInvoiceDocumentsResponse(docs))
}

// listReconciliations godoc
// @Summary List bank matches of an invoice
// @Tags invoices
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   invoice_id path string true "Invoice ID"
// @Success 200 {object} dto.ListReconciliationsResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list reconciliations"
// @Security BearerAuth
// @Router /invoices/{invoice_id}/reconciliations [get]
func (h *invoiceHandler) listReconciliations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	recs, err := h.reconciliationService.ListReconciliations(c.Request.Context(), tenantID, c.Param("invoice_id"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list reconciliations")
		return
	}
	c.JSON(http.StatusOK, dto.ToListReconciliationsResponse(recs))
}

// verifyChain godoc
// @Summary Verify the invoice integrity chain of the current tenant
// @Description Recomputes every chained hash. A broken chain answers 409 with the report.
// @Tags invoices
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Success 200 {object} dto.ChainReportResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} dto.ChainReportResponse "Chain mismatch"
// @Failure 500 {object} map[string]string "Failed to verify chain"
// @Security BearerAuth
// @Router /invoices/chain/verify [post]
func (h *invoiceHandler) verifyChain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	report, err := h.invoiceService.VerifyChainAs(c.Request.Context(), tenantID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrChainMismatch) && report != nil {
			logger.Warn("Invoice chain mismatch", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, dto.ToChainReportResponse(report))
			return
		}
		respondError(c, logger, err, "Failed to verify chain")
		return
	}
	c.JSON(http.StatusOK, dto.ToChainReportResponse(report))
}
