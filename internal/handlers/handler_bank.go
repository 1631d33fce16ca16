package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/compta_saas_backend/internal/core/ports/services"
	"github.com/SscSPs/compta_saas_backend/internal/dto"
	"github.com/SscSPs/compta_saas_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// bankHandler serves bank statement lines and their reconciliation with invoices.
type bankHandler struct {
	bankService           portssvc.BankTransactionSvcFacade
	reconciliationService portssvc.ReconciliationSvcFacade
}

func registerBankRoutes(rg *gin.RouterGroup, bankService portssvc.BankTransactionSvcFacade, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := &bankHandler{bankService: bankService, reconciliationService: reconciliationService}

	txns := rg.Group("/bank-transactions")
	{
		txns.POST("", h.createBankTransaction)
		txns.GET("", h.listBankTransactions)
		txns.DELETE("/:bank_transaction_id", h.deleteBankTransaction)
	}
	rg.POST("/reconciliations", h.reconcile)
}

// createBankTransaction godoc
// @Summary Import a bank transaction
// @Tags bank
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   txn body dto.CreateBankTransactionRequest true "Bank statement line"
// @Success 201 {object} dto.BankTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to create bank transaction"
// @Security BearerAuth
// @Router /bank-transactions [post]
func (h *bankHandler) createBankTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var req dto.CreateBankTransactionRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	t, err := h.bankService.CreateBankTransaction(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create bank transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBankTransactionResponse(t))
}

// listBankTransactions godoc
// @Summary List bank transactions
// @Tags bank
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   from query string false "First date (YYYY-MM-DD)"
// @Param   to query string false "Last date (YYYY-MM-DD)"
// @Success 200 {object} dto.ListBankTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid range"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to list bank transactions"
// @Security BearerAuth
// @Router /bank-transactions [get]
func (h *bankHandler) listBankTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var params dto.ListBankTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	txns, err := h.bankService.ListBankTransactions(c.Request.Context(), tenantID, params.From, params.To, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to list bank transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBankTransactionsResponse(txns))
}

// deleteBankTransaction godoc
// @Summary Delete a bank transaction
// @Description Blocked once the transaction is reconciled.
// @Tags bank
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   bank_transaction_id path string true "Bank transaction ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Transaction is reconciled"
// @Failure 500 {object} map[string]string "Failed to delete bank transaction"
// @Security BearerAuth
// @Router /bank-transactions/{bank_transaction_id} [delete]
func (h *bankHandler) deleteBankTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}

	if err := h.bankService.DeleteBankTransaction(c.Request.Context(), tenantID, c.Param("bank_transaction_id"), userID); err != nil {
		respondError(c, logger, err, "Failed to delete bank transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// reconcile godoc
// @Summary Match an invoice with a bank transaction
// @Description A given (invoice, bank transaction, amount) triple can only be recorded once.
// @Tags bank
// @Accept  json
// @Produce  json
// @Param   X-Tenant-ID header string false "Tenant override"
// @Param   match body dto.ReconcileRequest true "Match"
// @Success 201 {object} dto.ReconciliationResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Invoice or transaction not found"
// @Failure 409 {object} map[string]string "Already reconciled"
// @Failure 500 {object} map[string]string "Failed to reconcile"
// @Security BearerAuth
// @Router /reconciliations [post]
func (h *bankHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, tenantID, ok := requestScope(c, logger)
	if !ok {
		return
	}
	var req dto.ReconcileRequest
	if !bindJSON(c, logger, &req) {
		return
	}

	rec, err := h.reconciliationService.Reconcile(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to reconcile")
		return
	}
	logger.Info("Invoice reconciled",
		slog.String("invoice_id", rec.InvoiceID),
		slog.String("bank_transaction_id", rec.BankTransactionID))
	c.JSON(http.StatusCreated, dto.ToReconciliationResponse(rec))
}
