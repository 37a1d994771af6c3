package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portsrepo "github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
	"github.com/tradebooks/tradebooks_backend/internal/middleware"
)

// ledgerHandler handles HTTP requests for the transaction ledger.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes for the transaction ledger and the
// balance reconciliation job.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.postTransaction)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.POST("/:transactionID/reverse", h.reverseTransaction)
	}

	rg.POST("/recalculate-balances", h.recalculateBalances)
}

func (h *ledgerHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for postTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	txn, err := h.ledgerService.PostTransaction(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, "post transaction", err)
		return
	}

	logger.Info("Transaction posted", slog.String("transaction_id", txn.TransactionID), slog.Int64("transaction_number", txn.TransactionNumber))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *ledgerHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	filter := portsrepo.TransactionOriginFilter{
		AccountID:  params.AccountID,
		SaleID:     params.SaleID,
		PurchaseID: params.PurchaseID,
	}
	txns, err := h.ledgerService.ListTransactions(c.Request.Context(), companyID, filter, params.Limit, params.Offset)
	if err != nil {
		respondServiceError(c, logger, "list transactions", err)
		return
	}

	c.JSON(http.StatusOK, dto.ListTransactionsResponse{Transactions: dto.ToListTransactionResponse(txns)})
}

func (h *ledgerHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	transactionID := c.Param("transactionID")

	txn, err := h.ledgerService.GetTransactionByID(c.Request.Context(), companyID, transactionID)
	if err != nil {
		respondServiceError(c, logger, "get transaction", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *ledgerHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	transactionID := c.Param("transactionID")

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	reversal, err := h.ledgerService.ReverseTransaction(c.Request.Context(), companyID, transactionID, userID)
	if err != nil {
		respondServiceError(c, logger, "reverse transaction", err)
		return
	}

	logger.Info("Transaction reversed", slog.String("original_transaction_id", transactionID), slog.String("reversal_transaction_id", reversal.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(reversal))
}

func (h *ledgerHandler) recalculateBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	updated, err := h.ledgerService.RecalculateBalances(c.Request.Context(), companyID, userID)
	if err != nil {
		respondServiceError(c, logger, "recalculate balances", err)
		return
	}

	logger.Info("Balances recalculated", slog.Int("accounts_updated", updated))
	c.JSON(http.StatusOK, dto.RecalculateBalancesResponse{AccountsUpdated: updated})
}
