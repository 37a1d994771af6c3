package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
	"github.com/tradebooks/tradebooks_backend/internal/middleware"
)

// purchaseHandler handles HTTP requests for the purchase workflow.
type purchaseHandler struct {
	purchaseService portssvc.PurchaseSvcFacade
}

func newPurchaseHandler(ps portssvc.PurchaseSvcFacade) *purchaseHandler {
	return &purchaseHandler{purchaseService: ps}
}

// registerPurchaseRoutes registers routes related to purchases.
func registerPurchaseRoutes(rg *gin.RouterGroup, purchaseService portssvc.PurchaseSvcFacade) {
	h := newPurchaseHandler(purchaseService)

	purchases := rg.Group("/purchases")
	{
		purchases.POST("", h.createPurchase)
		purchases.GET("", h.listPurchases)
		purchases.GET("/:purchaseID", h.getPurchase)
		purchases.DELETE("/:purchaseID", h.deletePurchase)
		purchases.POST("/:purchaseID/payments", h.addPayment)
		purchases.GET("/:purchaseID/payments", h.listPayments)
	}

	rg.GET("/vendors/:vendorID/purchases", h.listPurchasesByVendor)
}

func (h *purchaseHandler) createPurchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createPurchase", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, "create purchase", err)
		return
	}

	logger.Info("Purchase created", slog.String("purchase_id", purchase.PurchaseID), slog.String("purchase_number", purchase.PurchaseNumber))
	c.JSON(http.StatusCreated, dto.ToPurchaseResponse(purchase))
}

func (h *purchaseHandler) getPurchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	purchaseID := c.Param("purchaseID")

	purchase, err := h.purchaseService.GetPurchaseByID(c.Request.Context(), companyID, purchaseID)
	if err != nil {
		respondServiceError(c, logger, "get purchase", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPurchaseResponse(purchase))
}

func (h *purchaseHandler) listPurchases(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListPurchasesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listPurchases", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	purchases, err := h.purchaseService.ListPurchases(c.Request.Context(), companyID, params.Limit, params.Offset)
	if err != nil {
		respondServiceError(c, logger, "list purchases", err)
		return
	}

	c.JSON(http.StatusOK, dto.ListPurchasesResponse{Purchases: dto.ToListPurchaseResponse(purchases)})
}

func (h *purchaseHandler) listPurchasesByVendor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	vendorID := c.Param("vendorID")

	purchases, err := h.purchaseService.ListPurchasesByVendor(c.Request.Context(), companyID, vendorID)
	if err != nil {
		respondServiceError(c, logger, "list purchases for vendor", err)
		return
	}

	c.JSON(http.StatusOK, dto.ListPurchasesResponse{Purchases: dto.ToListPurchaseResponse(purchases)})
}

func (h *purchaseHandler) deletePurchase(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	purchaseID := c.Param("purchaseID")

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	if err := h.purchaseService.DeletePurchase(c.Request.Context(), companyID, purchaseID, userID); err != nil {
		respondServiceError(c, logger, "delete purchase", err)
		return
	}

	logger.Info("Purchase deleted", slog.String("purchase_id", purchaseID))
	c.Status(http.StatusNoContent)
}

func (h *purchaseHandler) addPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	purchaseID := c.Param("purchaseID")

	var req dto.AddPurchasePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for addPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	payment, err := h.purchaseService.AddPayment(c.Request.Context(), companyID, purchaseID, req, userID)
	if err != nil {
		respondServiceError(c, logger, "add payment", err)
		return
	}

	logger.Info("Payment recorded", slog.String("purchase_id", purchaseID), slog.String("payment_id", payment.PaymentID))
	c.JSON(http.StatusCreated, dto.ToPurchasePaymentResponse(payment))
}

func (h *purchaseHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	purchaseID := c.Param("purchaseID")

	payments, err := h.purchaseService.ListPayments(c.Request.Context(), companyID, purchaseID)
	if err != nil {
		respondServiceError(c, logger, "list payments", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListPurchasePaymentResponse(payments))
}
