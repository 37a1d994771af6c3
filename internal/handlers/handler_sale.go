package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
	"github.com/tradebooks/tradebooks_backend/internal/middleware"
)

// saleHandler handles HTTP requests for the sale workflow.
type saleHandler struct {
	saleService portssvc.SaleSvcFacade
}

func newSaleHandler(ss portssvc.SaleSvcFacade) *saleHandler {
	return &saleHandler{saleService: ss}
}

// registerSaleRoutes registers routes related to sales.
func registerSaleRoutes(rg *gin.RouterGroup, saleService portssvc.SaleSvcFacade) {
	h := newSaleHandler(saleService)

	sales := rg.Group("/sales")
	{
		sales.POST("", h.createSale)
		sales.GET("", h.listSales)
		sales.GET("/:saleID", h.getSale)
		sales.POST("/:saleID/returns", h.returnSale)
		sales.DELETE("/:saleID", h.deleteSale)
	}

	rg.GET("/customers/:customerID/sales", h.listSalesByCustomer)
}

func (h *saleHandler) createSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createSale", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, "create sale", err)
		return
	}

	logger.Info("Sale created", slog.String("sale_id", sale.SaleID), slog.String("sale_number", sale.SaleNumber))
	c.JSON(http.StatusCreated, dto.ToSaleResponse(sale))
}

func (h *saleHandler) getSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	saleID := c.Param("saleID")

	sale, err := h.saleService.GetSaleByID(c.Request.Context(), companyID, saleID)
	if err != nil {
		respondServiceError(c, logger, "get sale", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSaleResponse(sale))
}

func (h *saleHandler) listSales(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListSalesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listSales", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	sales, err := h.saleService.ListSales(c.Request.Context(), companyID, params.Limit, params.Offset)
	if err != nil {
		respondServiceError(c, logger, "list sales", err)
		return
	}

	c.JSON(http.StatusOK, dto.ListSalesResponse{Sales: dto.ToListSaleResponse(sales)})
}

func (h *saleHandler) listSalesByCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	customerID := c.Param("customerID")

	sales, err := h.saleService.ListSalesByCustomer(c.Request.Context(), companyID, customerID)
	if err != nil {
		respondServiceError(c, logger, "list sales for customer", err)
		return
	}

	c.JSON(http.StatusOK, dto.ListSalesResponse{Sales: dto.ToListSaleResponse(sales)})
}

func (h *saleHandler) returnSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	saleID := c.Param("saleID")

	var req dto.ReturnSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for returnSale", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	sale, err := h.saleService.ReturnSale(c.Request.Context(), companyID, saleID, req, userID)
	if err != nil {
		respondServiceError(c, logger, "return sale", err)
		return
	}

	logger.Info("Sale return processed", slog.String("sale_id", saleID), slog.String("status", string(sale.Status)))
	c.JSON(http.StatusOK, dto.ToSaleResponse(sale))
}

func (h *saleHandler) deleteSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	saleID := c.Param("saleID")

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), companyID, saleID, userID); err != nil {
		respondServiceError(c, logger, "delete sale", err)
		return
	}

	logger.Info("Sale deleted", slog.String("sale_id", saleID))
	c.Status(http.StatusNoContent)
}
