package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
	"github.com/tradebooks/tradebooks_backend/internal/middleware"
)

// batchHandler handles HTTP requests related to batches and stock levels.
type batchHandler struct {
	batchService     portssvc.BatchSvcFacade
	expiringSoonDays int
}

func newBatchHandler(bs portssvc.BatchSvcFacade, expiringSoonDays int) *batchHandler {
	return &batchHandler{batchService: bs, expiringSoonDays: expiringSoonDays}
}

// registerBatchRoutes registers routes related to batches and stock.
func registerBatchRoutes(rg *gin.RouterGroup, batchService portssvc.BatchSvcFacade, expiringSoonDays int) {
	h := newBatchHandler(batchService, expiringSoonDays)

	batches := rg.Group("/batches")
	{
		batches.GET("", h.listBatches)
		batches.GET("/:batchID", h.getBatch)
		batches.DELETE("/:batchID", h.deleteBatch)
	}

	rg.GET("/products/:productID/batches", h.listBatchesByProduct)
	rg.GET("/stock", h.getStockSummary)
}

func (h *batchHandler) getBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	batchID := c.Param("batchID")

	batch, err := h.batchService.GetBatchByID(c.Request.Context(), companyID, batchID)
	if err != nil {
		respondServiceError(c, logger, "get batch", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBatchResponse(batch, time.Now(), h.expiringSoonDays))
}

func (h *batchHandler) listBatches(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	batches, err := h.batchService.ListBatchesByCompany(c.Request.Context(), companyID)
	if err != nil {
		respondServiceError(c, logger, "list batches", err)
		return
	}

	c.JSON(http.StatusOK, dto.ListBatchesResponse{Batches: dto.ToListBatchResponse(batches, time.Now(), h.expiringSoonDays)})
}

func (h *batchHandler) listBatchesByProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	productID := c.Param("productID")

	batches, err := h.batchService.ListBatchesByProduct(c.Request.Context(), companyID, productID)
	if err != nil {
		respondServiceError(c, logger, "list batches for product", err)
		return
	}

	c.JSON(http.StatusOK, dto.ListBatchesResponse{Batches: dto.ToListBatchResponse(batches, time.Now(), h.expiringSoonDays)})
}

func (h *batchHandler) deleteBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	batchID := c.Param("batchID")

	if err := h.batchService.DeleteBatch(c.Request.Context(), companyID, batchID); err != nil {
		respondServiceError(c, logger, "delete batch", err)
		return
	}

	logger.Info("Batch deleted", slog.String("batch_id", batchID))
	c.Status(http.StatusNoContent)
}

func (h *batchHandler) getStockSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	productID := c.Query("productID")

	stock, err := h.batchService.GetStockSummary(c.Request.Context(), companyID, productID)
	if err != nil {
		respondServiceError(c, logger, "get stock summary", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStockSummaryResponse(stock))
}
