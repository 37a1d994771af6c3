package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
	"github.com/tradebooks/tradebooks_backend/internal/middleware"
)

// customerHandler handles HTTP requests related to customers.
type customerHandler struct {
	customerService portssvc.CustomerSvcFacade
}

func newCustomerHandler(cs portssvc.CustomerSvcFacade) *customerHandler {
	return &customerHandler{customerService: cs}
}

// registerCustomerRoutes registers routes related to customers.
func registerCustomerRoutes(rg *gin.RouterGroup, customerService portssvc.CustomerSvcFacade) {
	h := newCustomerHandler(customerService)

	customers := rg.Group("/customers")
	{
		customers.POST("", h.createCustomer)
		customers.GET("/:customerID", h.getCustomer)
		customers.GET("", h.listCustomers)
		customers.PUT("/:customerID", h.updateCustomer)
		customers.DELETE("/:customerID", h.deactivateCustomer)
		customers.GET("/:customerID/balance", h.getCustomerBalance)
	}
}

func (h *customerHandler) createCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createCustomer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, "create customer", err)
		return
	}

	logger.Info("Customer created", slog.String("customer_id", customer.CustomerID))
	c.JSON(http.StatusCreated, dto.ToCustomerResponse(customer))
}

func (h *customerHandler) getCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	customerID := c.Param("customerID")

	customer, err := h.customerService.GetCustomerByID(c.Request.Context(), companyID, customerID)
	if err != nil {
		respondServiceError(c, logger, "get customer", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

func (h *customerHandler) listCustomers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListPartiesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listCustomers", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	customers, err := h.customerService.ListCustomers(c.Request.Context(), companyID, params.Limit, params.Offset)
	if err != nil {
		respondServiceError(c, logger, "list customers", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListCustomerResponse(customers))
}

func (h *customerHandler) updateCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	customerID := c.Param("customerID")

	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateCustomer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), companyID, customerID, req, userID)
	if err != nil {
		respondServiceError(c, logger, "update customer", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

func (h *customerHandler) deactivateCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	customerID := c.Param("customerID")

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	if err := h.customerService.DeactivateCustomer(c.Request.Context(), companyID, customerID, userID); err != nil {
		respondServiceError(c, logger, "deactivate customer", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *customerHandler) getCustomerBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	customerID := c.Param("customerID")

	balance, err := h.customerService.GetCustomerBalance(c.Request.Context(), companyID, customerID)
	if err != nil {
		respondServiceError(c, logger, "get customer balance", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPartyBalanceResponse(balance))
}

// vendorHandler handles HTTP requests related to vendors.
type vendorHandler struct {
	vendorService portssvc.VendorSvcFacade
}

func newVendorHandler(vs portssvc.VendorSvcFacade) *vendorHandler {
	return &vendorHandler{vendorService: vs}
}

// registerVendorRoutes registers routes related to vendors.
func registerVendorRoutes(rg *gin.RouterGroup, vendorService portssvc.VendorSvcFacade) {
	h := newVendorHandler(vendorService)

	vendors := rg.Group("/vendors")
	{
		vendors.POST("", h.createVendor)
		vendors.GET("/:vendorID", h.getVendor)
		vendors.GET("", h.listVendors)
		vendors.PUT("/:vendorID", h.updateVendor)
		vendors.DELETE("/:vendorID", h.deactivateVendor)
		vendors.GET("/:vendorID/balance", h.getVendorBalance)
	}
}

func (h *vendorHandler) createVendor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var req dto.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createVendor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	vendor, err := h.vendorService.CreateVendor(c.Request.Context(), companyID, req, userID)
	if err != nil {
		respondServiceError(c, logger, "create vendor", err)
		return
	}

	logger.Info("Vendor created", slog.String("vendor_id", vendor.VendorID))
	c.JSON(http.StatusCreated, dto.ToVendorResponse(vendor))
}

func (h *vendorHandler) getVendor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	vendorID := c.Param("vendorID")

	vendor, err := h.vendorService.GetVendorByID(c.Request.Context(), companyID, vendorID)
	if err != nil {
		respondServiceError(c, logger, "get vendor", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVendorResponse(vendor))
}

func (h *vendorHandler) listVendors(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")

	var params dto.ListPartiesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listVendors", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	vendors, err := h.vendorService.ListVendors(c.Request.Context(), companyID, params.Limit, params.Offset)
	if err != nil {
		respondServiceError(c, logger, "list vendors", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListVendorResponse(vendors))
}

func (h *vendorHandler) updateVendor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	vendorID := c.Param("vendorID")

	var req dto.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateVendor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), companyID, vendorID, req, userID)
	if err != nil {
		respondServiceError(c, logger, "update vendor", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVendorResponse(vendor))
}

func (h *vendorHandler) deactivateVendor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	vendorID := c.Param("vendorID")

	userID, ok := requestIdentity(c, logger)
	if !ok {
		return
	}

	if err := h.vendorService.DeactivateVendor(c.Request.Context(), companyID, vendorID, userID); err != nil {
		respondServiceError(c, logger, "deactivate vendor", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *vendorHandler) getVendorBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("companyID")
	vendorID := c.Param("vendorID")

	balance, err := h.vendorService.GetVendorBalance(c.Request.Context(), companyID, vendorID)
	if err != nil {
		respondServiceError(c, logger, "get vendor balance", err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPartyBalanceResponse(balance))
}
