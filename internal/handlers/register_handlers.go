package handlers

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/middleware"
	"github.com/tradebooks/tradebooks_backend/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSAllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-User-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	return setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	rate, err := limiter.NewRateFromFormatted(cfg.WriteRateLimit)
	if err != nil {
		return fmt.Errorf("invalid write rate limit %q: %w", cfg.WriteRateLimit, err)
	}
	writeLimiter := limiter.New(memory.NewStore(), rate)

	v1 := r.Group("/api/v1", middleware.RequestIdentity(), middleware.RateLimitWrites(writeLimiter))
	v1.GET("", getHome)

	// Every resource is scoped to one company's books.
	company := v1.Group("/companies/:companyID")

	registerAccountRoutes(company, services.Account)
	registerLedgerRoutes(company, services.Ledger)
	registerProductRoutes(company, services.Product)
	registerBatchRoutes(company, services.Batch, cfg.ExpiringSoonDays)
	registerPurchaseRoutes(company, services.Purchase)
	registerSaleRoutes(company, services.Sale)
	registerCustomerRoutes(company, services.Customer)
	registerVendorRoutes(company, services.Vendor)

	return nil
}
