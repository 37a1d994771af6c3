package services

import (
	"context"

	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
)

// SaleReaderSvc defines read operations for sales.
type SaleReaderSvc interface {
	GetSaleByID(ctx context.Context, companyID string, saleID string) (*domain.Sale, error)
	ListSales(ctx context.Context, companyID string, limit int, offset int) ([]domain.Sale, error)
	ListSalesByCustomer(ctx context.Context, companyID string, customerID string) ([]domain.Sale, error)
}

// SaleWriterSvc defines the sale workflow operations.
type SaleWriterSvc interface {
	// CreateSale allocates stock to the sale's items (FIFO unless batches
	// are named explicitly), records the allocations and posts the revenue,
	// all atomically.
	CreateSale(ctx context.Context, companyID string, req dto.CreateSaleRequest, userID string) (*domain.Sale, error)

	// ReturnSale processes a full return (empty item list) or a partial
	// return of the named items. Stock goes back to the exact source
	// batches; a full return reverses the original posting, a partial one
	// posts the returned amount.
	ReturnSale(ctx context.Context, companyID string, saleID string, req dto.ReturnSaleRequest, userID string) (*domain.Sale, error)

	// DeleteSale releases all allocations, reverses the posting and removes
	// the sale.
	DeleteSale(ctx context.Context, companyID string, saleID string, userID string) error
}

// SaleSvcFacade combines the sale service interfaces.
type SaleSvcFacade interface {
	SaleReaderSvc
	SaleWriterSvc
}
