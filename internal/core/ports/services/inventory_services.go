package services

import (
	"context"

	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
)

// ProductSvcFacade defines operations on products.
type ProductSvcFacade interface {
	CreateProduct(ctx context.Context, companyID string, req dto.CreateProductRequest, userID string) (*domain.Product, error)
	GetProductByID(ctx context.Context, companyID string, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context, companyID string, limit int, offset int) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, companyID string, productID string, req dto.UpdateProductRequest, userID string) (*domain.Product, error)
}

// BatchReaderSvc defines read operations over batches and stock levels.
type BatchReaderSvc interface {
	GetBatchByID(ctx context.Context, companyID string, batchID string) (*domain.Batch, error)
	ListBatchesByProduct(ctx context.Context, companyID string, productID string) ([]domain.Batch, error)
	ListBatchesByCompany(ctx context.Context, companyID string) ([]domain.Batch, error)

	// GetStockSummary aggregates total and available quantity per product,
	// for one product or for the whole company.
	GetStockSummary(ctx context.Context, companyID string, productID string) ([]domain.ProductStock, error)
}

// BatchWriterSvc defines write operations on batches.
type BatchWriterSvc interface {
	// DeleteBatch removes a batch no sale has ever drawn from.
	DeleteBatch(ctx context.Context, companyID string, batchID string) error
}

// BatchSvcFacade combines the batch service interfaces.
type BatchSvcFacade interface {
	BatchReaderSvc
	BatchWriterSvc
}
