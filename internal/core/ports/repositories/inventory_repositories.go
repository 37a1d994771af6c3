package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

// ProductRepositoryFacade defines operations on products.
type ProductRepositoryFacade interface {
	SaveProduct(ctx context.Context, product domain.Product) error
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)
	FindProductBySKU(ctx context.Context, companyID string, sku string) (*domain.Product, error)
	ListProducts(ctx context.Context, companyID string, limit int, offset int) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) error
}

// BatchRelease is a quantity going back to one specific batch.
type BatchRelease struct {
	BatchID  string
	Quantity int64
}

// BatchReader defines read operations on batches.
type BatchReader interface {
	FindBatchByID(ctx context.Context, batchID string) (*domain.Batch, error)
	FindBatchesByProduct(ctx context.Context, productID string) ([]domain.Batch, error)
	ListBatchesByCompany(ctx context.Context, companyID string) ([]domain.Batch, error)

	// StockByProduct aggregates total and available quantity per product.
	// Scoped to one product when productID is non-empty, otherwise the company.
	StockByProduct(ctx context.Context, companyID string, productID string) ([]domain.ProductStock, error)
}

// BatchWriter defines write operations on batches.
type BatchWriter interface {
	// DeleteBatch removes a batch that has never been consumed. Returns
	// ErrConflict once any quantity was allocated from it.
	DeleteBatch(ctx context.Context, batchID string) error
}

// BatchTransactionSupport defines batch operations running inside a
// caller-owned database transaction. Allocation locks the product's batch
// rows FOR UPDATE, which serializes allocation per product.
type BatchTransactionSupport interface {
	// SaveBatchInTx inserts a batch created by a purchase line.
	SaveBatchInTx(ctx context.Context, tx pgx.Tx, batch domain.Batch) error

	// FindBatchesForAllocation locks and returns the product's batches in
	// FIFO order (manufacturing date ascending, NULLs last, then creation).
	FindBatchesForAllocation(ctx context.Context, tx pgx.Tx, productID string) ([]domain.Batch, error)

	// ApplyAllocationsInTx decrements availability for each allocation.
	// Fails without partial effect if any batch no longer has the quantity.
	ApplyAllocationsInTx(ctx context.Context, tx pgx.Tx, allocations []domain.BatchAllocation) error

	// ReleaseInTx increments a batch's availability. Returns ErrOverRelease
	// if the release would exceed the batch's original quantity.
	ReleaseInTx(ctx context.Context, tx pgx.Tx, batchID string, quantity int64) error
}

// BatchRepositoryFacade combines the batch repository interfaces.
type BatchRepositoryFacade interface {
	BatchReader
	BatchWriter
	BatchTransactionSupport
}
