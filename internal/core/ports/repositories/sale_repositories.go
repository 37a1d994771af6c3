package repositories

import (
	"context"

	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

// SaleCreateData carries a sale creation: the header, items (allocations
// filled by the repository under row locks unless explicitly requested), and
// the initiating posting.
type SaleCreateData struct {
	Sale    domain.Sale
	Items   []domain.SaleItem
	Posting domain.Transaction

	// ExplicitAllocations maps item index -> requested allocations. Empty
	// means FIFO for that item.
	ExplicitAllocations map[int][]domain.BatchAllocation
}

// SaleItemReturn is the returned portion of one sale item, targeted at the
// exact batches the item was allocated from.
type SaleItemReturn struct {
	SaleItemID string
	Quantity   int64
	Releases   []BatchRelease
}

// SaleReturnData carries a full or partial return: per-item released
// quantities, the ledger posting for the returned amount, and the resulting
// sale status.
type SaleReturnData struct {
	SaleID    string
	Items     []SaleItemReturn
	Posting   domain.Transaction
	NewStatus domain.SaleStatus
}

// SaleReader defines read operations for sales.
type SaleReader interface {
	// FindSaleByID retrieves a sale with items and batch allocations.
	FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error)

	ListSalesByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Sale, error)
	ListSalesByCustomer(ctx context.Context, customerID string) ([]domain.Sale, error)
}

// SaleWriter defines the compound write operations. Each call is one atomic
// database transaction; allocation and posting commit together or not at all.
type SaleWriter interface {
	// CreateSale allocates stock (FIFO or explicit) under batch row locks,
	// persists the sale with its recorded allocations and posts. Returns
	// ErrInsufficientStock without any committed effect when a product
	// cannot cover its quantity.
	CreateSale(ctx context.Context, data SaleCreateData) (*domain.Sale, error)

	// ReturnSale releases quantities to their source batches, bumps returned
	// quantities, posts and transitions the status.
	ReturnSale(ctx context.Context, data SaleReturnData) error

	// DeleteSale releases all un-returned allocations back to their source
	// batches, posts the supplied reversals and removes the sale.
	DeleteSale(ctx context.Context, saleID string, reversals []domain.Transaction) error
}

// SaleRepositoryFacade combines the sale repository interfaces.
type SaleRepositoryFacade interface {
	SaleReader
	SaleWriter
}
