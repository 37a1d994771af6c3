package repositories

import (
	"context"

	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

// PurchaseCreateData carries everything a purchase creation persists in one
// database transaction: the header, its items, the batch each item creates,
// and the initiating ledger posting.
type PurchaseCreateData struct {
	Purchase domain.Purchase
	Items    []domain.PurchaseItem
	Batches  []domain.Batch
	Posting  domain.Transaction
}

// PurchaseReader defines read operations for purchases.
type PurchaseReader interface {
	// FindPurchaseByID retrieves a purchase with its items and payments.
	FindPurchaseByID(ctx context.Context, purchaseID string) (*domain.Purchase, error)

	ListPurchasesByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Purchase, error)
	ListPurchasesByVendor(ctx context.Context, vendorID string) ([]domain.Purchase, error)
	ListPaymentsByPurchase(ctx context.Context, purchaseID string) ([]domain.PurchasePayment, error)
}

// PurchaseWriter defines the compound write operations. Each call is one
// atomic database transaction.
type PurchaseWriter interface {
	// CreatePurchase persists the header, items, batches and posting.
	CreatePurchase(ctx context.Context, data PurchaseCreateData) (*domain.Purchase, error)

	// AddPayment appends a payment, bumps the purchase's paid amount under a
	// row lock (re-checking the remaining balance bound) and posts.
	AddPayment(ctx context.Context, payment domain.PurchasePayment, posting domain.Transaction) (*domain.PurchasePayment, error)

	// DeletePurchase removes the purchase, its items, payments and batches,
	// posting the supplied reversal transactions in the same database
	// transaction. Fails with ErrConflict if any created batch was consumed.
	DeletePurchase(ctx context.Context, purchaseID string, reversals []domain.Transaction) error
}

// PurchaseRepositoryFacade combines the purchase repository interfaces.
type PurchaseRepositoryFacade interface {
	PurchaseReader
	PurchaseWriter
}
