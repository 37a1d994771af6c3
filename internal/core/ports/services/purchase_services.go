package services

import (
	"context"

	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
)

// PurchaseReaderSvc defines read operations for purchases.
type PurchaseReaderSvc interface {
	GetPurchaseByID(ctx context.Context, companyID string, purchaseID string) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, companyID string, limit int, offset int) ([]domain.Purchase, error)
	ListPurchasesByVendor(ctx context.Context, companyID string, vendorID string) ([]domain.Purchase, error)
	ListPayments(ctx context.Context, companyID string, purchaseID string) ([]domain.PurchasePayment, error)
}

// PurchaseWriterSvc defines the purchase workflow operations.
type PurchaseWriterSvc interface {
	// CreatePurchase records a purchase, creates one batch per item and
	// posts the inventory acquisition, all atomically.
	CreatePurchase(ctx context.Context, companyID string, req dto.CreatePurchaseRequest, userID string) (*domain.Purchase, error)

	// AddPayment records a payment against the purchase's remaining balance
	// and posts the payable settlement.
	AddPayment(ctx context.Context, companyID string, purchaseID string, req dto.AddPurchasePaymentRequest, userID string) (*domain.PurchasePayment, error)

	// DeletePurchase undoes a purchase whose batches are all untouched:
	// batches, items and payments go, and every posting is reversed.
	DeletePurchase(ctx context.Context, companyID string, purchaseID string, userID string) error
}

// PurchaseSvcFacade combines the purchase service interfaces.
type PurchaseSvcFacade interface {
	PurchaseReaderSvc
	PurchaseWriterSvc
}
