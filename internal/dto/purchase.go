package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

// CreatePurchaseItemRequest is one line of goods received. BatchNumber is
// auto-generated from the product SKU when blank.
type CreatePurchaseItemRequest struct {
	ProductID         string          `json:"productID" binding:"required"`
	Quantity          int64           `json:"quantity" binding:"required,gt=0"`
	UnitPrice         decimal.Decimal `json:"unitPrice" binding:"required"`
	BatchNumber       string          `json:"batchNumber"`
	ManufacturingDate *time.Time      `json:"manufacturingDate"`
	ExpiryDate        *time.Time      `json:"expiryDate"`
}

// CreatePurchaseRequest defines the data needed to record a purchase.
type CreatePurchaseRequest struct {
	VendorID    string                      `json:"vendorID" binding:"required"`
	Items       []CreatePurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentType domain.PaymentType          `json:"paymentType" binding:"required,oneof=cash bank credit"`
	Notes       string                      `json:"notes"`
}

// AddPurchasePaymentRequest defines a payment against a purchase's
// remaining balance.
type AddPurchasePaymentRequest struct {
	Amount      decimal.Decimal    `json:"amount" binding:"required"`
	PaymentDate time.Time          `json:"paymentDate" binding:"required"`
	PaymentType domain.PaymentType `json:"paymentType" binding:"required,oneof=cash bank"`
	Notes       string             `json:"notes"`
}

// PurchaseItemResponse defines the data returned for a purchase line.
type PurchaseItemResponse struct {
	PurchaseItemID string          `json:"purchaseItemID"`
	ProductID      string          `json:"productID"`
	BatchID        string          `json:"batchID"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
}

// PurchasePaymentResponse defines the data returned for a payment.
type PurchasePaymentResponse struct {
	PaymentID   string             `json:"paymentID"`
	PurchaseID  string             `json:"purchaseID"`
	Amount      decimal.Decimal    `json:"amount"`
	PaymentDate time.Time          `json:"paymentDate"`
	PaymentType domain.PaymentType `json:"paymentType"`
	Notes       string             `json:"notes"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// PurchaseResponse defines the data returned for a purchase.
type PurchaseResponse struct {
	PurchaseID       string                 `json:"purchaseID"`
	CompanyID        string                 `json:"companyID"`
	PurchaseNumber   string                 `json:"purchaseNumber"`
	VendorID         string                 `json:"vendorID"`
	Items            []PurchaseItemResponse `json:"items,omitempty"`
	TotalAmount      decimal.Decimal        `json:"totalAmount"`
	PaidAmount       decimal.Decimal        `json:"paidAmount"`
	RemainingBalance decimal.Decimal        `json:"remainingBalance"`
	Status           domain.PurchaseStatus  `json:"status"`
	PaymentType      domain.PaymentType     `json:"paymentType"`
	Notes            string                 `json:"notes"`
	CreatedAt        time.Time              `json:"createdAt"`
}

// ToPurchasePaymentResponse converts a domain payment to its DTO
func ToPurchasePaymentResponse(p *domain.PurchasePayment) PurchasePaymentResponse {
	return PurchasePaymentResponse{
		PaymentID:   p.PaymentID,
		PurchaseID:  p.PurchaseID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		PaymentType: p.PaymentType,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}

// ToListPurchasePaymentResponse converts a slice of payments to DTOs
func ToListPurchasePaymentResponse(payments []domain.PurchasePayment) []PurchasePaymentResponse {
	res := make([]PurchasePaymentResponse, len(payments))
	for i := range payments {
		res[i] = ToPurchasePaymentResponse(&payments[i])
	}
	return res
}

// ToPurchaseResponse converts a domain.Purchase to its response DTO
func ToPurchaseResponse(p *domain.Purchase) PurchaseResponse {
	items := make([]PurchaseItemResponse, len(p.Items))
	for i, item := range p.Items {
		items[i] = PurchaseItemResponse{
			PurchaseItemID: item.PurchaseItemID,
			ProductID:      item.ProductID,
			BatchID:        item.BatchID,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     item.TotalPrice,
		}
	}
	return PurchaseResponse{
		PurchaseID:       p.PurchaseID,
		CompanyID:        p.CompanyID,
		PurchaseNumber:   p.PurchaseNumber,
		VendorID:         p.VendorID,
		Items:            items,
		TotalAmount:      p.TotalAmount,
		PaidAmount:       p.PaidAmount,
		RemainingBalance: p.RemainingBalance(),
		Status:           p.Status,
		PaymentType:      p.PaymentType,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
	}
}

// ToListPurchaseResponse converts a slice of purchases to DTOs
func ToListPurchaseResponse(purchases []domain.Purchase) []PurchaseResponse {
	res := make([]PurchaseResponse, len(purchases))
	for i := range purchases {
		res[i] = ToPurchaseResponse(&purchases[i])
	}
	return res
}

// ListPurchasesParams defines query parameters for listing purchases.
type ListPurchasesParams struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

// ListPurchasesResponse wraps the list of purchases.
type ListPurchasesResponse struct {
	Purchases []PurchaseResponse `json:"purchases"`
}
