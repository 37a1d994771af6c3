package domain

import (
	"github.com/shopspring/decimal"
)

// SaleStatus is the closed set of sale states. Returned is terminal.
type SaleStatus string

const (
	SaleInProgress    SaleStatus = "in_progress"
	SaleCompleted     SaleStatus = "completed"
	SaleReturned      SaleStatus = "returned"
	SalePartialReturn SaleStatus = "partial_return"
)

// CanTransitionTo checks the sale state machine:
// in_progress -> completed, completed -> returned | partial_return,
// partial_return -> returned | partial_return (further partial returns).
// No transition leaves returned.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	switch s {
	case SaleInProgress:
		return next == SaleCompleted || next == SaleReturned || next == SalePartialReturn
	case SaleCompleted:
		return next == SaleReturned || next == SalePartialReturn
	case SalePartialReturn:
		return next == SaleReturned || next == SalePartialReturn
	default:
		return false
	}
}

// Sale records goods sold to a customer (or a walk-in when CustomerID is nil).
// Each item keeps the exact batch allocations that supplied it, so returns
// always restore quantity to the source batches.
type Sale struct {
	SaleID      string          `json:"saleID"`    // Primary Key (e.g., UUID)
	CompanyID   string          `json:"companyID"` // FK -> companies.company_id (Not Null)
	SaleNumber  string          `json:"saleNumber"`
	CustomerID  *string         `json:"customerID"` // Optional: walk-in sales allowed
	Items       []SaleItem      `json:"items,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
	Status      SaleStatus      `json:"status"`
	PaymentType PaymentType     `json:"paymentType"`
	Notes       string          `json:"notes"`
	AuditFields
}

// ReturnedAmount is the value of quantities already returned across items.
func (s Sale) ReturnedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.ReturnedQuantity)))
	}
	return total
}

// RemainingBalance is computed against the un-returned total, never stored.
func (s Sale) RemainingBalance() decimal.Decimal {
	return s.TotalAmount.Sub(s.ReturnedAmount()).Sub(s.PaidAmount)
}

// SaleItem is one sold line plus the batch allocations that supplied it.
type SaleItem struct {
	SaleItemID       string            `json:"saleItemID"`
	SaleID           string            `json:"saleID"`
	ProductID        string            `json:"productID"`
	Quantity         int64             `json:"quantity"`
	ReturnedQuantity int64             `json:"returnedQuantity"` // 0 <= returned <= quantity
	UnitPrice        decimal.Decimal   `json:"unitPrice"`
	TotalPrice       decimal.Decimal   `json:"totalPrice"`
	Allocations      []BatchAllocation `json:"allocations,omitempty"`
}

// BatchAllocation records quantity taken from one batch for one sale item.
type BatchAllocation struct {
	BatchID          string `json:"batchID"`
	QuantityTaken    int64  `json:"quantityTaken"`
	QuantityReturned int64  `json:"quantityReturned"` // 0 <= returned <= taken
}
