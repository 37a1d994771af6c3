package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStatus is the closed set of purchase states.
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

// PaymentType identifies which account a commercial event settles against.
type PaymentType string

const (
	PaymentCash   PaymentType = "cash"
	PaymentBank   PaymentType = "bank"
	PaymentCredit PaymentType = "credit" // purchases only: accounts payable
	PaymentCOD    PaymentType = "cod"    // sales only: accounts receivable
)

// Purchase records goods received from a vendor. Creating a purchase creates
// one batch per item and posts debit inventory / credit payable-or-cash.
type Purchase struct {
	PurchaseID     string          `json:"purchaseID"` // Primary Key (e.g., UUID)
	CompanyID      string          `json:"companyID"`  // FK -> companies.company_id (Not Null)
	PurchaseNumber string          `json:"purchaseNumber"`
	VendorID       string          `json:"vendorID"` // FK -> vendors.vendor_id (Not Null)
	Items          []PurchaseItem  `json:"items,omitempty"`
	TotalAmount    decimal.Decimal `json:"totalAmount"` // = sum of item totals
	PaidAmount     decimal.Decimal `json:"paidAmount"`  // = sum of payments
	Status         PurchaseStatus  `json:"status"`
	PaymentType    PaymentType     `json:"paymentType"`
	Notes          string          `json:"notes"`
	AuditFields
}

// RemainingBalance is always derived, never persisted.
func (p Purchase) RemainingBalance() decimal.Decimal {
	return p.TotalAmount.Sub(p.PaidAmount)
}

// CanTransitionTo checks the purchase state machine:
// pending -> completed, pending -> cancelled. Completed and cancelled are terminal.
func (s PurchaseStatus) CanTransitionTo(next PurchaseStatus) bool {
	switch s {
	case PurchasePending:
		return next == PurchaseCompleted || next == PurchaseCancelled
	default:
		return false
	}
}

// PurchaseItem is one received line; each line created exactly one batch.
type PurchaseItem struct {
	PurchaseItemID string          `json:"purchaseItemID"`
	PurchaseID     string          `json:"purchaseID"`
	ProductID      string          `json:"productID"`
	BatchID        string          `json:"batchID"` // Batch this line created
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
}

// PurchasePayment is an incremental payment against a purchase's outstanding
// balance. Each payment posts debit payable / credit cash-or-bank.
type PurchasePayment struct {
	PaymentID   string          `json:"paymentID"`
	PurchaseID  string          `json:"purchaseID"`
	Amount      decimal.Decimal `json:"amount"` // 0 < amount <= remaining balance at payment time
	PaymentDate time.Time       `json:"paymentDate"`
	PaymentType PaymentType     `json:"paymentType"`
	Notes       string          `json:"notes"`
	AuditFields
}
