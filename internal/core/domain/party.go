package domain

import "github.com/shopspring/decimal"

// Customer is a buying party. Balances are never stored on the customer row;
// they are derived from that customer's sales on every read.
type Customer struct {
	CustomerID string `json:"customerID"` // Primary Key (e.g., UUID)
	CompanyID  string `json:"companyID"`  // FK -> companies.company_id (Not Null)
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	IsActive   bool   `json:"isActive"`
	AuditFields
}

// Vendor is a supplying party. Balances are derived from purchases, same as
// Customer.
type Vendor struct {
	VendorID  string `json:"vendorID"` // Primary Key (e.g., UUID)
	CompanyID string `json:"companyID"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	IsActive  bool   `json:"isActive"`
	AuditFields
}

// PartyBalance is a derived projection over a party's documents and payments.
// RemainingBalance = TotalAmount - PaidAmount; a single source of truth in
// the ledger, never a cached field.
type PartyBalance struct {
	PartyID          string          `json:"partyID"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PaidAmount       decimal.Decimal `json:"paidAmount"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
}
