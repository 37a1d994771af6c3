package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single balanced double-entry posting: one debit account,
// one credit account, one positive amount. There is no multi-line journal in
// this model. Transactions are never mutated or deleted once persisted;
// corrections are made by posting an equal-and-opposite reversal.
type Transaction struct {
	TransactionID         string          `json:"transactionID"`     // Primary Key (e.g., UUID)
	CompanyID             string          `json:"companyID"`         // FK -> companies.company_id (Not Null)
	TransactionNumber     int64           `json:"transactionNumber"` // Monotonic per company
	Description           string          `json:"description"`
	Amount                decimal.Decimal `json:"amount"` // Positive value
	TransactionDate       time.Time       `json:"transactionDate"`
	DebitAccountID        string          `json:"debitAccountID"`  // FK -> accounts.account_id
	CreditAccountID       string          `json:"creditAccountID"` // FK -> accounts.account_id, must differ from debit
	SaleID                *string         `json:"saleID"`          // Originating sale, if any
	PurchaseID            *string         `json:"purchaseID"`      // Originating purchase, if any
	ReversesTransactionID *string         `json:"reversesTransactionID"`
	AuditFields
}

// IsReversal reports whether this transaction was posted to undo another.
func (t Transaction) IsReversal() bool {
	return t.ReversesTransactionID != nil
}
