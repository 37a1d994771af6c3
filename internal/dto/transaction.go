package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

// CreateTransactionRequest defines a manual ledger posting: one debit
// account, one credit account, one positive amount.
type CreateTransactionRequest struct {
	Description     string          `json:"description" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	TransactionDate time.Time       `json:"transactionDate" binding:"required"`
	DebitAccountID  string          `json:"debitAccountID" binding:"required"`
	CreditAccountID string          `json:"creditAccountID" binding:"required"`
}

// TransactionResponse defines the data returned for a ledger transaction.
type TransactionResponse struct {
	TransactionID         string          `json:"transactionID"`
	CompanyID             string          `json:"companyID"`
	TransactionNumber     int64           `json:"transactionNumber"`
	Description           string          `json:"description"`
	Amount                decimal.Decimal `json:"amount"`
	TransactionDate       time.Time       `json:"transactionDate"`
	DebitAccountID        string          `json:"debitAccountID"`
	CreditAccountID       string          `json:"creditAccountID"`
	SaleID                *string         `json:"saleID,omitempty"`
	PurchaseID            *string         `json:"purchaseID,omitempty"`
	ReversesTransactionID *string         `json:"reversesTransactionID,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to its response DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:         txn.TransactionID,
		CompanyID:             txn.CompanyID,
		TransactionNumber:     txn.TransactionNumber,
		Description:           txn.Description,
		Amount:                txn.Amount,
		TransactionDate:       txn.TransactionDate,
		DebitAccountID:        txn.DebitAccountID,
		CreditAccountID:       txn.CreditAccountID,
		SaleID:                txn.SaleID,
		PurchaseID:            txn.PurchaseID,
		ReversesTransactionID: txn.ReversesTransactionID,
		CreatedAt:             txn.CreatedAt,
	}
}

// ToListTransactionResponse converts a slice of transactions to DTOs
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ListTransactionsParams defines query parameters for listing transactions.
// At most one origin filter is honored; accountID matches either side of the
// posting.
type ListTransactionsParams struct {
	Limit      int     `form:"limit,default=50"`
	Offset     int     `form:"offset,default=0"`
	AccountID  *string `form:"accountID"`
	SaleID     *string `form:"saleID"`
	PurchaseID *string `form:"purchaseID"`
}

// ListTransactionsResponse wraps the list of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}
