package services

import (
	"context"

	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	"github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
)

// LedgerReaderSvc defines read operations over the transaction ledger.
type LedgerReaderSvc interface {
	// GetTransactionByID retrieves a single transaction.
	GetTransactionByID(ctx context.Context, companyID string, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a paginated, optionally filtered list of
	// transactions for a company, newest first.
	ListTransactions(ctx context.Context, companyID string, filter repositories.TransactionOriginFilter, limit int, offset int) ([]domain.Transaction, error)
}

// LedgerWriterSvc defines the posting engine operations.
type LedgerWriterSvc interface {
	// PostTransaction validates and posts a balanced debit/credit pair,
	// adjusting both cached account balances atomically.
	PostTransaction(ctx context.Context, companyID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error)

	// ReverseTransaction posts the mirror of an existing transaction and
	// links it back via reversesTransactionID. The original is untouched.
	// Reversing a reversal is rejected.
	ReverseTransaction(ctx context.Context, companyID string, transactionID string, userID string) (*domain.Transaction, error)

	// RecalculateBalances rebuilds every cached account balance in the
	// company from the full transaction history. Returns the number of
	// accounts updated.
	RecalculateBalances(ctx context.Context, companyID string, userID string) (int, error)
}

// LedgerSvcFacade combines the ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
