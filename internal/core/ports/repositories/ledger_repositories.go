package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

// TransactionOriginFilter narrows transaction queries to one originating document.
type TransactionOriginFilter struct {
	SaleID     *string
	PurchaseID *string
	AccountID  *string
}

// LedgerReader defines read operations on the transaction log.
type LedgerReader interface {
	// FindTransactionByID retrieves a single transaction.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByCompany retrieves transactions for a company, newest
	// first, optionally filtered by account or originating document.
	ListTransactionsByCompany(ctx context.Context, companyID string, filter TransactionOriginFilter, limit int, offset int) ([]domain.Transaction, error)

	// FindTransactionsByOrigin retrieves every transaction linked to a sale or purchase.
	FindTransactionsByOrigin(ctx context.Context, filter TransactionOriginFilter) ([]domain.Transaction, error)
}

// LedgerWriter defines the posting operations. Transactions are append-only:
// there is no update or delete.
type LedgerWriter interface {
	// PostTransaction atomically assigns the next per-company transaction
	// number, inserts the transaction and adjusts both account balances.
	PostTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error)

	// PostTransactionInTx performs the same work inside a caller-owned
	// database transaction, so workflows can post alongside stock mutations.
	PostTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) (*domain.Transaction, error)

	// RecalculateBalances zeroes every account balance for the company and
	// reapplies the full transaction history under an exclusive company lock.
	// Returns the number of accounts updated.
	RecalculateBalances(ctx context.Context, companyID string) (int, error)
}

// LedgerRepositoryFacade combines the ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
