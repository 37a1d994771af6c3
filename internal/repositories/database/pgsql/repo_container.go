package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgsql repository against the shared pool.
// The purchase and sale repositories compose the batch and ledger repositories
// so document writes, stock movements and postings share one transaction.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(pool)
	ledgerRepo := newPgxLedgerRepository(pool, accountRepo)
	batchRepo := newPgxBatchRepository(pool)

	return &portsrepo.RepositoryProvider{
		AccountRepo:  accountRepo,
		LedgerRepo:   ledgerRepo,
		ProductRepo:  newPgxProductRepository(pool),
		BatchRepo:    batchRepo,
		PurchaseRepo: newPgxPurchaseRepository(pool, batchRepo, ledgerRepo),
		SaleRepo:     newPgxSaleRepository(pool, batchRepo, ledgerRepo),
		CustomerRepo: newPgxCustomerRepository(pool),
		VendorRepo:   newPgxVendorRepository(pool),
	}
}
