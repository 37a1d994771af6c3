package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/tradebooks_backend/internal/apperrors"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	portsrepo "github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
	"github.com/tradebooks/tradebooks_backend/internal/utils/accounting"
)

const transactionColumns = `transaction_id, company_id, transaction_number, description, amount, transaction_date, debit_account_id, credit_account_id, sale_id, purchase_id, reverses_transaction_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxLedgerRepository struct {
	BaseRepository
	accountRepo *PgxAccountRepository
}

// newPgxLedgerRepository creates a new repository for the transaction ledger.
func newPgxLedgerRepository(pool *pgxpool.Pool, accountRepo *PgxAccountRepository) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// scanTransaction reads one transaction row in transactionColumns order.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := row.Scan(
		&txn.TransactionID,
		&txn.CompanyID,
		&txn.TransactionNumber,
		&txn.Description,
		&txn.Amount,
		&txn.TransactionDate,
		&txn.DebitAccountID,
		&txn.CreditAccountID,
		&txn.SaleID,
		&txn.PurchaseID,
		&txn.ReversesTransactionID,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// PostTransaction posts a single balanced pair in its own database
// transaction.
func (r *PgxLedgerRepository) PostTransaction(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	posted, err := r.PostTransactionInTx(ctx, tx, txn)
	if err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return posted, nil
}

// PostTransactionInTx inserts the transaction and moves both cached account
// balances inside the caller's transaction. The per-company counter update
// serializes concurrent postings for the company; account rows are locked in
// sorted order before the balance writes.
func (r *PgxLedgerRepository) PostTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) (*domain.Transaction, error) {
	counterQuery := `
		UPDATE companies
		SET next_transaction_number = next_transaction_number + 1
		WHERE company_id = $1
		RETURNING next_transaction_number;
	`
	if err := tx.QueryRow(ctx, counterQuery, txn.CompanyID).Scan(&txn.TransactionNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", txn.CompanyID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to assign transaction number: %w", err)
	}

	accounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{txn.DebitAccountID, txn.CreditAccountID})
	if err != nil {
		return nil, err
	}
	debitAccount, ok := accounts[txn.DebitAccountID]
	if !ok {
		return nil, fmt.Errorf("debit account %s: %w", txn.DebitAccountID, apperrors.ErrNotFound)
	}
	creditAccount, ok := accounts[txn.CreditAccountID]
	if !ok {
		return nil, fmt.Errorf("credit account %s: %w", txn.CreditAccountID, apperrors.ErrNotFound)
	}

	debitDelta, creditDelta, err := accounting.PostingDeltas(txn, debitAccount.AccountType, creditAccount.AccountType)
	if err != nil {
		return nil, err
	}

	insertQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, insertQuery,
		txn.TransactionID,
		txn.CompanyID,
		txn.TransactionNumber,
		txn.Description,
		txn.Amount,
		txn.TransactionDate,
		txn.DebitAccountID,
		txn.CreditAccountID,
		txn.SaleID,
		txn.PurchaseID,
		txn.ReversesTransactionID,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, txn.TransactionID)
		}
		return nil, fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}

	balanceChanges := map[string]decimal.Decimal{
		txn.DebitAccountID:  debitDelta,
		txn.CreditAccountID: creditDelta,
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, txn.CreatedBy, txn.CreatedAt); err != nil {
		return nil, err
	}

	return &txn, nil
}

// RecalculateBalances rebuilds every cached balance in the company from the
// full transaction history. The advisory lock keyed by company excludes
// concurrent postings, which also update the company row, for the duration.
func (r *PgxLedgerRepository) RecalculateBalances(ctx context.Context, companyID string) (int, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, companyID); err != nil {
		return 0, fmt.Errorf("failed to take recalculation lock: %w", err)
	}
	// Postings lock the company row through the counter update, so touching
	// it here makes them queue behind the recalculation.
	tag, err := tx.Exec(ctx, `UPDATE companies SET next_transaction_number = next_transaction_number WHERE company_id = $1;`, companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock company row: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("company %s: %w", companyID, apperrors.ErrNotFound)
	}

	zeroed, err := tx.Exec(ctx, `UPDATE accounts SET balance = 0 WHERE company_id = $1;`, companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to zero balances: %w", err)
	}

	applyQuery := `
		WITH deltas AS (
			SELECT account_id, SUM(delta) AS delta
			FROM (
				SELECT t.debit_account_id AS account_id,
				       CASE WHEN a.account_type IN ('ASSET', 'EXPENSE') THEN t.amount ELSE -t.amount END AS delta
				FROM transactions t
				JOIN accounts a ON a.account_id = t.debit_account_id
				WHERE t.company_id = $1
				UNION ALL
				SELECT t.credit_account_id,
				       CASE WHEN a.account_type IN ('ASSET', 'EXPENSE') THEN -t.amount ELSE t.amount END
				FROM transactions t
				JOIN accounts a ON a.account_id = t.credit_account_id
				WHERE t.company_id = $1
			) signed
			GROUP BY account_id
		)
		UPDATE accounts a
		SET balance = d.delta
		FROM deltas d
		WHERE a.account_id = d.account_id;
	`
	if _, err := tx.Exec(ctx, applyQuery, companyID); err != nil {
		return 0, fmt.Errorf("failed to apply recalculated balances: %w", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return int(zeroed.RowsAffected()), nil
}

func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

func (r *PgxLedgerRepository) ListTransactionsByCompany(ctx context.Context, companyID string, filter portsrepo.TransactionOriginFilter, limit int, offset int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE company_id = $1`
	args := []any{companyID}
	switch {
	case filter.AccountID != nil:
		args = append(args, *filter.AccountID)
		query += fmt.Sprintf(` AND (debit_account_id = $%d OR credit_account_id = $%d)`, len(args), len(args))
	case filter.SaleID != nil:
		args = append(args, *filter.SaleID)
		query += fmt.Sprintf(` AND sale_id = $%d`, len(args))
	case filter.PurchaseID != nil:
		args = append(args, *filter.PurchaseID)
		query += fmt.Sprintf(` AND purchase_id = $%d`, len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY transaction_number DESC LIMIT $%d OFFSET $%d;`, len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for company %s: %w", companyID, err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (r *PgxLedgerRepository) FindTransactionsByOrigin(ctx context.Context, filter portsrepo.TransactionOriginFilter) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE `
	var arg any
	switch {
	case filter.SaleID != nil:
		query += `sale_id = $1`
		arg = *filter.SaleID
	case filter.PurchaseID != nil:
		query += `purchase_id = $1`
		arg = *filter.PurchaseID
	case filter.AccountID != nil:
		query += `(debit_account_id = $1 OR credit_account_id = $1)`
		arg = *filter.AccountID
	default:
		return nil, fmt.Errorf("origin filter is empty: %w", apperrors.ErrValidation)
	}
	query += ` ORDER BY transaction_number ASC;`

	rows, err := r.Pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions by origin: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}
