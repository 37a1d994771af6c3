package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradebooks/tradebooks_backend/internal/apperrors"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	portsrepo "github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
)

const purchaseColumns = `purchase_id, company_id, purchase_number, vendor_id, total_amount, paid_amount, status, payment_type, notes, created_at, created_by, last_updated_at, last_updated_by`

type PgxPurchaseRepository struct {
	BaseRepository
	batchRepo  portsrepo.BatchTransactionSupport
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// newPgxPurchaseRepository creates a new repository for purchase documents.
// Batches and postings created by a purchase go through the batch and ledger
// repositories inside this repository's transaction.
func newPgxPurchaseRepository(pool *pgxpool.Pool, batchRepo portsrepo.BatchTransactionSupport, ledgerRepo portsrepo.LedgerRepositoryFacade) portsrepo.PurchaseRepositoryFacade {
	return &PgxPurchaseRepository{
		BaseRepository: BaseRepository{Pool: pool},
		batchRepo:      batchRepo,
		ledgerRepo:     ledgerRepo,
	}
}

var _ portsrepo.PurchaseRepositoryFacade = (*PgxPurchaseRepository)(nil)

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var p domain.Purchase
	err := row.Scan(
		&p.PurchaseID,
		&p.CompanyID,
		&p.PurchaseNumber,
		&p.VendorID,
		&p.TotalAmount,
		&p.PaidAmount,
		&p.Status,
		&p.PaymentType,
		&p.Notes,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgxPurchaseRepository) CreatePurchase(ctx context.Context, data portsrepo.PurchaseCreateData) (*domain.Purchase, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	purchase := data.Purchase
	insertPurchase := `
		INSERT INTO purchases (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, insertPurchase,
		purchase.PurchaseID,
		purchase.CompanyID,
		purchase.PurchaseNumber,
		purchase.VendorID,
		purchase.TotalAmount,
		purchase.PaidAmount,
		purchase.Status,
		purchase.PaymentType,
		purchase.Notes,
		purchase.CreatedAt,
		purchase.CreatedBy,
		purchase.LastUpdatedAt,
		purchase.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: purchase %s already exists", apperrors.ErrDuplicate, purchase.PurchaseID)
		}
		return nil, fmt.Errorf("failed to insert purchase %s: %w", purchase.PurchaseID, err)
	}

	for _, batch := range data.Batches {
		if err := r.batchRepo.SaveBatchInTx(ctx, tx, batch); err != nil {
			return nil, err
		}
	}

	itemBatch := &pgx.Batch{}
	insertItem := `
		INSERT INTO purchase_items (purchase_item_id, purchase_id, product_id, batch_id, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, item := range data.Items {
		itemBatch.Queue(insertItem,
			item.PurchaseItemID,
			item.PurchaseID,
			item.ProductID,
			item.BatchID,
			item.Quantity,
			item.UnitPrice,
			item.TotalPrice,
		)
	}
	results := tx.SendBatch(ctx, itemBatch)
	for range data.Items {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return nil, fmt.Errorf("failed to insert purchase item: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush purchase items: %w", err)
	}

	if _, err := r.ledgerRepo.PostTransactionInTx(ctx, tx, data.Posting); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	purchase.Items = data.Items
	return &purchase, nil
}

// AddPayment re-checks the remaining balance bound under the purchase row
// lock so two racing payments cannot overpay together.
func (r *PgxPurchaseRepository) AddPayment(ctx context.Context, payment domain.PurchasePayment, posting domain.Transaction) (*domain.PurchasePayment, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `SELECT total_amount, paid_amount FROM purchases WHERE purchase_id = $1 FOR UPDATE;`
	var purchase domain.Purchase
	if err := tx.QueryRow(ctx, lockQuery, payment.PurchaseID).Scan(&purchase.TotalAmount, &purchase.PaidAmount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock purchase %s: %w", payment.PurchaseID, err)
	}
	if payment.Amount.GreaterThan(purchase.RemainingBalance()) {
		return nil, fmt.Errorf("payment %s exceeds remaining balance %s: %w",
			payment.Amount.String(), purchase.RemainingBalance().String(), apperrors.ErrValidation)
	}

	insertPayment := `
		INSERT INTO purchase_payments (payment_id, purchase_id, amount, payment_date, payment_type, notes, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, insertPayment,
		payment.PaymentID,
		payment.PurchaseID,
		payment.Amount,
		payment.PaymentDate,
		payment.PaymentType,
		payment.Notes,
		payment.CreatedAt,
		payment.CreatedBy,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert payment %s: %w", payment.PaymentID, err)
	}

	updatePurchase := `
		UPDATE purchases
		SET paid_amount = paid_amount + $2, last_updated_at = $3, last_updated_by = $4
		WHERE purchase_id = $1;
	`
	if _, err := tx.Exec(ctx, updatePurchase, payment.PurchaseID, payment.Amount, payment.LastUpdatedAt, payment.LastUpdatedBy); err != nil {
		return nil, fmt.Errorf("failed to update paid amount for purchase %s: %w", payment.PurchaseID, err)
	}

	if _, err := r.ledgerRepo.PostTransactionInTx(ctx, tx, posting); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PgxPurchaseRepository) DeletePurchase(ctx context.Context, purchaseID string, reversals []domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM purchases WHERE purchase_id = $1 FOR UPDATE);`, purchaseID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to lock purchase %s: %w", purchaseID, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}

	// The untouched check is repeated under lock; a sale committed between
	// the service's check and this transaction must still block the delete.
	var consumed int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM batches WHERE purchase_id = $1 AND available_quantity <> quantity;`, purchaseID).Scan(&consumed); err != nil {
		return fmt.Errorf("failed to check batches for purchase %s: %w", purchaseID, err)
	}
	if consumed > 0 {
		return fmt.Errorf("%w: %d batches of purchase %s have allocations", apperrors.ErrConflict, consumed, purchaseID)
	}

	// Reversals go in first; deleting the purchase afterwards nulls the
	// origin links on the whole chain but leaves the postings themselves.
	for _, rev := range reversals {
		if _, err := r.ledgerRepo.PostTransactionInTx(ctx, tx, rev); err != nil {
			return err
		}
	}

	for _, stmt := range []string{
		`DELETE FROM purchase_payments WHERE purchase_id = $1;`,
		`DELETE FROM purchase_items WHERE purchase_id = $1;`,
		`DELETE FROM batches WHERE purchase_id = $1;`,
		`DELETE FROM purchases WHERE purchase_id = $1;`,
	} {
		if _, err := tx.Exec(ctx, stmt, purchaseID); err != nil {
			return fmt.Errorf("failed to delete purchase %s: %w", purchaseID, err)
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxPurchaseRepository) FindPurchaseByID(ctx context.Context, purchaseID string) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE purchase_id = $1;`
	purchase, err := scanPurchase(r.Pool.QueryRow(ctx, query, purchaseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find purchase %s: %w", purchaseID, err)
	}

	itemsQuery := `
		SELECT purchase_item_id, purchase_id, product_id, batch_id, quantity, unit_price, total_price
		FROM purchase_items
		WHERE purchase_id = $1
		ORDER BY purchase_item_id;
	`
	rows, err := r.Pool.Query(ctx, itemsQuery, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for purchase %s: %w", purchaseID, err)
	}
	defer rows.Close()

	items := []domain.PurchaseItem{}
	for rows.Next() {
		var item domain.PurchaseItem
		if err := rows.Scan(&item.PurchaseItemID, &item.PurchaseID, &item.ProductID, &item.BatchID, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("failed to scan purchase item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase item rows: %w", err)
	}

	purchase.Items = items
	return purchase, nil
}

func (r *PgxPurchaseRepository) ListPurchasesByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Purchase, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + purchaseColumns + `
		FROM purchases
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases for company %s: %w", companyID, err)
	}
	defer rows.Close()
	return collectPurchases(rows)
}

func (r *PgxPurchaseRepository) ListPurchasesByVendor(ctx context.Context, vendorID string) ([]domain.Purchase, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM purchases
		WHERE vendor_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases for vendor %s: %w", vendorID, err)
	}
	defer rows.Close()
	return collectPurchases(rows)
}

func collectPurchases(rows pgx.Rows) ([]domain.Purchase, error) {
	purchases := []domain.Purchase{}
	for rows.Next() {
		purchase, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase row: %w", err)
		}
		purchases = append(purchases, *purchase)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase rows: %w", err)
	}
	return purchases, nil
}

func (r *PgxPurchaseRepository) ListPaymentsByPurchase(ctx context.Context, purchaseID string) ([]domain.PurchasePayment, error) {
	query := `
		SELECT payment_id, purchase_id, amount, payment_date, payment_type, notes, created_at, created_by, last_updated_at, last_updated_by
		FROM purchase_payments
		WHERE purchase_id = $1
		ORDER BY payment_date ASC, created_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for purchase %s: %w", purchaseID, err)
	}
	defer rows.Close()

	payments := []domain.PurchasePayment{}
	for rows.Next() {
		var p domain.PurchasePayment
		if err := rows.Scan(&p.PaymentID, &p.PurchaseID, &p.Amount, &p.PaymentDate, &p.PaymentType, &p.Notes, &p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, nil
}
