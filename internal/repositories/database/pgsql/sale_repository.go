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

const saleColumns = `sale_id, company_id, sale_number, customer_id, total_amount, paid_amount, status, payment_type, notes, created_at, created_by, last_updated_at, last_updated_by`

type PgxSaleRepository struct {
	BaseRepository
	batchRepo  portsrepo.BatchTransactionSupport
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// newPgxSaleRepository creates a new repository for sale documents. Stock
// movements and postings happen through the batch and ledger repositories
// inside this repository's transaction, so a sale either fully commits or
// leaves nothing behind.
func newPgxSaleRepository(pool *pgxpool.Pool, batchRepo portsrepo.BatchTransactionSupport, ledgerRepo portsrepo.LedgerRepositoryFacade) portsrepo.SaleRepositoryFacade {
	return &PgxSaleRepository{
		BaseRepository: BaseRepository{Pool: pool},
		batchRepo:      batchRepo,
		ledgerRepo:     ledgerRepo,
	}
}

var _ portsrepo.SaleRepositoryFacade = (*PgxSaleRepository)(nil)

func scanSale(row pgx.Row) (*domain.Sale, error) {
	var s domain.Sale
	err := row.Scan(
		&s.SaleID,
		&s.CompanyID,
		&s.SaleNumber,
		&s.CustomerID,
		&s.TotalAmount,
		&s.PaidAmount,
		&s.Status,
		&s.PaymentType,
		&s.Notes,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgxSaleRepository) CreateSale(ctx context.Context, data portsrepo.SaleCreateData) (*domain.Sale, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	sale := data.Sale
	items := data.Items

	// Allocate item by item. Locked batch rows reflect updates made earlier
	// in this transaction, so several items of the same product draw from a
	// consistent view.
	for i := range items {
		batches, err := r.batchRepo.FindBatchesForAllocation(ctx, tx, items[i].ProductID)
		if err != nil {
			return nil, err
		}

		var plan []domain.BatchAllocation
		if explicit, ok := data.ExplicitAllocations[i]; ok {
			var short int64
			var missing []string
			plan, short, missing = domain.PlanExplicit(batches, explicit)
			if len(missing) > 0 {
				return nil, fmt.Errorf("batches %v not available for product %s: %w", missing, items[i].ProductID, apperrors.ErrValidation)
			}
			if short > 0 {
				return nil, fmt.Errorf("%w: product %s is short %d units", apperrors.ErrInsufficientStock, items[i].ProductID, short)
			}
		} else {
			var short int64
			plan, short = domain.PlanFIFO(batches, items[i].Quantity)
			if short > 0 {
				return nil, fmt.Errorf("%w: product %s is short %d units", apperrors.ErrInsufficientStock, items[i].ProductID, short)
			}
		}

		if err := r.batchRepo.ApplyAllocationsInTx(ctx, tx, plan); err != nil {
			return nil, err
		}
		items[i].Allocations = plan
	}

	insertSale := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, insertSale,
		sale.SaleID,
		sale.CompanyID,
		sale.SaleNumber,
		sale.CustomerID,
		sale.TotalAmount,
		sale.PaidAmount,
		sale.Status,
		sale.PaymentType,
		sale.Notes,
		sale.CreatedAt,
		sale.CreatedBy,
		sale.LastUpdatedAt,
		sale.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: sale %s already exists", apperrors.ErrDuplicate, sale.SaleID)
		}
		return nil, fmt.Errorf("failed to insert sale %s: %w", sale.SaleID, err)
	}

	batch := &pgx.Batch{}
	insertItem := `
		INSERT INTO sale_items (sale_item_id, sale_id, product_id, quantity, returned_quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, 0, $5, $6);
	`
	insertAllocation := `
		INSERT INTO sale_item_batches (sale_item_id, batch_id, quantity_taken, quantity_returned)
		VALUES ($1, $2, $3, 0);
	`
	queued := 0
	for _, item := range items {
		batch.Queue(insertItem, item.SaleItemID, item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice)
		queued++
		for _, alloc := range item.Allocations {
			batch.Queue(insertAllocation, item.SaleItemID, alloc.BatchID, alloc.QuantityTaken)
			queued++
		}
	}
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < queued; i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return nil, fmt.Errorf("failed to insert sale line: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush sale lines: %w", err)
	}

	if _, err := r.ledgerRepo.PostTransactionInTx(ctx, tx, data.Posting); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	sale.Items = items
	return &sale, nil
}

func (r *PgxSaleRepository) ReturnSale(ctx context.Context, data portsrepo.SaleReturnData) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var status domain.SaleStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM sales WHERE sale_id = $1 FOR UPDATE;`, data.SaleID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock sale %s: %w", data.SaleID, err)
	}
	if status != data.NewStatus && !status.CanTransitionTo(data.NewStatus) {
		return fmt.Errorf("%w: sale %s cannot move from %s to %s", apperrors.ErrConflict, data.SaleID, status, data.NewStatus)
	}

	updateItem := `
		UPDATE sale_items
		SET returned_quantity = returned_quantity + $2
		WHERE sale_item_id = $1 AND returned_quantity + $2 <= quantity;
	`
	updateAllocation := `
		UPDATE sale_item_batches
		SET quantity_returned = quantity_returned + $3
		WHERE sale_item_id = $1 AND batch_id = $2 AND quantity_returned + $3 <= quantity_taken;
	`
	for _, item := range data.Items {
		tag, err := tx.Exec(ctx, updateItem, item.SaleItemID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to update returned quantity for item %s: %w", item.SaleItemID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: return of %d exceeds un-returned quantity of item %s", apperrors.ErrConflict, item.Quantity, item.SaleItemID)
		}

		for _, release := range item.Releases {
			tag, err := tx.Exec(ctx, updateAllocation, item.SaleItemID, release.BatchID, release.Quantity)
			if err != nil {
				return fmt.Errorf("failed to update allocation for item %s batch %s: %w", item.SaleItemID, release.BatchID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: release of %d exceeds allocation of item %s from batch %s", apperrors.ErrConflict, release.Quantity, item.SaleItemID, release.BatchID)
			}
			if err := r.batchRepo.ReleaseInTx(ctx, tx, release.BatchID, release.Quantity); err != nil {
				return err
			}
		}
	}

	updateSale := `
		UPDATE sales
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE sale_id = $1;
	`
	if _, err := tx.Exec(ctx, updateSale, data.SaleID, data.NewStatus, data.Posting.CreatedAt, data.Posting.CreatedBy); err != nil {
		return fmt.Errorf("failed to update sale %s status: %w", data.SaleID, err)
	}

	if _, err := r.ledgerRepo.PostTransactionInTx(ctx, tx, data.Posting); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func (r *PgxSaleRepository) DeleteSale(ctx context.Context, saleID string, reversals []domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE sale_id = $1 FOR UPDATE);`, saleID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to lock sale %s: %w", saleID, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}

	// Everything still out in the world goes back to its source batch.
	openQuery := `
		SELECT sib.batch_id, sib.quantity_taken - sib.quantity_returned
		FROM sale_item_batches sib
		JOIN sale_items si ON si.sale_item_id = sib.sale_item_id
		WHERE si.sale_id = $1 AND sib.quantity_taken > sib.quantity_returned;
	`
	rows, err := tx.Query(ctx, openQuery, saleID)
	if err != nil {
		return fmt.Errorf("failed to query open allocations for sale %s: %w", saleID, err)
	}
	releases := []portsrepo.BatchRelease{}
	for rows.Next() {
		var rel portsrepo.BatchRelease
		if err := rows.Scan(&rel.BatchID, &rel.Quantity); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan open allocation row: %w", err)
		}
		releases = append(releases, rel)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating open allocation rows: %w", err)
	}
	rows.Close()

	for _, rel := range releases {
		if err := r.batchRepo.ReleaseInTx(ctx, tx, rel.BatchID, rel.Quantity); err != nil {
			return err
		}
	}

	for _, rev := range reversals {
		if _, err := r.ledgerRepo.PostTransactionInTx(ctx, tx, rev); err != nil {
			return err
		}
	}

	for _, stmt := range []string{
		`DELETE FROM sale_item_batches WHERE sale_item_id IN (SELECT sale_item_id FROM sale_items WHERE sale_id = $1);`,
		`DELETE FROM sale_items WHERE sale_id = $1;`,
		`DELETE FROM sales WHERE sale_id = $1;`,
	} {
		if _, err := tx.Exec(ctx, stmt, saleID); err != nil {
			return fmt.Errorf("failed to delete sale %s: %w", saleID, err)
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxSaleRepository) FindSaleByID(ctx context.Context, saleID string) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE sale_id = $1;`
	sale, err := scanSale(r.Pool.QueryRow(ctx, query, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sale %s: %w", saleID, err)
	}

	itemsQuery := `
		SELECT sale_item_id, sale_id, product_id, quantity, returned_quantity, unit_price, total_price
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY sale_item_id;
	`
	rows, err := r.Pool.Query(ctx, itemsQuery, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for sale %s: %w", saleID, err)
	}
	defer rows.Close()

	items := []domain.SaleItem{}
	itemIndex := map[string]int{}
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.SaleItemID, &item.SaleID, &item.ProductID, &item.Quantity, &item.ReturnedQuantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, fmt.Errorf("failed to scan sale item row: %w", err)
		}
		itemIndex[item.SaleItemID] = len(items)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale item rows: %w", err)
	}

	allocQuery := `
		SELECT sib.sale_item_id, sib.batch_id, sib.quantity_taken, sib.quantity_returned
		FROM sale_item_batches sib
		JOIN sale_items si ON si.sale_item_id = sib.sale_item_id
		WHERE si.sale_id = $1
		ORDER BY sib.sale_item_id, sib.batch_id;
	`
	allocRows, err := r.Pool.Query(ctx, allocQuery, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations for sale %s: %w", saleID, err)
	}
	defer allocRows.Close()

	for allocRows.Next() {
		var saleItemID string
		var alloc domain.BatchAllocation
		if err := allocRows.Scan(&saleItemID, &alloc.BatchID, &alloc.QuantityTaken, &alloc.QuantityReturned); err != nil {
			return nil, fmt.Errorf("failed to scan allocation row: %w", err)
		}
		if idx, ok := itemIndex[saleItemID]; ok {
			items[idx].Allocations = append(items[idx].Allocations, alloc)
		}
	}
	if err := allocRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation rows: %w", err)
	}

	sale.Items = items
	return sale, nil
}

func (r *PgxSaleRepository) ListSalesByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales for company %s: %w", companyID, err)
	}
	defer rows.Close()
	return collectSales(rows)
}

func (r *PgxSaleRepository) ListSalesByCustomer(ctx context.Context, customerID string) ([]domain.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE customer_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales for customer %s: %w", customerID, err)
	}
	defer rows.Close()
	return collectSales(rows)
}

func collectSales(rows pgx.Rows) ([]domain.Sale, error) {
	sales := []domain.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		sales = append(sales, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale rows: %w", err)
	}
	return sales, nil
}
