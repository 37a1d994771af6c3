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

const batchColumns = `batch_id, product_id, company_id, batch_number, quantity, available_quantity, manufacturing_date, expiry_date, purchase_price, purchase_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxBatchRepository struct {
	BaseRepository
}

// newPgxBatchRepository creates a new repository for batch data.
func newPgxBatchRepository(pool *pgxpool.Pool) portsrepo.BatchRepositoryFacade {
	return &PgxBatchRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BatchRepositoryFacade = (*PgxBatchRepository)(nil)

func scanBatch(row pgx.Row) (*domain.Batch, error) {
	var b domain.Batch
	err := row.Scan(
		&b.BatchID,
		&b.ProductID,
		&b.CompanyID,
		&b.BatchNumber,
		&b.Quantity,
		&b.AvailableQuantity,
		&b.ManufacturingDate,
		&b.ExpiryDate,
		&b.PurchasePrice,
		&b.PurchaseID,
		&b.CreatedAt,
		&b.CreatedBy,
		&b.LastUpdatedAt,
		&b.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBatches(rows pgx.Rows) ([]domain.Batch, error) {
	batches := []domain.Batch{}
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		batches = append(batches, *batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batch rows: %w", err)
	}
	return batches, nil
}

func (r *PgxBatchRepository) FindBatchByID(ctx context.Context, batchID string) (*domain.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE batch_id = $1;`
	batch, err := scanBatch(r.Pool.QueryRow(ctx, query, batchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find batch %s: %w", batchID, err)
	}
	return batch, nil
}

func (r *PgxBatchRepository) FindBatchesByProduct(ctx context.Context, productID string) ([]domain.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE product_id = $1
		ORDER BY manufacturing_date ASC NULLS LAST, created_at ASC;
	`
	rows, err := r.Pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches for product %s: %w", productID, err)
	}
	defer rows.Close()
	return collectBatches(rows)
}

func (r *PgxBatchRepository) ListBatchesByCompany(ctx context.Context, companyID string) ([]domain.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE company_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches for company %s: %w", companyID, err)
	}
	defer rows.Close()
	return collectBatches(rows)
}

func (r *PgxBatchRepository) StockByProduct(ctx context.Context, companyID string, productID string) ([]domain.ProductStock, error) {
	query := `
		SELECT product_id, SUM(quantity), SUM(available_quantity)
		FROM batches
		WHERE company_id = $1
	`
	args := []any{companyID}
	if productID != "" {
		query += ` AND product_id = $2`
		args = append(args, productID)
	}
	query += ` GROUP BY product_id ORDER BY product_id;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stock for company %s: %w", companyID, err)
	}
	defer rows.Close()

	stock := []domain.ProductStock{}
	for rows.Next() {
		var s domain.ProductStock
		if err := rows.Scan(&s.ProductID, &s.TotalQuantity, &s.AvailableQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		stock = append(stock, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock rows: %w", err)
	}
	return stock, nil
}

// DeleteBatch removes a batch only while its full quantity is still
// available. The predicate makes the untouched check race-free.
func (r *PgxBatchRepository) DeleteBatch(ctx context.Context, batchID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM batches WHERE batch_id = $1 AND available_quantity = quantity;`, batchID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: batch %s is referenced by a document", apperrors.ErrConflict, batchID)
		}
		return fmt.Errorf("failed to delete batch %s: %w", batchID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM batches WHERE batch_id = $1);`, batchID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check batch %s: %w", batchID, err)
		}
		if exists {
			return fmt.Errorf("%w: batch %s has allocations", apperrors.ErrConflict, batchID)
		}
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxBatchRepository) SaveBatchInTx(ctx context.Context, tx pgx.Tx, batch domain.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		batch.BatchID,
		batch.ProductID,
		batch.CompanyID,
		batch.BatchNumber,
		batch.Quantity,
		batch.AvailableQuantity,
		batch.ManufacturingDate,
		batch.ExpiryDate,
		batch.PurchasePrice,
		batch.PurchaseID,
		batch.CreatedAt,
		batch.CreatedBy,
		batch.LastUpdatedAt,
		batch.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: batch number %s already exists for this product", apperrors.ErrDuplicate, batch.BatchNumber)
		}
		return fmt.Errorf("failed to save batch %s: %w", batch.BatchID, err)
	}
	return nil
}

// FindBatchesForAllocation locks and returns the product's open batches in
// allocation order. The FOR UPDATE serializes allocation per product.
func (r *PgxBatchRepository) FindBatchesForAllocation(ctx context.Context, tx pgx.Tx, productID string) ([]domain.Batch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM batches
		WHERE product_id = $1 AND available_quantity > 0
		ORDER BY manufacturing_date ASC NULLS LAST, created_at ASC
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock batches for product %s: %w", productID, err)
	}
	defer rows.Close()
	return collectBatches(rows)
}

// ApplyAllocationsInTx decrements availability for each allocation. The
// guard predicate fails the whole transaction rather than oversell a batch.
func (r *PgxBatchRepository) ApplyAllocationsInTx(ctx context.Context, tx pgx.Tx, allocations []domain.BatchAllocation) error {
	query := `
		UPDATE batches
		SET available_quantity = available_quantity - $2
		WHERE batch_id = $1 AND available_quantity >= $2;
	`
	for _, alloc := range allocations {
		tag, err := tx.Exec(ctx, query, alloc.BatchID, alloc.QuantityTaken)
		if err != nil {
			return fmt.Errorf("failed to allocate from batch %s: %w", alloc.BatchID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: batch %s cannot cover %d units", apperrors.ErrInsufficientStock, alloc.BatchID, alloc.QuantityTaken)
		}
	}
	return nil
}

// ReleaseInTx puts quantity back into a batch, capped at the original
// received amount.
func (r *PgxBatchRepository) ReleaseInTx(ctx context.Context, tx pgx.Tx, batchID string, quantity int64) error {
	query := `
		UPDATE batches
		SET available_quantity = available_quantity + $2
		WHERE batch_id = $1 AND available_quantity + $2 <= quantity;
	`
	tag, err := tx.Exec(ctx, query, batchID, quantity)
	if err != nil {
		return fmt.Errorf("failed to release %d units to batch %s: %w", quantity, batchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: releasing %d units would exceed batch %s's original quantity", apperrors.ErrOverRelease, quantity, batchID)
	}
	return nil
}
