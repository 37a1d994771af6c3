package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tradebooks/tradebooks_backend/internal/apperrors"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	portsrepo "github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
)

// batchService provides read and maintenance operations over batches.
// Batches are only ever created by purchases and consumed by sales; the
// service exposes what is left: queries, stock summaries and deleting
// untouched batches.
type batchService struct {
	BaseService
	batchRepo   portsrepo.BatchRepositoryFacade
	productRepo portsrepo.ProductRepositoryFacade
}

// NewBatchService creates a new batch service.
func NewBatchService(batchRepo portsrepo.BatchRepositoryFacade, productRepo portsrepo.ProductRepositoryFacade) portssvc.BatchSvcFacade {
	return &batchService{batchRepo: batchRepo, productRepo: productRepo}
}

var _ portssvc.BatchSvcFacade = (*batchService)(nil)

func (s *batchService) GetBatchByID(ctx context.Context, companyID string, batchID string) (*domain.Batch, error) {
	batch, err := s.batchRepo.FindBatchByID(ctx, batchID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find batch",
				slog.String("batch_id", batchID))
		}
		return nil, err
	}
	if batch.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return batch, nil
}

func (s *batchService) ListBatchesByProduct(ctx context.Context, companyID string, productID string) ([]domain.Batch, error) {
	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	batches, err := s.batchRepo.FindBatchesByProduct(ctx, productID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list batches",
			slog.String("product_id", productID))
		return nil, err
	}
	if batches == nil {
		return []domain.Batch{}, nil
	}
	return batches, nil
}

func (s *batchService) ListBatchesByCompany(ctx context.Context, companyID string) ([]domain.Batch, error) {
	batches, err := s.batchRepo.ListBatchesByCompany(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list company batches",
			slog.String("company_id", companyID))
		return nil, err
	}
	if batches == nil {
		return []domain.Batch{}, nil
	}
	return batches, nil
}

func (s *batchService) GetStockSummary(ctx context.Context, companyID string, productID string) ([]domain.ProductStock, error) {
	stock, err := s.batchRepo.StockByProduct(ctx, companyID, productID)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate stock",
			slog.String("company_id", companyID),
			slog.String("product_id", productID))
		return nil, err
	}
	if stock == nil {
		return []domain.ProductStock{}, nil
	}
	return stock, nil
}

func (s *batchService) DeleteBatch(ctx context.Context, companyID string, batchID string) error {
	batch, err := s.GetBatchByID(ctx, companyID, batchID)
	if err != nil {
		return err
	}
	if !batch.IsUntouched() {
		return fmt.Errorf("batch %s has allocations: %w", batch.BatchNumber, apperrors.ErrConflict)
	}

	if err := s.batchRepo.DeleteBatch(ctx, batchID); err != nil {
		s.LogError(ctx, err, "Failed to delete batch",
			slog.String("batch_id", batchID))
		return err
	}

	s.LogInfo(ctx, "Batch deleted",
		slog.String("batch_id", batchID),
		slog.String("company_id", companyID))
	return nil
}
