package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tradebooks/tradebooks_backend/internal/apperrors"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	portsrepo "github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
)

// productService provides product catalog operations.
type productService struct {
	BaseService
	productRepo portsrepo.ProductRepositoryFacade
	vendorRepo  portsrepo.VendorRepositoryFacade
}

// NewProductService creates a new product service.
func NewProductService(productRepo portsrepo.ProductRepositoryFacade, vendorRepo portsrepo.VendorRepositoryFacade) portssvc.ProductSvcFacade {
	return &productService{productRepo: productRepo, vendorRepo: vendorRepo}
}

var _ portssvc.ProductSvcFacade = (*productService)(nil)

func (s *productService) CreateProduct(ctx context.Context, companyID string, req dto.CreateProductRequest, userID string) (*domain.Product, error) {
	if req.VendorID != nil {
		vendor, err := s.vendorRepo.FindVendorByID(ctx, *req.VendorID)
		if err != nil {
			return nil, fmt.Errorf("invalid vendor: %w", err)
		}
		if vendor.CompanyID != companyID {
			return nil, fmt.Errorf("vendor %s: %w", *req.VendorID, apperrors.ErrNotFound)
		}
	}

	now := time.Now().UTC()
	product := domain.Product{
		ProductID: uuid.NewString(),
		CompanyID: companyID,
		SKU:       req.SKU,
		Name:      req.Name,
		Category:  req.Category,
		VendorID:  req.VendorID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.productRepo.SaveProduct(ctx, product); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save product",
				slog.String("product_id", product.ProductID),
				slog.String("sku", req.SKU))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Product created",
		slog.String("product_id", product.ProductID),
		slog.String("sku", product.SKU),
		slog.String("company_id", companyID))
	return &product, nil
}

func (s *productService) GetProductByID(ctx context.Context, companyID string, productID string) (*domain.Product, error) {
	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find product",
				slog.String("product_id", productID))
		}
		return nil, err
	}
	if product.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, companyID string, limit int, offset int) ([]domain.Product, error) {
	products, err := s.productRepo.ListProducts(ctx, companyID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list products",
			slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list products for company %s: %w", companyID, err)
	}
	if products == nil {
		return []domain.Product{}, nil
	}
	return products, nil
}

func (s *productService) UpdateProduct(ctx context.Context, companyID string, productID string, req dto.UpdateProductRequest, userID string) (*domain.Product, error) {
	product, err := s.GetProductByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		product.Name = *req.Name
		updated = true
	}
	if req.Category != nil {
		product.Category = *req.Category
		updated = true
	}
	if req.VendorID != nil {
		vendor, err := s.vendorRepo.FindVendorByID(ctx, *req.VendorID)
		if err != nil {
			return nil, fmt.Errorf("invalid vendor: %w", err)
		}
		if vendor.CompanyID != companyID {
			return nil, fmt.Errorf("vendor %s: %w", *req.VendorID, apperrors.ErrNotFound)
		}
		product.VendorID = req.VendorID
		updated = true
	}
	if !updated {
		return product, nil
	}

	now := time.Now().UTC()
	product.LastUpdatedAt = now
	product.LastUpdatedBy = userID

	if err := s.productRepo.UpdateProduct(ctx, *product); err != nil {
		s.LogError(ctx, err, "Failed to update product",
			slog.String("product_id", productID))
		return nil, err
	}

	s.LogInfo(ctx, "Product updated",
		slog.String("product_id", productID),
		slog.String("company_id", companyID))
	return product, nil
}
