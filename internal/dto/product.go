package dto

import (
	"time"

	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

// CreateProductRequest defines the data needed to create a product.
type CreateProductRequest struct {
	SKU      string  `json:"sku" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category"`
	VendorID *string `json:"vendorID"` // Optional default supplier
}

// UpdateProductRequest defines the data allowed for updating a product.
type UpdateProductRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	VendorID *string `json:"vendorID"`
}

// ProductResponse defines the data returned for a product.
type ProductResponse struct {
	ProductID     string    `json:"productID"`
	CompanyID     string    `json:"companyID"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	VendorID      *string   `json:"vendorID,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// ToProductResponse converts a domain.Product to its response DTO
func ToProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ProductID:     p.ProductID,
		CompanyID:     p.CompanyID,
		SKU:           p.SKU,
		Name:          p.Name,
		Category:      p.Category,
		VendorID:      p.VendorID,
		CreatedAt:     p.CreatedAt,
		LastUpdatedAt: p.LastUpdatedAt,
	}
}

// ToListProductResponse converts a slice of products to DTOs
func ToListProductResponse(products []domain.Product) []ProductResponse {
	res := make([]ProductResponse, len(products))
	for i := range products {
		res[i] = ToProductResponse(&products[i])
	}
	return res
}

// ListProductsParams defines query parameters for listing products.
type ListProductsParams struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

// ListProductsResponse wraps the list of products.
type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
}
