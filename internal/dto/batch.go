package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

// BatchResponse defines the data returned for a batch. Expiry fields are
// classified against the request's reference date, not stored.
type BatchResponse struct {
	BatchID           string              `json:"batchID"`
	ProductID         string              `json:"productID"`
	CompanyID         string              `json:"companyID"`
	BatchNumber       string              `json:"batchNumber"`
	Quantity          int64               `json:"quantity"`
	AvailableQuantity int64               `json:"availableQuantity"`
	ManufacturingDate *time.Time          `json:"manufacturingDate,omitempty"`
	ExpiryDate        *time.Time          `json:"expiryDate,omitempty"`
	PurchasePrice     decimal.Decimal     `json:"purchasePrice"`
	PurchaseID        *string             `json:"purchaseID,omitempty"`
	ExpiryStatus      domain.ExpiryStatus `json:"expiryStatus"`
	DaysUntilExpiry   *int                `json:"daysUntilExpiry,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
}

// ToBatchResponse converts a domain.Batch to its response DTO, classifying
// expiry against today with the configured expiring-soon window.
func ToBatchResponse(b *domain.Batch, today time.Time, expiringSoonDays int) BatchResponse {
	resp := BatchResponse{
		BatchID:           b.BatchID,
		ProductID:         b.ProductID,
		CompanyID:         b.CompanyID,
		BatchNumber:       b.BatchNumber,
		Quantity:          b.Quantity,
		AvailableQuantity: b.AvailableQuantity,
		ManufacturingDate: b.ManufacturingDate,
		ExpiryDate:        b.ExpiryDate,
		PurchasePrice:     b.PurchasePrice,
		PurchaseID:        b.PurchaseID,
		ExpiryStatus:      b.ExpiryStatusAt(today, expiringSoonDays),
		CreatedAt:         b.CreatedAt,
	}
	if days, ok := b.DaysUntilExpiry(today); ok {
		resp.DaysUntilExpiry = &days
	}
	return resp
}

// ToListBatchResponse converts a slice of batches to DTOs
func ToListBatchResponse(batches []domain.Batch, today time.Time, expiringSoonDays int) []BatchResponse {
	res := make([]BatchResponse, len(batches))
	for i := range batches {
		res[i] = ToBatchResponse(&batches[i], today, expiringSoonDays)
	}
	return res
}

// ListBatchesResponse wraps the list of batches.
type ListBatchesResponse struct {
	Batches []BatchResponse `json:"batches"`
}

// ProductStockResponse is the per-product stock aggregation.
type ProductStockResponse struct {
	ProductID         string `json:"productID"`
	TotalQuantity     int64  `json:"totalQuantity"`
	AvailableQuantity int64  `json:"availableQuantity"`
}

// StockSummaryResponse wraps the per-product stock aggregations.
type StockSummaryResponse struct {
	Stock []ProductStockResponse `json:"stock"`
}

// ToStockSummaryResponse converts stock projections to the response DTO
func ToStockSummaryResponse(stock []domain.ProductStock) StockSummaryResponse {
	res := make([]ProductStockResponse, len(stock))
	for i, s := range stock {
		res[i] = ProductStockResponse{
			ProductID:         s.ProductID,
			TotalQuantity:     s.TotalQuantity,
			AvailableQuantity: s.AvailableQuantity,
		}
	}
	return StockSummaryResponse{Stock: res}
}
