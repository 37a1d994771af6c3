package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

// SaleBatchAllocationRequest names an exact batch to draw from, overriding
// the oldest-first default for that item.
type SaleBatchAllocationRequest struct {
	BatchID  string `json:"batchID" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,gt=0"`
}

// CreateSaleItemRequest is one sold line. When BatchAllocations is empty the
// quantity is drawn from the product's oldest batches first.
type CreateSaleItemRequest struct {
	ProductID        string                       `json:"productID" binding:"required"`
	Quantity         int64                        `json:"quantity" binding:"required,gt=0"`
	UnitPrice        decimal.Decimal              `json:"unitPrice" binding:"required"`
	BatchAllocations []SaleBatchAllocationRequest `json:"batchAllocations" binding:"omitempty,dive"`
}

// CreateSaleRequest defines the data needed to record a sale. Status may be
// set to in_progress to stage the sale; stock is allocated and the revenue
// posted either way, the flag only marks the document as still open in the UI.
type CreateSaleRequest struct {
	CustomerID  *string                 `json:"customerID"` // Optional: walk-in sale when absent
	Items       []CreateSaleItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentType domain.PaymentType      `json:"paymentType" binding:"required,oneof=cash bank cod"`
	Status      domain.SaleStatus       `json:"status" binding:"omitempty,oneof=in_progress completed"`
	Notes       string                  `json:"notes"`
}

// ReturnSaleItemRequest is the returned portion of one sale item.
type ReturnSaleItemRequest struct {
	SaleItemID string `json:"saleItemID" binding:"required"`
	Quantity   int64  `json:"quantity" binding:"required,gt=0"`
}

// ReturnSaleRequest defines a return. An empty item list means a full return
// of everything not yet returned.
type ReturnSaleRequest struct {
	Items []ReturnSaleItemRequest `json:"items" binding:"omitempty,dive"`
	Notes string                  `json:"notes"`
}

// BatchAllocationResponse records quantity taken from one batch.
type BatchAllocationResponse struct {
	BatchID          string `json:"batchID"`
	QuantityTaken    int64  `json:"quantityTaken"`
	QuantityReturned int64  `json:"quantityReturned"`
}

// SaleItemResponse defines the data returned for a sold line.
type SaleItemResponse struct {
	SaleItemID       string                    `json:"saleItemID"`
	ProductID        string                    `json:"productID"`
	Quantity         int64                     `json:"quantity"`
	ReturnedQuantity int64                     `json:"returnedQuantity"`
	UnitPrice        decimal.Decimal           `json:"unitPrice"`
	TotalPrice       decimal.Decimal           `json:"totalPrice"`
	Allocations      []BatchAllocationResponse `json:"allocations,omitempty"`
}

// SaleResponse defines the data returned for a sale.
type SaleResponse struct {
	SaleID           string             `json:"saleID"`
	CompanyID        string             `json:"companyID"`
	SaleNumber       string             `json:"saleNumber"`
	CustomerID       *string            `json:"customerID,omitempty"`
	Items            []SaleItemResponse `json:"items,omitempty"`
	TotalAmount      decimal.Decimal    `json:"totalAmount"`
	PaidAmount       decimal.Decimal    `json:"paidAmount"`
	ReturnedAmount   decimal.Decimal    `json:"returnedAmount"`
	RemainingBalance decimal.Decimal    `json:"remainingBalance"`
	Status           domain.SaleStatus  `json:"status"`
	PaymentType      domain.PaymentType `json:"paymentType"`
	Notes            string             `json:"notes"`
	CreatedAt        time.Time          `json:"createdAt"`
}

// ToSaleResponse converts a domain.Sale to its response DTO
func ToSaleResponse(s *domain.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		allocs := make([]BatchAllocationResponse, len(item.Allocations))
		for j, a := range item.Allocations {
			allocs[j] = BatchAllocationResponse{
				BatchID:          a.BatchID,
				QuantityTaken:    a.QuantityTaken,
				QuantityReturned: a.QuantityReturned,
			}
		}
		items[i] = SaleItemResponse{
			SaleItemID:       item.SaleItemID,
			ProductID:        item.ProductID,
			Quantity:         item.Quantity,
			ReturnedQuantity: item.ReturnedQuantity,
			UnitPrice:        item.UnitPrice,
			TotalPrice:       item.TotalPrice,
			Allocations:      allocs,
		}
	}
	return SaleResponse{
		SaleID:           s.SaleID,
		CompanyID:        s.CompanyID,
		SaleNumber:       s.SaleNumber,
		CustomerID:       s.CustomerID,
		Items:            items,
		TotalAmount:      s.TotalAmount,
		PaidAmount:       s.PaidAmount,
		ReturnedAmount:   s.ReturnedAmount(),
		RemainingBalance: s.RemainingBalance(),
		Status:           s.Status,
		PaymentType:      s.PaymentType,
		Notes:            s.Notes,
		CreatedAt:        s.CreatedAt,
	}
}

// ToListSaleResponse converts a slice of sales to DTOs
func ToListSaleResponse(sales []domain.Sale) []SaleResponse {
	res := make([]SaleResponse, len(sales))
	for i := range sales {
		res[i] = ToSaleResponse(&sales[i])
	}
	return res
}

// ListSalesParams defines query parameters for listing sales.
type ListSalesParams struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

// ListSalesResponse wraps the list of sales.
type ListSalesResponse struct {
	Sales []SaleResponse `json:"sales"`
}
