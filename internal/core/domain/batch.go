package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ExpiryStatus classifies a batch relative to its expiry date.
type ExpiryStatus string

const (
	Expired      ExpiryStatus = "expired"
	ExpiringSoon ExpiryStatus = "expiring_soon"
	Fresh        ExpiryStatus = "fresh"
	NoExpiry     ExpiryStatus = "no_expiry"
)

// DefaultExpiringSoonDays is the window for the expiring_soon classification.
const DefaultExpiringSoonDays = 30

// Batch is a dated, quantity-tracked lot of a single product — the atomic
// unit of stock allocation. Quantity is the original received amount and
// never changes; AvailableQuantity moves only through allocation (sale) and
// release (return / delete).
type Batch struct {
	BatchID           string          `json:"batchID"`   // Primary Key (e.g., UUID)
	ProductID         string          `json:"productID"` // FK -> products.product_id (Not Null)
	CompanyID         string          `json:"companyID"` // FK -> companies.company_id (Not Null)
	BatchNumber       string          `json:"batchNumber"`
	Quantity          int64           `json:"quantity"`          // Original, immutable
	AvailableQuantity int64           `json:"availableQuantity"` // 0 <= available <= quantity
	ManufacturingDate *time.Time      `json:"manufacturingDate"` // Nullable; FIFO orders NULLs last
	ExpiryDate        *time.Time      `json:"expiryDate"`        // Nullable
	PurchasePrice     decimal.Decimal `json:"purchasePrice"`
	PurchaseID        *string         `json:"purchaseID"` // Purchase that created this batch
	AuditFields
}

// ProductStock is the per-product aggregation over that product's batches.
type ProductStock struct {
	ProductID         string `json:"productID"`
	TotalQuantity     int64  `json:"totalQuantity"`
	AvailableQuantity int64  `json:"availableQuantity"`
}

// IsUntouched reports whether no quantity was ever allocated from the batch.
// Only untouched batches may be deleted.
func (b Batch) IsUntouched() bool {
	return b.AvailableQuantity == b.Quantity
}

// DaysUntilExpiry returns ceil((expiryDate - today) / 24h). A batch expiring
// later today yields 0; one that expired yesterday yields a negative value.
// The boolean is false when the batch has no expiry date.
func (b Batch) DaysUntilExpiry(today time.Time) (int, bool) {
	if b.ExpiryDate == nil {
		return 0, false
	}
	diff := b.ExpiryDate.Sub(today)
	days := int(math.Ceil(diff.Hours() / 24))
	return days, true
}

// ExpiryStatusAt classifies the batch against the given reference date.
// Defined once so UI summaries and reports cannot diverge.
func (b Batch) ExpiryStatusAt(today time.Time, expiringSoonDays int) ExpiryStatus {
	days, ok := b.DaysUntilExpiry(today)
	if !ok {
		return NoExpiry
	}
	switch {
	case days < 0:
		return Expired
	case days <= expiringSoonDays:
		return ExpiringSoon
	default:
		return Fresh
	}
}
