package domain

// Product is a sellable good tracked at batch granularity.
// Identity fields (SKU) are immutable once batches reference the product;
// descriptive fields remain editable.
type Product struct {
	ProductID string  `json:"productID"` // Primary Key (e.g., UUID)
	CompanyID string  `json:"companyID"` // FK -> companies.company_id (Not Null)
	SKU       string  `json:"sku"`       // Unique per company
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	VendorID  *string `json:"vendorID"` // Default/last vendor, optional
	AuditFields
}
