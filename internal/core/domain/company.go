package domain

// Company represents an isolated set of books: accounts, products, batches,
// purchases and sales all belong to exactly one company.
type Company struct {
	CompanyID string `json:"companyID"` // Primary Key (e.g., UUID)
	Name      string `json:"name"`
	AuditFields
}
