package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// Well-known account codes the workflows post against. Created at company
// setup; resolved by code at posting time.
const (
	CodeCash               = "1000"
	CodeBank               = "1100"
	CodeAccountsReceivable = "1200"
	CodeInventory          = "1300"
	CodeAccountsPayable    = "2000"
	CodeSalesRevenue       = "4000"
)

// Account represents a financial account within the core domain.
// Balance is a cached value maintained by the posting engine; the
// reconciliation job is the repair path when it drifts.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary Key (e.g., UUID)
	CompanyID       string          `json:"companyID"`       // FK -> companies.company_id (NON-NULL)
	Code            string          `json:"code"`            // Display key, unique per company
	Name            string          `json:"name"`            // User-defined name
	AccountType     AccountType     `json:"accountType"`     // ASSET, LIABILITY, etc.
	ParentAccountID string          `json:"parentAccountID"` // Nullable FK -> accounts.account_id (Self-referencing)
	Description     string          `json:"description"`     // Nullable user description
	IsActive        bool            `json:"isActive"`        // Soft delete or status flag
	AuditFields                     // Embed CreatedAt, CreatedBy, etc.
	Balance         decimal.Decimal `json:"balance"`
}

// IncreasesOnDebit reports whether a debit raises this account type's balance.
// Asset and expense accounts increase on debit; liability, equity and income
// accounts increase on credit.
func (t AccountType) IncreasesOnDebit() bool {
	return t == Asset || t == Expense
}
