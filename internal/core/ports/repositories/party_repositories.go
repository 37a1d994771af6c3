package repositories

import (
	"context"
	"time"

	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

// CustomerRepositoryFacade defines operations on customers.
type CustomerRepositoryFacade interface {
	SaveCustomer(ctx context.Context, customer domain.Customer) error
	FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, companyID string, limit int, offset int) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) error
	DeactivateCustomer(ctx context.Context, customerID string, userID string, now time.Time) error

	// CustomerBalance derives the customer's aggregate position from their
	// sales; nothing is read from a cached field.
	CustomerBalance(ctx context.Context, customerID string) (*domain.PartyBalance, error)
}

// VendorRepositoryFacade defines operations on vendors.
type VendorRepositoryFacade interface {
	SaveVendor(ctx context.Context, vendor domain.Vendor) error
	FindVendorByID(ctx context.Context, vendorID string) (*domain.Vendor, error)
	ListVendors(ctx context.Context, companyID string, limit int, offset int) ([]domain.Vendor, error)
	UpdateVendor(ctx context.Context, vendor domain.Vendor) error
	DeactivateVendor(ctx context.Context, vendorID string, userID string, now time.Time) error

	// VendorBalance derives the vendor's aggregate position from purchases.
	VendorBalance(ctx context.Context, vendorID string) (*domain.PartyBalance, error)
}
