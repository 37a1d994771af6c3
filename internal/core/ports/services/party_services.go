package services

import (
	"context"

	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
)

// CustomerSvcFacade defines operations on customers.
type CustomerSvcFacade interface {
	CreateCustomer(ctx context.Context, companyID string, req dto.CreateCustomerRequest, userID string) (*domain.Customer, error)
	GetCustomerByID(ctx context.Context, companyID string, customerID string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, companyID string, limit int, offset int) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, companyID string, customerID string, req dto.UpdateCustomerRequest, userID string) (*domain.Customer, error)
	DeactivateCustomer(ctx context.Context, companyID string, customerID string, userID string) error

	// GetCustomerBalance derives the customer's sales totals and what is
	// still owed.
	GetCustomerBalance(ctx context.Context, companyID string, customerID string) (*domain.PartyBalance, error)
}

// VendorSvcFacade defines operations on vendors.
type VendorSvcFacade interface {
	CreateVendor(ctx context.Context, companyID string, req dto.CreateVendorRequest, userID string) (*domain.Vendor, error)
	GetVendorByID(ctx context.Context, companyID string, vendorID string) (*domain.Vendor, error)
	ListVendors(ctx context.Context, companyID string, limit int, offset int) ([]domain.Vendor, error)
	UpdateVendor(ctx context.Context, companyID string, vendorID string, req dto.UpdateVendorRequest, userID string) (*domain.Vendor, error)
	DeactivateVendor(ctx context.Context, companyID string, vendorID string, userID string) error

	// GetVendorBalance derives the vendor's purchase totals and what is
	// still owed to them.
	GetVendorBalance(ctx context.Context, companyID string, vendorID string) (*domain.PartyBalance, error)
}
