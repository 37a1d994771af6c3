package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tradebooks/tradebooks_backend/internal/apperrors"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	portsrepo "github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
)

// customerService provides customer master-data operations. Balances come
// out of the customer's sales, never a stored column.
type customerService struct {
	BaseService
	customerRepo portsrepo.CustomerRepositoryFacade
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customerRepo portsrepo.CustomerRepositoryFacade) portssvc.CustomerSvcFacade {
	return &customerService{customerRepo: customerRepo}
}

var _ portssvc.CustomerSvcFacade = (*customerService)(nil)

func (s *customerService) CreateCustomer(ctx context.Context, companyID string, req dto.CreateCustomerRequest, userID string) (*domain.Customer, error) {
	now := time.Now().UTC()
	customer := domain.Customer{
		CustomerID: uuid.NewString(),
		CompanyID:  companyID,
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		IsActive:   true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.customerRepo.SaveCustomer(ctx, customer); err != nil {
		s.LogError(ctx, err, "Failed to save customer",
			slog.String("customer_id", customer.CustomerID))
		return nil, err
	}

	s.LogInfo(ctx, "Customer created",
		slog.String("customer_id", customer.CustomerID),
		slog.String("company_id", companyID))
	return &customer, nil
}

func (s *customerService) GetCustomerByID(ctx context.Context, companyID string, customerID string) (*domain.Customer, error) {
	customer, err := s.customerRepo.FindCustomerByID(ctx, customerID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find customer",
				slog.String("customer_id", customerID))
		}
		return nil, err
	}
	if customer.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context, companyID string, limit int, offset int) ([]domain.Customer, error) {
	customers, err := s.customerRepo.ListCustomers(ctx, companyID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list customers",
			slog.String("company_id", companyID))
		return nil, err
	}
	if customers == nil {
		return []domain.Customer{}, nil
	}
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, companyID string, customerID string, req dto.UpdateCustomerRequest, userID string) (*domain.Customer, error) {
	customer, err := s.GetCustomerByID(ctx, companyID, customerID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		customer.Name = *req.Name
		updated = true
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
		updated = true
	}
	if req.Email != nil {
		customer.Email = *req.Email
		updated = true
	}
	if req.Address != nil {
		customer.Address = *req.Address
		updated = true
	}
	if !updated {
		return customer, nil
	}

	now := time.Now().UTC()
	customer.LastUpdatedAt = now
	customer.LastUpdatedBy = userID

	if err := s.customerRepo.UpdateCustomer(ctx, *customer); err != nil {
		s.LogError(ctx, err, "Failed to update customer",
			slog.String("customer_id", customerID))
		return nil, err
	}
	return customer, nil
}

func (s *customerService) DeactivateCustomer(ctx context.Context, companyID string, customerID string, userID string) error {
	if _, err := s.GetCustomerByID(ctx, companyID, customerID); err != nil {
		return err
	}
	if err := s.customerRepo.DeactivateCustomer(ctx, customerID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate customer",
			slog.String("customer_id", customerID))
		return err
	}
	s.LogInfo(ctx, "Customer deactivated",
		slog.String("customer_id", customerID),
		slog.String("company_id", companyID))
	return nil
}

func (s *customerService) GetCustomerBalance(ctx context.Context, companyID string, customerID string) (*domain.PartyBalance, error) {
	if _, err := s.GetCustomerByID(ctx, companyID, customerID); err != nil {
		return nil, err
	}
	balance, err := s.customerRepo.CustomerBalance(ctx, customerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to derive customer balance",
			slog.String("customer_id", customerID))
		return nil, err
	}
	return balance, nil
}

// vendorService provides vendor master-data operations.
type vendorService struct {
	BaseService
	vendorRepo portsrepo.VendorRepositoryFacade
}

// NewVendorService creates a new vendor service.
func NewVendorService(vendorRepo portsrepo.VendorRepositoryFacade) portssvc.VendorSvcFacade {
	return &vendorService{vendorRepo: vendorRepo}
}

var _ portssvc.VendorSvcFacade = (*vendorService)(nil)

func (s *vendorService) CreateVendor(ctx context.Context, companyID string, req dto.CreateVendorRequest, userID string) (*domain.Vendor, error) {
	now := time.Now().UTC()
	vendor := domain.Vendor{
		VendorID:  uuid.NewString(),
		CompanyID: companyID,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		IsActive:  true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.vendorRepo.SaveVendor(ctx, vendor); err != nil {
		s.LogError(ctx, err, "Failed to save vendor",
			slog.String("vendor_id", vendor.VendorID))
		return nil, err
	}

	s.LogInfo(ctx, "Vendor created",
		slog.String("vendor_id", vendor.VendorID),
		slog.String("company_id", companyID))
	return &vendor, nil
}

func (s *vendorService) GetVendorByID(ctx context.Context, companyID string, vendorID string) (*domain.Vendor, error) {
	vendor, err := s.vendorRepo.FindVendorByID(ctx, vendorID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find vendor",
				slog.String("vendor_id", vendorID))
		}
		return nil, err
	}
	if vendor.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return vendor, nil
}

func (s *vendorService) ListVendors(ctx context.Context, companyID string, limit int, offset int) ([]domain.Vendor, error) {
	vendors, err := s.vendorRepo.ListVendors(ctx, companyID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list vendors",
			slog.String("company_id", companyID))
		return nil, err
	}
	if vendors == nil {
		return []domain.Vendor{}, nil
	}
	return vendors, nil
}

func (s *vendorService) UpdateVendor(ctx context.Context, companyID string, vendorID string, req dto.UpdateVendorRequest, userID string) (*domain.Vendor, error) {
	vendor, err := s.GetVendorByID(ctx, companyID, vendorID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		vendor.Name = *req.Name
		updated = true
	}
	if req.Phone != nil {
		vendor.Phone = *req.Phone
		updated = true
	}
	if req.Email != nil {
		vendor.Email = *req.Email
		updated = true
	}
	if req.Address != nil {
		vendor.Address = *req.Address
		updated = true
	}
	if !updated {
		return vendor, nil
	}

	now := time.Now().UTC()
	vendor.LastUpdatedAt = now
	vendor.LastUpdatedBy = userID

	if err := s.vendorRepo.UpdateVendor(ctx, *vendor); err != nil {
		s.LogError(ctx, err, "Failed to update vendor",
			slog.String("vendor_id", vendorID))
		return nil, err
	}
	return vendor, nil
}

func (s *vendorService) DeactivateVendor(ctx context.Context, companyID string, vendorID string, userID string) error {
	if _, err := s.GetVendorByID(ctx, companyID, vendorID); err != nil {
		return err
	}
	if err := s.vendorRepo.DeactivateVendor(ctx, vendorID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate vendor",
			slog.String("vendor_id", vendorID))
		return err
	}
	s.LogInfo(ctx, "Vendor deactivated",
		slog.String("vendor_id", vendorID),
		slog.String("company_id", companyID))
	return nil
}

func (s *vendorService) GetVendorBalance(ctx context.Context, companyID string, vendorID string) (*domain.PartyBalance, error) {
	if _, err := s.GetVendorByID(ctx, companyID, vendorID); err != nil {
		return nil, err
	}
	balance, err := s.vendorRepo.VendorBalance(ctx, vendorID)
	if err != nil {
		s.LogError(ctx, err, "Failed to derive vendor balance",
			slog.String("vendor_id", vendorID))
		return nil, err
	}
	return balance, nil
}
