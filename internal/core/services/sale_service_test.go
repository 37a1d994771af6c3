package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/tradebooks/tradebooks_backend/internal/apperrors"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	portsrepo "github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/core/services"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
)

type SaleServiceTestSuite struct {
	suite.Suite
	mockSaleRepo    *MockSaleRepository
	mockLedgerRepo  *MockLedgerRepository
	mockAccountSvc  *MockAccountReaderSvc
	mockProductSvc  *MockProductSvc
	mockCustomerSvc *MockCustomerSvc
	service         portssvc.SaleSvcFacade
}

func (suite *SaleServiceTestSuite) SetupTest() {
	suite.mockSaleRepo = new(MockSaleRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAccountSvc = new(MockAccountReaderSvc)
	suite.mockProductSvc = new(MockProductSvc)
	suite.mockCustomerSvc = new(MockCustomerSvc)
	suite.service = services.NewSaleService(
		suite.mockSaleRepo,
		suite.mockLedgerRepo,
		suite.mockAccountSvc,
		suite.mockProductSvc,
		suite.mockCustomerSvc,
	)
}

const saleTestCompanyID = "company-1"

func (suite *SaleServiceTestSuite) expectSettlementAccounts(debitCode string) (domain.Account, domain.Account) {
	ctx := context.Background()
	settlement := domain.Account{AccountID: "acc-settlement", CompanyID: saleTestCompanyID, Code: debitCode, IsActive: true}
	revenue := domain.Account{AccountID: "acc-revenue", CompanyID: saleTestCompanyID, Code: domain.CodeSalesRevenue, IsActive: true}
	suite.mockAccountSvc.On("GetAccountByCode", ctx, saleTestCompanyID, debitCode).Return(&settlement, nil).Once()
	suite.mockAccountSvc.On("GetAccountByCode", ctx, saleTestCompanyID, domain.CodeSalesRevenue).Return(&revenue, nil).Once()
	return settlement, revenue
}

// completedSale is a one-item sale of 10 units at 20, supplied by two batches.
func completedSale() *domain.Sale {
	return &domain.Sale{
		SaleID:      "sale-1",
		CompanyID:   saleTestCompanyID,
		SaleNumber:  "SALE-100",
		TotalAmount: decimal.NewFromInt(200),
		PaidAmount:  decimal.NewFromInt(200),
		Status:      domain.SaleCompleted,
		PaymentType: domain.PaymentCash,
		Items: []domain.SaleItem{
			{
				SaleItemID: "item-1",
				SaleID:     "sale-1",
				ProductID:  "prod-1",
				Quantity:   10,
				UnitPrice:  decimal.NewFromInt(20),
				TotalPrice: decimal.NewFromInt(200),
				Allocations: []domain.BatchAllocation{
					{BatchID: "batch-1", QuantityTaken: 6},
					{BatchID: "batch-2", QuantityTaken: 4},
				},
			},
		},
	}
}

func salePosting() domain.Transaction {
	saleID := "sale-1"
	return domain.Transaction{
		TransactionID:     "txn-1",
		CompanyID:         saleTestCompanyID,
		TransactionNumber: 5,
		Description:       "Sale SALE-100",
		Amount:            decimal.NewFromInt(200),
		DebitAccountID:    "acc-settlement",
		CreditAccountID:   "acc-revenue",
		SaleID:            &saleID,
	}
}

func (suite *SaleServiceTestSuite) TestCreateSale_CashCollectsImmediately() {
	ctx := context.Background()
	settlement, revenue := suite.expectSettlementAccounts(domain.CodeCash)
	req := dto.CreateSaleRequest{
		Items: []dto.CreateSaleItemRequest{
			{ProductID: "prod-1", Quantity: 3, UnitPrice: decimal.NewFromInt(50)},
		},
		PaymentType: domain.PaymentCash,
	}

	suite.mockProductSvc.On("GetProductByID", ctx, saleTestCompanyID, "prod-1").
		Return(&domain.Product{ProductID: "prod-1", CompanyID: saleTestCompanyID, SKU: "WIDGET"}, nil).Once()
	suite.mockSaleRepo.On("CreateSale", ctx, mock.MatchedBy(func(data portsrepo.SaleCreateData) bool {
		return data.Sale.TotalAmount.Equal(decimal.NewFromInt(150)) &&
			data.Sale.PaidAmount.Equal(decimal.NewFromInt(150)) &&
			data.Sale.Status == domain.SaleCompleted &&
			data.Posting.DebitAccountID == settlement.AccountID &&
			data.Posting.CreditAccountID == revenue.AccountID &&
			data.Posting.Amount.Equal(decimal.NewFromInt(150)) &&
			data.Posting.SaleID != nil &&
			len(data.ExplicitAllocations) == 0
	})).Return(&domain.Sale{SaleID: "sale-1", SaleNumber: "SALE-100"}, nil).Once()

	created, err := suite.service.CreateSale(ctx, saleTestCompanyID, req, "user-1")

	suite.Require().NoError(err)
	suite.Equal("sale-1", created.SaleID)
	suite.mockSaleRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestCreateSale_CODStaysInReceivables() {
	ctx := context.Background()
	suite.expectSettlementAccounts(domain.CodeAccountsReceivable)
	req := dto.CreateSaleRequest{
		Items: []dto.CreateSaleItemRequest{
			{ProductID: "prod-1", Quantity: 2, UnitPrice: decimal.NewFromInt(30)},
		},
		PaymentType: domain.PaymentCOD,
	}

	suite.mockProductSvc.On("GetProductByID", ctx, saleTestCompanyID, "prod-1").
		Return(&domain.Product{ProductID: "prod-1", CompanyID: saleTestCompanyID}, nil).Once()
	suite.mockSaleRepo.On("CreateSale", ctx, mock.MatchedBy(func(data portsrepo.SaleCreateData) bool {
		return data.Sale.PaidAmount.IsZero() &&
			data.Sale.TotalAmount.Equal(decimal.NewFromInt(60))
	})).Return(&domain.Sale{SaleID: "sale-1"}, nil).Once()

	_, err := suite.service.CreateSale(ctx, saleTestCompanyID, req, "user-1")

	suite.Require().NoError(err)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestCreateSale_ExplicitAllocationsForwarded() {
	ctx := context.Background()
	suite.expectSettlementAccounts(domain.CodeCash)
	req := dto.CreateSaleRequest{
		Items: []dto.CreateSaleItemRequest{
			{
				ProductID: "prod-1",
				Quantity:  5,
				UnitPrice: decimal.NewFromInt(10),
				BatchAllocations: []dto.SaleBatchAllocationRequest{
					{BatchID: "batch-2", Quantity: 3},
					{BatchID: "batch-1", Quantity: 2},
				},
			},
		},
		PaymentType: domain.PaymentCash,
	}

	suite.mockProductSvc.On("GetProductByID", ctx, saleTestCompanyID, "prod-1").
		Return(&domain.Product{ProductID: "prod-1", CompanyID: saleTestCompanyID}, nil).Once()
	suite.mockSaleRepo.On("CreateSale", ctx, mock.MatchedBy(func(data portsrepo.SaleCreateData) bool {
		allocs, ok := data.ExplicitAllocations[0]
		return ok && len(allocs) == 2 &&
			allocs[0].BatchID == "batch-2" && allocs[0].QuantityTaken == 3 &&
			allocs[1].BatchID == "batch-1" && allocs[1].QuantityTaken == 2
	})).Return(&domain.Sale{SaleID: "sale-1"}, nil).Once()

	_, err := suite.service.CreateSale(ctx, saleTestCompanyID, req, "user-1")

	suite.Require().NoError(err)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestCreateSale_ExplicitAllocationSumMismatch() {
	ctx := context.Background()
	req := dto.CreateSaleRequest{
		Items: []dto.CreateSaleItemRequest{
			{
				ProductID: "prod-1",
				Quantity:  5,
				UnitPrice: decimal.NewFromInt(10),
				BatchAllocations: []dto.SaleBatchAllocationRequest{
					{BatchID: "batch-1", Quantity: 2},
					{BatchID: "batch-2", Quantity: 1},
				},
			},
		},
		PaymentType: domain.PaymentCash,
	}

	suite.mockProductSvc.On("GetProductByID", ctx, saleTestCompanyID, "prod-1").
		Return(&domain.Product{ProductID: "prod-1", CompanyID: saleTestCompanyID}, nil).Once()

	_, err := suite.service.CreateSale(ctx, saleTestCompanyID, req, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "CreateSale", mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestCreateSale_InsufficientStock() {
	ctx := context.Background()
	suite.expectSettlementAccounts(domain.CodeCash)
	req := dto.CreateSaleRequest{
		Items: []dto.CreateSaleItemRequest{
			{ProductID: "prod-1", Quantity: 100, UnitPrice: decimal.NewFromInt(10)},
		},
		PaymentType: domain.PaymentCash,
	}

	suite.mockProductSvc.On("GetProductByID", ctx, saleTestCompanyID, "prod-1").
		Return(&domain.Product{ProductID: "prod-1", CompanyID: saleTestCompanyID}, nil).Once()
	suite.mockSaleRepo.On("CreateSale", ctx, mock.AnythingOfType("repositories.SaleCreateData")).
		Return(nil, apperrors.ErrInsufficientStock).Once()

	_, err := suite.service.CreateSale(ctx, saleTestCompanyID, req, "user-1")

	suite.ErrorIs(err, apperrors.ErrInsufficientStock)
}

func (suite *SaleServiceTestSuite) TestCreateSale_UnknownCustomer() {
	ctx := context.Background()
	customerID := "cust-missing"
	req := dto.CreateSaleRequest{
		CustomerID:  &customerID,
		Items:       []dto.CreateSaleItemRequest{{ProductID: "prod-1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
		PaymentType: domain.PaymentCash,
	}

	suite.mockCustomerSvc.On("GetCustomerByID", ctx, saleTestCompanyID, customerID).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateSale(ctx, saleTestCompanyID, req, "user-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "CreateSale", mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestReturnSale_FullReturnReversesOriginalPosting() {
	ctx := context.Background()
	sale := completedSale()
	orig := salePosting()
	returned := completedSale()
	returned.Status = domain.SaleReturned

	suite.mockSaleRepo.On("FindSaleByID", ctx, "sale-1").Return(sale, nil).Once()
	suite.mockLedgerRepo.On("FindTransactionsByOrigin", ctx, mock.MatchedBy(func(f portsrepo.TransactionOriginFilter) bool {
		return f.SaleID != nil && *f.SaleID == "sale-1"
	})).Return([]domain.Transaction{orig}, nil).Once()
	suite.mockSaleRepo.On("ReturnSale", ctx, mock.MatchedBy(func(data portsrepo.SaleReturnData) bool {
		if data.NewStatus != domain.SaleReturned || len(data.Items) != 1 {
			return false
		}
		item := data.Items[0]
		return item.SaleItemID == "item-1" && item.Quantity == 10 &&
			len(item.Releases) == 2 &&
			item.Releases[0].BatchID == "batch-1" && item.Releases[0].Quantity == 6 &&
			item.Releases[1].BatchID == "batch-2" && item.Releases[1].Quantity == 4 &&
			data.Posting.DebitAccountID == orig.CreditAccountID &&
			data.Posting.CreditAccountID == orig.DebitAccountID &&
			data.Posting.Amount.Equal(orig.Amount) &&
			data.Posting.ReversesTransactionID != nil && *data.Posting.ReversesTransactionID == orig.TransactionID
	})).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, "sale-1").Return(returned, nil).Once()

	result, err := suite.service.ReturnSale(ctx, saleTestCompanyID, "sale-1", dto.ReturnSaleRequest{}, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.SaleReturned, result.Status)
	suite.mockSaleRepo.AssertExpectations(suite.T())
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestReturnSale_PartialReturnWalksAllocationsInOrder() {
	ctx := context.Background()
	sale := completedSale()
	orig := salePosting()
	updated := completedSale()
	updated.Status = domain.SalePartialReturn
	updated.Items[0].ReturnedQuantity = 8

	suite.mockSaleRepo.On("FindSaleByID", ctx, "sale-1").Return(sale, nil).Once()
	suite.mockLedgerRepo.On("FindTransactionsByOrigin", ctx, mock.AnythingOfType("repositories.TransactionOriginFilter")).
		Return([]domain.Transaction{orig}, nil).Once()
	suite.mockSaleRepo.On("ReturnSale", ctx, mock.MatchedBy(func(data portsrepo.SaleReturnData) bool {
		if data.NewStatus != domain.SalePartialReturn || len(data.Items) != 1 {
			return false
		}
		item := data.Items[0]
		// 8 of 10 back: the first batch's 6 first, then 2 from the second.
		return item.Quantity == 8 &&
			len(item.Releases) == 2 &&
			item.Releases[0].BatchID == "batch-1" && item.Releases[0].Quantity == 6 &&
			item.Releases[1].BatchID == "batch-2" && item.Releases[1].Quantity == 2 &&
			data.Posting.Amount.Equal(decimal.NewFromInt(160)) &&
			data.Posting.DebitAccountID == orig.CreditAccountID &&
			data.Posting.CreditAccountID == orig.DebitAccountID &&
			data.Posting.ReversesTransactionID == nil
	})).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, "sale-1").Return(updated, nil).Once()

	req := dto.ReturnSaleRequest{Items: []dto.ReturnSaleItemRequest{{SaleItemID: "item-1", Quantity: 8}}}
	result, err := suite.service.ReturnSale(ctx, saleTestCompanyID, "sale-1", req, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.SalePartialReturn, result.Status)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestReturnSale_PartialReturnOfEverythingClosesSale() {
	ctx := context.Background()
	sale := completedSale()
	orig := salePosting()
	updated := completedSale()
	updated.Status = domain.SaleReturned

	suite.mockSaleRepo.On("FindSaleByID", ctx, "sale-1").Return(sale, nil).Once()
	suite.mockLedgerRepo.On("FindTransactionsByOrigin", ctx, mock.AnythingOfType("repositories.TransactionOriginFilter")).
		Return([]domain.Transaction{orig}, nil).Once()
	suite.mockSaleRepo.On("ReturnSale", ctx, mock.MatchedBy(func(data portsrepo.SaleReturnData) bool {
		return data.NewStatus == domain.SaleReturned &&
			data.Posting.Amount.Equal(decimal.NewFromInt(200))
	})).Return(nil).Once()
	suite.mockSaleRepo.On("FindSaleByID", ctx, "sale-1").Return(updated, nil).Once()

	req := dto.ReturnSaleRequest{Items: []dto.ReturnSaleItemRequest{{SaleItemID: "item-1", Quantity: 10}}}
	_, err := suite.service.ReturnSale(ctx, saleTestCompanyID, "sale-1", req, "user-1")

	suite.Require().NoError(err)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestReturnSale_OverReturnRejected() {
	ctx := context.Background()
	sale := completedSale()
	sale.Items[0].ReturnedQuantity = 7
	sale.Items[0].Allocations[0].QuantityReturned = 6
	sale.Items[0].Allocations[1].QuantityReturned = 1
	sale.Status = domain.SalePartialReturn

	suite.mockSaleRepo.On("FindSaleByID", ctx, "sale-1").Return(sale, nil).Once()

	req := dto.ReturnSaleRequest{Items: []dto.ReturnSaleItemRequest{{SaleItemID: "item-1", Quantity: 4}}}
	_, err := suite.service.ReturnSale(ctx, saleTestCompanyID, "sale-1", req, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "ReturnSale", mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestReturnSale_ReturnedSaleRejected() {
	ctx := context.Background()
	sale := completedSale()
	sale.Status = domain.SaleReturned

	suite.mockSaleRepo.On("FindSaleByID", ctx, "sale-1").Return(sale, nil).Once()

	_, err := suite.service.ReturnSale(ctx, saleTestCompanyID, "sale-1", dto.ReturnSaleRequest{}, "user-1")

	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *SaleServiceTestSuite) TestDeleteSale_SkipsExistingReversals() {
	ctx := context.Background()
	sale := completedSale()
	orig := salePosting()
	origID := orig.TransactionID
	existingReversal := domain.Transaction{
		TransactionID:         "txn-2",
		CompanyID:             saleTestCompanyID,
		Amount:                orig.Amount,
		ReversesTransactionID: &origID,
	}

	suite.mockSaleRepo.On("FindSaleByID", ctx, "sale-1").Return(sale, nil).Once()
	suite.mockLedgerRepo.On("FindTransactionsByOrigin", ctx, mock.AnythingOfType("repositories.TransactionOriginFilter")).
		Return([]domain.Transaction{orig, existingReversal}, nil).Once()
	suite.mockSaleRepo.On("DeleteSale", ctx, "sale-1", mock.MatchedBy(func(reversals []domain.Transaction) bool {
		return len(reversals) == 1 &&
			reversals[0].DebitAccountID == orig.CreditAccountID &&
			reversals[0].CreditAccountID == orig.DebitAccountID &&
			reversals[0].ReversesTransactionID != nil && *reversals[0].ReversesTransactionID == orig.TransactionID
	})).Return(nil).Once()

	err := suite.service.DeleteSale(ctx, saleTestCompanyID, "sale-1", "user-1")

	suite.Require().NoError(err)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestGetSaleByID_OtherCompanyHidden() {
	ctx := context.Background()
	sale := completedSale()
	sale.CompanyID = "company-2"

	suite.mockSaleRepo.On("FindSaleByID", ctx, "sale-1").Return(sale, nil).Once()

	_, err := suite.service.GetSaleByID(ctx, saleTestCompanyID, "sale-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestSaleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SaleServiceTestSuite))
}
