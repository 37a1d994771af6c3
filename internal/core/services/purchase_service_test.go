package services_test

import (
	"context"
	"testing"
	"time"

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

type PurchaseServiceTestSuite struct {
	suite.Suite
	mockPurchaseRepo *MockPurchaseRepository
	mockBatchRepo    *MockBatchReader
	mockLedgerRepo   *MockLedgerRepository
	mockAccountSvc   *MockAccountReaderSvc
	mockProductSvc   *MockProductSvc
	mockVendorSvc    *MockVendorSvc
	service          portssvc.PurchaseSvcFacade
}

func (suite *PurchaseServiceTestSuite) SetupTest() {
	suite.mockPurchaseRepo = new(MockPurchaseRepository)
	suite.mockBatchRepo = new(MockBatchReader)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAccountSvc = new(MockAccountReaderSvc)
	suite.mockProductSvc = new(MockProductSvc)
	suite.mockVendorSvc = new(MockVendorSvc)
	suite.service = services.NewPurchaseService(
		suite.mockPurchaseRepo,
		suite.mockBatchRepo,
		suite.mockLedgerRepo,
		suite.mockAccountSvc,
		suite.mockProductSvc,
		suite.mockVendorSvc,
	)
}

const purchaseTestCompanyID = "company-1"

func (suite *PurchaseServiceTestSuite) expectVendor() *domain.Vendor {
	vendor := &domain.Vendor{VendorID: "vendor-1", CompanyID: purchaseTestCompanyID, Name: "Acme Supplies", IsActive: true}
	suite.mockVendorSvc.On("GetVendorByID", context.Background(), purchaseTestCompanyID, "vendor-1").
		Return(vendor, nil).Once()
	return vendor
}

func (suite *PurchaseServiceTestSuite) expectPurchaseAccounts(creditCode string) (domain.Account, domain.Account) {
	ctx := context.Background()
	inventory := domain.Account{AccountID: "acc-inventory", CompanyID: purchaseTestCompanyID, Code: domain.CodeInventory, IsActive: true}
	credit := domain.Account{AccountID: "acc-credit", CompanyID: purchaseTestCompanyID, Code: creditCode, IsActive: true}
	suite.mockAccountSvc.On("GetAccountByCode", ctx, purchaseTestCompanyID, domain.CodeInventory).Return(&inventory, nil).Once()
	suite.mockAccountSvc.On("GetAccountByCode", ctx, purchaseTestCompanyID, creditCode).Return(&credit, nil).Once()
	return inventory, credit
}

func creditPurchase() *domain.Purchase {
	return &domain.Purchase{
		PurchaseID:     "purchase-1",
		CompanyID:      purchaseTestCompanyID,
		PurchaseNumber: "PUR-100",
		VendorID:       "vendor-1",
		TotalAmount:    decimal.NewFromInt(100),
		PaidAmount:     decimal.NewFromInt(40),
		Status:         domain.PurchaseCompleted,
		PaymentType:    domain.PaymentCredit,
		Items: []domain.PurchaseItem{
			{
				PurchaseItemID: "pitem-1",
				PurchaseID:     "purchase-1",
				ProductID:      "prod-1",
				BatchID:        "batch-1",
				Quantity:       10,
				UnitPrice:      decimal.NewFromInt(10),
				TotalPrice:     decimal.NewFromInt(100),
			},
		},
	}
}

func (suite *PurchaseServiceTestSuite) TestCreatePurchase_OneBatchPerItem() {
	ctx := context.Background()
	suite.expectVendor()
	inventory, payable := suite.expectPurchaseAccounts(domain.CodeAccountsPayable)
	req := dto.CreatePurchaseRequest{
		VendorID: "vendor-1",
		Items: []dto.CreatePurchaseItemRequest{
			{ProductID: "prod-1", Quantity: 10, UnitPrice: decimal.NewFromInt(5), BatchNumber: "LOT-A"},
			{ProductID: "prod-2", Quantity: 4, UnitPrice: decimal.NewFromInt(25)},
		},
		PaymentType: domain.PaymentCredit,
	}

	suite.mockProductSvc.On("GetProductByID", ctx, purchaseTestCompanyID, "prod-1").
		Return(&domain.Product{ProductID: "prod-1", CompanyID: purchaseTestCompanyID, SKU: "WIDGET"}, nil).Once()
	suite.mockProductSvc.On("GetProductByID", ctx, purchaseTestCompanyID, "prod-2").
		Return(&domain.Product{ProductID: "prod-2", CompanyID: purchaseTestCompanyID, SKU: "GADGET"}, nil).Once()
	suite.mockPurchaseRepo.On("CreatePurchase", ctx, mock.MatchedBy(func(data portsrepo.PurchaseCreateData) bool {
		if len(data.Items) != 2 || len(data.Batches) != 2 {
			return false
		}
		for i, batch := range data.Batches {
			if batch.AvailableQuantity != batch.Quantity ||
				batch.PurchaseID == nil ||
				batch.BatchID != data.Items[i].BatchID {
				return false
			}
		}
		return data.Batches[0].BatchNumber == "LOT-A" &&
			data.Batches[1].BatchNumber != "" &&
			data.Purchase.TotalAmount.Equal(decimal.NewFromInt(150)) &&
			data.Purchase.PaidAmount.IsZero() &&
			data.Posting.DebitAccountID == inventory.AccountID &&
			data.Posting.CreditAccountID == payable.AccountID &&
			data.Posting.Amount.Equal(decimal.NewFromInt(150)) &&
			data.Posting.PurchaseID != nil
	})).Return(&domain.Purchase{PurchaseID: "purchase-1", PurchaseNumber: "PUR-100"}, nil).Once()

	created, err := suite.service.CreatePurchase(ctx, purchaseTestCompanyID, req, "user-1")

	suite.Require().NoError(err)
	suite.Equal("purchase-1", created.PurchaseID)
	suite.mockPurchaseRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *PurchaseServiceTestSuite) TestCreatePurchase_CashSettlesImmediately() {
	ctx := context.Background()
	suite.expectVendor()
	suite.expectPurchaseAccounts(domain.CodeCash)
	req := dto.CreatePurchaseRequest{
		VendorID: "vendor-1",
		Items: []dto.CreatePurchaseItemRequest{
			{ProductID: "prod-1", Quantity: 3, UnitPrice: decimal.NewFromInt(20)},
		},
		PaymentType: domain.PaymentCash,
	}

	suite.mockProductSvc.On("GetProductByID", ctx, purchaseTestCompanyID, "prod-1").
		Return(&domain.Product{ProductID: "prod-1", CompanyID: purchaseTestCompanyID, SKU: "WIDGET"}, nil).Once()
	suite.mockPurchaseRepo.On("CreatePurchase", ctx, mock.MatchedBy(func(data portsrepo.PurchaseCreateData) bool {
		return data.Purchase.PaidAmount.Equal(decimal.NewFromInt(60)) &&
			data.Purchase.TotalAmount.Equal(decimal.NewFromInt(60))
	})).Return(&domain.Purchase{PurchaseID: "purchase-1"}, nil).Once()

	_, err := suite.service.CreatePurchase(ctx, purchaseTestCompanyID, req, "user-1")

	suite.Require().NoError(err)
	suite.mockPurchaseRepo.AssertExpectations(suite.T())
}

func (suite *PurchaseServiceTestSuite) TestCreatePurchase_DuplicateBatchNumberInRequest() {
	ctx := context.Background()
	suite.expectVendor()
	req := dto.CreatePurchaseRequest{
		VendorID: "vendor-1",
		Items: []dto.CreatePurchaseItemRequest{
			{ProductID: "prod-1", Quantity: 10, UnitPrice: decimal.NewFromInt(5), BatchNumber: "LOT-A"},
			{ProductID: "prod-1", Quantity: 5, UnitPrice: decimal.NewFromInt(5), BatchNumber: "LOT-A"},
		},
		PaymentType: domain.PaymentCredit,
	}

	suite.mockProductSvc.On("GetProductByID", ctx, purchaseTestCompanyID, "prod-1").
		Return(&domain.Product{ProductID: "prod-1", CompanyID: purchaseTestCompanyID, SKU: "WIDGET"}, nil).Twice()

	_, err := suite.service.CreatePurchase(ctx, purchaseTestCompanyID, req, "user-1")

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockPurchaseRepo.AssertNotCalled(suite.T(), "CreatePurchase", mock.Anything, mock.Anything)
}

func (suite *PurchaseServiceTestSuite) TestAddPayment_Success() {
	ctx := context.Background()
	purchase := creditPurchase()
	payable := domain.Account{AccountID: "acc-payable", CompanyID: purchaseTestCompanyID, Code: domain.CodeAccountsPayable, IsActive: true}
	bank := domain.Account{AccountID: "acc-bank", CompanyID: purchaseTestCompanyID, Code: domain.CodeBank, IsActive: true}
	req := dto.AddPurchasePaymentRequest{
		Amount:      decimal.NewFromInt(60),
		PaymentDate: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		PaymentType: domain.PaymentBank,
	}

	suite.mockPurchaseRepo.On("FindPurchaseByID", ctx, "purchase-1").Return(purchase, nil).Once()
	suite.mockAccountSvc.On("GetAccountByCode", ctx, purchaseTestCompanyID, domain.CodeAccountsPayable).Return(&payable, nil).Once()
	suite.mockAccountSvc.On("GetAccountByCode", ctx, purchaseTestCompanyID, domain.CodeBank).Return(&bank, nil).Once()
	suite.mockPurchaseRepo.On("AddPayment", ctx,
		mock.MatchedBy(func(payment domain.PurchasePayment) bool {
			return payment.PurchaseID == "purchase-1" && payment.Amount.Equal(req.Amount)
		}),
		mock.MatchedBy(func(posting domain.Transaction) bool {
			return posting.DebitAccountID == payable.AccountID &&
				posting.CreditAccountID == bank.AccountID &&
				posting.Amount.Equal(req.Amount) &&
				posting.PurchaseID != nil
		}),
	).Return(&domain.PurchasePayment{PaymentID: "pay-1", Amount: req.Amount}, nil).Once()

	saved, err := suite.service.AddPayment(ctx, purchaseTestCompanyID, "purchase-1", req, "user-1")

	suite.Require().NoError(err)
	suite.Equal("pay-1", saved.PaymentID)
	suite.mockPurchaseRepo.AssertExpectations(suite.T())
}

func (suite *PurchaseServiceTestSuite) TestAddPayment_ExceedsRemainingBalance() {
	ctx := context.Background()
	purchase := creditPurchase() // 60 outstanding
	req := dto.AddPurchasePaymentRequest{
		Amount:      decimal.NewFromInt(75),
		PaymentDate: time.Now().UTC(),
		PaymentType: domain.PaymentCash,
	}

	suite.mockPurchaseRepo.On("FindPurchaseByID", ctx, "purchase-1").Return(purchase, nil).Once()

	_, err := suite.service.AddPayment(ctx, purchaseTestCompanyID, "purchase-1", req, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPurchaseRepo.AssertNotCalled(suite.T(), "AddPayment", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PurchaseServiceTestSuite) TestAddPayment_CreditTypeRejected() {
	ctx := context.Background()
	purchase := creditPurchase()
	req := dto.AddPurchasePaymentRequest{
		Amount:      decimal.NewFromInt(10),
		PaymentDate: time.Now().UTC(),
		PaymentType: domain.PaymentCredit,
	}

	suite.mockPurchaseRepo.On("FindPurchaseByID", ctx, "purchase-1").Return(purchase, nil).Once()

	_, err := suite.service.AddPayment(ctx, purchaseTestCompanyID, "purchase-1", req, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PurchaseServiceTestSuite) TestDeletePurchase_ReversesPostings() {
	ctx := context.Background()
	purchase := creditPurchase()
	purchaseID := purchase.PurchaseID
	orig := domain.Transaction{
		TransactionID:     "txn-1",
		CompanyID:         purchaseTestCompanyID,
		TransactionNumber: 3,
		Amount:            decimal.NewFromInt(100),
		DebitAccountID:    "acc-inventory",
		CreditAccountID:   "acc-payable",
		PurchaseID:        &purchaseID,
	}

	suite.mockPurchaseRepo.On("FindPurchaseByID", ctx, "purchase-1").Return(purchase, nil).Once()
	suite.mockBatchRepo.On("FindBatchByID", ctx, "batch-1").
		Return(&domain.Batch{BatchID: "batch-1", Quantity: 10, AvailableQuantity: 10}, nil).Once()
	suite.mockLedgerRepo.On("FindTransactionsByOrigin", ctx, mock.MatchedBy(func(f portsrepo.TransactionOriginFilter) bool {
		return f.PurchaseID != nil && *f.PurchaseID == "purchase-1"
	})).Return([]domain.Transaction{orig}, nil).Once()
	suite.mockPurchaseRepo.On("DeletePurchase", ctx, "purchase-1", mock.MatchedBy(func(reversals []domain.Transaction) bool {
		return len(reversals) == 1 &&
			reversals[0].DebitAccountID == orig.CreditAccountID &&
			reversals[0].CreditAccountID == orig.DebitAccountID &&
			reversals[0].Amount.Equal(orig.Amount) &&
			reversals[0].ReversesTransactionID != nil && *reversals[0].ReversesTransactionID == orig.TransactionID
	})).Return(nil).Once()

	err := suite.service.DeletePurchase(ctx, purchaseTestCompanyID, "purchase-1", "user-1")

	suite.Require().NoError(err)
	suite.mockPurchaseRepo.AssertExpectations(suite.T())
	suite.mockBatchRepo.AssertExpectations(suite.T())
}

func (suite *PurchaseServiceTestSuite) TestDeletePurchase_ConsumedBatchRejected() {
	ctx := context.Background()
	purchase := creditPurchase()

	suite.mockPurchaseRepo.On("FindPurchaseByID", ctx, "purchase-1").Return(purchase, nil).Once()
	suite.mockBatchRepo.On("FindBatchByID", ctx, "batch-1").
		Return(&domain.Batch{BatchID: "batch-1", BatchNumber: "LOT-A", Quantity: 10, AvailableQuantity: 7}, nil).Once()

	err := suite.service.DeletePurchase(ctx, purchaseTestCompanyID, "purchase-1", "user-1")

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockPurchaseRepo.AssertNotCalled(suite.T(), "DeletePurchase", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PurchaseServiceTestSuite) TestGetPurchaseByID_OtherCompanyHidden() {
	ctx := context.Background()
	purchase := creditPurchase()
	purchase.CompanyID = "company-2"

	suite.mockPurchaseRepo.On("FindPurchaseByID", ctx, "purchase-1").Return(purchase, nil).Once()

	_, err := suite.service.GetPurchaseByID(ctx, purchaseTestCompanyID, "purchase-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestPurchaseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseServiceTestSuite))
}
