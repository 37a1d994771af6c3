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
	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/core/services"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo  *MockLedgerRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.LedgerSvcFacade
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, suite.mockAccountRepo)
}

func (suite *LedgerServiceTestSuite) activePair(companyID string) (domain.Account, domain.Account) {
	debit := domain.Account{
		AccountID:   "acc-cash",
		CompanyID:   companyID,
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
		IsActive:    true,
	}
	credit := domain.Account{
		AccountID:   "acc-revenue",
		CompanyID:   companyID,
		Code:        "4000",
		Name:        "Sales Revenue",
		AccountType: domain.Income,
		IsActive:    true,
	}
	return debit, credit
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_Success() {
	ctx := context.Background()
	companyID := "company-1"
	debit, credit := suite.activePair(companyID)
	req := dto.CreateTransactionRequest{
		Description:     "Owner capital injection",
		Amount:          decimal.NewFromInt(500),
		TransactionDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DebitAccountID:  debit.AccountID,
		CreditAccountID: credit.AccountID,
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{debit.AccountID, credit.AccountID}).
		Return(map[string]domain.Account{debit.AccountID: debit, credit.AccountID: credit}, nil).Once()
	suite.mockLedgerRepo.On("PostTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.CompanyID == companyID &&
			txn.DebitAccountID == debit.AccountID &&
			txn.CreditAccountID == credit.AccountID &&
			txn.Amount.Equal(req.Amount) &&
			txn.ReversesTransactionID == nil
	})).Return(&domain.Transaction{TransactionID: "txn-1", TransactionNumber: 1}, nil).Once()

	posted, err := suite.service.PostTransaction(ctx, companyID, req, "user-1")

	suite.Require().NoError(err)
	suite.Equal(int64(1), posted.TransactionNumber)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		Amount:          decimal.Zero,
		DebitAccountID:  "acc-cash",
		CreditAccountID: "acc-revenue",
	}

	_, err := suite.service.PostTransaction(ctx, "company-1", req, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "PostTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_SameAccountOnBothSides() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		Amount:          decimal.NewFromInt(10),
		DebitAccountID:  "acc-cash",
		CreditAccountID: "acc-cash",
	}

	_, err := suite.service.PostTransaction(ctx, "company-1", req, "user-1")

	suite.ErrorIs(err, apperrors.ErrUnbalancedPosting)
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_UnknownAccount() {
	ctx := context.Background()
	companyID := "company-1"
	debit, _ := suite.activePair(companyID)
	req := dto.CreateTransactionRequest{
		Amount:          decimal.NewFromInt(10),
		DebitAccountID:  debit.AccountID,
		CreditAccountID: "acc-missing",
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{debit.AccountID, "acc-missing"}).
		Return(map[string]domain.Account{debit.AccountID: debit}, nil).Once()

	_, err := suite.service.PostTransaction(ctx, companyID, req, "user-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "PostTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_CrossCompanyAccountHiddenAsNotFound() {
	ctx := context.Background()
	debit, credit := suite.activePair("company-1")
	credit.CompanyID = "company-2"
	req := dto.CreateTransactionRequest{
		Amount:          decimal.NewFromInt(10),
		DebitAccountID:  debit.AccountID,
		CreditAccountID: credit.AccountID,
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{debit.AccountID, credit.AccountID}).
		Return(map[string]domain.Account{debit.AccountID: debit, credit.AccountID: credit}, nil).Once()

	_, err := suite.service.PostTransaction(ctx, "company-1", req, "user-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestPostTransaction_InactiveAccount() {
	ctx := context.Background()
	companyID := "company-1"
	debit, credit := suite.activePair(companyID)
	credit.IsActive = false
	req := dto.CreateTransactionRequest{
		Amount:          decimal.NewFromInt(10),
		DebitAccountID:  debit.AccountID,
		CreditAccountID: credit.AccountID,
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{debit.AccountID, credit.AccountID}).
		Return(map[string]domain.Account{debit.AccountID: debit, credit.AccountID: credit}, nil).Once()

	_, err := suite.service.PostTransaction(ctx, companyID, req, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestReverseTransaction_MirrorsOriginal() {
	ctx := context.Background()
	companyID := "company-1"
	orig := &domain.Transaction{
		TransactionID:     "txn-1",
		CompanyID:         companyID,
		TransactionNumber: 7,
		Description:       "Sale SALE-1",
		Amount:            decimal.NewFromInt(250),
		DebitAccountID:    "acc-cash",
		CreditAccountID:   "acc-revenue",
	}

	suite.mockLedgerRepo.On("FindTransactionByID", ctx, "txn-1").Return(orig, nil).Once()
	suite.mockLedgerRepo.On("PostTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.DebitAccountID == orig.CreditAccountID &&
			txn.CreditAccountID == orig.DebitAccountID &&
			txn.Amount.Equal(orig.Amount) &&
			txn.ReversesTransactionID != nil && *txn.ReversesTransactionID == orig.TransactionID
	})).Return(&domain.Transaction{TransactionID: "txn-2", TransactionNumber: 8}, nil).Once()

	posted, err := suite.service.ReverseTransaction(ctx, companyID, "txn-1", "user-1")

	suite.Require().NoError(err)
	suite.Equal("txn-2", posted.TransactionID)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestReverseTransaction_OfReversalRejected() {
	ctx := context.Background()
	origID := "txn-1"
	reversal := &domain.Transaction{
		TransactionID:         "txn-2",
		CompanyID:             "company-1",
		Amount:                decimal.NewFromInt(250),
		ReversesTransactionID: &origID,
	}

	suite.mockLedgerRepo.On("FindTransactionByID", ctx, "txn-2").Return(reversal, nil).Once()

	_, err := suite.service.ReverseTransaction(ctx, "company-1", "txn-2", "user-1")

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "PostTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestGetTransactionByID_OtherCompanyHidden() {
	ctx := context.Background()
	txn := &domain.Transaction{TransactionID: "txn-1", CompanyID: "company-2"}

	suite.mockLedgerRepo.On("FindTransactionByID", ctx, "txn-1").Return(txn, nil).Once()

	_, err := suite.service.GetTransactionByID(ctx, "company-1", "txn-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestRecalculateBalances() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("RecalculateBalances", ctx, "company-1").Return(8, nil).Once()

	updated, err := suite.service.RecalculateBalances(ctx, "company-1", "user-1")

	suite.Require().NoError(err)
	suite.Equal(8, updated)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
