package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradebooks/tradebooks_backend/internal/apperrors"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	portsrepo "github.com/tradebooks/tradebooks_backend/internal/core/ports/repositories"
	portssvc "github.com/tradebooks/tradebooks_backend/internal/core/ports/services"
	"github.com/tradebooks/tradebooks_backend/internal/dto"
)

// ledgerService is the posting engine: every balanced pair enters the ledger
// through here or through a workflow repository using the same invariants.
type ledgerService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	accountRepo portsrepo.AccountReader
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, accountRepo portsrepo.AccountReader) portssvc.LedgerSvcFacade {
	return &ledgerService{ledgerRepo: ledgerRepo, accountRepo: accountRepo}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// newPosting assembles an unnumbered transaction; the repository assigns the
// per-company transaction number at insert time.
func newPosting(companyID, debitAccountID, creditAccountID string, amount decimal.Decimal, description string, date time.Time, userID string, now time.Time) domain.Transaction {
	return domain.Transaction{
		TransactionID:   uuid.NewString(),
		CompanyID:       companyID,
		Description:     description,
		Amount:          amount,
		TransactionDate: date,
		DebitAccountID:  debitAccountID,
		CreditAccountID: creditAccountID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
}

// mirrorOf builds the equal-and-opposite posting that undoes orig. The
// original's origin links are carried so document history stays connected.
func mirrorOf(orig domain.Transaction, description string, userID string, now time.Time) domain.Transaction {
	rev := newPosting(orig.CompanyID, orig.CreditAccountID, orig.DebitAccountID, orig.Amount, description, now, userID, now)
	rev.SaleID = orig.SaleID
	rev.PurchaseID = orig.PurchaseID
	origID := orig.TransactionID
	rev.ReversesTransactionID = &origID
	return rev
}

// validatePostingPair enforces the double-entry shape shared by every
// posting path.
func (s *ledgerService) validatePostingPair(ctx context.Context, companyID, debitAccountID, creditAccountID string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("posting amount must be positive: %w", apperrors.ErrValidation)
	}
	if debitAccountID == creditAccountID {
		return fmt.Errorf("debit and credit accounts must differ: %w", apperrors.ErrUnbalancedPosting)
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, []string{debitAccountID, creditAccountID})
	if err != nil {
		return err
	}
	for _, id := range []string{debitAccountID, creditAccountID} {
		account, ok := accounts[id]
		if !ok {
			return fmt.Errorf("account %s: %w", id, apperrors.ErrNotFound)
		}
		if account.CompanyID != companyID {
			return fmt.Errorf("account %s: %w", id, apperrors.ErrNotFound)
		}
		if !account.IsActive {
			return fmt.Errorf("account %s is inactive: %w", account.Code, apperrors.ErrValidation)
		}
	}
	return nil
}

func (s *ledgerService) PostTransaction(ctx context.Context, companyID string, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	if err := s.validatePostingPair(ctx, companyID, req.DebitAccountID, req.CreditAccountID, req.Amount); err != nil {
		s.LogError(ctx, err, "Posting rejected",
			slog.String("company_id", companyID),
			slog.String("debit_account_id", req.DebitAccountID),
			slog.String("credit_account_id", req.CreditAccountID))
		return nil, err
	}

	now := time.Now().UTC()
	txn := newPosting(companyID, req.DebitAccountID, req.CreditAccountID, req.Amount, req.Description, req.TransactionDate, userID, now)

	posted, err := s.ledgerRepo.PostTransaction(ctx, txn)
	if err != nil {
		s.LogError(ctx, err, "Failed to post transaction",
			slog.String("transaction_id", txn.TransactionID),
			slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("transaction_id", posted.TransactionID),
		slog.Int64("transaction_number", posted.TransactionNumber),
		slog.String("company_id", companyID))
	return posted, nil
}

func (s *ledgerService) ReverseTransaction(ctx context.Context, companyID string, transactionID string, userID string) (*domain.Transaction, error) {
	orig, err := s.GetTransactionByID(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if orig.IsReversal() {
		return nil, fmt.Errorf("transaction %s is itself a reversal: %w", transactionID, apperrors.ErrConflict)
	}

	now := time.Now().UTC()
	rev := mirrorOf(*orig, fmt.Sprintf("Reversal of #%d: %s", orig.TransactionNumber, orig.Description), userID, now)

	posted, err := s.ledgerRepo.PostTransaction(ctx, rev)
	if err != nil {
		s.LogError(ctx, err, "Failed to post reversal",
			slog.String("reverses_transaction_id", transactionID),
			slog.String("company_id", companyID))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction reversed",
		slog.String("transaction_id", posted.TransactionID),
		slog.String("reverses_transaction_id", transactionID))
	return posted, nil
}

func (s *ledgerService) RecalculateBalances(ctx context.Context, companyID string, userID string) (int, error) {
	updated, err := s.ledgerRepo.RecalculateBalances(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Balance recalculation failed",
			slog.String("company_id", companyID))
		return 0, err
	}

	s.LogInfo(ctx, "Balances recalculated",
		slog.String("company_id", companyID),
		slog.String("user_id", userID),
		slog.Int("accounts_updated", updated))
	return updated, nil
}

func (s *ledgerService) GetTransactionByID(ctx context.Context, companyID string, transactionID string) (*domain.Transaction, error) {
	txn, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction",
				slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	if txn.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return txn, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, companyID string, filter portsrepo.TransactionOriginFilter, limit int, offset int) ([]domain.Transaction, error) {
	txns, err := s.ledgerRepo.ListTransactionsByCompany(ctx, companyID, filter, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions",
			slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list transactions for company %s: %w", companyID, err)
	}
	if txns == nil {
		return []domain.Transaction{}, nil
	}
	return txns, nil
}
