package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
)

// SignedDelta applies the accounting sign convention to an amount hitting an
// account. Used by both the posting engine and the reconciliation replay so
// the two can never disagree.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/INCOME -> Negative (-)
// CREDIT to LIABILITY/EQUITY/INCOME -> Positive (+)
func SignedDelta(accountType domain.AccountType, amount decimal.Decimal, isDebit bool) (decimal.Decimal, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			return amount.Neg(), nil
		}
		return amount, nil
	case domain.Liability, domain.Equity, domain.Income:
		if isDebit {
			return amount.Neg(), nil
		}
		return amount, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
}

// PostingDeltas returns the balance change a transaction applies to its debit
// and credit accounts, given their types.
func PostingDeltas(txn domain.Transaction, debitType, creditType domain.AccountType) (debitDelta, creditDelta decimal.Decimal, err error) {
	debitDelta, err = SignedDelta(debitType, txn.Amount, true)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("debit account %s: %w", txn.DebitAccountID, err)
	}
	creditDelta, err = SignedDelta(creditType, txn.Amount, false)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("credit account %s: %w", txn.CreditAccountID, err)
	}
	return debitDelta, creditDelta, nil
}
