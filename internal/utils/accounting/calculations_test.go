package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebooks/tradebooks_backend/internal/core/domain"
	"github.com/tradebooks/tradebooks_backend/internal/utils/accounting"
)

func TestSignedDelta(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	tests := []struct {
		name        string
		accountType domain.AccountType
		isDebit     bool
		want        string
	}{
		{"debit to asset increases", domain.Asset, true, "100"},
		{"credit to asset decreases", domain.Asset, false, "-100"},
		{"debit to expense increases", domain.Expense, true, "100"},
		{"debit to liability decreases", domain.Liability, true, "-100"},
		{"credit to liability increases", domain.Liability, false, "100"},
		{"credit to income increases", domain.Income, false, "100"},
		{"debit to income decreases", domain.Income, true, "-100"},
		{"credit to equity increases", domain.Equity, false, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.SignedDelta(tt.accountType, hundred, tt.isDebit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestSignedDelta_UnknownType(t *testing.T) {
	_, err := accounting.SignedDelta(domain.AccountType("BOGUS"), decimal.NewFromInt(1), true)
	assert.Error(t, err)
}

func TestPostingDeltas_BalancedPair(t *testing.T) {
	txn := domain.Transaction{
		DebitAccountID:  "acc-cash",
		CreditAccountID: "acc-revenue",
		Amount:          decimal.NewFromFloat(42.50),
	}

	debitDelta, creditDelta, err := accounting.PostingDeltas(txn, domain.Asset, domain.Income)
	require.NoError(t, err)

	// Cash (asset) goes up by the amount, revenue (income) goes up by the
	// amount: both deltas are positive in their natural directions.
	assert.Equal(t, "42.5", debitDelta.String())
	assert.Equal(t, "42.5", creditDelta.String())
}

func TestPostingDeltas_AssetToAssetTransfer(t *testing.T) {
	txn := domain.Transaction{
		DebitAccountID:  "acc-bank",
		CreditAccountID: "acc-cash",
		Amount:          decimal.NewFromInt(10),
	}

	debitDelta, creditDelta, err := accounting.PostingDeltas(txn, domain.Asset, domain.Asset)
	require.NoError(t, err)
	assert.Equal(t, "10", debitDelta.String())
	assert.Equal(t, "-10", creditDelta.String())
}
