package account

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		userID := uuid.New()
		initialBalance := decimal.RequireFromString("1000.00")

		beforeCreation := time.Now()
		acc, err := NewAccount(userID, "  Main checking ", TypeChecking, "usd", initialBalance, "Salary account")
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, acc)

		assert.NotEqual(t, uuid.Nil, acc.ID)
		assert.Equal(t, userID, acc.UserID)
		assert.Equal(t, "Main checking", acc.Name)
		assert.Equal(t, TypeChecking, acc.Type)
		assert.Equal(t, "USD", acc.Currency)
		assert.True(t, initialBalance.Equal(acc.Balance))
		assert.Equal(t, "Salary account", acc.Description)
		assert.True(t, acc.IsActive)
		assert.WithinDuration(t, beforeCreation, acc.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)
		assert.Equal(t, acc.CreatedAt, acc.UpdatedAt)
	})

	t.Run("TrailingZerosBeyondScaleAccepted", func(t *testing.T) {
		acc, err := NewAccount(uuid.New(), "Wallet", TypeCash, "EUR", decimal.RequireFromString("10.500000"), "")
		require.NoError(t, err)
		assert.Equal(t, "10.5", acc.Balance.String())
	})

	tests := []struct {
		name        string
		accName     string
		accountType Type
		currency    string
		balance     string
		wantErr     error
	}{
		{"EmptyName", "   ", TypeCash, "EUR", "0", ErrEmptyName},
		{"InvalidType", "Wallet", Type("PIGGY_BANK"), "EUR", "0", ErrInvalidAccountType},
		{"ShortCurrency", "Wallet", TypeCash, "EU", "0", ErrInvalidCurrencyFormat},
		{"LongCurrency", "Wallet", TypeCash, "EURO", "0", ErrInvalidCurrencyFormat},
		{"BalanceBeyondStoredScale", "Wallet", TypeCash, "EUR", "100.12345", ErrInvalidBalanceScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := NewAccount(uuid.New(), tt.accName, tt.accountType, tt.currency, decimal.RequireFromString(tt.balance), "")
			assert.Nil(t, acc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestType_IsLiability(t *testing.T) {
	liabilities := map[Type]bool{
		TypeChecking:    false,
		TypeSavings:     false,
		TypeCash:        false,
		TypeCreditCard:  true,
		TypeInvestment:  false,
		TypeLoan:        true,
		TypePayables:    true,
		TypeReceivables: false,
		TypeOther:       false,
	}

	for accountType, want := range liabilities {
		t.Run(string(accountType), func(t *testing.T) {
			assert.True(t, accountType.IsValid())
			assert.Equal(t, want, accountType.IsLiability())
		})
	}
}

func TestErrAccountNotFound_Is(t *testing.T) {
	id := uuid.New()
	err := fmt.Errorf("wrapped: %w", ErrAccountNotFound{AccountID: id})

	assert.True(t, errors.Is(err, ErrAccountNotFound{}))
	assert.True(t, errors.Is(err, ErrAccountNotFound{AccountID: id}))
	assert.False(t, errors.Is(err, ErrAccountNotFound{AccountID: uuid.New()}))
	assert.Contains(t, err.Error(), id.String())
}
