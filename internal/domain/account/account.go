package account

import (
	"errors"
	"strings"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyName             = errors.New("account name cannot be empty")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
	ErrInvalidAccountType    = errors.New("invalid account type")
	ErrInvalidBalanceScale   = errors.New("initial balance cannot have more than 4 decimal places")
)

// Type classifies what kind of money an account holds
type Type string

const (
	TypeChecking    Type = "CHECKING"
	TypeSavings     Type = "SAVINGS"
	TypeCash        Type = "CASH"
	TypeCreditCard  Type = "CREDIT_CARD"
	TypeInvestment  Type = "INVESTMENT"
	TypeLoan        Type = "LOAN"
	TypePayables    Type = "PAYABLES"
	TypeReceivables Type = "RECEIVABLES"
	TypeOther       Type = "OTHER"
)

var validTypes = map[Type]struct{}{
	TypeChecking:    {},
	TypeSavings:     {},
	TypeCash:        {},
	TypeCreditCard:  {},
	TypeInvestment:  {},
	TypeLoan:        {},
	TypePayables:    {},
	TypeReceivables: {},
	TypeOther:       {},
}

// IsValid reports whether the type is one of the known account types
func (t Type) IsValid() bool {
	_, ok := validTypes[t]
	return ok
}

// IsLiability reports whether a positive balance on this account is money owed
func (t Type) IsLiability() bool {
	switch t {
	case TypeCreditCard, TypePayables, TypeLoan:
		return true
	}
	return false
}

// Account represents a user's monetary account. Balance is only ever mutated
// by the transaction posting engine.
type Account struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Name        string          `json:"name"`
	Type        Type            `json:"type"`
	Currency    string          `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
	Description string          `json:"description"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewAccount creates an active account owned by userID
func NewAccount(userID uuid.UUID, name string, accountType Type, currency string, initialBalance decimal.Decimal, description string) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if !accountType.IsValid() {
		return nil, ErrInvalidAccountType
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrencyFormat
	}
	if !initialBalance.Equal(initialBalance.Truncate(shared.MoneyScale)) {
		return nil, ErrInvalidBalanceScale
	}

	now := time.Now().UTC()
	return &Account{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Type:        accountType,
		Currency:    strings.ToUpper(currency),
		Balance:     initialBalance,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
