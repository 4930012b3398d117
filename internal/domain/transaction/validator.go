package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount format")
	ErrInvalidDate   = errors.New("invalid date format")
)

const dateOnlyLayout = "2006-01-02"

// CreateInput is a proposed new transaction as received from a caller
type CreateInput struct {
	Type          string
	Amount        string
	Description   *string
	Date          string
	CategoryID    *uuid.UUID
	AccountID     *uuid.UUID
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
}

func (in CreateInput) presentFields() map[string]bool {
	return map[string]bool{
		FieldAccountID:     in.AccountID != nil,
		FieldCategoryID:    in.CategoryID != nil,
		FieldAmount:        strings.TrimSpace(in.Amount) != "",
		FieldDate:          strings.TrimSpace(in.Date) != "",
		FieldFromAccountID: in.FromAccountID != nil,
		FieldToAccountID:   in.ToAccountID != nil,
	}
}

// UpdateInput is a partial patch; nil fields are left untouched
type UpdateInput struct {
	Type        *string
	Amount      *string
	Description *string
	Date        *string
	CategoryID  *uuid.UUID
	AccountID   *uuid.UUID
}

// IsEmpty reports whether the patch changes nothing
func (in UpdateInput) IsEmpty() bool {
	return in.Type == nil && in.Amount == nil && in.Description == nil &&
		in.Date == nil && in.CategoryID == nil && in.AccountID == nil
}

// Result is the outcome of a validation pass
type Result struct {
	Valid   bool
	Message string
}

func valid() Result { return Result{Valid: true} }

func invalid(format string, args ...any) Result {
	return Result{Valid: false, Message: fmt.Sprintf(format, args...)}
}

// Validator checks transaction input before any I/O happens
type Validator struct {
	now func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

func (v *Validator) ValidateCreate(in CreateInput) Result {
	txType, ok := shared.ParseTransactionType(in.Type)
	if !ok {
		return invalidType(in.Type)
	}

	rule := fieldRules[txType]
	present := in.presentFields()
	if missing := rule.missing(present); len(missing) > 0 {
		return invalid("Transaction of type %s requires fields: %s", txType, strings.Join(missing, ", "))
	}
	if extra := rule.disallowed(present); len(extra) > 0 {
		return invalid("Transaction of type %s cannot have fields: %s", txType, strings.Join(extra, ", "))
	}

	if res := v.checkAmount(in.Amount); !res.Valid {
		return res
	}
	if res := v.checkDate(in.Date); !res.Valid {
		return res
	}

	if txType == shared.TransactionTypeTransfer && *in.FromAccountID == *in.ToAccountID {
		return invalid("Source and destination accounts must be different")
	}

	return valid()
}

// ValidateUpdate checks only the fields present in the patch
func (v *Validator) ValidateUpdate(in UpdateInput) Result {
	if in.Type != nil {
		if _, ok := shared.ParseTransactionType(*in.Type); !ok {
			return invalidType(*in.Type)
		}
	}
	if in.Amount != nil {
		if res := v.checkAmount(*in.Amount); !res.Valid {
			return res
		}
	}
	if in.Date != nil {
		if res := v.checkDate(*in.Date); !res.Valid {
			return res
		}
	}
	return valid()
}

func (v *Validator) checkAmount(raw string) Result {
	amount, err := ParseAmount(raw)
	if err != nil {
		return invalid("Invalid amount format")
	}
	if !amount.IsPositive() {
		return invalid("Transaction amount must be greater than zero")
	}
	return valid()
}

func (v *Validator) checkDate(raw string) Result {
	date, err := ParseDate(raw)
	if err != nil {
		return invalid("Invalid date format")
	}
	if date.After(v.now()) {
		return invalid("Transaction date cannot be in the future")
	}
	return valid()
}

func invalidType(value string) Result {
	return invalid("Invalid transaction type: %s. Valid types are %s", value, shared.TransactionTypeNames())
}

// ParseAmount reads a decimal amount from its textual form. Values with more
// fractional digits than storage keeps are rejected rather than rounded.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if !amount.Equal(amount.Truncate(shared.MoneyScale)) {
		return decimal.Zero, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, raw, shared.MoneyScale)
	}
	return amount, nil
}

// ParseDate accepts RFC 3339 timestamps and plain calendar dates (UTC midnight)
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}
