package transaction

import (
	"time"

	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingDetails holds the fields every posting variant shares
type PostingDetails struct {
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

func (d PostingDetails) Details() PostingDetails { return d }

// Posting is a validated create request narrowed to exactly one variant
type Posting interface {
	Details() PostingDetails
	TransactionType() shared.TransactionType
	isPosting()
}

// StandardPosting moves money in or out of a single account
type StandardPosting struct {
	PostingDetails
	Type      shared.TransactionType
	AccountID uuid.UUID
}

// TransferPosting moves money between two of the user's accounts
type TransferPosting struct {
	PostingDetails
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
}

// AdjustmentPosting sets an account balance to an absolute value
type AdjustmentPosting struct {
	PostingDetails
	AccountID uuid.UUID
}

func (p StandardPosting) TransactionType() shared.TransactionType { return p.Type }
func (TransferPosting) TransactionType() shared.TransactionType {
	return shared.TransactionTypeTransfer
}
func (AdjustmentPosting) TransactionType() shared.TransactionType {
	return shared.TransactionTypeAdjustment
}

func (StandardPosting) isPosting()   {}
func (TransferPosting) isPosting()   {}
func (AdjustmentPosting) isPosting() {}

// NewPosting narrows a create input to its variant. The input is expected to
// have passed ValidateCreate; anything malformed is still reported as
// ErrValidation rather than trusted.
func NewPosting(in CreateInput) (Posting, error) {
	txType, ok := shared.ParseTransactionType(in.Type)
	if !ok {
		return nil, ErrValidation{Message: invalidType(in.Type).Message}
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, ErrValidation{Message: "Invalid amount format"}
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, ErrValidation{Message: "Invalid date format"}
	}
	if in.CategoryID == nil {
		return nil, ErrValidation{Message: "Transaction of type " + string(txType) + " requires fields: " + FieldCategoryID}
	}

	details := PostingDetails{
		CategoryID: *in.CategoryID,
		Amount:     amount,
		Date:       date,
	}
	if in.Description != nil {
		details.Description = *in.Description
	}

	switch txType {
	case shared.TransactionTypeTransfer:
		if in.FromAccountID == nil || in.ToAccountID == nil {
			return nil, ErrValidation{Message: "Transaction of type TRANSFER requires fields: " + FieldFromAccountID + ", " + FieldToAccountID}
		}
		return TransferPosting{PostingDetails: details, FromAccountID: *in.FromAccountID, ToAccountID: *in.ToAccountID}, nil
	case shared.TransactionTypeAdjustment:
		if in.AccountID == nil {
			return nil, ErrValidation{Message: "Transaction of type ADJUSTMENT requires fields: " + FieldAccountID}
		}
		return AdjustmentPosting{PostingDetails: details, AccountID: *in.AccountID}, nil
	default:
		if in.AccountID == nil {
			return nil, ErrValidation{Message: "Transaction of type " + string(txType) + " requires fields: " + FieldAccountID}
		}
		return StandardPosting{PostingDetails: details, Type: txType, AccountID: *in.AccountID}, nil
	}
}
