package transaction

import "github.com/finance-tracker-ledger/internal/domain/shared"

// Field names as they appear on the wire
const (
	FieldAccountID     = "accountId"
	FieldCategoryID    = "categoryId"
	FieldAmount        = "amount"
	FieldDate          = "date"
	FieldFromAccountID = "fromAccountId"
	FieldToAccountID   = "toAccountId"
)

type fieldRule struct {
	required  []string
	forbidden []string
}

// fieldRules is the single table of which fields each transaction type needs
var fieldRules = map[shared.TransactionType]fieldRule{
	shared.TransactionTypeCredit: {
		required:  []string{FieldAccountID, FieldCategoryID, FieldAmount, FieldDate},
		forbidden: []string{FieldFromAccountID, FieldToAccountID},
	},
	shared.TransactionTypeDebit: {
		required:  []string{FieldAccountID, FieldCategoryID, FieldAmount, FieldDate},
		forbidden: []string{FieldFromAccountID, FieldToAccountID},
	},
	shared.TransactionTypeTransfer: {
		required: []string{FieldAmount, FieldFromAccountID, FieldToAccountID, FieldCategoryID, FieldDate},
	},
	shared.TransactionTypeAdjustment: {
		required:  []string{FieldAccountID, FieldAmount, FieldCategoryID, FieldDate},
		forbidden: []string{FieldFromAccountID, FieldToAccountID},
	},
}

func (r fieldRule) missing(present map[string]bool) []string {
	var out []string
	for _, f := range r.required {
		if !present[f] {
			out = append(out, f)
		}
	}
	return out
}

func (r fieldRule) disallowed(present map[string]bool) []string {
	var out []string
	for _, f := range r.forbidden {
		if present[f] {
			out = append(out, f)
		}
	}
	return out
}
