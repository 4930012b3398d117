package transaction

import (
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Impact is the signed change a posting makes to its account balance.
// ADJUSTMENT is not additive and has no impact of its own.
func Impact(txType shared.TransactionType, direction shared.TransferDirection, amount decimal.Decimal) decimal.Decimal {
	switch txType {
	case shared.TransactionTypeCredit:
		return amount.Neg()
	case shared.TransactionTypeDebit:
		return amount
	case shared.TransactionTypeTransfer:
		if direction == shared.TransferDirectionOutgoing {
			return amount.Neg()
		}
		return amount
	default:
		return decimal.Zero
	}
}

// Apply returns the balance after posting amount onto balance
func Apply(txType shared.TransactionType, direction shared.TransferDirection, amount, balance decimal.Decimal) decimal.Decimal {
	if txType == shared.TransactionTypeAdjustment {
		return amount
	}
	return balance.Add(Impact(txType, direction, amount))
}

// Revert removes a stored transaction's effect from balance. An ADJUSTMENT
// is undone by its effective delta (amount - BalanceBefore) so postings made
// after it are preserved; without a snapshot the balance is left as is.
func Revert(t *Transaction, balance decimal.Decimal) decimal.Decimal {
	if t.Type == shared.TransactionTypeAdjustment {
		if t.BalanceBefore == nil {
			return balance
		}
		return balance.Sub(t.Amount.Sub(*t.BalanceBefore))
	}
	return balance.Sub(Impact(t.Type, t.Direction, t.Amount))
}
