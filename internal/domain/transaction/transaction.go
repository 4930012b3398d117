package transaction

import (
	"strings"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one ledger row. Amount is always positive; the direction of
// money is carried by Type and, for transfer legs, Direction.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	CategoryID  uuid.UUID
	Type        shared.TransactionType
	Amount      decimal.Decimal
	Description string
	Date        time.Time

	// BalanceBefore is the account balance an ADJUSTMENT replaced
	BalanceBefore *decimal.Decimal

	Direction shared.TransferDirection
	PeerID    *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time

	Account  *AccountSummary
	Category *CategorySummary
}

// AccountSummary is the account projection returned alongside a transaction
type AccountSummary struct {
	ID       uuid.UUID
	Name     string
	Type     string
	Currency string
	Balance  decimal.Decimal
}

// CategorySummary is the category projection returned alongside a transaction
type CategorySummary struct {
	ID    uuid.UUID
	Name  string
	Icon  string
	Color string
}

// IsTransferLeg reports whether the row is one side of a transfer pair
func (t *Transaction) IsTransferLeg() bool {
	return t.Type == shared.TransactionTypeTransfer && t.PeerID != nil
}

// New builds an unsaved row for accountID from validated posting details
func New(userID, accountID uuid.UUID, txType shared.TransactionType, details PostingDetails, now time.Time) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		AccountID:   accountID,
		CategoryID:  details.CategoryID,
		Type:        txType,
		Amount:      details.Amount,
		Description: details.Description,
		Date:        details.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TransferDescriptions returns the mirrored outgoing and incoming leg descriptions
func TransferDescriptions(fromName, toName, description string) (outgoing, incoming string) {
	outgoing = "Transfer to " + toName
	incoming = "Transfer from " + fromName
	if description != "" {
		outgoing += ": " + description
		incoming += ": " + description
	}
	return outgoing, incoming
}

// TransferNote recovers the caller's note from a generated leg description,
// where counterpart names the account on the other side of the transfer.
// ok is false once the description no longer has the generated form.
func TransferNote(description string, direction shared.TransferDirection, counterpart string) (note string, ok bool) {
	prefix := "Transfer from " + counterpart
	if direction == shared.TransferDirectionOutgoing {
		prefix = "Transfer to " + counterpart
	}
	rest, found := strings.CutPrefix(description, prefix)
	switch {
	case !found:
		return "", false
	case rest == "":
		return "", true
	case strings.HasPrefix(rest, ": "):
		return rest[2:], true
	}
	return "", false
}
