package journal

import (
	"time"

	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Entry is one projected balance movement on an account. Amounts travel as
// fixed-point strings so no consumer ever sees a float.
type Entry struct {
	EventID       uuid.UUID                `json:"event_id" bson:"event_id"`
	EventType     shared.JournalEventType  `json:"event_type" bson:"event_type"`
	TransactionID uuid.UUID                `json:"transaction_id" bson:"transaction_id"`
	AccountID     uuid.UUID                `json:"account_id" bson:"account_id"`
	UserID        uuid.UUID                `json:"user_id" bson:"user_id"`
	Type          shared.TransactionType   `json:"type" bson:"type"`
	Direction     shared.TransferDirection `json:"direction,omitempty" bson:"direction,omitempty"`
	Amount        string                   `json:"amount" bson:"amount"`
	BalanceBefore string                   `json:"balance_before" bson:"balance_before"`
	BalanceAfter  string                   `json:"balance_after" bson:"balance_after"`
	Description   string                   `json:"description,omitempty" bson:"description,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at" bson:"occurred_at"`
	CorrelationID string                   `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	ProjectedAt   *time.Time               `json:"projected_at,omitempty" bson:"projected_at,omitempty"`
}
