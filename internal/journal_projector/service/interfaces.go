package service

import (
	"context"

	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/google/uuid"
)

// ProjectionService writes journal events into the activity read model
type ProjectionService interface {
	Project(ctx context.Context, entry *journal.Entry) error
}

// EventValidator checks decoded journal events before they are projected
type EventValidator interface {
	Validate(entry *journal.Entry) error
	IsProjected(ctx context.Context, eventID uuid.UUID) (bool, error)
}

// ErrInvalidEvent marks an event that can never be projected. Consumers should
// dead-letter it rather than retry.
type ErrInvalidEvent struct {
	EventID uuid.UUID
	Reason  string
}

func (e ErrInvalidEvent) Error() string {
	return "invalid journal event " + e.EventID.String() + ": " + e.Reason
}
