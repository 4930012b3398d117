package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/finance-tracker-ledger/internal/journal_projector/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var knownEventTypes = map[shared.JournalEventType]struct{}{
	shared.JournalEventPosted:  {},
	shared.JournalEventRevised: {},
	shared.JournalEventRemoved: {},
}

type EventValidatorImpl struct {
	journalRepo journal.Repository
	logger      *slog.Logger
}

func NewEventValidator(journalRepo journal.Repository, logger *slog.Logger) service.EventValidator {
	return &EventValidatorImpl{
		journalRepo: journalRepo,
		logger:      logger,
	}
}

// Validate checks that the event identifies its rows and carries parseable amounts
func (v *EventValidatorImpl) Validate(entry *journal.Entry) error {
	invalid := func(reason string) error {
		return service.ErrInvalidEvent{EventID: entry.EventID, Reason: reason}
	}

	if entry.EventID == uuid.Nil {
		return invalid("missing event id")
	}
	if _, ok := knownEventTypes[entry.EventType]; !ok {
		return invalid(fmt.Sprintf("unknown event type %q", entry.EventType))
	}
	if entry.TransactionID == uuid.Nil || entry.AccountID == uuid.Nil || entry.UserID == uuid.Nil {
		return invalid("missing transaction, account or user id")
	}
	if _, ok := shared.ParseTransactionType(string(entry.Type)); !ok {
		return invalid(fmt.Sprintf("unknown transaction type %q", entry.Type))
	}
	if entry.Type == shared.TransactionTypeTransfer && entry.Direction == shared.TransferDirectionNone {
		return invalid("transfer event without direction")
	}

	amounts := []struct {
		field string
		value string
	}{
		{"amount", entry.Amount},
		{"balance_before", entry.BalanceBefore},
		{"balance_after", entry.BalanceAfter},
	}
	for _, a := range amounts {
		if _, err := decimal.NewFromString(a.value); err != nil {
			return invalid(fmt.Sprintf("%s is not a decimal: %q", a.field, a.value))
		}
	}

	return nil
}

// IsProjected reports whether the event id already has a journal entry
func (v *EventValidatorImpl) IsProjected(ctx context.Context, eventID uuid.UUID) (bool, error) {
	existing, err := v.journalRepo.GetByEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, journal.ErrEntryNotFound{}) {
			return false, nil
		}
		v.logger.ErrorContext(ctx, "Failed to check journal for idempotency", "event_id", eventID.String(), "error", err)
		return false, fmt.Errorf("idempotency check failed for event %s: %w", eventID, err)
	}
	return existing != nil, nil
}
