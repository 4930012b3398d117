package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finance-tracker-ledger/internal/domain/outbox"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/finance-tracker-ledger/internal/platform/messaging/producers"
	"github.com/finance-tracker-ledger/internal/platform/metrics"
)

// errPoisonPayload marks outbox rows whose payload can never be published
var errPoisonPayload = errors.New("outbox payload is not a journal event")

// EventRelay forwards one outbox message to the event topic
type EventRelay interface {
	Relay(ctx context.Context, message *outbox.Message) error
}

// EventRelayImpl implements EventRelay
type EventRelayImpl struct {
	outboxRepo outbox.Repository
	publisher  producers.EventPublisher
	logger     *slog.Logger
}

// NewEventRelay creates a new relay
func NewEventRelay(
	outboxRepo outbox.Repository,
	publisher producers.EventPublisher,
	logger *slog.Logger,
) EventRelay {
	return &EventRelayImpl{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// Relay publishes the message keyed by account id, so each account's events
// stay ordered on one partition, then marks it PROCESSED.
func (r *EventRelayImpl) Relay(ctx context.Context, message *outbox.Message) error {
	entry, err := message.JournalEntry()
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to unmarshal journal event from outbox payload",
			"outbox_id", message.ID, "event_id", message.EventID.String(), "error", err,
		)
		if updateErr := r.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			r.logger.ErrorContext(ctx, "Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		metrics.OutboxPublished.WithLabelValues(metrics.PublishFailed).Inc()
		return fmt.Errorf("%w: outbox %d: %v", errPoisonPayload, message.ID, err)
	}

	ctx = shared.WithCorrelationID(ctx, entry.CorrelationID)

	headers := map[string]string{
		"event-id":   entry.EventID.String(),
		"event-type": string(entry.EventType),
	}
	if entry.CorrelationID != "" {
		headers[producers.CorrelationHeader] = entry.CorrelationID
	}

	if err := r.publisher.Publish(ctx, message.AccountID.String(), message.Payload, headers); err != nil {
		return fmt.Errorf("failed to publish outbox %d: %w", message.ID, err)
	}

	// Mark outbox message as processed
	if err := r.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		r.logger.ErrorContext(ctx, "Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "event_id", message.EventID.String(), "error", err,
		)
		// The event is already on the topic; a republish is absorbed by the projector's idempotency check
		return fmt.Errorf("event %s published, but failed to mark outbox %d as PROCESSED: %w", message.EventID, message.ID, err)
	}

	metrics.OutboxPublished.WithLabelValues(metrics.PublishPublished).Inc()
	r.logger.InfoContext(ctx, "Outbox message published and marked as PROCESSED",
		"outbox_id", message.ID,
		"event_id", message.EventID.String(),
		"transaction_id", message.TransactionID.String(),
	)
	return nil
}
