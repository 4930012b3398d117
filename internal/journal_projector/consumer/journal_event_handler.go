package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/finance-tracker-ledger/internal/journal_projector/service"
	"github.com/finance-tracker-ledger/internal/platform/messaging/producers"
	"github.com/finance-tracker-ledger/internal/platform/metrics"
	"github.com/segmentio/kafka-go"
)

// JournalEventHandler handles journal events consumed from Kafka
type JournalEventHandler struct {
	projectionService service.ProjectionService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewJournalEventHandler creates a new handler; producer may be nil when no DLQ is configured
func NewJournalEventHandler(
	logger *slog.Logger,
	projectionService service.ProjectionService,
	producer producers.DeadLetterPublisher,
) *JournalEventHandler {
	return &JournalEventHandler{
		projectionService: projectionService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage projects one event. Poison messages go to the DLQ and are
// acknowledged; transient failures are returned so the offset is not committed.
func (h *JournalEventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	ctx = shared.WithCorrelationID(ctx, headerValue(msg.Headers, producers.CorrelationHeader))

	var entry journal.Entry
	if err := json.Unmarshal(msg.Value, &entry); err != nil {
		h.logger.ErrorContext(ctx, "Failed to unmarshal journal event from Kafka message",
			"error", err,
			"message_key", string(msg.Key),
			"offset", msg.Offset,
		)
		return h.deadLetter(ctx, msg, "Failed to unmarshal journal event: "+err.Error(), err)
	}

	ctx = shared.WithCorrelationID(ctx, entry.CorrelationID)
	h.logger.InfoContext(ctx, "Received journal event",
		"event_id", entry.EventID.String(),
		"event_type", entry.EventType,
		"account_id", entry.AccountID.String(),
	)

	if err := h.projectionService.Project(ctx, &entry); err != nil {
		var invalid service.ErrInvalidEvent
		if errors.As(err, &invalid) {
			return h.deadLetter(ctx, msg, invalid.Error(), err)
		}
		h.logger.ErrorContext(ctx, "Failed to project journal event",
			"event_id", entry.EventID.String(),
			"error", err,
		)
		return fmt.Errorf("projecting journal event %s failed: %w", entry.EventID, err)
	}

	return nil
}

// deadLetter parks msg on the DLQ. Without a working DLQ the original error is
// returned so the message is retried instead of lost.
func (h *JournalEventHandler) deadLetter(ctx context.Context, msg kafka.Message, reason string, cause error) error {
	if h.producer == nil {
		return fmt.Errorf("unprocessable journal event at offset %d: %w", msg.Offset, cause)
	}

	letter := producers.DeadLetter{
		Key:         string(msg.Key),
		Value:       msg.Value,
		Reason:      reason,
		SourceTopic: msg.Topic,
		Partition:   msg.Partition,
		Offset:      msg.Offset,
	}
	if err := h.producer.PublishToDLQ(ctx, letter); err != nil {
		h.logger.ErrorContext(ctx, "Failed to publish message to DLQ",
			"dlq_error", err,
			"original_error", cause,
			"message_key", string(msg.Key),
		)
		return fmt.Errorf("unprocessable journal event at offset %d: %w", msg.Offset, cause)
	}

	metrics.JournalProjections.WithLabelValues(metrics.OutcomeDeadLetter).Inc()
	h.logger.InfoContext(ctx, "Published unprocessable message to DLQ", "message_key", string(msg.Key), "reason", reason)
	return nil
}

func headerValue(headers []kafka.Header, key string) string {
	for _, header := range headers {
		if header.Key == key {
			return string(header.Value)
		}
	}
	return ""
}
