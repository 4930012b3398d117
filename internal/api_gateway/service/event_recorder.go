package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/domain/outbox"
	"github.com/jackc/pgx/v5"
)

type OutboxEventRecorder struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxEventRecorder(logger *slog.Logger, outboxRepo outbox.Repository) EventRecorder {
	return &OutboxEventRecorder{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Record writes one outbox row per entry; any failure aborts the surrounding transaction
func (r *OutboxEventRecorder) Record(ctx context.Context, tx pgx.Tx, entries []*journal.Entry) error {
	outboxRepoTx := r.outboxRepo.WithTx(tx)

	for _, entry := range entries {
		message, err := outbox.NewMessage(entry)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to encode journal event",
				"event_id", entry.EventID.String(),
				"error", err,
			)
			return fmt.Errorf("failed to encode journal event %s: %w", entry.EventID.String(), err)
		}

		if err := outboxRepoTx.Create(ctx, message); err != nil {
			r.logger.ErrorContext(ctx, "Failed to create outbox message",
				"event_id", entry.EventID.String(),
				"transaction_id", entry.TransactionID.String(),
				"account_id", entry.AccountID.String(),
				"error", err,
			)
			return fmt.Errorf("failed to create outbox message for event %s: %w", entry.EventID.String(), err)
		}

		r.logger.DebugContext(ctx, "Outbox message created",
			"event_id", entry.EventID.String(),
			"event_type", string(entry.EventType),
			"outbox_id", message.ID,
		)
	}

	return nil
}
