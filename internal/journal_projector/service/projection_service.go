package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/finance-tracker-ledger/internal/platform/metrics"
)

type ProjectionServiceImpl struct {
	validator   EventValidator
	journalRepo journal.Repository
	logger      *slog.Logger
	now         func() time.Time
}

func NewProjectionService(
	validator EventValidator,
	journalRepo journal.Repository,
	logger *slog.Logger,
) ProjectionService {
	return &ProjectionServiceImpl{
		validator:   validator,
		journalRepo: journalRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Project validates an event, skips it when already projected and stores it
// otherwise. Replays of the same event id are acknowledged without writing.
func (s *ProjectionServiceImpl) Project(ctx context.Context, entry *journal.Entry) error {
	ctx = shared.WithCorrelationID(ctx, entry.CorrelationID)

	// 1. Validate the event
	if err := s.validator.Validate(entry); err != nil {
		metrics.JournalProjections.WithLabelValues(metrics.OutcomeInvalid).Inc()
		s.logger.WarnContext(ctx, "Journal event failed validation", "event_id", entry.EventID.String(), "error", err)
		return err
	}

	// 2. Check idempotency
	projected, err := s.validator.IsProjected(ctx, entry.EventID)
	if err != nil {
		metrics.JournalProjections.WithLabelValues(metrics.OutcomeError).Inc()
		return err
	}
	if projected {
		metrics.JournalProjections.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		s.logger.InfoContext(ctx, "Journal event already projected", "event_id", entry.EventID.String())
		return nil
	}

	// 3. Store the entry
	projectedAt := s.now().UTC()
	entry.ProjectedAt = &projectedAt

	if err := s.journalRepo.Create(ctx, entry); err != nil {
		// A concurrent worker won the race for the same event
		if errors.Is(err, journal.ErrDuplicateEntry{}) {
			metrics.JournalProjections.WithLabelValues(metrics.OutcomeDuplicate).Inc()
			s.logger.InfoContext(ctx, "Journal event projected concurrently", "event_id", entry.EventID.String())
			return nil
		}
		metrics.JournalProjections.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.ErrorContext(ctx, "Failed to store journal entry", "event_id", entry.EventID.String(), "error", err)
		return fmt.Errorf("failed to project journal event %s: %w", entry.EventID, err)
	}

	metrics.JournalProjections.WithLabelValues(metrics.OutcomeProjected).Inc()
	s.logger.InfoContext(ctx, "Projected journal event",
		"event_id", entry.EventID.String(),
		"event_type", entry.EventType,
		"transaction_id", entry.TransactionID.String(),
		"account_id", entry.AccountID.String(),
	)
	return nil
}
