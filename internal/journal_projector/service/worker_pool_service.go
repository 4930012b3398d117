package service

import (
	"context"
	"log/slog"

	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolProjectionService bounds how many events are projected at once
type WorkerPoolProjectionService struct {
	baseService ProjectionService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolProjectionService(
	baseService ProjectionService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProjectionService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolProjectionService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Project runs the base service on a pooled worker and waits for its result
func (s *WorkerPoolProjectionService) Project(ctx context.Context, entry *journal.Entry) error {
	ctx = shared.WithCorrelationID(ctx, entry.CorrelationID)

	s.logger.DebugContext(ctx, "Submitting journal event to worker pool", "event_id", entry.EventID.String())

	resultChan := make(chan error, 1)
	entryCopy := *entry

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.Project(ctx, &entryCopy)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to submit journal event to worker pool",
			"event_id", entry.EventID.String(),
			"error", err,
		)
		return err
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolProjectionService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolProjectionService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolProjectionService) Capacity() int {
	return s.pool.Cap()
}
