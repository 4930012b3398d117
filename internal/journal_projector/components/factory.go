package components

import (
	"log/slog"

	"github.com/finance-tracker-ledger/internal/config"
	"github.com/finance-tracker-ledger/internal/domain/journal"
	"github.com/finance-tracker-ledger/internal/journal_projector/service"
)

// CreateProjectionService wires the projection service, pooled when the
// configured worker pool size allows it.
func CreateProjectionService(
	journalRepo journal.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProjectionService {
	validator := NewEventValidator(journalRepo, logger)
	baseService := service.NewProjectionService(validator, journalRepo, logger)

	if cfg.WorkerPool.Size <= 0 {
		logger.Warn("Worker pool size is not positive, projecting events inline", "pool_size", cfg.WorkerPool.Size)
		return baseService
	}

	workerPoolService, err := service.NewWorkerPoolProjectionService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool projection service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
