package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-workflow/internal/repository"
)

// SuspensionWorker periodically clears expired suspensions.
type SuspensionWorker struct {
	maintenance repository.MaintenanceRepository
	interval    time.Duration
	logger      *zap.Logger
}

// NewSuspensionWorker creates the worker.
func NewSuspensionWorker(maintenance repository.MaintenanceRepository, interval time.Duration, logger *zap.Logger) *SuspensionWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SuspensionWorker{maintenance: maintenance, interval: interval, logger: logger}
}

// Start runs the worker until ctx is cancelled.
func (w *SuspensionWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleared, err := w.maintenance.ClearExpiredSuspensions(ctx, time.Now())
				if err != nil {
					w.logger.Warn("clearing expired suspensions failed", zap.Error(err))
					continue
				}
				if cleared > 0 {
					w.logger.Info("cleared expired suspensions", zap.Int64("count", cleared))
				}
			}
		}
	}()
}
