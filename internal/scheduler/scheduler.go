package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/user/price-tracker/internal/usecase"
)

// Run performs a refresh pass immediately and then once per interval until
// ctx is cancelled. It blocks; start it in its own goroutine.
func Run(ctx context.Context, refresher usecase.Refresher, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		logger.Info("Scheduled price refresh disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Scheduler started", zap.Duration("interval", interval))
	runOnce(ctx, refresher, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopping")
			return
		case <-ticker.C:
			runOnce(ctx, refresher, logger)
		}
	}
}

func runOnce(ctx context.Context, refresher usecase.Refresher, logger *zap.Logger) {
	_, err := refresher.RefreshAll(ctx)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrRefreshInProgress):
		logger.Info("Skipping scheduled refresh, another pass is running")
	case ctx.Err() != nil:
		// Shutting down.
	default:
		// The next tick retries from scratch.
		logger.Error("Scheduled price refresh failed", zap.Error(err))
	}
}
