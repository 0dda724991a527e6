package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TickFunc runs one reconciliation pass.
type TickFunc func(ctx context.Context) error

// TickLoop runs a tick function at a fixed interval, one tick at a time.
// A tick always runs to completion before the next sleep; there is no
// overlap and no mid-tick cancellation beyond the context passed down to
// blocking calls.
type TickLoop struct {
	interval time.Duration
	tick     TickFunc
	logger   *zap.Logger
}

// NewTickLoop creates a tick loop with the given interval.
func NewTickLoop(interval time.Duration, tick TickFunc, logger *zap.Logger) *TickLoop {
	return &TickLoop{
		interval: interval,
		tick:     tick,
		logger:   logger,
	}
}

// Run executes ticks until the context is cancelled. The first tick runs
// immediately. A tick error or panic is logged and the loop continues; the
// process is designed to run unattended indefinitely.
func (l *TickLoop) Run(ctx context.Context) {
	l.logger.Info("Sync loop started", zap.Duration("interval", l.interval))
	for {
		l.runOnce(ctx)
		select {
		case <-ctx.Done():
			l.logger.Info("Sync loop stopped")
			return
		case <-time.After(l.interval):
		}
	}
}

// runOnce executes a single tick, containing panics so one poisoned tick
// cannot take the daemon down.
func (l *TickLoop) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Tick panicked", zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := l.tick(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		l.logger.Error("Tick failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return
	}
	l.logger.Info("Tick completed", zap.Duration("took", time.Since(start)))
}
