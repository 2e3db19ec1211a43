package services

import (
	"context"
	"log/slog"
	"time"
)

type SweepRunner interface {
	Run(ctx context.Context, now time.Time) (SweepSummary, error)
}

// SweepScheduler drives the sweep at a fixed interval. The sweep itself is
// a single logical pass; the scheduler never overlaps two runs because it
// runs them sequentially on one goroutine.
type SweepScheduler struct {
	runner   SweepRunner
	interval time.Duration
}

func NewSweepScheduler(runner SweepRunner, interval time.Duration) *SweepScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SweepScheduler{
		runner:   runner,
		interval: interval,
	}
}

// Start runs one pass immediately, then one per interval until the
// context is cancelled.
func (scheduler *SweepScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(scheduler.interval)
	go func() {
		defer ticker.Stop()

		scheduler.runOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				scheduler.runOnce(ctx)
			}
		}
	}()
}

func (scheduler *SweepScheduler) runOnce(ctx context.Context) {
	summary, err := scheduler.runner.Run(ctx, time.Now())
	if err != nil {
		slog.Error("sweep pass failed", "error", err, "users_scanned", summary.UsersScanned, "alerts_sent", summary.AlertsSent)
		return
	}
	slog.Info("sweep pass finished",
		"users_scanned", summary.UsersScanned,
		"alerts_sent", summary.AlertsSent,
		"deduped", summary.Deduped,
		"failures", len(summary.Failures),
	)
}
