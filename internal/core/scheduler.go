package core

// scheduler.go runs the service's maintenance jobs:
//  1. Evict view sessions idle longer than the session TTL
//  2. Prune history entries older than the retention window
//
// Each job runs immediately on start, then on a ticker, and stops when the
// context is cancelled. A failing cycle is logged and retried next tick.

import (
	"context"
	"log/slog"
	"time"
)

// StartSessionSweeper evicts idle sessions every interval.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	slog.Info("session sweeper started", "interval", interval.String())
	runPeriodically(ctx, interval, func(ctx context.Context) {
		s.ExpireSessions(ctx)
	})
	slog.Info("session sweeper stopped")
}

// StartHistoryPruner removes history older than retentionDays every interval.
func (s *Service) StartHistoryPruner(ctx context.Context, interval time.Duration, retentionDays int) {
	if s.history == nil || retentionDays <= 0 {
		return
	}

	slog.Info("history pruner started",
		"interval", interval.String(),
		"retention_days", retentionDays,
	)
	runPeriodically(ctx, interval, func(ctx context.Context) {
		s.runPruneJob(ctx, retentionDays)
	})
	slog.Info("history pruner stopped")
}

func runPeriodically(ctx context.Context, interval time.Duration, job func(context.Context)) {
	job(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

// runPruneJob performs one prune cycle.
func (s *Service) runPruneJob(ctx context.Context, retentionDays int) {
	start := time.Now()
	cutoff := start.UTC().AddDate(0, 0, -retentionDays)

	removed, err := s.history.Prune(ctx, cutoff)
	if err != nil {
		slog.Error("history prune failed", "error", err)
		return
	}

	slog.Info("pruned history entries",
		"entries_removed", removed,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// ExpireSessions evicts idle sessions now and returns how many were removed.
func (s *Service) ExpireSessions(ctx context.Context) int {
	expired := s.sessions.Expire()
	for _, id := range expired {
		s.publish(ctx, Event{Type: EventSessionExpired, SessionID: id})
	}
	if len(expired) > 0 {
		slog.Debug("expired view sessions", "count", len(expired))
	}
	return len(expired)
}
