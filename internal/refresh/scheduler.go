//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package refresh rebuilds the published snapshot on a fixed interval so
// that dashboard requests are served from a warm cache.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pgEdge/pgedge-retailbi/internal/logging"
)

// Refresher is the part of snapshot.Assembler the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Config holds configuration for the scheduler.
type Config struct {
	// Interval between refreshes.
	Interval time.Duration

	// Timeout bounds a single refresh. Zero means no limit.
	Timeout time.Duration

	// ReportInterval is how often to log statistics. Zero disables reports.
	ReportInterval time.Duration
}

// Scheduler runs refreshes until its context is cancelled.
type Scheduler struct {
	target         Refresher
	interval       time.Duration
	timeout        time.Duration
	reportInterval time.Duration

	// Metrics
	totalRuns       atomic.Int64
	successRuns     atomic.Int64
	failedRuns      atomic.Int64
	totalDurationNs atomic.Int64
	startTime       time.Time
}

// Stats is a point-in-time copy of the scheduler counters.
type Stats struct {
	Total      int64
	Successful int64
	Failed     int64
	AvgLatency time.Duration
}

// NewScheduler creates a new scheduler.
func NewScheduler(target Refresher, cfg Config) (*Scheduler, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive")
	}
	return &Scheduler{
		target:         target,
		interval:       cfg.Interval,
		timeout:        cfg.Timeout,
		reportInterval: cfg.ReportInterval,
	}, nil
}

// Run refreshes immediately, then once per interval, and blocks until ctx
// is cancelled. Failed refreshes are logged and retried at the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.startTime = time.Now()

	logging.Info().
		Dur("interval", s.interval).
		Msg("Starting snapshot refresh scheduler")

	if s.reportInterval > 0 {
		go s.reporter(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.runOnce(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	refreshCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		refreshCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.target.Refresh(refreshCtx)

	// A refresh cut short by shutdown is not counted.
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return
	}

	s.totalRuns.Add(1)
	s.totalDurationNs.Add(time.Since(start).Nanoseconds())
	if err != nil {
		s.failedRuns.Add(1)
		logging.Error().Err(err).Msg("Scheduled refresh failed")
		return
	}
	s.successRuns.Add(1)
}

// Stats returns the current counters.
func (s *Scheduler) Stats() Stats {
	total := s.totalRuns.Load()
	st := Stats{
		Total:      total,
		Successful: s.successRuns.Load(),
		Failed:     s.failedRuns.Load(),
	}
	if total > 0 {
		st.AvgLatency = time.Duration(s.totalDurationNs.Load() / total)
	}
	return st
}

// reporter periodically logs refresh statistics.
func (s *Scheduler) reporter(ctx context.Context) {
	ticker := time.NewTicker(s.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := s.Stats()
			logging.Info().
				Int64("refreshes", st.Total).
				Int64("failed", st.Failed).
				Dur("avg_latency", st.AvgLatency).
				Msg("Refresh statistics")
		}
	}
}

// PrintSummary logs a final summary of the scheduler's run.
func (s *Scheduler) PrintSummary() {
	st := s.Stats()
	logging.Info().
		Dur("duration", time.Since(s.startTime)).
		Int64("total_refreshes", st.Total).
		Int64("successful", st.Successful).
		Int64("failed", st.Failed).
		Dur("avg_latency", st.AvgLatency).
		Msg("Final summary")
}
