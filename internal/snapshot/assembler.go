//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package snapshot assembles the dashboard snapshot from a table source.
//
// A build runs ten independent sections concurrently, each fetching its
// own rows and producing a local result. Results are merged into a fresh
// snapshot only after every section finished, and the snapshot is
// published with a single pointer swap, so no partial build is ever
// observable.
//
// Sections come in two tiers. A source error in a hard section aborts the
// build: the error is recorded and the previously published snapshot stays
// in place. Soft sections resolve each failing metric to its default
// (0, empty list or null), log a warning and let the build succeed.
// Cancelling the build context discards the build without recording an
// error.
package snapshot

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pgEdge/pgedge-retailbi/internal/fetch"
	"github.com/pgEdge/pgedge-retailbi/internal/logging"
	"github.com/pgEdge/pgedge-retailbi/internal/metrics"
	"github.com/pgEdge/pgedge-retailbi/internal/model"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
)

// State is what consumers observe. It is replaced wholesale, never mutated.
type State struct {
	// Loading is true until the first build completes and while a refresh
	// is in flight.
	Loading bool
	// Error is the message of the last hard failure, empty after a
	// successful build.
	Error string
	// Snapshot is the last successfully built snapshot, or the empty
	// snapshot before the first success.
	Snapshot *model.Snapshot
	// Fingerprint identifies Snapshot's content.
	Fingerprint string
	// BuiltAt is when Snapshot was published; zero before the first success.
	BuiltAt time.Time
}

// Assembler builds snapshots from a source and publishes the latest one.
type Assembler struct {
	src   source.Source
	opts  Options
	state atomic.Pointer[State]
	group singleflight.Group
}

// NewAssembler creates an assembler. The initial state is loading with the
// empty snapshot.
func NewAssembler(src source.Source, opts Options) *Assembler {
	a := &Assembler{src: src, opts: opts.withDefaults()}

	empty := model.EmptySnapshot()
	fp, _ := Fingerprint(empty)
	a.state.Store(&State{Loading: true, Snapshot: empty, Fingerprint: fp})
	return a
}

// Options returns the effective options.
func (a *Assembler) Options() Options {
	return a.opts
}

// State returns the currently published state.
func (a *Assembler) State() State {
	return *a.state.Load()
}

// Build runs every section and returns the merged snapshot without
// publishing it. The error is a *SectionError for hard failures, or the
// context error when ctx was cancelled.
func (a *Assembler) Build(ctx context.Context) (*model.Snapshot, error) {
	start := time.Now()

	results := make([]applyFunc, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)

	for i, s := range sections {
		g.Go(func() error {
			apply, err := a.runSection(gctx, s)
			if err != nil {
				return err
			}
			results[i] = apply
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		metrics.RecordBuild(metrics.StatusCanceled, time.Since(start))
		logging.Debug().Err(ctxErr).Msg("Snapshot build cancelled")
		return nil, ctxErr
	}
	if err != nil {
		metrics.RecordBuild(metrics.StatusFailure, time.Since(start))
		logging.Error().Err(err).Msg("Snapshot build failed")
		return nil, err
	}

	snap := model.EmptySnapshot()
	for _, apply := range results {
		if apply != nil {
			apply(snap)
		}
	}

	metrics.RecordBuild(metrics.StatusSuccess, time.Since(start))
	logging.Info().
		Dur("duration", time.Since(start)).
		Int("sections", len(sections)).
		Msg("Snapshot built")
	return snap, nil
}

// Refresh builds a snapshot and publishes it. Concurrent calls share one
// build. On a hard failure the error is recorded and the previous snapshot
// is kept; a deadline counts as a failure. On cancellation the state
// reverts to what it was, minus the loading flag.
func (a *Assembler) Refresh(ctx context.Context) error {
	_, err, _ := a.group.Do("refresh", func() (any, error) {
		return nil, a.refresh(ctx)
	})
	return err
}

func (a *Assembler) refresh(ctx context.Context) error {
	prev := a.state.Load()
	loading := *prev
	loading.Loading = true
	a.state.Store(&loading)

	snap, err := a.Build(ctx)

	next := *prev
	next.Loading = false
	switch {
	case err == nil:
		fp, fpErr := Fingerprint(snap)
		if fpErr != nil {
			next.Error = fpErr.Error()
			a.state.Store(&next)
			return fpErr
		}
		next = State{
			Snapshot:    snap,
			Fingerprint: fp,
			BuiltAt:     time.Now().UTC(),
		}
	case errors.Is(err, context.Canceled):
		// Discarded; keep whatever was published before.
	default:
		next.Error = err.Error()
	}

	a.state.Store(&next)
	return err
}

func (a *Assembler) runSection(ctx context.Context, s section) (applyFunc, error) {
	start := time.Now()
	apply, err := s.run(ctx, a)

	switch {
	case err == nil:
		metrics.RecordSection(s.Name, metrics.StatusSuccess, time.Since(start))
		return apply, nil
	case ctx.Err() != nil:
		metrics.RecordSection(s.Name, metrics.StatusCanceled, time.Since(start))
		return nil, ctx.Err()
	case s.Tier == Soft:
		metrics.RecordSection(s.Name, metrics.StatusDegraded, time.Since(start))
		logging.Warn().
			Str("section", s.Name).
			Err(err).
			Msg("Section degraded to defaults")
		return apply, nil
	default:
		metrics.RecordSection(s.Name, metrics.StatusFailure, time.Since(start))
		return nil, &SectionError{Section: s.Name, Err: err}
	}
}

// selectRows runs one query and counts it.
func (a *Assembler) selectRows(ctx context.Context, q source.Query) ([]source.Row, error) {
	metrics.RecordFetchQuery(q.Table)
	rows, err := a.src.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	metrics.RecordFetchRows(q.Table, len(rows))
	return rows, nil
}

func (a *Assembler) count(ctx context.Context, q source.Query) (int64, error) {
	metrics.RecordFetchQuery(q.Table)
	return a.src.Count(ctx, q)
}

func (a *Assembler) batched(ctx context.Context, table string, columns []string, filter string, ids []string) ([]source.Row, error) {
	return fetch.Batched(ctx, a.src, fetch.Request{
		Table:        table,
		Columns:      columns,
		FilterColumn: filter,
		IDs:          ids,
		BatchSize:    a.opts.BatchSize,
	})
}
