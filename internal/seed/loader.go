//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-retailbi/internal/db"
	"github.com/pgEdge/pgedge-retailbi/internal/logging"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
)

// LoadOptions configures how a dataset is written.
type LoadOptions struct {
	// Driver is recorded in the seed metadata.
	Driver string

	// DropExisting drops the schema before creating it.
	DropExisting bool

	// BatchSize is the number of rows per Insert call.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultLoadOptions returns default batch insert configuration.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		BatchSize:        1000,
		ProgressInterval: 10000,
	}
}

func (o LoadOptions) withDefaults() LoadOptions {
	d := DefaultLoadOptions()
	if o.BatchSize <= 0 {
		o.BatchSize = d.BatchSize
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = d.ProgressInterval
	}
	return o
}

// Load creates the schema in dst, inserts every table of ds in order and
// records seed metadata.
func Load(ctx context.Context, dst source.Loader, ds *Dataset, cfg Config, opts LoadOptions) error {
	opts = opts.withDefaults()
	start := time.Now()

	if opts.DropExisting {
		logging.Info().Msg("Dropping existing schema")
		if err := dst.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	if err := dst.CreateSchema(ctx); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	for _, t := range ds.Tables {
		if err := insertTable(ctx, dst, t, opts); err != nil {
			return err
		}
	}

	if err := dst.SaveMetadata(ctx, db.SeedMetadata(opts.Driver, cfg.Seed, cfg.Orders)); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Str("rows", FormatCount(ds.RowCount())).
		Dur("duration", time.Since(start)).
		Msg("Dataset loaded")
	return nil
}

func insertTable(ctx context.Context, dst source.Loader, t Table, opts LoadOptions) error {
	progress := NewProgressReporter(t.Name, int64(len(t.Rows)), opts.ProgressInterval)

	for lo := 0; lo < len(t.Rows); lo += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		hi := min(lo+opts.BatchSize, len(t.Rows))
		if err := dst.Insert(ctx, t.Name, t.Columns, t.Rows[lo:hi]); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", t.Name, err)
		}
		progress.Update(int64(hi - lo))
	}

	progress.Done()
	return nil
}

// ProgressReporter tracks and reports load progress for one table.
type ProgressReporter struct {
	tableName        string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(tableName string, totalRows int64, interval int64) *ProgressReporter {
	return &ProgressReporter{
		tableName:        tableName,
		totalRows:        totalRows,
		progressInterval: max(interval, 1),
	}
}

// Update updates the progress and logs if an interval was crossed.
func (p *ProgressReporter) Update(rowsInserted int64) {
	oldRow := p.currentRow
	p.currentRow += rowsInserted

	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Info().
			Str("table", p.tableName).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Loading data")
	}
}

// Rows returns the number of rows reported so far.
func (p *ProgressReporter) Rows() int64 {
	return p.currentRow
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Info().
		Str("table", p.tableName).
		Int64("rows", p.currentRow).
		Msg("Table complete")
}
