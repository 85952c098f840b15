//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package fetch retrieves rows for large id sets by splitting the ids into
// bounded in-list queries.
package fetch

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-retailbi/internal/logging"
	"github.com/pgEdge/pgedge-retailbi/internal/metrics"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
)

// DefaultBatchSize bounds the number of ids per in-list query.
const DefaultBatchSize = 50

// Request describes one batched fetch.
type Request struct {
	Table        string
	Columns      []string
	FilterColumn string
	IDs          []string

	// BatchSize <= 0 means DefaultBatchSize.
	BatchSize int
}

// Batched returns every row of req.Table whose FilterColumn is in req.IDs.
//
// Ids are deduplicated in first-seen order and empty ids are dropped, so a
// fetch issues ceil(unique non-empty ids / BatchSize) queries, sequentially.
// No query runs when nothing remains. Rows are concatenated
// in chunk order. The first failing chunk aborts the fetch and no partial
// result is returned.
func Batched(ctx context.Context, src source.Source, req Request) ([]source.Row, error) {
	size := req.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	ids := Dedupe(req.IDs)
	if len(ids) == 0 {
		return []source.Row{}, nil
	}

	chunks := (len(ids) + size - 1) / size
	out := make([]source.Row, 0, len(ids))

	for i := 0; i < chunks; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lo := i * size
		hi := min(lo+size, len(ids))
		values := make([]any, 0, hi-lo)
		for _, id := range ids[lo:hi] {
			values = append(values, id)
		}

		metrics.RecordFetchQuery(req.Table)
		rows, err := src.Select(ctx, source.Query{
			Table:   req.Table,
			Columns: req.Columns,
			In:      &source.InList{Column: req.FilterColumn, Values: values},
		})
		if err != nil {
			return nil, fmt.Errorf("fetch %s chunk %d/%d: %w", req.Table, i+1, chunks, err)
		}
		metrics.RecordFetchRows(req.Table, len(rows))

		logging.Debug().
			Str("table", req.Table).
			Int("chunk", i+1).
			Int("chunks", chunks).
			Int("ids", hi-lo).
			Int("rows", len(rows)).
			Msg("Fetched chunk")

		out = append(out, rows...)
	}
	return out, nil
}

// Dedupe drops repeated and empty ids, keeping first-seen order.
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
