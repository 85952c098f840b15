//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package postgres implements the table source on top of a pgx pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-retailbi/internal/db"
	"github.com/pgEdge/pgedge-retailbi/internal/logging"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
)

// Driver is the name this backend registers under.
const Driver = "postgres"

func init() {
	source.Register(Driver, func(ctx context.Context, conn string) (source.Source, error) {
		return Open(ctx, conn, db.PoolOptions{})
	})
}

// Source reads rows through a pgx connection pool.
type Source struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL and returns a Source owning the pool.
func Open(ctx context.Context, connString string, opts db.PoolOptions) (*Source, error) {
	pool, err := db.Connect(ctx, connString, opts)
	if err != nil {
		return nil, err
	}
	return &Source{pool: pool}, nil
}

// New wraps an existing pool. Close will close it.
func New(pool *pgxpool.Pool) *Source {
	return &Source{pool: pool}
}

// Pool exposes the underlying pool.
func (s *Source) Pool() *pgxpool.Pool {
	return s.pool
}

// Select implements source.Source.
func (s *Source) Select(ctx context.Context, q source.Query) ([]source.Row, error) {
	sql, args, err := source.BuildSelect(q, source.Postgres)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	var out []source.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", q.Table, err)
		}
		out = append(out, toRow(names, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, err)
	}
	return out, nil
}

// Count implements source.Source.
func (s *Source) Count(ctx context.Context, q source.Query) (int64, error) {
	sql, args, err := source.BuildCount(q, source.Postgres)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.Table, err)
	}
	return n, nil
}

// Close implements source.Source.
func (s *Source) Close() error {
	s.pool.Close()
	return nil
}

// CreateSchema implements source.Loader.
func (s *Source) CreateSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	logging.Info().Msg("Schema created")
	return nil
}

// DropSchema implements source.Loader.
func (s *Source) DropSchema(ctx context.Context) error {
	for _, table := range dropOrder {
		if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	if err := db.DropMetadata(ctx, s.pool); err != nil {
		return fmt.Errorf("failed to drop metadata: %w", err)
	}
	logging.Info().Msg("Schema dropped")
	return nil
}

// Insert implements source.Loader using COPY.
func (s *Source) Insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if !source.ValidIdent(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	if len(rows) == 0 {
		return nil
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy into %s: %w", table, err)
	}

	logging.Debug().
		Str("table", table).
		Int64("rows", n).
		Msg("Copied rows")
	return nil
}

// SaveMetadata implements source.Loader.
func (s *Source) SaveMetadata(ctx context.Context, metadata map[string]string) error {
	return db.SaveMetadata(ctx, s.pool, metadata)
}

// toRow pairs column names with normalized values.
func toRow(names []string, values []any) source.Row {
	row := make(source.Row, len(names))
	for i, name := range names {
		row[name] = normalize(values[i])
	}
	return row
}

// normalize converts pgx-specific value types into plain Go values so the
// ingestion layer never needs to know about pgtype.
func normalize(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", x[0:4], x[4:6], x[6:8], x[8:10], x[10:16])
	default:
		return v
	}
}
