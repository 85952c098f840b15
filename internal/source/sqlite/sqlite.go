//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sqlite implements the table source on a local SQLite file through
// database/sql. Loads run as prepared INSERTs inside one transaction per
// batch since SQLite has no COPY equivalent.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pgEdge/pgedge-retailbi/internal/db"
	"github.com/pgEdge/pgedge-retailbi/internal/logging"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
)

// Driver is the name this backend registers under.
const Driver = "sqlite"

// timestampLayout keeps stored timestamps lexically sortable.
const timestampLayout = "2006-01-02 15:04:05"

func init() {
	source.Register(Driver, func(ctx context.Context, conn string) (source.Source, error) {
		return Open(ctx, conn)
	})
}

// Source reads rows from a SQLite database.
type Source struct {
	db *sql.DB
}

// Open opens the database at dsn, e.g. "retailbi.db" or
// "file:retailbi.db?cache=shared".
func Open(ctx context.Context, dsn string) (*Source, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	conn, err := sql.Open("sqlite", withForeignKeys(dsn))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	logging.Debug().Str("dsn", dsn).Msg("Opened SQLite database")
	return &Source{db: conn}, nil
}

// withForeignKeys adds the foreign_keys pragma to the DSN so the driver runs
// it on every pooled connection, not only the first.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Select implements source.Source.
func (s *Source) Select(ctx context.Context, q source.Query) ([]source.Row, error) {
	stmt, args, err := source.BuildSelect(q, source.SQLite)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query %s: %w", q.Table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns %s: %w", q.Table, err)
	}

	var out []source.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s: %w", q.Table, err)
		}
		row := make(source.Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: query %s: %w", q.Table, err)
	}
	return out, nil
}

// Count implements source.Source.
func (s *Source) Count(ctx context.Context, q source.Query) (int64, error) {
	stmt, args, err := source.BuildCount(q, source.SQLite)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count %s: %w", q.Table, err)
	}
	return n, nil
}

// Close implements source.Source.
func (s *Source) Close() error {
	return s.db.Close()
}

// CreateSchema implements source.Loader.
func (s *Source) CreateSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("sqlite: create schema: %w", err)
	}
	logging.Info().Msg("Schema created")
	return nil
}

// DropSchema implements source.Loader.
func (s *Source) DropSchema(ctx context.Context) error {
	for _, table := range append(dropOrder, db.MetadataTable) {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("sqlite: drop table %s: %w", table, err)
		}
	}
	logging.Info().Msg("Schema dropped")
	return nil
}

// Insert implements source.Loader with a prepared statement inside a single
// transaction.
func (s *Source) Insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if !source.ValidIdent(table) {
		return fmt.Errorf("sqlite: invalid table name %q", table)
	}
	if len(columns) == 0 {
		return fmt.Errorf("sqlite: insert %s: columns must not be empty", table)
	}
	for _, c := range columns {
		if !source.ValidIdent(c) {
			return fmt.Errorf("sqlite: invalid column %q", c)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert %s: row length %d != columns length %d",
				table, len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, encodeRow(row)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}

	logging.Debug().
		Str("table", table).
		Int("rows", len(rows)).
		Msg("Inserted rows")
	return nil
}

// SaveMetadata implements source.Loader.
func (s *Source) SaveMetadata(ctx context.Context, metadata map[string]string) error {
	if _, err := s.db.ExecContext(ctx, db.CreateMetadataTableSQL); err != nil {
		return fmt.Errorf("sqlite: create metadata table: %w", err)
	}
	for key, value := range metadata {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO retailbi_metadata (key, value) VALUES (?, ?)
             ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
			key, value); err != nil {
			return fmt.Errorf("sqlite: save metadata %s: %w", key, err)
		}
	}
	return nil
}

// encodeRow renders timestamps as UTC text so ORDER BY sorts them correctly.
func encodeRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case time.Time:
			out[i] = x.UTC().Format(timestampLayout)
		case *time.Time:
			if x == nil {
				out[i] = nil
			} else {
				out[i] = x.UTC().Format(timestampLayout)
			}
		default:
			out[i] = v
		}
	}
	return out
}
