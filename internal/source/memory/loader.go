//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package memory

import (
	"context"
	"fmt"

	"github.com/pgEdge/pgedge-retailbi/internal/source"
)

// MetadataTable holds key/value rows written by SaveMetadata.
const MetadataTable = "retailbi_metadata"

// CreateSchema implements source.Loader. Tables come into existence on
// first insert, so there is nothing to create.
func (s *Source) CreateSchema(ctx context.Context) error {
	return ctx.Err()
}

// DropSchema implements source.Loader by discarding every table.
func (s *Source) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = make(map[string][]source.Row)
	return nil
}

// Insert implements source.Loader.
func (s *Source) Insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if !source.ValidIdent(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	converted := make([]source.Row, 0, len(rows))
	for i, values := range rows {
		if len(values) != len(columns) {
			return fmt.Errorf("insert %s row %d: expected %d values, got %d",
				table, i, len(columns), len(values))
		}
		row := make(source.Row, len(columns))
		for j, c := range columns {
			row[c] = values[j]
		}
		converted = append(converted, row)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	s.Load(table, converted...)
	return nil
}

// SaveMetadata implements source.Loader. Existing keys are overwritten.
func (s *Source) SaveMetadata(ctx context.Context, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[MetadataTable]
	for key, value := range metadata {
		updated := false
		for _, r := range rows {
			if r["key"] == key {
				r["value"] = value
				updated = true
				break
			}
		}
		if !updated {
			rows = append(rows, source.Row{"key": key, "value": value})
		}
	}
	s.tables[MetadataTable] = rows
	return nil
}
