//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package source defines the queryable row store the snapshot pipeline reads
// from. Concrete stores live in the memory, postgres and sqlite subpackages.
package source

import (
	"context"
	"fmt"
	"regexp"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
)

// Row is a single record keyed by column name.
type Row = model.Row

// Cond is an equality predicate.
type Cond struct {
	Column string
	Value  any
}

// InList restricts Column to one of Values.
type InList struct {
	Column string
	Values []any
}

// Query describes a single select against one table.
type Query struct {
	Table   string
	Columns []string

	Eq      []Cond
	NotNull []string
	In      *InList

	OrderBy   string
	Ascending bool

	// Limit caps the number of rows; 0 means unlimited.
	Limit int
}

// Source is a generic queryable table store.
type Source interface {
	// Select returns the rows matching q, in q's order when one is given.
	Select(ctx context.Context, q Query) ([]Row, error)

	// Count returns the number of rows matching q without fetching them.
	// Columns, ordering and limit are ignored.
	Count(ctx context.Context, q Query) (int64, error)

	// Close releases resources held by the source.
	Close() error
}

// Loader is implemented by sources that can be created and populated by
// the init command.
type Loader interface {
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error
	Insert(ctx context.Context, table string, columns []string, rows [][]any) error
	SaveMetadata(ctx context.Context, metadata map[string]string) error
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdent reports whether s can be rendered as a bare SQL identifier.
func ValidIdent(s string) bool {
	return identRe.MatchString(s)
}

// Validate checks that every identifier in q is safe to render.
func (q Query) Validate() error {
	if !ValidIdent(q.Table) {
		return fmt.Errorf("invalid table name %q", q.Table)
	}
	for _, c := range q.Columns {
		if c != "*" && !ValidIdent(c) {
			return fmt.Errorf("invalid column %q for table %s", c, q.Table)
		}
	}
	for _, c := range q.Eq {
		if !ValidIdent(c.Column) {
			return fmt.Errorf("invalid filter column %q for table %s", c.Column, q.Table)
		}
	}
	for _, c := range q.NotNull {
		if !ValidIdent(c) {
			return fmt.Errorf("invalid filter column %q for table %s", c, q.Table)
		}
	}
	if q.In != nil && !ValidIdent(q.In.Column) {
		return fmt.Errorf("invalid filter column %q for table %s", q.In.Column, q.Table)
	}
	if q.OrderBy != "" && !ValidIdent(q.OrderBy) {
		return fmt.Errorf("invalid order column %q for table %s", q.OrderBy, q.Table)
	}
	if q.Limit < 0 {
		return fmt.Errorf("negative limit %d", q.Limit)
	}
	return nil
}
