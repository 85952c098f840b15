//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package source

import (
	"fmt"
	"strings"
)

// Dialect controls how bind parameters are rendered.
type Dialect int

const (
	// Postgres renders $1, $2, ...
	Postgres Dialect = iota
	// SQLite renders ?
	SQLite
)

func (d Dialect) placeholder(n int) string {
	if d == SQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

// BuildSelect renders q as a parameterised SELECT statement.
func BuildSelect(q Query, d Dialect) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	cols := "*"
	if len(q.Columns) > 0 {
		cols = strings.Join(q.Columns, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, q.Table)
	where, args := buildWhere(q, d)
	sb.WriteString(where)

	if q.OrderBy != "" {
		dir := "DESC"
		if q.Ascending {
			dir = "ASC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}
	return sb.String(), args, nil
}

// BuildCount renders q as a parameterised SELECT COUNT(*) statement.
func BuildCount(q Query, d Dialect) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	where, args := buildWhere(q, d)
	return "SELECT COUNT(*) FROM " + q.Table + where, args, nil
}

func buildWhere(q Query, d Dialect) (string, []any) {
	var conds []string
	var args []any

	for _, c := range q.Eq {
		args = append(args, c.Value)
		conds = append(conds, fmt.Sprintf("%s = %s", c.Column, d.placeholder(len(args))))
	}
	for _, c := range q.NotNull {
		conds = append(conds, c+" IS NOT NULL")
	}
	if q.In != nil {
		if len(q.In.Values) == 0 {
			// An empty in-list matches nothing.
			conds = append(conds, "1 = 0")
		} else {
			ph := make([]string, 0, len(q.In.Values))
			for _, v := range q.In.Values {
				args = append(args, v)
				ph = append(ph, d.placeholder(len(args)))
			}
			conds = append(conds, fmt.Sprintf("%s IN (%s)", q.In.Column, strings.Join(ph, ", ")))
		}
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
