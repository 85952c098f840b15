//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package memory provides an in-process table source. It backs unit tests
// and the demo mode, and supports per-table fault injection.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
)

// Driver is the name this backend registers under.
const Driver = "memory"

func init() {
	source.Register(Driver, func(ctx context.Context, conn string) (source.Source, error) {
		return New(), nil
	})
}

// Source holds tables as slices of rows.
type Source struct {
	mu       sync.RWMutex
	tables   map[string][]source.Row
	failures map[string]error
	calls    map[string]int
	delay    time.Duration
}

// New returns an empty in-memory source.
func New() *Source {
	return &Source{
		tables:   make(map[string][]source.Row),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// Load appends rows to table.
func (s *Source) Load(table string, rows ...source.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], rows...)
}

// FailOn makes every query against table return err. A nil err clears it.
func (s *Source) FailOn(table string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, table)
		return
	}
	s.failures[table] = err
}

// SetDelay makes every query wait d (or until ctx is done) before running.
func (s *Source) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls returns the number of Select and Count calls made against table.
func (s *Source) Calls(table string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[table]
}

// ResetCalls zeroes every call counter.
func (s *Source) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

// Select implements source.Source.
func (s *Source) Select(ctx context.Context, q source.Query) ([]source.Row, error) {
	matched, err := s.match(ctx, q)
	if err != nil {
		return nil, err
	}

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			c := compare(matched[i][q.OrderBy], matched[j][q.OrderBy])
			if q.Ascending {
				return c < 0
			}
			return c > 0
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]source.Row, 0, len(matched))
	for _, r := range matched {
		out = append(out, project(r, q.Columns))
	}
	return out, nil
}

// Count implements source.Source.
func (s *Source) Count(ctx context.Context, q source.Query) (int64, error) {
	matched, err := s.match(ctx, q)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

// Close implements source.Source.
func (s *Source) Close() error {
	return nil
}

func (s *Source) match(ctx context.Context, q source.Query) ([]source.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.calls[q.Table]++
	failure := s.failures[q.Table]
	delay := s.delay
	rows := s.tables[q.Table]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, failure)
	}

	var in map[string]bool
	if q.In != nil {
		in = make(map[string]bool, len(q.In.Values))
		for _, v := range q.In.Values {
			in[model.String(v)] = true
		}
	}

	var matched []source.Row
	for _, r := range rows {
		if !matches(r, q, in) {
			continue
		}
		matched = append(matched, r)
	}
	return matched, nil
}

func matches(r source.Row, q source.Query, in map[string]bool) bool {
	for _, c := range q.Eq {
		if model.String(r[c.Column]) != model.String(c.Value) {
			return false
		}
	}
	for _, col := range q.NotNull {
		if r[col] == nil {
			return false
		}
	}
	if q.In != nil {
		v, ok := r[q.In.Column]
		if !ok || v == nil || !in[model.String(v)] {
			return false
		}
	}
	return true
}

func project(r source.Row, columns []string) source.Row {
	out := make(source.Row, len(columns))
	if len(columns) == 0 || (len(columns) == 1 && columns[0] == "*") {
		for k, v := range r {
			out[k] = v
		}
		return out
	}
	for _, c := range columns {
		out[c] = r[c]
	}
	return out
}

// compare orders nil first, then times, numbers and strings.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	ta, aTime := a.(time.Time)
	tb, bTime := b.(time.Time)
	if aTime && bTime {
		return ta.Compare(tb)
	}

	switch a.(type) {
	case string, []byte:
		sa, sb := model.String(a), model.String(b)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	}

	fa, fb := model.Float(a), model.Float(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	}
	return 0
}
