//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package metrics records operational counters and timings for the fetch
// layer and the snapshot assembler. It defaults to a no-op backend; the prom
// subpackage provides a Prometheus implementation.
package metrics

import (
	"sync"
	"time"
)

// Metric names.
const (
	FetchQueriesTotal      = "retailbi_fetch_queries_total"
	FetchRowsTotal         = "retailbi_fetch_rows_total"
	SectionTotal           = "retailbi_section_total"
	SectionDurationSeconds = "retailbi_section_duration_seconds"
	BuildTotal             = "retailbi_snapshot_builds_total"
	BuildDurationSeconds   = "retailbi_snapshot_build_duration_seconds"
)

// Status label values.
const (
	StatusSuccess  = "success"
	StatusDegraded = "degraded"
	StatusFailure  = "failure"
	StatusCanceled = "canceled"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil restores the no-op one.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordFetchQuery counts one query issued against table.
func RecordFetchQuery(table string) {
	current().IncCounter(FetchQueriesTotal, 1, Labels{"table": table})
}

// RecordFetchRows counts rows returned from table.
func RecordFetchRows(table string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(FetchRowsTotal, float64(n), Labels{"table": table})
}

// RecordSection records the outcome and latency of one snapshot section.
func RecordSection(section, status string, d time.Duration) {
	lbls := Labels{"section": section, "status": status}
	b := current()
	b.IncCounter(SectionTotal, 1, lbls)
	b.ObserveHistogram(SectionDurationSeconds, d.Seconds(), lbls)
}

// RecordBuild records the outcome and latency of a full snapshot build.
func RecordBuild(status string, d time.Duration) {
	lbls := Labels{"status": status}
	b := current()
	b.IncCounter(BuildTotal, 1, lbls)
	b.ObserveHistogram(BuildDurationSeconds, d.Seconds(), lbls)
}
