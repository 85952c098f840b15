//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package prom implements the metrics backend with Prometheus collectors on
// a private registry, exposed for scraping by the serve command.
package prom

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pgEdge/pgedge-retailbi/internal/metrics"
)

// Backend is a Prometheus scrape backend.
type Backend struct {
	reg *prometheus.Registry

	fetchQueries    *prometheus.CounterVec
	fetchRows       *prometheus.CounterVec
	sectionCounter  *prometheus.CounterVec
	sectionDuration *prometheus.HistogramVec
	buildCounter    *prometheus.CounterVec
	buildDuration   *prometheus.HistogramVec
}

// NewBackend registers every collector on a fresh registry.
func NewBackend() (*Backend, error) {
	b := &Backend{
		reg: prometheus.NewRegistry(),
		fetchQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.FetchQueriesTotal,
			Help: "Queries issued against the table source, by table.",
		}, []string{"table"}),
		fetchRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.FetchRowsTotal,
			Help: "Rows returned by the table source, by table.",
		}, []string{"table"}),
		sectionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.SectionTotal,
			Help: "Snapshot section executions, by section and status.",
		}, []string{"section", "status"}),
		sectionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metrics.SectionDurationSeconds,
			Help:    "Snapshot section duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"section", "status"}),
		buildCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.BuildTotal,
			Help: "Snapshot builds, by status.",
		}, []string{"status"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metrics.BuildDurationSeconds,
			Help:    "Snapshot build duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"status"}),
	}

	cs := []prometheus.Collector{
		b.fetchQueries, b.fetchRows,
		b.sectionCounter, b.sectionDuration,
		b.buildCounter, b.buildDuration,
		collectors.NewGoCollector(),
	}
	for _, c := range cs {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prom: register collector: %w", err)
		}
	}
	return b, nil
}

// Registry exposes the registry, mainly for tests.
func (b *Backend) Registry() *prometheus.Registry {
	return b.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (b *Backend) Handler() http.Handler {
	return promhttp.HandlerFor(b.reg, promhttp.HandlerOpts{})
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.FetchQueriesTotal:
		b.fetchQueries.WithLabelValues(labels["table"]).Add(delta)
	case metrics.FetchRowsTotal:
		b.fetchRows.WithLabelValues(labels["table"]).Add(delta)
	case metrics.SectionTotal:
		b.sectionCounter.WithLabelValues(labels["section"], labels["status"]).Add(delta)
	case metrics.BuildTotal:
		b.buildCounter.WithLabelValues(labels["status"]).Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	switch name {
	case metrics.SectionDurationSeconds:
		b.sectionDuration.WithLabelValues(labels["section"], labels["status"]).Observe(value)
	case metrics.BuildDurationSeconds:
		b.buildDuration.WithLabelValues(labels["status"]).Observe(value)
	}
}

// Flush is a no-op; Prometheus pulls.
func (b *Backend) Flush() error {
	return nil
}
