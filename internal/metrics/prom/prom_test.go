//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package prom

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-retailbi/internal/metrics"
)

func TestBackendCounters(t *testing.T) {
	b, err := NewBackend()
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}

	metrics.SetBackend(b)
	defer metrics.SetBackend(nil)

	metrics.RecordFetchQuery("order_items")
	metrics.RecordFetchQuery("order_items")
	metrics.RecordSection("kpis", metrics.StatusSuccess, 20*time.Millisecond)

	out := scrape(t, b)
	if !strings.Contains(out, `retailbi_fetch_queries_total{table="order_items"} 2`) {
		t.Errorf("expected 2 order_items queries in scrape output:\n%s", out)
	}
	if !strings.Contains(out, `retailbi_section_total{section="kpis",status="success"} 1`) {
		t.Errorf("expected 1 kpis section in scrape output:\n%s", out)
	}

	// Unknown names are ignored.
	b.IncCounter("unknown_total", 1, nil)
	b.ObserveHistogram("unknown_seconds", 1, nil)
}

func TestHandlerExposesMetrics(t *testing.T) {
	b, err := NewBackend()
	if err != nil {
		t.Fatalf("NewBackend failed: %v", err)
	}
	b.IncCounter(metrics.BuildTotal, 1, metrics.Labels{"status": metrics.StatusSuccess})

	if out := scrape(t, b); !strings.Contains(out, metrics.BuildTotal) {
		t.Errorf("expected %s in scrape output", metrics.BuildTotal)
	}
}

func scrape(t *testing.T, b *Backend) string {
	t.Helper()
	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("failed to read scrape body: %v", err)
	}
	return string(body)
}
