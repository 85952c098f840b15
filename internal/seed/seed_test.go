//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package seed

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
	"github.com/pgEdge/pgedge-retailbi/internal/snapshot"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
	"github.com/pgEdge/pgedge-retailbi/internal/source/memory"
	"github.com/pgEdge/pgedge-retailbi/internal/source/sqlite"
	"github.com/pgEdge/pgedge-retailbi/internal/testutil"
)

func smallConfig() Config {
	return Config{Orders: 200, Customers: 120, Products: 40, Sellers: 10, Seed: 7}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"no orders", func(c *Config) { c.Orders = 0 }, true},
		{"no customers", func(c *Config) { c.Customers = 0 }, true},
		{"no products", func(c *Config) { c.Products = -1 }, true},
		{"no sellers", func(c *Config) { c.Sellers = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(smallConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := Generate(smallConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical datasets for the same seed")
	}

	cfg := smallConfig()
	cfg.Seed = 8
	c, _ := Generate(cfg)
	if reflect.DeepEqual(a, c) {
		t.Error("expected different datasets for different seeds")
	}
}

func TestGenerateShape(t *testing.T) {
	cfg := smallConfig()
	ds, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	counts := map[string]int{
		model.TableOrders:    cfg.Orders,
		model.TableCustomers: cfg.Customers,
		model.TableProducts:  cfg.Products,
		model.TableSellers:   cfg.Sellers,
	}
	for name, want := range counts {
		if got := len(ds.Table(name).Rows); got != want {
			t.Errorf("%s: expected %d rows, got %d", name, want, got)
		}
	}

	for _, tbl := range ds.Tables {
		for i, row := range tbl.Rows {
			if len(row) != len(tbl.Columns) {
				t.Fatalf("%s row %d: expected %d values, got %d", tbl.Name, i, len(tbl.Columns), len(row))
			}
		}
	}

	if ds.Table("missing") != nil {
		t.Error("expected nil for unknown table")
	}
}

func TestGenerateReferentialIntegrity(t *testing.T) {
	ds, err := Generate(smallConfig())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	keys := func(table string) map[any]bool {
		out := map[any]bool{}
		for _, r := range ds.Table(table).Rows {
			out[r[0]] = true
		}
		return out
	}
	orders := keys(model.TableOrders)
	customers := keys(model.TableCustomers)
	products := keys(model.TableProducts)
	zips := keys(model.TableGeolocation)

	for _, r := range ds.Table(model.TableOrders).Rows {
		if !customers[r[1]] {
			t.Fatalf("order %v references unknown customer %v", r[0], r[1])
		}
	}
	for _, r := range ds.Table(model.TableOrderItems).Rows {
		if !orders[r[0]] || !products[r[2]] {
			t.Fatalf("item %v references unknown order or product", r)
		}
	}
	for _, r := range ds.Table(model.TableCustomers).Rows {
		if !zips[r[2]] {
			t.Fatalf("customer %v has zip %v with no geolocation", r[0], r[2])
		}
	}
	for _, r := range ds.Table(model.TablePayments).Rows {
		if !orders[r[0]] {
			t.Fatalf("payment references unknown order %v", r[0])
		}
	}
}

func TestLoadAndBuild(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	ds, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	src := memory.New()
	opts := LoadOptions{Driver: memory.Driver, BatchSize: 37}
	if err := Load(ctx, src, ds, cfg, opts); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	n, err := src.Count(ctx, source.Query{Table: model.TableOrderItems})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if int(n) != len(ds.Table(model.TableOrderItems).Rows) {
		t.Errorf("expected %d items, got %d", len(ds.Table(model.TableOrderItems).Rows), n)
	}

	meta, _ := src.Select(ctx, source.Query{Table: memory.MetadataTable, Columns: []string{"key", "value"}})
	found := false
	for _, r := range meta {
		if r["key"] == "seed" && r["value"] == "7" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected seed metadata, got %v", meta)
	}

	snap, err := snapshot.NewAssembler(src, snapshot.Options{}).Build(ctx)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if snap.KPIs.TotalRevenue <= 0 || snap.KPIs.TotalOrders == 0 {
		t.Errorf("expected populated KPIs, got %+v", snap.KPIs)
	}
	if snap.KPIs.UniqueCustomers != int64(cfg.Customers) {
		t.Errorf("expected %d customers, got %d", cfg.Customers, snap.KPIs.UniqueCustomers)
	}
	if len(snap.CustomerGeo) == 0 || len(snap.Analytics.PaymentMethods) == 0 {
		t.Error("expected geo and payment sections to be populated")
	}
}

func TestSQLiteMatchesMemory(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	ds, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	mem := memory.New()
	if err := Load(ctx, mem, ds, cfg, LoadOptions{Driver: memory.Driver}); err != nil {
		t.Fatalf("memory Load failed: %v", err)
	}
	lite, err := sqlite.Open(ctx, testutil.SQLitePath(t, "seed"))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	defer lite.Close()
	if err := Load(ctx, lite, ds, cfg, LoadOptions{Driver: sqlite.Driver, BatchSize: 64}); err != nil {
		t.Fatalf("sqlite Load failed: %v", err)
	}

	want, err := snapshot.NewAssembler(mem, snapshot.Options{}).Build(ctx)
	if err != nil {
		t.Fatalf("memory Build failed: %v", err)
	}
	got, err := snapshot.NewAssembler(lite, snapshot.Options{}).Build(ctx)
	if err != nil {
		t.Fatalf("sqlite Build failed: %v", err)
	}

	if got.KPIs.TotalOrders != want.KPIs.TotalOrders {
		t.Errorf("TotalOrders: sqlite %d, memory %d", got.KPIs.TotalOrders, want.KPIs.TotalOrders)
	}
	if got.KPIs.UniqueCustomers != want.KPIs.UniqueCustomers {
		t.Errorf("UniqueCustomers: sqlite %d, memory %d", got.KPIs.UniqueCustomers, want.KPIs.UniqueCustomers)
	}
	if math.Abs(got.KPIs.TotalRevenue-want.KPIs.TotalRevenue) > 0.01 {
		t.Errorf("TotalRevenue: sqlite %v, memory %v", got.KPIs.TotalRevenue, want.KPIs.TotalRevenue)
	}
}

func TestLoadDropExisting(t *testing.T) {
	ctx := context.Background()
	cfg := smallConfig()
	ds, _ := Generate(cfg)
	src := memory.New()

	for range 2 {
		if err := Load(ctx, src, ds, cfg, LoadOptions{DropExisting: true}); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	n, _ := src.Count(ctx, source.Query{Table: model.TableOrders})
	if int(n) != cfg.Orders {
		t.Errorf("expected reload to replace rows, got %d orders", n)
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ds, _ := Generate(smallConfig())
	if err := Load(ctx, memory.New(), ds, smallConfig(), LoadOptions{}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestProgressReporter(t *testing.T) {
	p := NewProgressReporter("orders", 100, 0)
	p.Update(40)
	p.Update(60)
	if p.Rows() != 100 {
		t.Errorf("expected 100 rows, got %d", p.Rows())
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1500, "1.5K"},
		{2_500_000, "2.5M"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.n); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
