//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
	"github.com/pgEdge/pgedge-retailbi/internal/testutil"
)

func openTestDB(t *testing.T) *Source {
	t.Helper()

	ctx := context.Background()
	src, err := Open(ctx, testutil.SQLitePath(t, "retailbi"))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { src.Close() })

	if err := src.CreateSchema(ctx); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return src
}

func TestSelectRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openTestDB(t)

	base := time.Date(2018, 5, 1, 8, 0, 0, 0, time.UTC)
	if err := src.Insert(ctx, model.TableCustomers,
		[]string{"customer_id", "customer_zip_code_prefix"},
		[][]any{{"c1", "01001"}},
	); err != nil {
		t.Fatalf("Failed to insert customers: %v", err)
	}
	if err := src.Insert(ctx, model.TableOrders,
		[]string{"order_id", "customer_id", "order_status", "order_purchase_timestamp", "order_delivered_customer_date"},
		[][]any{
			{"o2", "c1", "delivered", base.Add(48 * time.Hour), nil},
			{"o1", "c1", "delivered", base, base.Add(72 * time.Hour)},
			{"o3", "c1", "canceled", base.Add(24 * time.Hour), nil},
		},
	); err != nil {
		t.Fatalf("Failed to insert orders: %v", err)
	}

	rows, err := src.Select(ctx, source.Query{
		Table:     model.TableOrders,
		Columns:   []string{model.ColOrderID, model.ColPurchaseTimestamp, model.ColDeliveredDate},
		Eq:        []source.Cond{{Column: model.ColOrderStatus, Value: model.StatusDelivered}},
		OrderBy:   model.ColPurchaseTimestamp,
		Ascending: true,
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	orders := model.DecodeOrders(rows)
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != "o1" || orders[1].ID != "o2" {
		t.Errorf("expected ascending order o1, o2; got %s, %s", orders[0].ID, orders[1].ID)
	}
	if !orders[0].PurchasedAt.Equal(base) {
		t.Errorf("expected purchase time %v, got %v", base, orders[0].PurchasedAt)
	}
	if !orders[1].DeliveredAt.IsZero() {
		t.Errorf("expected missing delivery date, got %v", orders[1].DeliveredAt)
	}

	rows, err = src.Select(ctx, source.Query{
		Table:   model.TableOrders,
		Columns: []string{model.ColOrderID},
		NotNull: []string{model.ColDeliveredDate},
	})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 delivered row with date, got %d", len(rows))
	}

	n, err := src.Count(ctx, source.Query{
		Table: model.TableOrders,
		In:    &source.InList{Column: model.ColOrderID, Values: []any{"o1", "o3", "missing"}},
	})
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}
}

func TestInsertRejectsBadRows(t *testing.T) {
	src := openTestDB(t)
	err := src.Insert(context.Background(), model.TableCustomers,
		[]string{"customer_id", "customer_zip_code_prefix"},
		[][]any{{"c1"}},
	)
	if err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestWithForeignKeys(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"retail.db", "retail.db?_pragma=foreign_keys(1)"},
		{"file:retail.db?cache=shared", "file:retail.db?cache=shared&_pragma=foreign_keys(1)"},
		{"retail.db?_pragma=foreign_keys(0)", "retail.db?_pragma=foreign_keys(0)"},
	}

	for _, tt := range tests {
		if got := withForeignKeys(tt.dsn); got != tt.want {
			t.Errorf("withForeignKeys(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	src := openTestDB(t)

	// Hold several connections at once so the pool has to open new ones.
	var conns []*sql.Conn
	for range 3 {
		c, err := src.db.Conn(ctx)
		if err != nil {
			t.Fatalf("Failed to get connection: %v", err)
		}
		conns = append(conns, c)
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	for i, c := range conns {
		var on int
		if err := c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on); err != nil {
			t.Fatalf("conn %d: PRAGMA failed: %v", i, err)
		}
		if on != 1 {
			t.Errorf("conn %d: expected foreign_keys 1, got %d", i, on)
		}
	}

	err := src.Insert(ctx, model.TableOrders,
		[]string{"order_id", "customer_id", "order_status"},
		[][]any{{"o1", "missing", "delivered"}},
	)
	if err == nil {
		t.Error("expected foreign key error for order without customer")
	}
}

func TestMetadataAndDrop(t *testing.T) {
	ctx := context.Background()
	src := openTestDB(t)

	if err := src.SaveMetadata(ctx, map[string]string{"seed": "7"}); err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}
	if err := src.SaveMetadata(ctx, map[string]string{"seed": "8"}); err != nil {
		t.Fatalf("SaveMetadata upsert failed: %v", err)
	}
	rows, err := src.Select(ctx, source.Query{Table: "retailbi_metadata"})
	if err != nil {
		t.Fatalf("Select metadata failed: %v", err)
	}
	if len(rows) != 1 || model.String(rows[0]["value"]) != "8" {
		t.Errorf("expected single upserted metadata row, got %v", rows)
	}

	if err := src.DropSchema(ctx); err != nil {
		t.Fatalf("DropSchema failed: %v", err)
	}
	if _, err := src.Count(ctx, source.Query{Table: model.TableOrders}); err == nil {
		t.Error("expected error querying dropped table")
	}
}
