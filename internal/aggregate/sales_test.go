//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package aggregate

import (
	"testing"
	"time"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
)

func TestKPIs(t *testing.T) {
	tests := []struct {
		name      string
		items     []model.OrderItem
		delivered int64
		want      model.KPISet
	}{
		{
			name:      "single delivered order",
			items:     []model.OrderItem{{OrderID: "1", Price: 100, Freight: 10}},
			delivered: 1,
			want:      model.KPISet{TotalRevenue: 110, TotalOrders: 1, UniqueCustomers: 1, AvgOrderValue: 110},
		},
		{
			name:      "no delivered orders",
			items:     []model.OrderItem{{OrderID: "1", Price: 50}},
			delivered: 0,
			want:      model.KPISet{TotalRevenue: 50, TotalOrders: 0, UniqueCustomers: 1, AvgOrderValue: 0},
		},
		{
			name: "empty",
			want: model.KPISet{UniqueCustomers: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KPIs(tt.items, tt.delivered, 1)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRevenueTrend(t *testing.T) {
	t1 := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	orders := []model.Order{
		{ID: "o2", PurchasedAt: t2},
		{ID: "o1", PurchasedAt: t1},
		{ID: "o3", PurchasedAt: t2},
	}
	items := []model.OrderItem{
		{OrderID: "o1", Price: 10, Freight: 1},
		{OrderID: "o1", Price: 5},
		{OrderID: "o2", Price: 7},
	}

	trend := RevenueTrend(orders, items)
	if len(trend) != 3 {
		t.Fatalf("expected one point per order, got %d", len(trend))
	}
	want := []float64{16, 7, 0}
	for i, p := range trend {
		if p.Revenue != want[i] {
			t.Errorf("point %d: expected revenue %v, got %v", i, want[i], p.Revenue)
		}
		if i > 0 && p.Date.Before(trend[i-1].Date) {
			t.Errorf("trend not ascending at %d", i)
		}
	}
	if orders[0].ID != "o2" {
		t.Error("input orders were reordered")
	}
}

func TestCategoryRevenue(t *testing.T) {
	categories := CategoryLookup([]model.Product{
		{ID: "p1", Category: "toys"},
		{ID: "p2", Category: "books"},
	})
	items := []model.OrderItem{
		{ProductID: "p1", Price: 10, Freight: 2},
		{ProductID: "p2", Price: 30},
		{ProductID: "p9", Price: 40},
		{ProductID: "p1", Price: 10},
	}

	got := CategoryRevenue(items, categories, 2)
	if len(got) != 2 {
		t.Fatalf("expected top 2, got %d", len(got))
	}
	if got[0].Category != model.UnknownCategory || got[0].Revenue != 40 {
		t.Errorf("expected Unknown=40 first, got %+v", got[0])
	}
	if got[1].Category != "books" || got[1].Revenue != 30 {
		t.Errorf("expected books=30 second, got %+v", got[1])
	}
}

func TestTopSellersExcludesFreight(t *testing.T) {
	items := []model.OrderItem{
		{SellerID: "s1", Price: 10, Freight: 100},
		{SellerID: "s2", Price: 20},
	}
	got := TopSellers(items, 5)
	if got[0].Seller != "s2" || got[0].Revenue != 20 {
		t.Errorf("expected s2=20 first, got %+v", got[0])
	}
	if got[1].Revenue != 10 {
		t.Errorf("expected s1 revenue 10 without freight, got %v", got[1].Revenue)
	}
}

func TestOrderStatusIncludesAllStatuses(t *testing.T) {
	orders := []model.Order{
		{Status: "shipped"},
		{Status: "delivered"},
		{Status: "delivered"},
		{Status: "canceled"},
	}
	got := OrderStatus(orders)
	if len(got) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(got))
	}
	if got[0].Status != "delivered" || got[0].Count != 2 {
		t.Errorf("expected delivered=2 first, got %+v", got[0])
	}
	if got[1].Status != "shipped" {
		t.Errorf("expected shipped to keep first-seen position among ties, got %s", got[1].Status)
	}
}

func TestCustomerLocations(t *testing.T) {
	customers := []model.Customer{
		{ID: "c1", ZipPrefix: "01001"},
		{ID: "c2", ZipPrefix: "02002"},
		{ID: "c3", ZipPrefix: "02002"},
	}
	geos := []model.Geolocation{
		{ZipPrefix: "01001", Lat: 1, City: "first"},
		{ZipPrefix: "02002", Lat: 2, City: "second"},
		{ZipPrefix: "01001", Lat: 9, City: "duplicate"},
		{ZipPrefix: "03003", Lat: 3, City: "no customers"},
	}

	got := CustomerLocations(customers, geos, 300)
	if len(got) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(got))
	}
	if got[0].Zip != "02002" || got[0].Count != 2 {
		t.Errorf("expected 02002 with 2 customers first, got %+v", got[0])
	}
	if got[1].City != "first" || got[1].Lat != 1 {
		t.Errorf("expected first geolocation row to win, got %+v", got[1])
	}

	if capped := CustomerLocations(customers, geos, 1); len(capped) != 1 {
		t.Errorf("expected cap of 1, got %d", len(capped))
	}

	zips := ZipPrefixes(customers)
	if len(zips) != 2 || zips[0] != "01001" {
		t.Errorf("expected unique zips in first-seen order, got %v", zips)
	}
}

func TestCustomerLocationsTieKeepsGeolocationOrder(t *testing.T) {
	customers := []model.Customer{
		{ID: "c1", ZipPrefix: "01001"},
		{ID: "c2", ZipPrefix: "02002"},
	}
	geos := []model.Geolocation{
		{ZipPrefix: "02002", City: "b"},
		{ZipPrefix: "01001", City: "a"},
		{ZipPrefix: "02002", City: "b-duplicate"},
	}

	got := CustomerLocations(customers, geos, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(got))
	}
	if got[0].Zip != "02002" || got[0].City != "b" {
		t.Errorf("expected first-seen geolocation 02002 first, got %+v", got[0])
	}
	if got[1].Zip != "01001" {
		t.Errorf("expected 01001 second, got %+v", got[1])
	}
}
