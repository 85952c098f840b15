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
	"cmp"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
)

type salesAcc struct {
	units   int
	revenue float64
	orders  int
}

func addSale(acc salesAcc, i model.OrderItem) salesAcc {
	acc.units++
	acc.revenue += i.Revenue()
	return acc
}

// salesBy folds items into units and revenue per key and attaches the
// number of distinct orders for each key.
func salesBy(items []model.OrderItem, key func(model.OrderItem) string) Groups[string, salesAcc] {
	stats := Fold(items, key, func(string) salesAcc { return salesAcc{} }, addSale)
	orders := GroupCountDistinct(items, key, func(i model.OrderItem) string { return i.OrderID })
	for _, k := range stats.Keys {
		acc := stats.Values[k]
		acc.orders = orders.Values[k]
		stats.Values[k] = acc
	}
	return stats
}

func byUnitsDesc(a, b Entry[string, salesAcc]) int {
	return cmp.Compare(b.Value.units, a.Value.units)
}

func byOrdersDesc(a, b Entry[string, salesAcc]) int {
	return cmp.Compare(b.Value.orders, a.Value.orders)
}

// TopProducts returns the n best-selling products by units sold.
func TopProducts(items []model.OrderItem, categories map[string]string, n int) []model.ProductStats {
	stats := salesBy(items, func(i model.OrderItem) string { return i.ProductID })

	top := TopN(stats, n, byUnitsDesc)
	out := make([]model.ProductStats, 0, len(top))
	for _, e := range top {
		out = append(out, model.ProductStats{
			ProductID:    e.Key,
			Category:     CategoryOf(categories, e.Key),
			UnitsSold:    e.Value.units,
			TotalRevenue: e.Value.revenue,
			UniqueOrders: e.Value.orders,
			AvgPrice:     SafeDiv(e.Value.revenue, float64(e.Value.units)),
		})
	}
	return out
}

// CategoryPerformance returns the n categories with the most distinct
// orders.
func CategoryPerformance(items []model.OrderItem, categories map[string]string, n int) []model.CategoryPerformance {
	stats := salesBy(items, func(i model.OrderItem) string { return CategoryOf(categories, i.ProductID) })

	top := TopN(stats, n, byOrdersDesc)
	out := make([]model.CategoryPerformance, 0, len(top))
	for _, e := range top {
		orders := e.Value.orders
		out = append(out, model.CategoryPerformance{
			Category:      e.Key,
			OrderCount:    orders,
			ItemsSold:     e.Value.units,
			TotalRevenue:  e.Value.revenue,
			AvgOrderValue: SafeDiv(e.Value.revenue, float64(orders)),
		})
	}
	return out
}

// ProductEntities adapts product stats for concentration analysis.
func ProductEntities(products []model.ProductStats) []RevenueEntity {
	out := make([]RevenueEntity, 0, len(products))
	for _, p := range products {
		out = append(out, RevenueEntity{ID: p.ProductID, Category: p.Category, Revenue: p.TotalRevenue})
	}
	return out
}
