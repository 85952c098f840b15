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
	"slices"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
)

func itemRevenue(i model.OrderItem) float64 { return i.Revenue() }
func itemPrice(i model.OrderItem) float64   { return i.Price }
func itemOrder(i model.OrderItem) string    { return i.OrderID }

// KPIs computes the executive overview from every item row plus the
// delivered-order and customer counts.
func KPIs(items []model.OrderItem, deliveredOrders, customers int64) model.KPISet {
	var revenue float64
	for _, i := range items {
		revenue += i.Revenue()
	}
	return model.KPISet{
		TotalRevenue:    revenue,
		TotalOrders:     deliveredOrders,
		UniqueCustomers: customers,
		AvgOrderValue:   SafeDiv(revenue, float64(deliveredOrders)),
	}
}

// RevenueTrend returns one point per order, ascending by purchase time,
// valued at the sum of its items' revenue. Orders without items are 0.
func RevenueTrend(orders []model.Order, items []model.OrderItem) []model.RevenuePoint {
	byOrder := GroupSum(items, itemOrder, itemRevenue)

	sorted := slices.Clone(orders)
	slices.SortStableFunc(sorted, func(a, b model.Order) int {
		return a.PurchasedAt.Compare(b.PurchasedAt)
	})

	out := make([]model.RevenuePoint, 0, len(sorted))
	for _, o := range sorted {
		revenue, _ := byOrder.Get(o.ID)
		out = append(out, model.RevenuePoint{Date: o.PurchasedAt, Revenue: revenue})
	}
	return out
}

// CategoryLookup maps product id to category.
func CategoryLookup(products []model.Product) map[string]string {
	return BuildLookup(products,
		func(p model.Product) string { return p.ID },
		func(p model.Product) string { return p.Category },
	)
}

// CategoryOf resolves a product's category, defaulting to UnknownCategory.
func CategoryOf(lookup map[string]string, productID string) string {
	if c, ok := lookup[productID]; ok && c != "" {
		return c
	}
	return model.UnknownCategory
}

// CategoryRevenue sums item revenue per category and returns the top n.
func CategoryRevenue(items []model.OrderItem, categories map[string]string, n int) []model.CategoryRevenue {
	sums := GroupSum(items,
		func(i model.OrderItem) string { return CategoryOf(categories, i.ProductID) },
		itemRevenue,
	)

	top := TopN(sums, n, ByValueDesc[string, float64])
	out := make([]model.CategoryRevenue, 0, len(top))
	for _, e := range top {
		out = append(out, model.CategoryRevenue{Category: e.Key, Revenue: e.Value})
	}
	return out
}

// TopSellers sums item price (no freight) per seller and returns the top n.
func TopSellers(items []model.OrderItem, n int) []model.SellerRevenue {
	sums := GroupSum(items, func(i model.OrderItem) string { return i.SellerID }, itemPrice)

	top := TopN(sums, n, ByValueDesc[string, float64])
	out := make([]model.SellerRevenue, 0, len(top))
	for _, e := range top {
		out = append(out, model.SellerRevenue{Seller: e.Key, Revenue: e.Value})
	}
	return out
}

// OrderStatus counts orders per status, most frequent first.
func OrderStatus(orders []model.Order) []model.OrderStatusCount {
	counts := GroupCount(orders, func(o model.Order) string { return o.Status })

	all := TopN(counts, 0, ByValueDesc[string, int])
	out := make([]model.OrderStatusCount, 0, len(all))
	for _, e := range all {
		out = append(out, model.OrderStatusCount{Status: e.Key, Count: e.Value})
	}
	return out
}

// ZipPrefixes returns each customer zip prefix once, in first-seen order.
func ZipPrefixes(customers []model.Customer) []string {
	return GroupCount(customers, customerZip).Keys
}

func customerZip(c model.Customer) string { return c.ZipPrefix }

// CustomerLocations counts customers per zip prefix and attaches the first
// geolocation row seen for each zip. Zips without customers are dropped;
// the rest are ordered by descending count and capped at limit.
func CustomerLocations(customers []model.Customer, geos []model.Geolocation, limit int) []model.CustomerLocation {
	counts := GroupCount(customers, customerZip)

	geoZip := func(g model.Geolocation) string { return g.ZipPrefix }
	first := BuildLookupFirst(geos, geoZip, func(g model.Geolocation) model.Geolocation { return g })
	zips := GroupCount(geos, geoZip).Keys

	locations := make([]model.CustomerLocation, 0, len(zips))
	for _, zip := range zips {
		count, _ := counts.Get(zip)
		if count <= 0 {
			continue
		}
		g := first[zip]
		locations = append(locations, model.CustomerLocation{
			Zip:   zip,
			Lat:   g.Lat,
			Lon:   g.Lon,
			City:  g.City,
			State: g.State,
			Count: count,
		})
	}

	slices.SortStableFunc(locations, func(a, b model.CustomerLocation) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if limit > 0 && len(locations) > limit {
		locations = locations[:limit]
	}
	return locations
}
