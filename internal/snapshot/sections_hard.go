//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package snapshot

import (
	"context"

	"github.com/pgEdge/pgedge-retailbi/internal/aggregate"
	"github.com/pgEdge/pgedge-retailbi/internal/model"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
)

var deliveredOnly = []source.Cond{{Column: model.ColOrderStatus, Value: model.StatusDelivered}}

func runKPIs(ctx context.Context, a *Assembler) (applyFunc, error) {
	rows, err := a.selectRows(ctx, source.Query{
		Table:   model.TableOrderItems,
		Columns: []string{model.ColPrice, model.ColFreightValue},
	})
	if err != nil {
		return nil, err
	}

	delivered, err := a.count(ctx, source.Query{Table: model.TableOrders, Eq: deliveredOnly})
	if err != nil {
		return nil, err
	}

	customers, err := a.count(ctx, source.Query{Table: model.TableCustomers})
	if err != nil {
		return nil, err
	}

	kpis := aggregate.KPIs(model.DecodeOrderItems(rows), delivered, customers)
	return func(s *model.Snapshot) { s.KPIs = kpis }, nil
}

func runRevenueTrend(ctx context.Context, a *Assembler) (applyFunc, error) {
	rows, err := a.selectRows(ctx, source.Query{
		Table:     model.TableOrders,
		Columns:   []string{model.ColOrderID, model.ColPurchaseTimestamp},
		Eq:        deliveredOnly,
		OrderBy:   model.ColPurchaseTimestamp,
		Ascending: true,
		Limit:     a.opts.TrendLimit,
	})
	if err != nil {
		return nil, err
	}
	orders := model.DecodeOrders(rows)

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	itemRows, err := a.batched(ctx, model.TableOrderItems,
		[]string{model.ColOrderID, model.ColPrice, model.ColFreightValue},
		model.ColOrderID, ids)
	if err != nil {
		return nil, err
	}

	trend := aggregate.RevenueTrend(orders, model.DecodeOrderItems(itemRows))
	return func(s *model.Snapshot) { s.RevenueTrend = trend }, nil
}

func runCategoryRevenue(ctx context.Context, a *Assembler) (applyFunc, error) {
	rows, err := a.selectRows(ctx, source.Query{
		Table:     model.TableOrderItems,
		Columns:   []string{model.ColProductID, model.ColPrice, model.ColFreightValue},
		OrderBy:   model.ColOrderID,
		Ascending: true,
		Limit:     a.opts.CategorySample,
	})
	if err != nil {
		return nil, err
	}
	items := model.DecodeOrderItems(rows)

	ids := make([]string, 0, len(items))
	for _, i := range items {
		ids = append(ids, i.ProductID)
	}

	productRows, err := a.batched(ctx, model.TableProducts,
		[]string{model.ColProductID, model.ColCategoryEnglish},
		model.ColProductID, ids)
	if err != nil {
		return nil, err
	}

	categories := aggregate.CategoryLookup(model.DecodeProducts(productRows))
	revenue := aggregate.CategoryRevenue(items, categories, a.opts.TopCategories)
	return func(s *model.Snapshot) { s.CategoryRevenue = revenue }, nil
}

func runCustomerGeo(ctx context.Context, a *Assembler) (applyFunc, error) {
	rows, err := a.selectRows(ctx, source.Query{
		Table:   model.TableCustomers,
		Columns: []string{model.ColCustomerZip},
	})
	if err != nil {
		return nil, err
	}
	customers := model.DecodeCustomers(rows)

	geoRows, err := a.batched(ctx, model.TableGeolocation,
		[]string{model.ColGeoZip, model.ColGeoLat, model.ColGeoLng, model.ColGeoCity, model.ColGeoState},
		model.ColGeoZip, aggregate.ZipPrefixes(customers))
	if err != nil {
		return nil, err
	}

	locations := aggregate.CustomerLocations(customers, model.DecodeGeolocations(geoRows), a.opts.GeoLimit)
	return func(s *model.Snapshot) { s.CustomerGeo = locations }, nil
}

func runOrderStatus(ctx context.Context, a *Assembler) (applyFunc, error) {
	rows, err := a.selectRows(ctx, source.Query{
		Table:   model.TableOrders,
		Columns: []string{model.ColOrderStatus},
	})
	if err != nil {
		return nil, err
	}

	status := aggregate.OrderStatus(model.DecodeOrders(rows))
	return func(s *model.Snapshot) { s.OrderStatus = status }, nil
}

func runTopSellers(ctx context.Context, a *Assembler) (applyFunc, error) {
	rows, err := a.selectRows(ctx, source.Query{
		Table:     model.TableOrderItems,
		Columns:   []string{model.ColSellerID, model.ColPrice},
		OrderBy:   model.ColOrderID,
		Ascending: true,
		Limit:     a.opts.SellerSample,
	})
	if err != nil {
		return nil, err
	}

	sellers := aggregate.TopSellers(model.DecodeOrderItems(rows), a.opts.TopSellers)
	return func(s *model.Snapshot) { s.TopSellers = sellers }, nil
}
