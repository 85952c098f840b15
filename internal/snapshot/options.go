//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package snapshot

import "github.com/pgEdge/pgedge-retailbi/internal/fetch"

// Options sizes the samples and rankings of a snapshot build. Zero fields
// take the defaults from DefaultOptions.
type Options struct {
	// BatchSize is the id count per in-list query.
	BatchSize int
	// Concurrency bounds the number of sections running at once.
	Concurrency int

	TrendLimit     int
	CategorySample int
	SellerSample   int

	TopCategories        int
	TopSellers           int
	GeoLimit             int
	TopProducts          int
	TopProductCategories int
	InstallmentBuckets   int
}

// DefaultOptions returns the dashboard's standard sizes.
func DefaultOptions() Options {
	return Options{
		BatchSize:            fetch.DefaultBatchSize,
		Concurrency:          4,
		TrendLimit:           1000,
		CategorySample:       1000,
		SellerSample:         2000,
		TopCategories:        10,
		TopSellers:           5,
		GeoLimit:             300,
		TopProducts:          20,
		TopProductCategories: 15,
		InstallmentBuckets:   12,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&o.BatchSize, d.BatchSize)
	fill(&o.Concurrency, d.Concurrency)
	fill(&o.TrendLimit, d.TrendLimit)
	fill(&o.CategorySample, d.CategorySample)
	fill(&o.SellerSample, d.SellerSample)
	fill(&o.TopCategories, d.TopCategories)
	fill(&o.TopSellers, d.TopSellers)
	fill(&o.GeoLimit, d.GeoLimit)
	fill(&o.TopProducts, d.TopProducts)
	fill(&o.TopProductCategories, d.TopProductCategories)
	fill(&o.InstallmentBuckets, d.InstallmentBuckets)
	return o
}
