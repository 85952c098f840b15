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

// ParetoThreshold is the cumulative share up to which entities are "Top 20%".
const ParetoThreshold = 80.0

// RevenueEntity is one input to a concentration analysis.
type RevenueEntity struct {
	ID       string
	Category string
	Revenue  float64
}

// Pareto ranks entities by descending revenue (ties keep input order) and
// annotates each with its cumulative share of the total. The cumulative
// percentage is non-decreasing and ends at 100 when the total is positive;
// it is 0 throughout when the total is 0.
func Pareto(entities []RevenueEntity) []model.ParetoPoint {
	sorted := slices.Clone(entities)
	slices.SortStableFunc(sorted, func(a, b RevenueEntity) int {
		return cmp.Compare(b.Revenue, a.Revenue)
	})

	var total float64
	for _, e := range sorted {
		total += e.Revenue
	}

	out := make([]model.ParetoPoint, 0, len(sorted))
	var cumulative float64
	for i, e := range sorted {
		cumulative += e.Revenue
		pct := Percent(cumulative, total)
		group := model.ParetoTop
		if pct > ParetoThreshold {
			group = model.ParetoBottom
		}
		out = append(out, model.ParetoPoint{
			Rank:                 i + 1,
			EntityID:             e.ID,
			Category:             e.Category,
			Revenue:              e.Revenue,
			CumulativePercentage: pct,
			GroupLabel:           group,
		})
	}
	return out
}
