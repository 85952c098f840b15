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
	"slices"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
)

// MonthLayout is the UTC calendar month key used by cohorts.
const MonthLayout = "2006-01"

type cohortCounts struct {
	newCount  int
	returning int
}

// ClassifyCohorts tags each order "new" if it is the first chronological
// order of its customer and "returning" otherwise, then tallies both per
// UTC month, ascending by month.
//
// Orders are processed in ascending purchase order; ties keep input order.
// Orders without a purchase timestamp cannot be placed in a month and are
// ignored.
func ClassifyCohorts(orders []model.Order) []model.CohortPoint {
	sorted := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if !o.PurchasedAt.IsZero() {
			sorted = append(sorted, o)
		}
	}
	slices.SortStableFunc(sorted, func(a, b model.Order) int {
		return a.PurchasedAt.Compare(b.PurchasedAt)
	})

	seen := make(map[string]struct{})
	months := Fold(sorted,
		func(o model.Order) string { return o.PurchasedAt.UTC().Format(MonthLayout) },
		func(string) cohortCounts { return cohortCounts{} },
		func(acc cohortCounts, o model.Order) cohortCounts {
			if _, ok := seen[o.CustomerID]; ok {
				acc.returning++
				return acc
			}
			seen[o.CustomerID] = struct{}{}
			acc.newCount++
			return acc
		},
	)

	entries := TopN(months, 0, ByKeyAsc[string, cohortCounts])
	out := make([]model.CohortPoint, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.CohortPoint{
			Month:     e.Key,
			New:       e.Value.newCount,
			Returning: e.Value.returning,
		})
	}
	return out
}

// RepeatRate is the percentage of customers with more than one order among
// customers with at least one.
func RepeatRate(orders []model.Order) float64 {
	perCustomer := GroupCount(orders, func(o model.Order) string { return o.CustomerID })

	repeat := 0
	for _, k := range perCustomer.Keys {
		if perCustomer.Values[k] > 1 {
			repeat++
		}
	}
	return Percent(float64(repeat), float64(perCustomer.Len()))
}
