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
	"time"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
)

// deliveryRange is an inclusive upper bound in days and its label. The
// last range has no upper bound.
type deliveryRange struct {
	maxDays float64
	label   string
}

var deliveryRanges = []deliveryRange{
	{5, "0-5"},
	{10, "6-10"},
	{15, "11-15"},
	{20, "16-20"},
	{30, "21-30"},
}

const overflowRange = "30+"

// DeliveryRangeLabels lists every bucket label in display order.
func DeliveryRangeLabels() []string {
	out := make([]string, 0, len(deliveryRanges)+1)
	for _, r := range deliveryRanges {
		out = append(out, r.label)
	}
	return append(out, overflowRange)
}

// DeliveryRange returns the bucket label for a fractional day count.
func DeliveryRange(days float64) string {
	for _, r := range deliveryRanges {
		if days <= r.maxDays {
			return r.label
		}
	}
	return overflowRange
}

// DeliveryDays is the fractional number of days between purchase and
// delivery.
func DeliveryDays(o model.Order) float64 {
	return o.DeliveredAt.Sub(o.PurchasedAt).Hours() / 24
}

// DeliveryDistribution buckets day counts. Only non-empty buckets are
// returned, always in the fixed range order.
func DeliveryDistribution(days []float64) []model.DeliveryBucket {
	counts := GroupCount(days, DeliveryRange)

	out := make([]model.DeliveryBucket, 0, counts.Len())
	for _, label := range DeliveryRangeLabels() {
		if n, ok := counts.Get(label); ok {
			out = append(out, model.DeliveryBucket{Range: label, Count: n})
		}
	}
	return out
}

// Logistics holds delivery-time statistics.
type Logistics struct {
	AvgDeliveryDays    float64
	OnTimeDeliveryRate float64
	Distribution       []model.DeliveryBucket
}

// DeliveryStats summarises delivered orders that carry both a purchase and
// a delivery timestamp. An order without an estimate never counts as on
// time.
func DeliveryStats(orders []model.Order) Logistics {
	days := make([]float64, 0, len(orders))
	onTime := 0
	for _, o := range orders {
		if o.PurchasedAt.IsZero() || o.DeliveredAt.IsZero() {
			continue
		}
		days = append(days, DeliveryDays(o))
		if !o.EstimatedAt.IsZero() && !o.DeliveredAt.After(o.EstimatedAt) {
			onTime++
		}
	}

	var total float64
	for _, d := range days {
		total += d
	}

	return Logistics{
		AvgDeliveryDays:    SafeDiv(total, float64(len(days))),
		OnTimeDeliveryRate: Percent(float64(onTime), float64(len(days))),
		Distribution:       DeliveryDistribution(days),
	}
}

// CorrelateDelivery compares review scores of on-time and delayed orders.
// Orders need both a delivery and an estimated date and a matching review;
// "Delayed" means delivered strictly after the estimate. Both buckets are
// always returned, On Time first, with average 0 when empty.
func CorrelateDelivery(orders []model.Order, reviews []model.Review) []model.DeliveryCorrelation {
	scores := BuildLookup(reviews,
		func(r model.Review) string { return r.OrderID },
		func(r model.Review) int { return r.Score },
	)

	var onTime, delayed []int
	for _, o := range orders {
		if o.DeliveredAt.IsZero() || o.EstimatedAt.IsZero() {
			continue
		}
		score, ok := scores[o.ID]
		if !ok {
			continue
		}
		if isDelayed(o.DeliveredAt, o.EstimatedAt) {
			delayed = append(delayed, score)
		} else {
			onTime = append(onTime, score)
		}
	}

	return []model.DeliveryCorrelation{
		{Status: model.DeliveryOnTime, AvgScore: meanInt(onTime), Count: len(onTime)},
		{Status: model.DeliveryDelayed, AvgScore: meanInt(delayed), Count: len(delayed)},
	}
}

func isDelayed(delivered, estimated time.Time) bool {
	return delivered.After(estimated)
}

func meanInt(xs []int) float64 {
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return SafeDiv(float64(sum), float64(len(xs)))
}
