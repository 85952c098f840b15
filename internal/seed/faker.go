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
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// Faker wraps gofakeit with the handful of generators the retail dataset
// needs. All randomness flows through the seeded source so a seed always
// yields the same dataset.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a Faker with a fixed seed for reproducibility.
func NewFaker(seed uint64) *Faker {
	return &Faker{faker: gofakeit.New(seed)}
}

// ID generates a 32 character hex identifier in the style of the retail
// dataset's keys.
func (f *Faker) ID() string {
	return strings.ReplaceAll(f.faker.UUID(), "-", "")
}

// City generates a random city name.
func (f *Faker) City() string {
	return f.faker.City()
}

// ZipPrefix generates a five digit zip prefix.
func (f *Faker) ZipPrefix() string {
	return f.faker.DigitN(5)
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Float64 generates a random float64 between min and max.
func (f *Faker) Float64(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Money generates a currency amount between min and max rounded to cents.
func (f *Faker) Money(min, max float64) float64 {
	return Cents(f.faker.Price(min, max))
}

// Cents rounds v to two decimal places.
func Cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Chance returns true with probability p.
func (f *Faker) Chance(p float64) bool {
	return f.faker.Float64Range(0, 1) < p
}

// Date generates a random time within [start, end), truncated to seconds.
func (f *Faker) Date(start, end time.Time) time.Time {
	return f.faker.DateRange(start, end).UTC().Truncate(time.Second)
}

// Coordinate generates a latitude/longitude pair inside the given box,
// rounded to six decimal places.
func (f *Faker) Coordinate(minLat, maxLat, minLng, maxLng float64) (float64, float64) {
	round := func(v float64) float64 {
		return decimal.NewFromFloat(v).Round(6).InexactFloat64()
	}
	return round(f.Float64(minLat, maxLat)), round(f.Float64(minLng, maxLng))
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}

// FormatCount formats a row count for progress logs.
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
