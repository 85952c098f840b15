//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package aggregate holds the pure group-by, lookup and statistical
// primitives the snapshot sections are built from. Nothing here performs
// I/O and no function retains or mutates its inputs.
package aggregate

import (
	"cmp"
	"slices"
)

// Groups is the result of a group-by. Keys lists every key once in the
// order it was first seen, so iteration and tie-breaking are deterministic.
type Groups[K comparable, V any] struct {
	Keys   []K
	Values map[K]V
}

// Entry is one key/value pair of a Groups.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Len returns the number of distinct keys.
func (g Groups[K, V]) Len() int {
	return len(g.Keys)
}

// Get returns the value for k.
func (g Groups[K, V]) Get(k K) (V, bool) {
	v, ok := g.Values[k]
	return v, ok
}

// Entries returns the groups as pairs in first-seen key order.
func (g Groups[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], 0, len(g.Keys))
	for _, k := range g.Keys {
		out = append(out, Entry[K, V]{Key: k, Value: g.Values[k]})
	}
	return out
}

// Fold reduces rows into one accumulator per key. init creates the
// accumulator the first time a key is seen; step folds a row into it.
func Fold[T any, K comparable, A any](rows []T, key func(T) K, init func(K) A, step func(A, T) A) Groups[K, A] {
	g := Groups[K, A]{Values: make(map[K]A)}
	for _, r := range rows {
		k := key(r)
		acc, ok := g.Values[k]
		if !ok {
			acc = init(k)
			g.Keys = append(g.Keys, k)
		}
		g.Values[k] = step(acc, r)
	}
	return g
}

// GroupSum sums value(row) per key.
func GroupSum[T any, K comparable](rows []T, key func(T) K, value func(T) float64) Groups[K, float64] {
	return Fold(rows, key,
		func(K) float64 { return 0 },
		func(acc float64, r T) float64 { return acc + value(r) },
	)
}

// GroupCount counts rows per key.
func GroupCount[T any, K comparable](rows []T, key func(T) K) Groups[K, int] {
	return Fold(rows, key,
		func(K) int { return 0 },
		func(acc int, r T) int { return acc + 1 },
	)
}

// GroupCountDistinct counts distinct values of distinct(row) per key.
func GroupCountDistinct[T any, K comparable, D comparable](rows []T, key func(T) K, distinct func(T) D) Groups[K, int] {
	sets := Fold(rows, key,
		func(K) map[D]struct{} { return make(map[D]struct{}) },
		func(acc map[D]struct{}, r T) map[D]struct{} {
			acc[distinct(r)] = struct{}{}
			return acc
		},
	)

	out := Groups[K, int]{Keys: sets.Keys, Values: make(map[K]int, len(sets.Keys))}
	for _, k := range sets.Keys {
		out.Values[k] = len(sets.Values[k])
	}
	return out
}

// TopN sorts the entries with cmpFn, keeping first-seen order among equal
// entries, and returns the first n. n <= 0 returns every entry.
func TopN[K comparable, V any](g Groups[K, V], n int, cmpFn func(a, b Entry[K, V]) int) []Entry[K, V] {
	entries := g.Entries()
	slices.SortStableFunc(entries, cmpFn)
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// ByValueDesc orders entries by descending value.
func ByValueDesc[K comparable, V cmp.Ordered](a, b Entry[K, V]) int {
	return cmp.Compare(b.Value, a.Value)
}

// ByKeyAsc orders entries by ascending key.
func ByKeyAsc[K cmp.Ordered, V any](a, b Entry[K, V]) int {
	return cmp.Compare(a.Key, b.Key)
}

// ByKeyDesc orders entries by descending key.
func ByKeyDesc[K cmp.Ordered, V any](a, b Entry[K, V]) int {
	return cmp.Compare(b.Key, a.Key)
}

// BuildLookup maps key(row) to value(row). Later rows overwrite earlier
// ones for the same key.
func BuildLookup[T any, K comparable, V any](rows []T, key func(T) K, value func(T) V) map[K]V {
	out := make(map[K]V, len(rows))
	for _, r := range rows {
		out[key(r)] = value(r)
	}
	return out
}

// BuildLookupFirst is BuildLookup with first-write-wins semantics, used to
// collapse noisy multi-row keys.
func BuildLookupFirst[T any, K comparable, V any](rows []T, key func(T) K, value func(T) V) map[K]V {
	out := make(map[K]V, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, ok := out[k]; ok {
			continue
		}
		out[k] = value(r)
	}
	return out
}

// SafeDiv returns num/den, or 0 when den is 0.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Percent returns part/total*100, or 0 when total is 0.
func Percent(part, total float64) float64 {
	return SafeDiv(part, total) * 100
}
