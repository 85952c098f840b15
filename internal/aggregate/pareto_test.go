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
	"fmt"
	"math/rand"
	"testing"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
)

func TestParetoTwoEntities(t *testing.T) {
	got := Pareto([]RevenueEntity{
		{ID: "p1", Revenue: 80},
		{ID: "p2", Revenue: 20},
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	want := []model.ParetoPoint{
		{Rank: 1, EntityID: "p1", Revenue: 80, CumulativePercentage: 80, GroupLabel: model.ParetoTop},
		{Rank: 2, EntityID: "p2", Revenue: 20, CumulativePercentage: 100, GroupLabel: model.ParetoBottom},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestParetoSortsAndKeepsTies(t *testing.T) {
	got := Pareto([]RevenueEntity{
		{ID: "low", Revenue: 1},
		{ID: "tie-a", Revenue: 5},
		{ID: "tie-b", Revenue: 5},
	})
	order := []string{"tie-a", "tie-b", "low"}
	for i, id := range order {
		if got[i].EntityID != id {
			t.Errorf("rank %d: expected %s, got %s", i+1, id, got[i].EntityID)
		}
	}
}

func TestParetoZeroTotal(t *testing.T) {
	got := Pareto([]RevenueEntity{{ID: "a"}, {ID: "b"}})
	for _, p := range got {
		if p.CumulativePercentage != 0 {
			t.Errorf("expected 0 cumulative percentage, got %v", p.CumulativePercentage)
		}
		if p.GroupLabel != model.ParetoTop {
			t.Errorf("expected %s, got %s", model.ParetoTop, p.GroupLabel)
		}
	}
	if len(Pareto(nil)) != 0 {
		t.Error("expected empty result for no entities")
	}
}

func TestParetoMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(40)
		entities := make([]RevenueEntity, 0, n)
		for i := 0; i < n; i++ {
			entities = append(entities, RevenueEntity{
				ID:      fmt.Sprintf("e%d", i),
				Revenue: float64(rng.Intn(1000)) + rng.Float64(),
			})
		}

		points := Pareto(entities)
		flipped := false
		for i, p := range points {
			if p.Rank != i+1 {
				t.Fatalf("trial %d: expected rank %d, got %d", trial, i+1, p.Rank)
			}
			if i > 0 && p.CumulativePercentage < points[i-1].CumulativePercentage {
				t.Fatalf("trial %d: cumulative percentage decreased at rank %d", trial, p.Rank)
			}
			if p.GroupLabel == model.ParetoBottom {
				flipped = true
			} else if flipped {
				t.Fatalf("trial %d: group label flipped back at rank %d", trial, p.Rank)
			}
		}
		if last := points[len(points)-1].CumulativePercentage; last != 100 {
			t.Fatalf("trial %d: expected last cumulative percentage 100, got %v", trial, last)
		}
	}
}
