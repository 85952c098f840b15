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

	"github.com/pgEdge/pgedge-retailbi/internal/model"
)

// Tier is a section's failure policy.
type Tier int

const (
	// Hard sections abort the whole build on any source error.
	Hard Tier = iota
	// Soft sections fall back to defaults per metric and never abort.
	Soft
)

func (t Tier) String() string {
	if t == Soft {
		return "soft"
	}
	return "hard"
}

// StepKind is the type of source access a step performs.
type StepKind string

const (
	StepSelect  StepKind = "select"
	StepCount   StepKind = "count"
	StepBatched StepKind = "batched"
)

// Step is one source access inside a section.
type Step struct {
	Name  string   `json:"name"`
	Table string   `json:"table"`
	Kind  StepKind `json:"kind"`
	// DependsOn names the step in the same section whose rows supply this
	// step's ids. Empty means the step is independent.
	DependsOn string `json:"depends_on,omitempty"`
}

// SectionInfo describes a section without running it.
type SectionInfo struct {
	Name  string
	Tier  Tier
	Steps []Step
}

// applyFunc merges a section's local result into the snapshot under
// construction.
type applyFunc func(*model.Snapshot)

type section struct {
	SectionInfo
	run func(ctx context.Context, a *Assembler) (applyFunc, error)
}

// Section names.
const (
	SectionKPIs            = "kpis"
	SectionRevenueTrend    = "revenue_trend"
	SectionCategoryRevenue = "category_revenue"
	SectionCustomerGeo     = "customer_geo"
	SectionOrderStatus     = "order_status"
	SectionTopSellers      = "top_sellers"
	SectionBehavior        = "customer_behavior"
	SectionSatisfaction    = "customer_satisfaction"
	SectionProducts        = "product_performance"
	SectionAnalytics       = "logistics_payments"
)

// sections is the dependency graph of a build. Sections are independent of
// each other; the only ordering lives inside a section, expressed by
// Step.DependsOn.
var sections = []section{
	{
		SectionInfo: SectionInfo{Name: SectionKPIs, Tier: Hard, Steps: []Step{
			{Name: "revenue", Table: model.TableOrderItems, Kind: StepSelect},
			{Name: "delivered_orders", Table: model.TableOrders, Kind: StepCount},
			{Name: "customers", Table: model.TableCustomers, Kind: StepCount},
		}},
		run: runKPIs,
	},
	{
		SectionInfo: SectionInfo{Name: SectionRevenueTrend, Tier: Hard, Steps: []Step{
			{Name: "orders", Table: model.TableOrders, Kind: StepSelect},
			{Name: "items", Table: model.TableOrderItems, Kind: StepBatched, DependsOn: "orders"},
		}},
		run: runRevenueTrend,
	},
	{
		SectionInfo: SectionInfo{Name: SectionCategoryRevenue, Tier: Hard, Steps: []Step{
			{Name: "items", Table: model.TableOrderItems, Kind: StepSelect},
			{Name: "products", Table: model.TableProducts, Kind: StepBatched, DependsOn: "items"},
		}},
		run: runCategoryRevenue,
	},
	{
		SectionInfo: SectionInfo{Name: SectionCustomerGeo, Tier: Hard, Steps: []Step{
			{Name: "customers", Table: model.TableCustomers, Kind: StepSelect},
			{Name: "geolocation", Table: model.TableGeolocation, Kind: StepBatched, DependsOn: "customers"},
		}},
		run: runCustomerGeo,
	},
	{
		SectionInfo: SectionInfo{Name: SectionOrderStatus, Tier: Hard, Steps: []Step{
			{Name: "orders", Table: model.TableOrders, Kind: StepSelect},
		}},
		run: runOrderStatus,
	},
	{
		SectionInfo: SectionInfo{Name: SectionTopSellers, Tier: Hard, Steps: []Step{
			{Name: "items", Table: model.TableOrderItems, Kind: StepSelect},
		}},
		run: runTopSellers,
	},
	{
		SectionInfo: SectionInfo{Name: SectionBehavior, Tier: Soft, Steps: []Step{
			{Name: "repeat_orders", Table: model.TableOrders, Kind: StepSelect},
			{Name: "cohort_orders", Table: model.TableOrders, Kind: StepSelect},
		}},
		run: runBehavior,
	},
	{
		SectionInfo: SectionInfo{Name: SectionSatisfaction, Tier: Soft, Steps: []Step{
			{Name: "scores", Table: model.TableReviews, Kind: StepSelect},
			{Name: "delivered_orders", Table: model.TableOrders, Kind: StepSelect},
			{Name: "reviews", Table: model.TableReviews, Kind: StepSelect},
		}},
		run: runSatisfaction,
	},
	{
		SectionInfo: SectionInfo{Name: SectionProducts, Tier: Soft, Steps: []Step{
			{Name: "items", Table: model.TableOrderItems, Kind: StepSelect},
			{Name: "products", Table: model.TableProducts, Kind: StepSelect},
		}},
		run: runProducts,
	},
	{
		SectionInfo: SectionInfo{Name: SectionAnalytics, Tier: Soft, Steps: []Step{
			{Name: "delivered_orders", Table: model.TableOrders, Kind: StepSelect},
			{Name: "payments", Table: model.TablePayments, Kind: StepSelect},
		}},
		run: runAnalytics,
	},
}

// Plan returns the sections of a build in snapshot order.
func Plan() []SectionInfo {
	out := make([]SectionInfo, 0, len(sections))
	for _, s := range sections {
		info := s.SectionInfo
		info.Steps = append([]Step(nil), s.Steps...)
		out = append(out, info)
	}
	return out
}
