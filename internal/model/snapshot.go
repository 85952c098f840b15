//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package model

import "time"

// KPISet holds the executive overview figures.
type KPISet struct {
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalOrders     int64   `json:"totalOrders"`
	UniqueCustomers int64   `json:"uniqueCustomers"`
	AvgOrderValue   float64 `json:"avgOrderValue"`
}

// RevenuePoint is the revenue of one sampled order at its purchase time.
type RevenuePoint struct {
	Date    time.Time `json:"date"`
	Revenue float64   `json:"revenue"`
}

// CategoryRevenue is summed item revenue for a product category.
type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// CustomerLocation is the customer count for one zip prefix.
type CustomerLocation struct {
	Zip   string  `json:"zip"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	City  string  `json:"city"`
	State string  `json:"state"`
	Count int     `json:"count"`
}

// OrderStatusCount is the number of orders in a status.
type OrderStatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// SellerRevenue is summed item price (no freight) for a seller.
type SellerRevenue struct {
	Seller  string  `json:"seller"`
	Revenue float64 `json:"revenue"`
}

// CohortPoint counts first-time and returning orders in a calendar month.
type CohortPoint struct {
	Month     string `json:"month"`
	New       int    `json:"new"`
	Returning int    `json:"returning"`
}

// CustomerBehavior groups the retention metrics.
type CustomerBehavior struct {
	RepeatRate     float64       `json:"repeatRate"`
	NewVsReturning []CohortPoint `json:"newVsReturning"`
}

// ScoreCount is the number of reviews with a given score.
type ScoreCount struct {
	Score int `json:"score"`
	Count int `json:"count"`
}

// Delivery correlation bucket labels.
const (
	DeliveryOnTime  = "On Time"
	DeliveryDelayed = "Delayed"
)

// DeliveryCorrelation is the average review score of on-time or delayed orders.
type DeliveryCorrelation struct {
	Status   string  `json:"status"`
	AvgScore float64 `json:"avgScore"`
	Count    int     `json:"count"`
}

// CustomerSatisfaction groups the review metrics.
type CustomerSatisfaction struct {
	AvgScore            float64               `json:"avgScore"`
	ScoreDistribution   []ScoreCount          `json:"scoreDistribution"`
	DeliveryCorrelation []DeliveryCorrelation `json:"deliveryCorrelation"`
}

// ProductStats summarises one product's sales.
type ProductStats struct {
	ProductID    string  `json:"product_id"`
	Category     string  `json:"category"`
	UnitsSold    int     `json:"units_sold"`
	TotalRevenue float64 `json:"total_revenue"`
	UniqueOrders int     `json:"unique_orders"`
	AvgPrice     float64 `json:"avg_price"`
}

// CategoryPerformance summarises one category's sales.
type CategoryPerformance struct {
	Category      string  `json:"category"`
	OrderCount    int     `json:"order_count"`
	ItemsSold     int     `json:"items_sold"`
	TotalRevenue  float64 `json:"total_revenue"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// Pareto group labels.
const (
	ParetoTop    = "Top 20%"
	ParetoBottom = "Bottom 80%"
)

// ParetoPoint is one entity in a sales concentration ranking.
type ParetoPoint struct {
	Rank                 int     `json:"rank"`
	EntityID             string  `json:"product_id"`
	Category             string  `json:"category"`
	Revenue              float64 `json:"revenue"`
	CumulativePercentage float64 `json:"cumulative_percentage"`
	GroupLabel           string  `json:"pareto_group"`
}

// ProductPerformance groups the product metrics.
type ProductPerformance struct {
	TopProducts         []ProductStats        `json:"topProducts"`
	CategoryPerformance []CategoryPerformance `json:"categoryPerformance"`
	SalesConcentration  []ParetoPoint         `json:"salesConcentration"`
}

// DeliveryBucket counts deliveries whose duration falls into a day range.
type DeliveryBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// PaymentMethodShare is the count and share of one payment type.
type PaymentMethodShare struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// InstallmentBucket is the number of payments split into N instalments.
type InstallmentBucket struct {
	Installments int `json:"installments"`
	Count        int `json:"count"`
}

// Analytics groups the logistics and payment metrics.
type Analytics struct {
	AvgDeliveryDays         float64              `json:"avgDeliveryDays"`
	OnTimeDeliveryRate      float64              `json:"onTimeDeliveryRate"`
	DeliveryDistribution    []DeliveryBucket     `json:"deliveryDistribution"`
	PaymentMethods          []PaymentMethodShare `json:"paymentMethods"`
	TopPaymentMethod        *PaymentMethodShare  `json:"topPaymentMethod"`
	InstallmentDistribution []InstallmentBucket  `json:"installmentDistribution"`
	AvgInstallments         float64              `json:"avgInstallments"`
}

// Snapshot is the complete set of derived metrics from one assembly run.
// It is treated as read-only once published.
type Snapshot struct {
	KPIs                 KPISet               `json:"kpis"`
	RevenueTrend         []RevenuePoint       `json:"revenueTrend"`
	CategoryRevenue      []CategoryRevenue    `json:"categoryRevenue"`
	CustomerGeo          []CustomerLocation   `json:"customerGeo"`
	OrderStatus          []OrderStatusCount   `json:"orderStatus"`
	TopSellers           []SellerRevenue      `json:"topSellers"`
	CustomerBehavior     CustomerBehavior     `json:"customerBehavior"`
	CustomerSatisfaction CustomerSatisfaction `json:"customerSatisfaction"`
	ProductPerformance   ProductPerformance   `json:"productPerformance"`
	Analytics            Analytics            `json:"analytics"`
}

// EmptySnapshot returns the all-zero snapshot shown before the first
// successful build. Slices are non-nil so they encode as [].
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		RevenueTrend:    []RevenuePoint{},
		CategoryRevenue: []CategoryRevenue{},
		CustomerGeo:     []CustomerLocation{},
		OrderStatus:     []OrderStatusCount{},
		TopSellers:      []SellerRevenue{},
		CustomerBehavior: CustomerBehavior{
			NewVsReturning: []CohortPoint{},
		},
		CustomerSatisfaction: CustomerSatisfaction{
			ScoreDistribution:   []ScoreCount{},
			DeliveryCorrelation: []DeliveryCorrelation{},
		},
		ProductPerformance: ProductPerformance{
			TopProducts:         []ProductStats{},
			CategoryPerformance: []CategoryPerformance{},
			SalesConcentration:  []ParetoPoint{},
		},
		Analytics: Analytics{
			DeliveryDistribution:    []DeliveryBucket{},
			PaymentMethods:          []PaymentMethodShare{},
			InstallmentDistribution: []InstallmentBucket{},
		},
	}
}
