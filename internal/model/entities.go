//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package model defines the source entities read from the row store, the
// typed ingestion rules applied to raw rows, and the derived snapshot types.
package model

import "time"

// Row is a single record returned by a table source, keyed by column name.
type Row map[string]any

// Table names of the normalized retail schema.
const (
	TableOrders      = "orders"
	TableOrderItems  = "order_items"
	TableCustomers   = "customers"
	TableProducts    = "products"
	TableGeolocation = "geolocation"
	TableReviews     = "order_reviews"
	TablePayments    = "order_payments"
	TableSellers     = "sellers"
)

// Column names shared by the fetch layer and the decoders.
const (
	ColOrderID            = "order_id"
	ColCustomerID         = "customer_id"
	ColOrderStatus        = "order_status"
	ColPurchaseTimestamp  = "order_purchase_timestamp"
	ColDeliveredDate      = "order_delivered_customer_date"
	ColEstimatedDelivery  = "order_estimated_delivery_date"
	ColOrderItemID        = "order_item_id"
	ColProductID          = "product_id"
	ColSellerID           = "seller_id"
	ColPrice              = "price"
	ColFreightValue       = "freight_value"
	ColCustomerZip        = "customer_zip_code_prefix"
	ColCustomerCity       = "customer_city"
	ColCustomerState      = "customer_state"
	ColCategoryEnglish    = "product_category_name_english"
	ColGeoZip             = "geolocation_zip_code_prefix"
	ColGeoLat             = "geolocation_lat"
	ColGeoLng             = "geolocation_lng"
	ColGeoCity            = "geolocation_city"
	ColGeoState           = "geolocation_state"
	ColReviewID           = "review_id"
	ColReviewScore        = "review_score"
	ColPaymentSequential  = "payment_sequential"
	ColPaymentType        = "payment_type"
	ColPaymentInstallment = "payment_installments"
	ColPaymentValue       = "payment_value"
	ColSellerZip          = "seller_zip_code_prefix"
	ColSellerCity         = "seller_city"
	ColSellerState        = "seller_state"
)

// Order statuses that carry meaning for the pipeline.
const (
	StatusDelivered  = "delivered"
	StatusShipped    = "shipped"
	StatusCanceled   = "canceled"
	StatusProcessing = "processing"
	StatusInvoiced   = "invoiced"
)

// UnknownCategory is substituted for products without an English category.
const UnknownCategory = "Unknown"

// Order is a purchase placed by a customer. Zero times mean "not present".
type Order struct {
	ID          string
	CustomerID  string
	Status      string
	PurchasedAt time.Time
	DeliveredAt time.Time
	EstimatedAt time.Time
}

// Delivered reports whether the order reached the delivered status.
func (o Order) Delivered() bool {
	return o.Status == StatusDelivered
}

// OrderItem is one line of an order.
type OrderItem struct {
	OrderID   string
	ProductID string
	SellerID  string
	Price     float64
	Freight   float64
}

// Revenue is price plus freight, the currency value every revenue metric sums.
func (i OrderItem) Revenue() float64 {
	return i.Price + i.Freight
}

// Customer is a buyer identified by id and located by zip prefix.
type Customer struct {
	ID        string
	ZipPrefix string
	City      string
	State     string
}

// Product carries the attribute used for category rollups.
type Product struct {
	ID       string
	Category string
}

// Geolocation maps a zip prefix to coordinates. Several rows may share a zip.
type Geolocation struct {
	ZipPrefix string
	Lat       float64
	Lon       float64
	City      string
	State     string
}

// Review is the customer satisfaction score left for an order.
type Review struct {
	OrderID string
	Score   int
}

// Payment is one payment instalment plan attached to an order.
type Payment struct {
	OrderID      string
	Type         string
	Installments int
	Value        float64
}
