//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// timeLayouts are tried in order when a timestamp arrives as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Float coerces a raw column value to float64. Missing or unparseable values
// become 0 so sums never propagate NULL or NaN.
func Float(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case decimal.Decimal:
		f = x.InexactFloat64()
	case string:
		f = parseDecimal(x)
	case []byte:
		f = parseDecimal(string(x))
	default:
		f = parseDecimal(fmt.Sprint(x))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseDecimal(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// Int coerces a raw column value to int, truncating fractional values.
func Int(v any) int {
	switch x := v.(type) {
	case nil:
		return 0
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n
		}
	}
	return int(Float(v))
}

// String renders a raw column value as text. Numeric keys such as zip
// prefixes stored as integers become their decimal representation.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		if x == math.Trunc(x) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Time coerces a raw column value to a UTC time. Missing or unparseable
// values become the zero time.
func Time(v any) time.Time {
	switch x := v.(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return x.UTC()
	case *time.Time:
		if x == nil {
			return time.Time{}
		}
		return x.UTC()
	case string:
		return parseTime(x)
	case []byte:
		return parseTime(string(x))
	}
	return time.Time{}
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// DecodeOrders converts raw order rows.
func DecodeOrders(rows []Row) []Order {
	out := make([]Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, Order{
			ID:          String(r[ColOrderID]),
			CustomerID:  String(r[ColCustomerID]),
			Status:      String(r[ColOrderStatus]),
			PurchasedAt: Time(r[ColPurchaseTimestamp]),
			DeliveredAt: Time(r[ColDeliveredDate]),
			EstimatedAt: Time(r[ColEstimatedDelivery]),
		})
	}
	return out
}

// DecodeOrderItems converts raw order item rows. Missing price or freight is 0.
func DecodeOrderItems(rows []Row) []OrderItem {
	out := make([]OrderItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, OrderItem{
			OrderID:   String(r[ColOrderID]),
			ProductID: String(r[ColProductID]),
			SellerID:  String(r[ColSellerID]),
			Price:     Float(r[ColPrice]),
			Freight:   Float(r[ColFreightValue]),
		})
	}
	return out
}

// DecodeCustomers converts raw customer rows.
func DecodeCustomers(rows []Row) []Customer {
	out := make([]Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, Customer{
			ID:        String(r[ColCustomerID]),
			ZipPrefix: String(r[ColCustomerZip]),
			City:      String(r[ColCustomerCity]),
			State:     String(r[ColCustomerState]),
		})
	}
	return out
}

// DecodeProducts converts raw product rows. A NULL or blank category
// becomes UnknownCategory.
func DecodeProducts(rows []Row) []Product {
	out := make([]Product, 0, len(rows))
	for _, r := range rows {
		category := strings.TrimSpace(String(r[ColCategoryEnglish]))
		if category == "" {
			category = UnknownCategory
		}
		out = append(out, Product{
			ID:       String(r[ColProductID]),
			Category: category,
		})
	}
	return out
}

// DecodeGeolocations converts raw geolocation rows.
func DecodeGeolocations(rows []Row) []Geolocation {
	out := make([]Geolocation, 0, len(rows))
	for _, r := range rows {
		out = append(out, Geolocation{
			ZipPrefix: String(r[ColGeoZip]),
			Lat:       Float(r[ColGeoLat]),
			Lon:       Float(r[ColGeoLng]),
			City:      String(r[ColGeoCity]),
			State:     String(r[ColGeoState]),
		})
	}
	return out
}

// DecodeReviews converts raw review rows.
func DecodeReviews(rows []Row) []Review {
	out := make([]Review, 0, len(rows))
	for _, r := range rows {
		out = append(out, Review{
			OrderID: String(r[ColOrderID]),
			Score:   Int(r[ColReviewScore]),
		})
	}
	return out
}

// DecodePayments converts raw payment rows. Installments below 1 (including
// NULL) default to a single instalment.
func DecodePayments(rows []Row) []Payment {
	out := make([]Payment, 0, len(rows))
	for _, r := range rows {
		installments := Int(r[ColPaymentInstallment])
		if installments < 1 {
			installments = 1
		}
		out = append(out, Payment{
			OrderID:      String(r[ColOrderID]),
			Type:         String(r[ColPaymentType]),
			Installments: installments,
			Value:        Float(r[ColPaymentValue]),
		})
	}
	return out
}
