//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package seed generates a synthetic retail dataset in the shape of the
// normalized schema and loads it into any source that implements
// source.Loader.
package seed

import (
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
)

// Config sizes the generated dataset.
type Config struct {
	Orders    int
	Customers int
	Products  int
	Sellers   int
	Seed      int64
}

// DefaultConfig returns a dataset small enough to generate in memory in
// well under a second.
func DefaultConfig() Config {
	return Config{
		Orders:    2000,
		Customers: 1500,
		Products:  300,
		Sellers:   60,
		Seed:      42,
	}
}

// Validate checks that every entity count is positive.
func (c Config) Validate() error {
	if c.Orders < 1 {
		return fmt.Errorf("orders must be at least 1")
	}
	if c.Customers < 1 {
		return fmt.Errorf("customers must be at least 1")
	}
	if c.Products < 1 {
		return fmt.Errorf("products must be at least 1")
	}
	if c.Sellers < 1 {
		return fmt.Errorf("sellers must be at least 1")
	}
	return nil
}

// Table is one generated table, ready for source.Loader.Insert.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Dataset is a generated set of tables in insert order (parents first).
type Dataset struct {
	Tables []Table
}

// Table returns the named table, or nil.
func (d *Dataset) Table(name string) *Table {
	for i := range d.Tables {
		if d.Tables[i].Name == name {
			return &d.Tables[i]
		}
	}
	return nil
}

// RowCount returns the total number of rows across all tables.
func (d *Dataset) RowCount() int64 {
	var n int64
	for _, t := range d.Tables {
		n += int64(len(t.Rows))
	}
	return n
}

var (
	periodStart = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC)

	categories = []string{
		"bed_bath_table", "health_beauty", "sports_leisure", "furniture_decor",
		"computers_accessories", "housewares", "watches_gifts", "telephony",
		"garden_tools", "auto", "toys", "cool_stuff", "perfumery", "baby",
		"electronics", "stationery", "fashion_bags_accessories", "pet_shop",
	}

	states = []string{"SP", "RJ", "MG", "RS", "PR", "SC", "BA", "DF", "GO", "ES", "PE", "CE"}

	statuses      = []string{model.StatusDelivered, model.StatusShipped, model.StatusCanceled, model.StatusProcessing, model.StatusInvoiced}
	statusWeights = []int{90, 4, 2, 2, 2}

	paymentTypes   = []string{"credit_card", "boleto", "voucher", "debit_card"}
	paymentWeights = []int{74, 19, 5, 2}

	scores         = []int{5, 4, 3, 2, 1}
	onTimeWeights  = []int{60, 22, 9, 3, 6}
	delayedWeights = []int{15, 10, 15, 15, 45}
)

// Generate builds a deterministic dataset: the same config always yields
// the same rows.
func Generate(cfg Config) (*Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &generator{cfg: cfg, f: NewFaker(uint64(cfg.Seed))}
	g.geography()
	g.customers()
	g.sellers()
	g.products()
	g.orders()

	return &Dataset{Tables: []Table{
		g.customerTable,
		g.sellerTable,
		g.productTable,
		g.geoTable,
		g.orderTable,
		g.itemTable,
		g.reviewTable,
		g.paymentTable,
	}}, nil
}

// maxPlaces bounds the number of distinct zip prefixes well below the
// 100000 five digit values.
const maxPlaces = 20000

type place struct {
	zip   string
	city  string
	state string
}

type generator struct {
	cfg Config
	f   *Faker

	places      []place
	customerIDs []string
	sellerIDs   []string
	productIDs  []string

	customerTable Table
	sellerTable   Table
	productTable  Table
	geoTable      Table
	orderTable    Table
	itemTable     Table
	reviewTable   Table
	paymentTable  Table
}

// geography creates the zip prefixes customers and sellers live in, with
// one to three geolocation rows per prefix.
func (g *generator) geography() {
	n := min(max(g.cfg.Customers/4, 1), maxPlaces)
	seen := make(map[string]bool, n)

	g.geoTable = Table{
		Name: model.TableGeolocation,
		Columns: []string{
			model.ColGeoZip, model.ColGeoLat, model.ColGeoLng, model.ColGeoCity, model.ColGeoState,
		},
	}

	for len(g.places) < n {
		zip := g.f.ZipPrefix()
		if seen[zip] {
			continue
		}
		seen[zip] = true

		p := place{zip: zip, city: g.f.City(), state: Choose(g.f, states)}
		g.places = append(g.places, p)

		lat, lng := g.f.Coordinate(-33.7, -2.5, -73.9, -34.8)
		for range g.f.Int(1, 3) {
			g.geoTable.Rows = append(g.geoTable.Rows, []any{
				p.zip,
				lat + g.f.Float64(-0.01, 0.01),
				lng + g.f.Float64(-0.01, 0.01),
				p.city,
				p.state,
			})
		}
	}
}

func (g *generator) customers() {
	g.customerTable = Table{
		Name: model.TableCustomers,
		Columns: []string{
			model.ColCustomerID, "customer_unique_id", model.ColCustomerZip,
			model.ColCustomerCity, model.ColCustomerState,
		},
	}
	for range g.cfg.Customers {
		id := g.f.ID()
		p := Choose(g.f, g.places)
		g.customerIDs = append(g.customerIDs, id)
		g.customerTable.Rows = append(g.customerTable.Rows, []any{id, g.f.ID(), p.zip, p.city, p.state})
	}
}

func (g *generator) sellers() {
	g.sellerTable = Table{
		Name: model.TableSellers,
		Columns: []string{
			model.ColSellerID, model.ColSellerZip, model.ColSellerCity, model.ColSellerState,
		},
	}
	for range g.cfg.Sellers {
		id := g.f.ID()
		p := Choose(g.f, g.places)
		g.sellerIDs = append(g.sellerIDs, id)
		g.sellerTable.Rows = append(g.sellerTable.Rows, []any{id, p.zip, p.city, p.state})
	}
}

// products leaves about one in twenty products without an English
// category so the Unknown rollup is exercised.
func (g *generator) products() {
	g.productTable = Table{
		Name: model.TableProducts,
		Columns: []string{
			model.ColProductID, "product_category_name", model.ColCategoryEnglish, "product_weight_g",
		},
	}
	for range g.cfg.Products {
		id := g.f.ID()
		var category any
		if !g.f.Chance(0.05) {
			category = Choose(g.f, categories)
		}
		g.productIDs = append(g.productIDs, id)
		g.productTable.Rows = append(g.productTable.Rows, []any{id, category, category, g.f.Int(50, 30000)})
	}
}

// orders generates orders with their items, reviews and payments.
// Repeat customers arise naturally since customers are drawn with
// replacement.
func (g *generator) orders() {
	g.orderTable = Table{
		Name: model.TableOrders,
		Columns: []string{
			model.ColOrderID, model.ColCustomerID, model.ColOrderStatus, model.ColPurchaseTimestamp,
			"order_approved_at", model.ColDeliveredDate, model.ColEstimatedDelivery,
		},
	}
	g.itemTable = Table{
		Name: model.TableOrderItems,
		Columns: []string{
			model.ColOrderID, model.ColOrderItemID, model.ColProductID, model.ColSellerID,
			model.ColPrice, model.ColFreightValue,
		},
	}
	g.reviewTable = Table{
		Name:    model.TableReviews,
		Columns: []string{model.ColReviewID, model.ColOrderID, model.ColReviewScore},
	}
	g.paymentTable = Table{
		Name: model.TablePayments,
		Columns: []string{
			model.ColOrderID, model.ColPaymentSequential, model.ColPaymentType,
			model.ColPaymentInstallment, model.ColPaymentValue,
		},
	}

	day := 24 * time.Hour
	for range g.cfg.Orders {
		id := g.f.ID()
		status := ChooseWeighted(g.f, statuses, statusWeights)
		purchased := g.f.Date(periodStart, periodEnd)
		approved := purchased.Add(time.Duration(g.f.Int(10, 48*60)) * time.Minute)
		estimated := purchased.Add(time.Duration(g.f.Int(10, 35)) * day)

		var delivered any
		delayed := false
		if status == model.StatusDelivered {
			at := purchased.Add(time.Duration(g.f.Float64(1, 40) * float64(day))).Truncate(time.Second)
			delayed = at.After(estimated)
			delivered = at
		}

		g.orderTable.Rows = append(g.orderTable.Rows, []any{
			id, Choose(g.f, g.customerIDs), status, purchased, approved, delivered, estimated,
		})

		total := g.items(id)

		if status != model.StatusCanceled && g.f.Chance(0.9) {
			weights := onTimeWeights
			if delayed {
				weights = delayedWeights
			}
			g.reviewTable.Rows = append(g.reviewTable.Rows, []any{
				g.f.ID(), id, ChooseWeighted(g.f, scores, weights),
			})
		}

		g.payments(id, total)
	}
}

func (g *generator) items(orderID string) float64 {
	var total float64
	for i := range g.f.Int(1, 3) {
		price := g.f.Money(5, 500)
		var freight any
		if g.f.Chance(0.98) {
			f := g.f.Money(0, 60)
			freight = f
			total += f
		}
		total += price
		g.itemTable.Rows = append(g.itemTable.Rows, []any{
			orderID, i + 1, Choose(g.f, g.productIDs), Choose(g.f, g.sellerIDs), price, freight,
		})
	}
	return total
}

// payments splits total into one payment, or occasionally a voucher plus
// a second method. Installment counts are sometimes missing.
func (g *generator) payments(orderID string, total float64) {
	seq := 1
	if g.f.Chance(0.03) {
		voucher := g.f.Money(1, max(total/2, 1.01))
		g.paymentTable.Rows = append(g.paymentTable.Rows, []any{orderID, seq, "voucher", 1, voucher})
		total -= voucher
		seq++
	}

	kind := ChooseWeighted(g.f, paymentTypes, paymentWeights)
	var installments any = 1
	switch {
	case g.f.Chance(0.02):
		installments = nil
	case kind == "credit_card":
		installments = g.f.Int(1, 10)
	}

	value := Cents(total)
	g.paymentTable.Rows = append(g.paymentTable.Rows, []any{orderID, seq, kind, installments, value})
}
