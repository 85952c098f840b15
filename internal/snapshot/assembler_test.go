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
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-retailbi/internal/model"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
	"github.com/pgEdge/pgedge-retailbi/internal/source/memory"
)

var base = time.Date(2018, 1, 10, 9, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return base.Add(time.Duration(n) * 24 * time.Hour)
}

// fixture loads a small but complete dataset: three customers, four orders
// (three delivered), items across two categories, reviews and payments.
func fixture() *memory.Source {
	src := memory.New()

	src.Load(model.TableCustomers,
		source.Row{"customer_id": "c1", "customer_zip_code_prefix": "01001"},
		source.Row{"customer_id": "c2", "customer_zip_code_prefix": "02002"},
		source.Row{"customer_id": "c3", "customer_zip_code_prefix": "02002"},
	)
	src.Load(model.TableGeolocation,
		source.Row{"geolocation_zip_code_prefix": "01001", "geolocation_lat": -23.5, "geolocation_lng": -46.6, "geolocation_city": "sao paulo", "geolocation_state": "SP"},
		source.Row{"geolocation_zip_code_prefix": "01001", "geolocation_lat": -23.6, "geolocation_lng": -46.7, "geolocation_city": "sao paulo", "geolocation_state": "SP"},
		source.Row{"geolocation_zip_code_prefix": "02002", "geolocation_lat": -22.9, "geolocation_lng": -43.2, "geolocation_city": "rio de janeiro", "geolocation_state": "RJ"},
	)
	src.Load(model.TableProducts,
		source.Row{"product_id": "p1", "product_category_name_english": "toys"},
		source.Row{"product_id": "p2", "product_category_name_english": nil},
	)
	src.Load(model.TableOrders,
		source.Row{"order_id": "o1", "customer_id": "c1", "order_status": "delivered",
			"order_purchase_timestamp": day(0), "order_delivered_customer_date": day(4), "order_estimated_delivery_date": day(10)},
		source.Row{"order_id": "o2", "customer_id": "c1", "order_status": "delivered",
			"order_purchase_timestamp": day(40), "order_delivered_customer_date": day(55), "order_estimated_delivery_date": day(50)},
		source.Row{"order_id": "o3", "customer_id": "c2", "order_status": "delivered",
			"order_purchase_timestamp": day(20), "order_delivered_customer_date": day(28), "order_estimated_delivery_date": day(30)},
		source.Row{"order_id": "o4", "customer_id": "c3", "order_status": "shipped",
			"order_purchase_timestamp": day(45)},
	)
	src.Load(model.TableOrderItems,
		source.Row{"order_id": "o1", "order_item_id": 1, "product_id": "p1", "seller_id": "s1", "price": 100.0, "freight_value": 10.0},
		source.Row{"order_id": "o2", "order_item_id": 1, "product_id": "p2", "seller_id": "s2", "price": 50.0, "freight_value": 5.0},
		source.Row{"order_id": "o2", "order_item_id": 2, "product_id": "p1", "seller_id": "s1", "price": 100.0, "freight_value": nil},
		source.Row{"order_id": "o3", "order_item_id": 1, "product_id": "p2", "seller_id": "s2", "price": 20.0, "freight_value": 2.0},
	)
	src.Load(model.TableReviews,
		source.Row{"review_id": "r1", "order_id": "o1", "review_score": 5},
		source.Row{"review_id": "r2", "order_id": "o2", "review_score": 2},
		source.Row{"review_id": "r3", "order_id": "o3", "review_score": 4},
	)
	src.Load(model.TablePayments,
		source.Row{"order_id": "o1", "payment_sequential": 1, "payment_type": "credit_card", "payment_installments": 3, "payment_value": 110.0},
		source.Row{"order_id": "o2", "payment_sequential": 1, "payment_type": "boleto", "payment_installments": nil, "payment_value": 155.0},
		source.Row{"order_id": "o3", "payment_sequential": 1, "payment_type": "credit_card", "payment_installments": 1, "payment_value": 22.0},
	)
	return src
}

func TestBuildSingleDeliveredOrder(t *testing.T) {
	src := memory.New()
	src.Load(model.TableCustomers, source.Row{"customer_id": "c1", "customer_zip_code_prefix": "01001"})
	src.Load(model.TableOrders, source.Row{"order_id": "1", "customer_id": "c1", "order_status": "delivered", "order_purchase_timestamp": base})
	src.Load(model.TableOrderItems, source.Row{"order_id": "1", "product_id": "p1", "seller_id": "s1", "price": 100.0, "freight_value": 10.0})

	snap, err := NewAssembler(src, Options{}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := model.KPISet{TotalRevenue: 110, TotalOrders: 1, UniqueCustomers: 1, AvgOrderValue: 110}
	if snap.KPIs != want {
		t.Errorf("expected KPIs %+v, got %+v", want, snap.KPIs)
	}
	if len(snap.RevenueTrend) != 1 || snap.RevenueTrend[0].Revenue != 110 {
		t.Errorf("expected one trend point of 110, got %+v", snap.RevenueTrend)
	}
}

func TestBuildFixture(t *testing.T) {
	snap, err := NewAssembler(fixture(), Options{}).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if snap.KPIs.TotalRevenue != 287 || snap.KPIs.TotalOrders != 3 || snap.KPIs.UniqueCustomers != 3 {
		t.Errorf("unexpected KPIs %+v", snap.KPIs)
	}

	if len(snap.RevenueTrend) != 3 {
		t.Fatalf("expected 3 trend points, got %d", len(snap.RevenueTrend))
	}
	wantTrend := []float64{110, 22, 155}
	for i, p := range snap.RevenueTrend {
		if p.Revenue != wantTrend[i] {
			t.Errorf("trend point %d: expected %v, got %v", i, wantTrend[i], p.Revenue)
		}
	}

	if snap.CategoryRevenue[0].Category != "toys" || snap.CategoryRevenue[0].Revenue != 210 {
		t.Errorf("expected toys=210 first, got %+v", snap.CategoryRevenue[0])
	}
	if snap.CategoryRevenue[1].Category != model.UnknownCategory {
		t.Errorf("expected Unknown category second, got %+v", snap.CategoryRevenue[1])
	}

	if len(snap.CustomerGeo) != 2 || snap.CustomerGeo[0].Zip != "02002" || snap.CustomerGeo[0].Count != 2 {
		t.Errorf("unexpected customer geo %+v", snap.CustomerGeo)
	}
	if snap.CustomerGeo[1].Lat != -23.5 {
		t.Errorf("expected first geolocation row for 01001, got lat %v", snap.CustomerGeo[1].Lat)
	}

	if len(snap.OrderStatus) != 2 || snap.OrderStatus[0].Status != "delivered" || snap.OrderStatus[0].Count != 3 {
		t.Errorf("unexpected order status %+v", snap.OrderStatus)
	}

	if snap.TopSellers[0].Seller != "s1" || snap.TopSellers[0].Revenue != 200 {
		t.Errorf("expected s1=200 top seller, got %+v", snap.TopSellers[0])
	}

	behavior := snap.CustomerBehavior
	if behavior.RepeatRate != 50 {
		t.Errorf("expected repeat rate 50, got %v", behavior.RepeatRate)
	}
	wantCohorts := []model.CohortPoint{
		{Month: "2018-01", New: 2},
		{Month: "2018-02", Returning: 1},
	}
	if !reflect.DeepEqual(behavior.NewVsReturning, wantCohorts) {
		t.Errorf("expected cohorts %+v, got %+v", wantCohorts, behavior.NewVsReturning)
	}

	sat := snap.CustomerSatisfaction
	if sat.AvgScore != 11.0/3 {
		t.Errorf("expected avg score 3.67, got %v", sat.AvgScore)
	}
	if sat.DeliveryCorrelation[0].Count != 2 || sat.DeliveryCorrelation[0].AvgScore != 4.5 {
		t.Errorf("unexpected on-time correlation %+v", sat.DeliveryCorrelation[0])
	}
	if sat.DeliveryCorrelation[1].Count != 1 || sat.DeliveryCorrelation[1].AvgScore != 2 {
		t.Errorf("unexpected delayed correlation %+v", sat.DeliveryCorrelation[1])
	}

	perf := snap.ProductPerformance
	if perf.TopProducts[0].ProductID != "p1" || perf.TopProducts[0].UnitsSold != 2 {
		t.Errorf("unexpected top product %+v", perf.TopProducts[0])
	}
	if last := perf.SalesConcentration[len(perf.SalesConcentration)-1]; last.CumulativePercentage != 100 {
		t.Errorf("expected pareto to end at 100, got %v", last.CumulativePercentage)
	}

	an := snap.Analytics
	if an.AvgDeliveryDays != 9 {
		t.Errorf("expected avg delivery 9 days, got %v", an.AvgDeliveryDays)
	}
	wantBuckets := []model.DeliveryBucket{{Range: "0-5", Count: 1}, {Range: "6-10", Count: 1}, {Range: "11-15", Count: 1}}
	if !reflect.DeepEqual(an.DeliveryDistribution, wantBuckets) {
		t.Errorf("expected buckets %+v, got %+v", wantBuckets, an.DeliveryDistribution)
	}
	if an.TopPaymentMethod == nil || an.TopPaymentMethod.Type != "credit_card" {
		t.Errorf("expected credit_card top method, got %+v", an.TopPaymentMethod)
	}
	if an.AvgInstallments != 5.0/3 {
		t.Errorf("expected avg installments 1.67, got %v", an.AvgInstallments)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	a := NewAssembler(fixture(), Options{Concurrency: 3, BatchSize: 1})

	first, err := a.Build(context.Background())
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	second, err := a.Build(context.Background())
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical snapshots from unchanged source")
	}
	fp1, _ := Fingerprint(first)
	fp2, _ := Fingerprint(second)
	if fp1 != fp2 {
		t.Errorf("expected equal fingerprints, got %s and %s", fp1, fp2)
	}
}

func TestRefreshPublishes(t *testing.T) {
	a := NewAssembler(fixture(), Options{})
	if !a.State().Loading {
		t.Error("expected initial state to be loading")
	}

	if err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	st := a.State()
	if st.Loading || st.Error != "" {
		t.Errorf("expected settled state, got loading=%v error=%q", st.Loading, st.Error)
	}
	if st.Snapshot.KPIs.TotalOrders != 3 {
		t.Errorf("expected published snapshot, got %+v", st.Snapshot.KPIs)
	}
	if st.Fingerprint == "" || st.BuiltAt.IsZero() {
		t.Error("expected fingerprint and build time to be set")
	}
}

func TestHardFailureKeepsPriorSnapshot(t *testing.T) {
	src := fixture()
	a := NewAssembler(src, Options{})
	if err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("initial Refresh failed: %v", err)
	}
	prior := a.State()

	boom := errors.New("relation does not exist")
	src.FailOn(model.TableCustomers, boom)

	err := a.Refresh(context.Background())
	var sectionErr *SectionError
	if !errors.As(err, &sectionErr) {
		t.Fatalf("expected SectionError, got %v", err)
	}
	if sectionErr.Section != SectionKPIs && sectionErr.Section != SectionCustomerGeo {
		t.Errorf("expected a customers-backed hard section, got %s", sectionErr.Section)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected source error to be wrapped, got %v", err)
	}

	st := a.State()
	if st.Loading {
		t.Error("expected loading to be false after failure")
	}
	if st.Error == "" {
		t.Error("expected error to be recorded")
	}
	if st.Snapshot != prior.Snapshot || st.Fingerprint != prior.Fingerprint {
		t.Error("expected prior snapshot to remain published")
	}

	src.FailOn(model.TableCustomers, nil)
	if err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("recovery Refresh failed: %v", err)
	}
	if a.State().Error != "" {
		t.Error("expected error to clear after a successful build")
	}
}

func TestHardFailureBeforeFirstBuildKeepsEmptySnapshot(t *testing.T) {
	src := fixture()
	src.FailOn(model.TableOrderItems, errors.New("timeout"))
	a := NewAssembler(src, Options{})

	if err := a.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	st := a.State()
	if !reflect.DeepEqual(st.Snapshot, model.EmptySnapshot()) {
		t.Error("expected empty snapshot to remain in effect")
	}
}

func TestSoftFailureDegradesSection(t *testing.T) {
	tests := []struct {
		name  string
		table string
		check func(t *testing.T, s *model.Snapshot)
	}{
		{
			name:  "payments",
			table: model.TablePayments,
			check: func(t *testing.T, s *model.Snapshot) {
				if s.Analytics.TopPaymentMethod != nil || len(s.Analytics.PaymentMethods) != 0 || s.Analytics.AvgInstallments != 0 {
					t.Errorf("expected payment defaults, got %+v", s.Analytics)
				}
				if s.Analytics.AvgDeliveryDays == 0 {
					t.Error("expected delivery metrics to survive payment failure")
				}
			},
		},
		{
			name:  "reviews",
			table: model.TableReviews,
			check: func(t *testing.T, s *model.Snapshot) {
				sat := s.CustomerSatisfaction
				if sat.AvgScore != 0 || len(sat.ScoreDistribution) != 0 || len(sat.DeliveryCorrelation) != 0 {
					t.Errorf("expected satisfaction defaults, got %+v", sat)
				}
				if s.CustomerSatisfaction.ScoreDistribution == nil {
					t.Error("expected empty, non-nil distribution")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := fixture()
			src.FailOn(tt.table, errors.New("permission denied"))
			a := NewAssembler(src, Options{})

			if err := a.Refresh(context.Background()); err != nil {
				t.Fatalf("expected soft failure not to abort build, got %v", err)
			}

			st := a.State()
			if st.Error != "" {
				t.Errorf("expected no error for soft failure, got %q", st.Error)
			}
			if st.Snapshot.KPIs.TotalOrders != 3 {
				t.Error("expected hard sections to be published")
			}
			tt.check(t, st.Snapshot)
		})
	}
}

func TestSharedTableFailsHardSection(t *testing.T) {
	// Products back both the soft product section and the hard category
	// revenue section; the hard tier wins.
	src := fixture()
	src.FailOn(model.TableProducts, errors.New("permission denied"))

	_, err := NewAssembler(src, Options{}).Build(context.Background())
	var sectionErr *SectionError
	if !errors.As(err, &sectionErr) || sectionErr.Section != SectionCategoryRevenue {
		t.Fatalf("expected category revenue failure, got %v", err)
	}
}

func TestCancellationPublishesNothing(t *testing.T) {
	src := fixture()
	a := NewAssembler(src, Options{})
	if err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("initial Refresh failed: %v", err)
	}
	prior := a.State()

	src.SetDelay(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := a.Refresh(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	st := a.State()
	if st.Loading || st.Error != "" {
		t.Errorf("expected unchanged settled state, got loading=%v error=%q", st.Loading, st.Error)
	}
	if st.Snapshot != prior.Snapshot {
		t.Error("expected no new snapshot after cancellation")
	}
}

func TestDeadlineIsRecordedAsFailure(t *testing.T) {
	src := fixture()
	src.SetDelay(time.Second)
	a := NewAssembler(src, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := a.Refresh(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if a.State().Error == "" {
		t.Error("expected deadline to be recorded as an error")
	}
}

func TestRevenueTrendBatching(t *testing.T) {
	src := fixture()
	a := NewAssembler(src, Options{BatchSize: 2})

	src.ResetCalls()
	if _, err := runRevenueTrend(context.Background(), a); err != nil {
		t.Fatalf("runRevenueTrend failed: %v", err)
	}
	// Three delivered orders in chunks of two.
	if got := src.Calls(model.TableOrderItems); got != 2 {
		t.Errorf("expected 2 item queries, got %d", got)
	}
}
