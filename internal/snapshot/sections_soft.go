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
	"fmt"

	"github.com/pgEdge/pgedge-retailbi/internal/aggregate"
	"github.com/pgEdge/pgedge-retailbi/internal/model"
	"github.com/pgEdge/pgedge-retailbi/internal/source"
)

// Soft sections always return a usable applyFunc. Each metric whose rows
// could not be fetched keeps its default and contributes to the joined
// error, which the assembler logs without failing the build.

func runBehavior(ctx context.Context, a *Assembler) (applyFunc, error) {
	behavior := model.CustomerBehavior{NewVsReturning: []model.CohortPoint{}}
	var errs []error

	rows, err := a.selectRows(ctx, source.Query{
		Table:   model.TableOrders,
		Columns: []string{model.ColOrderID, model.ColCustomerID},
		Eq:      deliveredOnly,
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("repeat rate: %w", err))
	} else {
		behavior.RepeatRate = aggregate.RepeatRate(model.DecodeOrders(rows))
	}

	rows, err = a.selectRows(ctx, source.Query{
		Table:     model.TableOrders,
		Columns:   []string{model.ColOrderID, model.ColPurchaseTimestamp, model.ColCustomerID},
		Eq:        deliveredOnly,
		OrderBy:   model.ColPurchaseTimestamp,
		Ascending: true,
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("cohorts: %w", err))
	} else {
		behavior.NewVsReturning = aggregate.ClassifyCohorts(model.DecodeOrders(rows))
	}

	return func(s *model.Snapshot) { s.CustomerBehavior = behavior }, errors.Join(errs...)
}

func runSatisfaction(ctx context.Context, a *Assembler) (applyFunc, error) {
	satisfaction := model.CustomerSatisfaction{
		ScoreDistribution:   []model.ScoreCount{},
		DeliveryCorrelation: []model.DeliveryCorrelation{},
	}
	var errs []error

	rows, err := a.selectRows(ctx, source.Query{
		Table:   model.TableReviews,
		Columns: []string{model.ColReviewScore},
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("review scores: %w", err))
	} else {
		satisfaction.AvgScore, satisfaction.ScoreDistribution = aggregate.ReviewScores(model.DecodeReviews(rows))
	}

	orderRows, orderErr := a.selectRows(ctx, source.Query{
		Table: model.TableOrders,
		Columns: []string{
			model.ColOrderID,
			model.ColPurchaseTimestamp,
			model.ColDeliveredDate,
			model.ColEstimatedDelivery,
		},
		Eq:      deliveredOnly,
		NotNull: []string{model.ColDeliveredDate, model.ColEstimatedDelivery},
	})
	reviewRows, reviewErr := a.selectRows(ctx, source.Query{
		Table:   model.TableReviews,
		Columns: []string{model.ColOrderID, model.ColReviewScore},
	})
	if err := errors.Join(orderErr, reviewErr); err != nil {
		errs = append(errs, fmt.Errorf("delivery correlation: %w", err))
	} else {
		satisfaction.DeliveryCorrelation = aggregate.CorrelateDelivery(
			model.DecodeOrders(orderRows), model.DecodeReviews(reviewRows))
	}

	return func(s *model.Snapshot) { s.CustomerSatisfaction = satisfaction }, errors.Join(errs...)
}

func runProducts(ctx context.Context, a *Assembler) (applyFunc, error) {
	perf := model.ProductPerformance{
		TopProducts:         []model.ProductStats{},
		CategoryPerformance: []model.CategoryPerformance{},
		SalesConcentration:  []model.ParetoPoint{},
	}

	itemRows, itemErr := a.selectRows(ctx, source.Query{
		Table:   model.TableOrderItems,
		Columns: []string{model.ColProductID, model.ColPrice, model.ColFreightValue, model.ColOrderID},
	})
	productRows, productErr := a.selectRows(ctx, source.Query{
		Table:   model.TableProducts,
		Columns: []string{model.ColProductID, model.ColCategoryEnglish},
	})
	if err := errors.Join(itemErr, productErr); err != nil {
		return func(s *model.Snapshot) { s.ProductPerformance = perf }, fmt.Errorf("product stats: %w", err)
	}

	items := model.DecodeOrderItems(itemRows)
	categories := aggregate.CategoryLookup(model.DecodeProducts(productRows))

	perf.TopProducts = aggregate.TopProducts(items, categories, a.opts.TopProducts)
	perf.CategoryPerformance = aggregate.CategoryPerformance(items, categories, a.opts.TopProductCategories)
	perf.SalesConcentration = aggregate.Pareto(aggregate.ProductEntities(perf.TopProducts))

	return func(s *model.Snapshot) { s.ProductPerformance = perf }, nil
}

func runAnalytics(ctx context.Context, a *Assembler) (applyFunc, error) {
	analytics := model.Analytics{
		DeliveryDistribution:    []model.DeliveryBucket{},
		PaymentMethods:          []model.PaymentMethodShare{},
		InstallmentDistribution: []model.InstallmentBucket{},
	}
	var errs []error

	rows, err := a.selectRows(ctx, source.Query{
		Table: model.TableOrders,
		Columns: []string{
			model.ColPurchaseTimestamp,
			model.ColDeliveredDate,
			model.ColEstimatedDelivery,
		},
		Eq:      deliveredOnly,
		NotNull: []string{model.ColDeliveredDate, model.ColPurchaseTimestamp},
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("delivery times: %w", err))
	} else {
		logistics := aggregate.DeliveryStats(model.DecodeOrders(rows))
		analytics.AvgDeliveryDays = logistics.AvgDeliveryDays
		analytics.OnTimeDeliveryRate = logistics.OnTimeDeliveryRate
		analytics.DeliveryDistribution = logistics.Distribution
	}

	rows, err = a.selectRows(ctx, source.Query{
		Table:   model.TablePayments,
		Columns: []string{model.ColPaymentType, model.ColPaymentInstallment, model.ColPaymentValue},
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("payments: %w", err))
	} else {
		payments := aggregate.Payments(model.DecodePayments(rows), a.opts.InstallmentBuckets)
		analytics.PaymentMethods = payments.Methods
		analytics.TopPaymentMethod = payments.TopMethod
		analytics.InstallmentDistribution = payments.Installments
		analytics.AvgInstallments = payments.AvgInstallments
	}

	return func(s *model.Snapshot) { s.Analytics = analytics }, errors.Join(errs...)
}
