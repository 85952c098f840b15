//-------------------------------------------------------------------------
//
// pgEdge Retail BI
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package aggregate

import "github.com/pgEdge/pgedge-retailbi/internal/model"

// PaymentSummary holds the payment analytics.
type PaymentSummary struct {
	Methods         []model.PaymentMethodShare
	TopMethod       *model.PaymentMethodShare
	Installments    []model.InstallmentBucket
	AvgInstallments float64
}

// Payments computes the payment method shares (most used first), the
// installment distribution by ascending installment count capped at
// maxBuckets, and the average installment count.
func Payments(payments []model.Payment, maxBuckets int) PaymentSummary {
	total := float64(len(payments))

	methods := TopN(
		GroupCount(payments, func(p model.Payment) string { return p.Type }),
		0, ByValueDesc[string, int])

	summary := PaymentSummary{
		Methods:      make([]model.PaymentMethodShare, 0, len(methods)),
		Installments: []model.InstallmentBucket{},
	}
	for _, e := range methods {
		summary.Methods = append(summary.Methods, model.PaymentMethodShare{
			Type:       e.Key,
			Count:      e.Value,
			Percentage: Percent(float64(e.Value), total),
		})
	}
	if len(summary.Methods) > 0 {
		top := summary.Methods[0]
		summary.TopMethod = &top
	}

	installments := func(p model.Payment) int {
		if p.Installments < 1 {
			return 1
		}
		return p.Installments
	}

	var months int
	for _, p := range payments {
		months += installments(p)
	}
	summary.AvgInstallments = SafeDiv(float64(months), total)

	buckets := TopN(GroupCount(payments, installments), maxBuckets, ByKeyAsc[int, int])
	for _, e := range buckets {
		summary.Installments = append(summary.Installments, model.InstallmentBucket{
			Installments: e.Key,
			Count:        e.Value,
		})
	}
	return summary
}
