package fincalc

import (
	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Business-day and cycle conventions shared by the engine and the reconciler.
const (
	// BusinessDaysPerYear is the B3 convention used for all CDI-linked yield.
	BusinessDaysPerYear = 252
	// BusinessDaysPerWeek and BusinessDaysPerMonth scale daily projections.
	BusinessDaysPerWeek  = 5
	BusinessDaysPerMonth = 21
	// CalendarDaysPerYear is the divisor for foreign savings-style APY.
	CalendarDaysPerYear = 365
	// SecondsPerDay anchors cycle counting.
	SecondsPerDay = 86400
)

var hundred = decimal.NewFromInt(100)

// EffectiveAnnualRate derives the annual rate for a position. PRE-fixed
// positions use the quota directly as an absolute annual percentage;
// POST-fixed positions take quota% of the benchmark. Inflation-indexed types
// add the inflation spread on top.
func EffectiveAnnualRate(quota decimal.Decimal, mode domain.YieldMode, typ domain.InvestmentType, rates domain.MarketRates) decimal.Decimal {
	var annual decimal.Decimal
	if mode == domain.YieldPre {
		annual = quota.Div(hundred)
	} else {
		annual = quota.Div(hundred).Mul(rates.BenchmarkAnnual)
	}
	if typ == domain.TypeIPCAPlus {
		annual = annual.Add(rates.InflationAnnual)
	}
	return annual
}

// DailyGross is one business day of yield before tax: value × rate / 252.
func DailyGross(value, annualRate decimal.Decimal) decimal.Decimal {
	return value.Mul(annualRate).Div(decimal.NewFromInt(BusinessDaysPerYear))
}

// DailyNet applies the tax retention factors to one business day of yield.
// The same formula backs both the live cycle and the offline reconciler; they
// must never diverge.
func DailyNet(value, annualRate decimal.Decimal, tax TaxMultipliers) decimal.Decimal {
	return DailyGross(value, annualRate).Mul(tax.IRFactor).Mul(tax.IOFFactor)
}

// CyclesPerDay is the number of accrual ticks in a day (8640 for 10s ticks).
func CyclesPerDay(tickSeconds int64) int64 {
	return SecondsPerDay / tickSeconds
}
