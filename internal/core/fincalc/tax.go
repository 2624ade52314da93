// Package fincalc holds the pure financial math behind the simulator: the
// regressive IOF/IR tax curves, effective rate derivation, yield projections
// and the business-day calendar helpers. Everything here is side-effect free;
// the accrual services own persistence and notification.
package fincalc

import (
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// IOFWindowDays is the length of the IOF decay window. From this age on the
// penalty is zero.
const IOFWindowDays = 30

// iofTable is the regressive IOF penalty percentage indexed by investment age
// in whole days. Day 0 withholds 96% of yield, decaying to 0% at day 29.
var iofTable = [IOFWindowDays]int64{
	96, 93, 90, 86, 83, 80, 76, 73, 70, 66,
	63, 60, 56, 53, 50, 46, 43, 40, 36, 33,
	30, 26, 23, 20, 16, 13, 10, 6, 3, 0,
}

// Regressive IR brackets by age in days. Boundaries are exclusive of the
// lower bound ("more than N days").
var (
	irBracketDefault = bracket{decimal.NewFromFloat(0.225), "22.5%"}
	irBrackets       = []struct {
		minAgeDays int
		bracket
	}{
		{720, bracket{decimal.NewFromFloat(0.15), "15%"}},
		{360, bracket{decimal.NewFromFloat(0.175), "17.5%"}},
		{180, bracket{decimal.NewFromFloat(0.20), "20%"}},
	}
)

type bracket struct {
	rate  decimal.Decimal
	label string
}

// TaxMultipliers is the result of evaluating the tax schedules for an
// investment at a reference instant.
type TaxMultipliers struct {
	IOFFactor        decimal.Decimal // Fraction of yield kept after IOF (1 = no penalty)
	IRFactor         decimal.Decimal // Fraction of yield kept after income tax
	IRRateLabel      string          // Human-readable bracket, e.g. "17.5%"
	IOFApplied       bool            // True while the IOF table value for this age is > 0
	DaysUntilIOFZero int             // Days left until the IOF penalty reaches zero
	IRExempt         bool            // True for tax-exempt investment types
}

// Multipliers converts an investment's age and type into effective IOF and
// income-tax retention factors at the given reference instant.
//
// A nil createdAt yields the documented defaults: fully mature, standard
// 22.5% bracket, no IOF. Exemption is part of this contract: for tax-exempt
// types IRFactor is 1 and IRExempt is true, while IRRateLabel still reports
// the bracket the position would fall into. IOF applies regardless of type.
func Multipliers(createdAt *time.Time, now time.Time, ignoreIOF bool, typ domain.InvestmentType) TaxMultipliers {
	one := decimal.NewFromInt(1)

	if createdAt == nil {
		m := TaxMultipliers{
			IOFFactor:   one,
			IRFactor:    one.Sub(irBracketDefault.rate),
			IRRateLabel: irBracketDefault.label,
		}
		if typ.TaxExempt() {
			m.IRFactor = one
			m.IRExempt = true
		}
		return m
	}

	ageDays := wholeDaysBetween(*createdAt, now)

	m := TaxMultipliers{IOFFactor: one}

	if ageDays < IOFWindowDays && !ignoreIOF {
		penalty := iofTable[ageDays]
		m.IOFFactor = one.Sub(decimal.NewFromInt(penalty).Div(decimal.NewFromInt(100)))
		m.IOFApplied = penalty > 0
		m.DaysUntilIOFZero = IOFWindowDays - ageDays
	}

	b := irBracketDefault
	for _, candidate := range irBrackets {
		if ageDays > candidate.minAgeDays {
			b = candidate.bracket
			break
		}
	}
	m.IRFactor = one.Sub(b.rate)
	m.IRRateLabel = b.label

	if typ.TaxExempt() {
		m.IRFactor = one
		m.IRExempt = true
	}

	return m
}

// wholeDaysBetween returns floor(|b-a| in days).
func wholeDaysBetween(a, b time.Time) int {
	diff := b.Sub(a)
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}
