package fincalc

import (
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Projection is the net yield a hypothetical position value would produce per
// business day, week and month at current rates.
type Projection struct {
	Day   decimal.Decimal `json:"day"`
	Week  decimal.Decimal `json:"week"`
	Month decimal.Decimal `json:"month"`
}

// Project computes the steady-state net yield for a position after applying a
// signed contribution/withdrawal delta. IOF is always ignored here: the
// 30-day penalty is transient and would misstate a before/after comparison.
// A delta that would take the value below zero projects from zero.
func Project(currentValue, delta, quota decimal.Decimal, mode domain.YieldMode, typ domain.InvestmentType, rates domain.MarketRates, createdAt *time.Time, now time.Time) Projection {
	value := currentValue.Add(delta)
	if value.IsNegative() {
		value = decimal.Zero
	}

	tax := Multipliers(createdAt, now, true, typ)
	annual := EffectiveAnnualRate(quota, mode, typ, rates)

	grossAnnual := value.Mul(annual)
	netAnnual := grossAnnual.Mul(tax.IRFactor)

	day := netAnnual.Div(decimal.NewFromInt(BusinessDaysPerYear))
	return Projection{
		Day:   day,
		Week:  day.Mul(decimal.NewFromInt(BusinessDaysPerWeek)),
		Month: day.Mul(decimal.NewFromInt(BusinessDaysPerMonth)),
	}
}
