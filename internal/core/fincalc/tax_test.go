package fincalc_test

import (
	"testing"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/cdisim/cdi_sim_app/internal/core/fincalc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ageRef(now time.Time, days int) *time.Time {
	created := now.AddDate(0, 0, -days)
	return &created
}

func TestMultipliers_NewInvestment(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	m := fincalc.Multipliers(ageRef(now, 0), now, false, domain.TypeCDB)

	assert.True(t, m.IOFFactor.Equal(decimal.NewFromFloat(0.04)), "day-0 IOF keeps only 4%% of yield, got %s", m.IOFFactor)
	assert.True(t, m.IRFactor.Equal(decimal.NewFromFloat(0.775)))
	assert.Equal(t, "22.5%", m.IRRateLabel)
	assert.True(t, m.IOFApplied)
	assert.Equal(t, 30, m.DaysUntilIOFZero)
	assert.False(t, m.IRExempt)
}

func TestMultipliers_AfterIOFWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	m := fincalc.Multipliers(ageRef(now, 31), now, false, domain.TypeCDB)

	assert.True(t, m.IOFFactor.Equal(decimal.NewFromInt(1)))
	assert.False(t, m.IOFApplied)
	assert.Equal(t, 0, m.DaysUntilIOFZero)
	assert.Equal(t, "22.5%", m.IRRateLabel, "31 days is still inside the first IR bracket")
}

func TestMultipliers_IRBracketBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ageDays    int
		wantLabel  string
		wantFactor decimal.Decimal
	}{
		{0, "22.5%", decimal.NewFromFloat(0.775)},
		{180, "22.5%", decimal.NewFromFloat(0.775)}, // boundary itself stays in the lower bracket
		{181, "20%", decimal.NewFromFloat(0.80)},
		{360, "20%", decimal.NewFromFloat(0.80)},
		{361, "17.5%", decimal.NewFromFloat(0.825)},
		{400, "17.5%", decimal.NewFromFloat(0.825)},
		{720, "17.5%", decimal.NewFromFloat(0.825)},
		{721, "15%", decimal.NewFromFloat(0.85)},
		{2000, "15%", decimal.NewFromFloat(0.85)},
	}

	for _, tc := range tests {
		m := fincalc.Multipliers(ageRef(now, tc.ageDays), now, true, domain.TypeCDB)
		assert.Equal(t, tc.wantLabel, m.IRRateLabel, "age %d days", tc.ageDays)
		assert.True(t, m.IRFactor.Equal(tc.wantFactor), "age %d days: want %s got %s", tc.ageDays, tc.wantFactor, m.IRFactor)
	}
}

func TestMultipliers_IOFMonotonicity(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	prev := decimal.NewFromInt(-1)
	for age := 0; age < 30; age++ {
		m := fincalc.Multipliers(ageRef(now, age), now, false, domain.TypeCDB)
		require.True(t, m.IOFFactor.GreaterThanOrEqual(prev), "IOF factor must not decrease with age (age %d: %s < %s)", age, m.IOFFactor, prev)
		require.True(t, m.IOFFactor.GreaterThanOrEqual(decimal.Zero))
		require.True(t, m.IRFactor.GreaterThanOrEqual(decimal.Zero))
		prev = m.IOFFactor
	}

	m := fincalc.Multipliers(ageRef(now, 30), now, false, domain.TypeCDB)
	assert.True(t, m.IOFFactor.Equal(decimal.NewFromInt(1)), "IOF is gone from day 30 on")
}

func TestMultipliers_Day29HasNoPenaltyButWindowOpen(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// The last table entry is 0%: factor is 1 but the window has one day left.
	m := fincalc.Multipliers(ageRef(now, 29), now, false, domain.TypeCDB)
	assert.True(t, m.IOFFactor.Equal(decimal.NewFromInt(1)))
	assert.False(t, m.IOFApplied)
	assert.Equal(t, 1, m.DaysUntilIOFZero)
}

func TestMultipliers_IgnoreIOF(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	m := fincalc.Multipliers(ageRef(now, 0), now, true, domain.TypeCDB)
	assert.True(t, m.IOFFactor.Equal(decimal.NewFromInt(1)))
	assert.False(t, m.IOFApplied)
	assert.Equal(t, 0, m.DaysUntilIOFZero)
}

func TestMultipliers_ExemptTypes(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, typ := range []domain.InvestmentType{domain.TypeLCI, domain.TypeLCA} {
		m := fincalc.Multipliers(ageRef(now, 0), now, false, typ)
		assert.True(t, m.IRExempt, "%s is income-tax exempt", typ)
		assert.True(t, m.IRFactor.Equal(decimal.NewFromInt(1)))
		assert.Equal(t, "22.5%", m.IRRateLabel, "label still reports the bracket the position falls into")
		assert.True(t, m.IOFApplied, "IOF applies to exempt types as well")
	}
}

func TestMultipliers_NilCreatedAtDefaults(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	m := fincalc.Multipliers(nil, now, false, domain.TypeCDB)
	assert.True(t, m.IOFFactor.Equal(decimal.NewFromInt(1)))
	assert.True(t, m.IRFactor.Equal(decimal.NewFromFloat(0.775)))
	assert.Equal(t, "22.5%", m.IRRateLabel)
	assert.False(t, m.IOFApplied)
	assert.Equal(t, 0, m.DaysUntilIOFZero)
}

func TestMultipliers_FutureCreatedAtUsesAbsoluteAge(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Backdating mistakes can place createdAt after "now"; age uses |now-created|.
	created := now.AddDate(0, 0, 5)
	m := fincalc.Multipliers(&created, now, false, domain.TypeCDB)
	assert.True(t, m.IOFApplied)
	assert.Equal(t, 25, m.DaysUntilIOFZero)
}
