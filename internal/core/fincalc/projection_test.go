package fincalc_test

import (
	"testing"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/cdisim/cdi_sim_app/internal/core/fincalc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testRates() domain.MarketRates {
	return domain.MarketRates{
		BenchmarkAnnual: decimal.NewFromFloat(0.1490),
		InflationAnnual: decimal.NewFromFloat(0.045),
		ForeignAPY:      map[string]decimal.Decimal{"USD": decimal.NewFromFloat(0.035)},
		FX:              map[string]decimal.Decimal{"USD": decimal.NewFromFloat(5.37)},
	}
}

func TestProject_PostFixedStandard(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -10)

	p := fincalc.Project(
		decimal.NewFromInt(1000), decimal.Zero,
		decimal.NewFromInt(100), domain.YieldPost, domain.TypeCDB,
		testRates(), &created, now,
	)

	// 1000 × 0.149 × 0.775 / 252: IOF ignored even though the position is 10 days old.
	wantDay := 1000.0 * 0.1490 * 0.775 / 252.0
	assert.InDelta(t, wantDay, p.Day.InexactFloat64(), 1e-9)
	assert.InDelta(t, wantDay*5, p.Week.InexactFloat64(), 1e-9)
	assert.InDelta(t, wantDay*21, p.Month.InexactFloat64(), 1e-9)
}

func TestProject_WithContributionDelta(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -400)

	p := fincalc.Project(
		decimal.NewFromInt(1000), decimal.NewFromInt(500),
		decimal.NewFromInt(100), domain.YieldPost, domain.TypeCDB,
		testRates(), &created, now,
	)

	// Hypothetical value 1500 at the 17.5% bracket.
	wantDay := 1500.0 * 0.1490 * 0.825 / 252.0
	assert.InDelta(t, wantDay, p.Day.InexactFloat64(), 1e-9)
}

func TestProject_WithdrawalDelta(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -10)

	p := fincalc.Project(
		decimal.NewFromInt(1000), decimal.NewFromInt(-600),
		decimal.NewFromInt(100), domain.YieldPost, domain.TypeCDB,
		testRates(), &created, now,
	)

	wantDay := 400.0 * 0.1490 * 0.775 / 252.0
	assert.InDelta(t, wantDay, p.Day.InexactFloat64(), 1e-9)
}

func TestProject_DeltaBelowZeroClampsToZero(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -10)

	p := fincalc.Project(
		decimal.NewFromInt(100), decimal.NewFromInt(-500),
		decimal.NewFromInt(100), domain.YieldPost, domain.TypeCDB,
		testRates(), &created, now,
	)

	assert.True(t, p.Day.IsZero())
	assert.True(t, p.Week.IsZero())
	assert.True(t, p.Month.IsZero())
}

func TestProject_PreFixedUsesQuotaDirectly(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -800)

	// Quota 12 in PRE mode means a flat 12% a year regardless of benchmark.
	p := fincalc.Project(
		decimal.NewFromInt(10000), decimal.Zero,
		decimal.NewFromInt(12), domain.YieldPre, domain.TypeCDB,
		testRates(), &created, now,
	)

	wantDay := 10000.0 * 0.12 * 0.85 / 252.0
	assert.InDelta(t, wantDay, p.Day.InexactFloat64(), 1e-9)
}

func TestProject_InflationIndexedAddsSpread(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -10)

	p := fincalc.Project(
		decimal.NewFromInt(1000), decimal.Zero,
		decimal.NewFromInt(100), domain.YieldPost, domain.TypeIPCAPlus,
		testRates(), &created, now,
	)

	wantDay := 1000.0 * (0.1490 + 0.045) * 0.775 / 252.0
	assert.InDelta(t, wantDay, p.Day.InexactFloat64(), 1e-9)
}

func TestProject_ExemptTypeSkipsIncomeTax(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -10)

	p := fincalc.Project(
		decimal.NewFromInt(1000), decimal.Zero,
		decimal.NewFromInt(100), domain.YieldPost, domain.TypeLCI,
		testRates(), &created, now,
	)

	wantDay := 1000.0 * 0.1490 / 252.0
	assert.InDelta(t, wantDay, p.Day.InexactFloat64(), 1e-9)
}

func TestEffectiveAnnualRate(t *testing.T) {
	rates := testRates()

	post := fincalc.EffectiveAnnualRate(decimal.NewFromInt(105), domain.YieldPost, domain.TypeCDB, rates)
	assert.InDelta(t, 1.05*0.1490, post.InexactFloat64(), 1e-12)

	pre := fincalc.EffectiveAnnualRate(decimal.NewFromFloat(13.5), domain.YieldPre, domain.TypeCDB, rates)
	assert.InDelta(t, 0.135, pre.InexactFloat64(), 1e-12)

	ipca := fincalc.EffectiveAnnualRate(decimal.NewFromInt(100), domain.YieldPost, domain.TypeIPCAPlus, rates)
	assert.InDelta(t, 0.1490+0.045, ipca.InexactFloat64(), 1e-12)
}
