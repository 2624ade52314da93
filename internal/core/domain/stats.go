package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserStats holds the per-user accrual cycle state and liquid balances.
// LastPayoutAt is the last-processed accrual timestamp: read at session open,
// advanced on every tick, and always advanced by the reconciler even when the
// recovered profit is negligible, to prevent reprocessing the same window.
type UserStats struct {
	UserID  string          `json:"userID"`
	Balance decimal.Decimal `json:"balance"` // Free home-currency capital
	// TotalDeposited accumulates every amount ever moved into a position
	// (allocations and contributions). Display statistic, never debited.
	TotalDeposited decimal.Decimal `json:"totalDeposited"`
	LastPayoutAt   time.Time       `json:"lastPayoutAt"`
	AuditFields
}

// ForeignBalance is a scalar amount in a secondary currency accruing interest
// at a fixed annual rate with no tax in this model.
type ForeignBalance struct {
	UserID       string          `json:"userID"`
	CurrencyCode string          `json:"currencyCode"` // e.g. "USD", "JPY"
	Amount       decimal.Decimal `json:"amount"`
	AuditFields
}

// MarketRates is the external rate snapshot injected into every engine
// invocation. Rates are carried explicitly rather than cached in package
// globals so the engine stays deterministic for a given input.
type MarketRates struct {
	// BenchmarkAnnual is the CDI annual rate (SELIC minus the CDI spread).
	BenchmarkAnnual decimal.Decimal `json:"benchmarkAnnual"`
	// InflationAnnual is the spread added for inflation-indexed positions.
	InflationAnnual decimal.Decimal `json:"inflationAnnual"`
	// ForeignAPY maps currency code to its fixed savings-style annual rate.
	ForeignAPY map[string]decimal.Decimal `json:"foreignAPY"`
	// FX maps currency code to its home-currency conversion rate.
	FX map[string]decimal.Decimal `json:"fx"`
	// FetchedAt records when the snapshot was taken.
	FetchedAt time.Time `json:"fetchedAt"`
}

// FXRate returns the home-currency conversion rate for a currency, or 1 when
// no rate is known (degrades to treating the amount as home currency).
func (r MarketRates) FXRate(code string) decimal.Decimal {
	if rate, ok := r.FX[code]; ok && rate.IsPositive() {
		return rate
	}
	return decimal.NewFromInt(1)
}

// APY returns the fixed annual rate for a foreign currency balance, or zero
// when the currency earns nothing in this model.
func (r MarketRates) APY(code string) decimal.Decimal {
	if apy, ok := r.ForeignAPY[code]; ok {
		return apy
	}
	return decimal.Zero
}
