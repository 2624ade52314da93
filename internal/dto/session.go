package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Notice is one transient user-facing message emitted by the engine.
type Notice struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// CycleSummary reports one live accrual tick.
type CycleSummary struct {
	BusinessDay   bool            `json:"businessDay"`
	TotalProfit   decimal.Decimal `json:"totalProfit"` // Home currency, FX-converted
	Investments   int             `json:"investments"`
	ForeignProfit decimal.Decimal `json:"foreignProfit"` // Home-currency equivalent
}

// ReconcileSummary reports the offline catch-up applied at session open.
type ReconcileSummary struct {
	ElapsedSeconds   int64           `json:"elapsedSeconds"`
	WeekendSeconds   int64           `json:"weekendSeconds"`
	EffectiveCycles  int64           `json:"effectiveCycles"`
	TotalProfit      decimal.Decimal `json:"totalProfit"`
	ForeignProfit    decimal.Decimal `json:"foreignProfit"`
	NewLastPayout    time.Time       `json:"newLastPayout"`
	AppliedToHistory bool            `json:"appliedToHistory"`
}

// SessionOpenResponse is returned when a session opens: what the reconciler
// recovered plus the rate snapshot the ticks will run against.
type SessionOpenResponse struct {
	Reconcile       *ReconcileSummary `json:"reconcile,omitempty"`
	BenchmarkAnnual decimal.Decimal   `json:"benchmarkAnnual"`
	TickSeconds     int64             `json:"tickSeconds"`
	OpenedAt        time.Time         `json:"openedAt"`
}
