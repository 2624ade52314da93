package services

import (
	"context"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/cdisim/cdi_sim_app/internal/dto"
)

// AccrualSvc drives the yield engine. RunCycle is invoked once per fixed tick
// while a session is active; Reconcile runs once at session open, before the
// tick is armed, so the two can never overlap for a user.
type AccrualSvc interface {
	// RunCycle advances every investment and foreign balance of the user by
	// one tick's worth of yield. On non-business days it mutates nothing and
	// emits a rate-limited market-closed notice instead.
	RunCycle(ctx context.Context, userID string, now time.Time, rates domain.MarketRates) (*dto.CycleSummary, error)

	// Reconcile produces the lump-sum accrual equivalent to the cycles
	// missed since the user's last-processed timestamp, and always advances
	// that timestamp even when no profit was due.
	Reconcile(ctx context.Context, userID string, now time.Time, rates domain.MarketRates) (*dto.ReconcileSummary, error)
}

// Notifier receives user-facing transient notices (market closed, offline
// profit recovered, new-day reset). Implementations must not block.
type Notifier interface {
	Notify(userID, message string)
}
