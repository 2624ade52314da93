package services

import (
	"context"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/cdisim/cdi_sim_app/internal/dto"
)

// SessionSvc owns the accrual lifecycle of a logged-in user: opening a
// session purges stale history, reconciles offline cycles and only then arms
// the recurring tick; closing it disarms the tick. It also buffers the
// transient notices the engine emits.
type SessionSvc interface {
	// Open starts (or restarts) the user's accrual session.
	Open(ctx context.Context, userID string) (*dto.SessionOpenResponse, error)

	// Close stops the user's accrual session. Closing a session that is not
	// open is a no-op.
	Close(ctx context.Context, userID string) error

	// Active reports whether the user currently has a ticking session.
	Active(userID string) bool

	// DrainNotices returns and clears the user's pending notices.
	DrainNotices(userID string) []dto.Notice

	// RecentHistory returns the user's daily profit rows inside the rolling
	// retention window, newest first.
	RecentHistory(ctx context.Context, userID string) ([]domain.DailyHistory, error)
}
