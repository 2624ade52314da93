package repositories

import (
	"context"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
)

// HistoryReader defines read operations for daily accrual history.
type HistoryReader interface {
	// FindHistoryByUserAndDate retrieves the single history row for a user
	// on a given calendar day, if any.
	FindHistoryByUserAndDate(ctx context.Context, userID string, day time.Time) (*domain.DailyHistory, error)

	// ListRecentHistory retrieves history rows on or after the cutoff,
	// newest first.
	ListRecentHistory(ctx context.Context, userID string, since time.Time) ([]domain.DailyHistory, error)
}

// HistoryWriter defines write operations for daily accrual history.
type HistoryWriter interface {
	// SaveHistory inserts a new per-day history row.
	SaveHistory(ctx context.Context, history domain.DailyHistory) error

	// UpdateHistory overwrites an existing row's total and details.
	UpdateHistory(ctx context.Context, history domain.DailyHistory) error

	// PurgeHistoryBefore removes rows older than the cutoff. Run at session
	// open to keep the rolling window small.
	PurgeHistoryBefore(ctx context.Context, userID string, cutoff time.Time) error
}

// HistoryRepositoryFacade combines all history repository interfaces.
type HistoryRepositoryFacade interface {
	HistoryReader
	HistoryWriter
}
