package repositories

import (
	"context"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StatsReader defines read operations for user accrual state and balances.
type StatsReader interface {
	// FindStatsByUserID retrieves a user's stats row.
	FindStatsByUserID(ctx context.Context, userID string) (*domain.UserStats, error)

	// FindForeignBalances retrieves every foreign currency balance of a user.
	FindForeignBalances(ctx context.Context, userID string) ([]domain.ForeignBalance, error)
}

// StatsWriter defines write operations for user accrual state and balances.
type StatsWriter interface {
	// SaveStats persists a new stats row for a user.
	SaveStats(ctx context.Context, stats domain.UserStats) error

	// UpdateBalance sets the user's free home-currency capital.
	UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal, updatedBy string) error

	// AddDeposit increments the user's cumulative-deposits counter.
	AddDeposit(ctx context.Context, userID string, amount decimal.Decimal, updatedBy string) error

	// UpdateLastPayout advances the last-processed accrual timestamp.
	UpdateLastPayout(ctx context.Context, userID string, at time.Time) error

	// UpsertForeignBalance writes a foreign currency balance (insert or full
	// overwrite keyed by user and currency).
	UpsertForeignBalance(ctx context.Context, balance domain.ForeignBalance) error
}

// StatsRepositoryFacade combines all stats repository interfaces.
type StatsRepositoryFacade interface {
	StatsReader
	StatsWriter
}
