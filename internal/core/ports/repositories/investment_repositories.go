package repositories

import (
	"context"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
)

// InvestmentReader defines read operations for investment records.
type InvestmentReader interface {
	// FindInvestmentByID retrieves a specific investment by its ID.
	FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error)

	// FindInvestmentsByUserID retrieves every investment owned by a user.
	FindInvestmentsByUserID(ctx context.Context, userID string) ([]domain.Investment, error)
}

// InvestmentWriter defines write operations for investment records.
type InvestmentWriter interface {
	// SaveInvestment persists a new investment.
	SaveInvestment(ctx context.Context, investment domain.Investment) error

	// UpdateInvestment updates a single existing investment.
	UpdateInvestment(ctx context.Context, investment domain.Investment) error

	// UpsertInvestments writes a batch of mutated investments in one round
	// trip (full-state upsert keyed by id, last-write-wins). Used by the
	// accrual engine after every cycle and by the reconciler.
	UpsertInvestments(ctx context.Context, investments []domain.Investment) error

	// DeleteInvestment removes an investment (full redemption).
	DeleteInvestment(ctx context.Context, investmentID string) error
}

// InvestmentRepositoryFacade combines all investment repository interfaces.
type InvestmentRepositoryFacade interface {
	InvestmentReader
	InvestmentWriter
}
