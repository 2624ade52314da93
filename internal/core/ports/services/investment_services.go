package services

import (
	"context"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/cdisim/cdi_sim_app/internal/core/fincalc"
	"github.com/cdisim/cdi_sim_app/internal/dto"
)

// InvestmentReaderSvc defines read operations for investments.
type InvestmentReaderSvc interface {
	// ListInvestments retrieves every investment the user owns.
	ListInvestments(ctx context.Context, userID string) ([]domain.Investment, error)

	// GetInvestmentByID retrieves one investment, enforcing ownership.
	GetInvestmentByID(ctx context.Context, userID, investmentID string) (*domain.Investment, error)

	// ProjectYield computes the day/week/month net yield a position would
	// produce after applying a signed contribution/withdrawal delta.
	ProjectYield(ctx context.Context, userID, investmentID string, req dto.ProjectionRequest) (*fincalc.Projection, error)
}

// InvestmentWriterSvc defines capital-moving operations for investments.
type InvestmentWriterSvc interface {
	// CreateInvestment allocates capital from the user's free balance into a
	// new position.
	CreateInvestment(ctx context.Context, userID string, req dto.CreateInvestmentRequest) (*domain.Investment, error)

	// UpdateInvestment changes mutable fields (name, quota, maturity,
	// capacity target). The creation timestamp is never touched: mutating it
	// would reset the tax clock.
	UpdateInvestment(ctx context.Context, userID, investmentID string, req dto.UpdateInvestmentRequest) (*domain.Investment, error)

	// Contribute moves capital from the free balance into the position.
	Contribute(ctx context.Context, userID, investmentID string, req dto.ContributeRequest) (*domain.Investment, error)

	// Withdraw redeems part or all of the position back to the free balance.
	// A full withdrawal destroys the record; a partial one must leave at
	// least the minimum remainder.
	Withdraw(ctx context.Context, userID, investmentID string, req dto.WithdrawRequest) (*dto.WithdrawResult, error)
}

// InvestmentSvcFacade combines all investment service interfaces.
type InvestmentSvcFacade interface {
	InvestmentReaderSvc
	InvestmentWriterSvc
}
