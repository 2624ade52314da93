package services

import (
	"context"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/cdisim/cdi_sim_app/internal/dto"
)

// UserReaderSvc defines read operations for user data.
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// UserWriterSvc defines write operations for user data.
type UserWriterSvc interface {
	// CreateUser registers a new user with a starting balance and stats row.
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)
}

// UserStatsSvc defines operations on the user's free capital and balances.
type UserStatsSvc interface {
	// GetUserStats retrieves the user's balance, cumulative deposits,
	// foreign balances and last-processed accrual timestamp.
	GetUserStats(ctx context.Context, userID string) (*dto.UserStatsResponse, error)

	// ExchangeCurrency converts between the home balance and a foreign
	// balance at the live FX rate, net of conversion costs.
	ExchangeCurrency(ctx context.Context, userID string, req dto.ExchangeRequest) (*dto.ExchangeResult, error)
}

// UserAuthSvc defines operations for user authentication.
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with username and password.
	AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserStatsSvc
	UserAuthSvc
}
