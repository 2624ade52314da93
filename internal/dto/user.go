package dto

import (
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateUserRequest defines the data needed to register a new user.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	// StartingBalance seeds the free capital of the simulation. Optional.
	StartingBalance *decimal.Decimal `json:"startingBalance"`
}

// LoginRequest defines the credentials for authentication.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userID"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID    string    `json:"userID"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Exchange directions, matching the two sides of the conversion flow.
const (
	ExchangeBRLToForeign = "BRL_TO_FOREIGN"
	ExchangeForeignToBRL = "FOREIGN_TO_BRL"
)

// ExchangeRequest converts free capital between the home currency and a
// foreign balance at the live FX rate. Amount is denominated in the source
// currency of the chosen direction.
type ExchangeRequest struct {
	Currency  string          `json:"currency" binding:"required,oneof=USD JPY"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Direction string          `json:"direction" binding:"required,oneof=BRL_TO_FOREIGN FOREIGN_TO_BRL"`
}

// ExchangeResult reports the applied rate and costs of a conversion.
type ExchangeResult struct {
	Currency         string          `json:"currency"`
	Direction        string          `json:"direction"`
	Debited          decimal.Decimal `json:"debited"`  // In the source currency
	Credited         decimal.Decimal `json:"credited"` // In the target currency
	Fee              decimal.Decimal `json:"fee"`      // In home currency
	IOF              decimal.Decimal `json:"iof"`      // In home currency
	Rate             decimal.Decimal `json:"rate"`
	NewBalance       decimal.Decimal `json:"newBalance"`
	NewForeignAmount decimal.Decimal `json:"newForeignAmount"`
}

// ForeignBalanceResponse defines the data returned for one foreign balance.
type ForeignBalanceResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
}

// UserStatsResponse exposes the user's free capital and accrual state.
type UserStatsResponse struct {
	Balance         decimal.Decimal          `json:"balance"`
	TotalDeposited  decimal.Decimal          `json:"totalDeposited"`
	LastPayoutAt    time.Time                `json:"lastPayoutAt"`
	ForeignBalances []ForeignBalanceResponse `json:"foreignBalances"`
}

// ToUserStatsResponse converts a stats row plus its foreign balances into the
// response DTO.
func ToUserStatsResponse(stats *domain.UserStats, foreign []domain.ForeignBalance) UserStatsResponse {
	res := UserStatsResponse{
		Balance:         stats.Balance,
		TotalDeposited:  stats.TotalDeposited,
		LastPayoutAt:    stats.LastPayoutAt,
		ForeignBalances: make([]ForeignBalanceResponse, len(foreign)),
	}
	for i, fb := range foreign {
		res.ForeignBalances[i] = ForeignBalanceResponse{
			CurrencyCode: fb.CurrencyCode,
			Amount:       fb.Amount,
		}
	}
	return res
}

// ToUserResponse converts a domain.User to UserResponse DTO.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Username:  u.Username,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
