package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/apperrors"
	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	portsrepo "github.com/cdisim/cdi_sim_app/internal/core/ports/repositories"
	portssvc "github.com/cdisim/cdi_sim_app/internal/core/ports/services"
	"github.com/cdisim/cdi_sim_app/internal/dto"
	"github.com/cdisim/cdi_sim_app/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// defaultStartingBalance seeds new simulations that do not specify one.
var defaultStartingBalance = decimal.NewFromInt(10000)

// Conversion costs charged on every exchange, both taken in home currency.
// Mirrors the transfer-service pricing the simulator models: a 0.6% transfer
// fee plus the 1.1% IOF on FX operations, with no rate spread.
var (
	exchangeFeeRate = decimal.NewFromFloat(0.006)
	exchangeIOFRate = decimal.NewFromFloat(0.011)
)

type userServiceImpl struct {
	BaseService
	userRepo   portsrepo.UserRepositoryFacade
	statsRepo  portsrepo.StatsRepositoryFacade
	marketData portssvc.MarketDataSvc
	locks      *userLocks
}

// NewUserService creates a new instance of the user service.
func NewUserService(
	userRepo portsrepo.UserRepositoryFacade,
	statsRepo portsrepo.StatsRepositoryFacade,
	marketData portssvc.MarketDataSvc,
	locks *userLocks,
) portssvc.UserSvcFacade {
	return &userServiceImpl{
		userRepo:   userRepo,
		statsRepo:  statsRepo,
		marketData: marketData,
		locks:      locks,
	}
}

var _ portssvc.UserSvcFacade = (*userServiceImpl)(nil)

func (s *userServiceImpl) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user by ID", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

func (s *userServiceImpl) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user by username", slog.String("username", username))
		}
		return nil, err
	}
	return user, nil
}

// CreateUser registers a user and seeds their stats row. The last-payout
// marker starts at the creation instant so the first reconcile has nothing
// to catch up.
func (s *userServiceImpl) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "registration",
			LastUpdatedAt: now,
			LastUpdatedBy: "registration",
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username %s is taken", apperrors.ErrDuplicate, req.Username)
		}
		s.LogError(ctx, err, "Failed to save user")
		return nil, err
	}

	balance := defaultStartingBalance
	if req.StartingBalance != nil {
		if req.StartingBalance.IsNegative() {
			return nil, fmt.Errorf("%w: starting balance cannot be negative", apperrors.ErrValidation)
		}
		balance = *req.StartingBalance
	}

	stats := domain.UserStats{
		UserID:       user.UserID,
		Balance:      balance,
		LastPayoutAt: now,
	}
	if err := s.statsRepo.SaveStats(ctx, stats); err != nil {
		s.LogError(ctx, err, "Failed to seed user stats", slog.String("user_id", user.UserID))
		return nil, err
	}

	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID))
	return &user, nil
}

func (s *userServiceImpl) GetUserStats(ctx context.Context, userID string) (*dto.UserStatsResponse, error) {
	stats, err := s.statsRepo.FindStatsByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load user stats", slog.String("user_id", userID))
		}
		return nil, err
	}
	foreign, err := s.statsRepo.FindForeignBalances(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load foreign balances", slog.String("user_id", userID))
		return nil, err
	}
	res := dto.ToUserStatsResponse(stats, foreign)
	return &res, nil
}

// ExchangeCurrency moves capital between the home balance and one foreign
// balance at the live FX rate. Costs are charged on the home-currency leg:
// on the way out they reduce the amount converted, on the way back they
// reduce the amount credited. Takes the per-user lock so the conversion
// cannot interleave with a running accrual tick.
func (s *userServiceImpl) ExchangeCurrency(ctx context.Context, userID string, req dto.ExchangeRequest) (*dto.ExchangeResult, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: exchange amount must be positive", apperrors.ErrValidation)
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	stats, err := s.statsRepo.FindStatsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load stats for exchange", slog.String("user_id", userID))
		return nil, err
	}

	foreign, err := s.statsRepo.FindForeignBalances(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load foreign balances for exchange", slog.String("user_id", userID))
		return nil, err
	}
	held := decimal.Zero
	for _, fb := range foreign {
		if fb.CurrencyCode == req.Currency {
			held = fb.Amount
			break
		}
	}

	rate := s.marketData.Rates(ctx).FXRate(req.Currency)

	result := dto.ExchangeResult{
		Currency:  req.Currency,
		Direction: req.Direction,
		Debited:   req.Amount,
		Rate:      rate,
	}
	newBalance := stats.Balance
	newHeld := held

	switch req.Direction {
	case dto.ExchangeBRLToForeign:
		if stats.Balance.LessThan(req.Amount) {
			return nil, fmt.Errorf("%w: balance %s, requested %s",
				apperrors.ErrInsufficientFunds, stats.Balance.StringFixed(2), req.Amount.StringFixed(2))
		}
		result.Fee = req.Amount.Mul(exchangeFeeRate)
		result.IOF = req.Amount.Mul(exchangeIOFRate)
		result.Credited = req.Amount.Sub(result.Fee).Sub(result.IOF).Div(rate)
		newBalance = stats.Balance.Sub(req.Amount)
		newHeld = held.Add(result.Credited)
	case dto.ExchangeForeignToBRL:
		if held.LessThan(req.Amount) {
			return nil, fmt.Errorf("%w: %s balance %s, requested %s",
				apperrors.ErrInsufficientFunds, req.Currency, held.StringFixed(2), req.Amount.StringFixed(2))
		}
		gross := req.Amount.Mul(rate)
		result.Fee = gross.Mul(exchangeFeeRate)
		result.IOF = gross.Mul(exchangeIOFRate)
		result.Credited = gross.Sub(result.Fee).Sub(result.IOF)
		newBalance = stats.Balance.Add(result.Credited)
		newHeld = held.Sub(req.Amount)
	default:
		return nil, fmt.Errorf("%w: unknown exchange direction %q", apperrors.ErrValidation, req.Direction)
	}

	if err := s.statsRepo.UpsertForeignBalance(ctx, domain.ForeignBalance{
		UserID:       userID,
		CurrencyCode: req.Currency,
		Amount:       newHeld,
	}); err != nil {
		s.LogError(ctx, err, "Failed to persist foreign balance", slog.String("user_id", userID))
		return nil, err
	}
	if err := s.statsRepo.UpdateBalance(ctx, userID, newBalance, userID); err != nil {
		s.LogError(ctx, err, "Failed to persist balance after exchange", slog.String("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Currency exchanged",
		slog.String("user_id", userID),
		slog.String("currency", req.Currency),
		slog.String("direction", req.Direction),
		slog.String("amount", req.Amount.StringFixed(2)))

	result.NewBalance = newBalance
	result.NewForeignAmount = newHeld
	return &result, nil
}

func (s *userServiceImpl) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Same error as a bad password so usernames cannot be probed.
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrValidation)
		}
		s.LogError(ctx, err, "Failed to look up user for authentication")
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrValidation)
	}
	return user, nil
}
