package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/apperrors"
	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/cdisim/cdi_sim_app/internal/core/fincalc"
	portsrepo "github.com/cdisim/cdi_sim_app/internal/core/ports/repositories"
	portssvc "github.com/cdisim/cdi_sim_app/internal/core/ports/services"
	"github.com/cdisim/cdi_sim_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// investmentServiceImpl implements the investment service. Capital-moving
// operations take the per-user lock so they cannot interleave with a running
// accrual tick and lose its writes.
type investmentServiceImpl struct {
	BaseService
	investmentRepo portsrepo.InvestmentRepositoryFacade
	statsRepo      portsrepo.StatsRepositoryFacade
	marketData     portssvc.MarketDataSvc
	locks          *userLocks
}

// NewInvestmentService creates a new instance of the investment service.
func NewInvestmentService(
	investmentRepo portsrepo.InvestmentRepositoryFacade,
	statsRepo portsrepo.StatsRepositoryFacade,
	marketData portssvc.MarketDataSvc,
	locks *userLocks,
) portssvc.InvestmentSvcFacade {
	return &investmentServiceImpl{
		investmentRepo: investmentRepo,
		statsRepo:      statsRepo,
		marketData:     marketData,
		locks:          locks,
	}
}

var _ portssvc.InvestmentSvcFacade = (*investmentServiceImpl)(nil)

func (s *investmentServiceImpl) ListInvestments(ctx context.Context, userID string) ([]domain.Investment, error) {
	investments, err := s.investmentRepo.FindInvestmentsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list investments", slog.String("user_id", userID))
		return nil, err
	}
	return investments, nil
}

func (s *investmentServiceImpl) GetInvestmentByID(ctx context.Context, userID, investmentID string) (*domain.Investment, error) {
	inv, err := s.investmentRepo.FindInvestmentByID(ctx, investmentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get investment", slog.String("investment_id", investmentID))
		}
		return nil, err
	}
	if inv.UserID != userID {
		// Report not-found rather than forbidden so record IDs cannot be
		// enumerated across users.
		return nil, apperrors.ErrNotFound
	}
	return inv, nil
}

// ProjectYield answers "what would this position earn per day/week/month if I
// moved delta into (or out of) it". IOF is excluded on purpose: projections
// describe the steady state, not the first month.
func (s *investmentServiceImpl) ProjectYield(ctx context.Context, userID, investmentID string, req dto.ProjectionRequest) (*fincalc.Projection, error) {
	inv, err := s.GetInvestmentByID(ctx, userID, investmentID)
	if err != nil {
		return nil, err
	}

	rates := s.marketData.Rates(ctx)
	createdAt := inv.CreatedAt
	proj := fincalc.Project(inv.Value, req.Delta, inv.RateQuota, inv.YieldMode, inv.Type, rates, &createdAt, time.Now())
	return &proj, nil
}

// CreateInvestment allocates capital from the free balance into a new
// position. The allocation is all-or-nothing: a balance short of the amount
// fails the call with no mutation.
func (s *investmentServiceImpl) CreateInvestment(ctx context.Context, userID string, req dto.CreateInvestmentRequest) (*domain.Investment, error) {
	if !req.Value.IsPositive() {
		return nil, fmt.Errorf("%w: investment value must be positive", apperrors.ErrValidation)
	}
	if req.RateQuota.IsNegative() {
		return nil, fmt.Errorf("%w: rate quota cannot be negative", apperrors.ErrValidation)
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	stats, err := s.statsRepo.FindStatsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load stats for allocation", slog.String("user_id", userID))
		return nil, err
	}
	if stats.Balance.LessThan(req.Value) {
		return nil, fmt.Errorf("%w: balance %s, requested %s",
			apperrors.ErrInsufficientFunds, stats.Balance.StringFixed(2), req.Value.StringFixed(2))
	}

	now := time.Now()
	createdAt := now
	if req.BackdatedCreatedAt != nil {
		if req.BackdatedCreatedAt.After(now) {
			return nil, fmt.Errorf("%w: creation timestamp cannot be in the future", apperrors.ErrValidation)
		}
		createdAt = *req.BackdatedCreatedAt
	}

	inv := domain.Investment{
		InvestmentID:   uuid.NewString(),
		UserID:         userID,
		Name:           req.Name,
		Value:          req.Value,
		RateQuota:      req.RateQuota,
		Type:           req.Type,
		YieldMode:      req.YieldMode,
		DailyYield:     decimal.Zero,
		MaturityAt:     req.MaturityAt,
		CapacityTarget: req.CapacityTarget,
		AuditFields: domain.AuditFields{
			CreatedAt:     createdAt,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.investmentRepo.SaveInvestment(ctx, inv); err != nil {
		s.LogError(ctx, err, "Failed to save investment", slog.String("user_id", userID))
		return nil, err
	}
	if err := s.statsRepo.UpdateBalance(ctx, userID, stats.Balance.Sub(req.Value), userID); err != nil {
		s.LogError(ctx, err, "Failed to debit balance after allocation", slog.String("user_id", userID))
		return nil, err
	}
	// Display counter only, never rolls the allocation back.
	if err := s.statsRepo.AddDeposit(ctx, userID, req.Value, userID); err != nil {
		s.LogWarn(ctx, "Failed to record deposit total", slog.String("user_id", userID), slog.String("error", err.Error()))
	}

	s.LogInfo(ctx, "Investment created",
		slog.String("user_id", userID),
		slog.String("investment_id", inv.InvestmentID),
		slog.String("type", string(inv.Type)))
	return &inv, nil
}

func (s *investmentServiceImpl) UpdateInvestment(ctx context.Context, userID, investmentID string, req dto.UpdateInvestmentRequest) (*domain.Investment, error) {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	inv, err := s.GetInvestmentByID(ctx, userID, investmentID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidation)
		}
		inv.Name = *req.Name
	}
	if req.RateQuota != nil {
		if req.RateQuota.IsNegative() {
			return nil, fmt.Errorf("%w: rate quota cannot be negative", apperrors.ErrValidation)
		}
		inv.RateQuota = *req.RateQuota
	}
	if req.MaturityAt != nil {
		inv.MaturityAt = req.MaturityAt
	}
	if req.CapacityTarget != nil {
		inv.CapacityTarget = req.CapacityTarget
	}
	inv.LastUpdatedAt = time.Now()
	inv.LastUpdatedBy = userID

	if err := s.investmentRepo.UpdateInvestment(ctx, *inv); err != nil {
		s.LogError(ctx, err, "Failed to update investment", slog.String("investment_id", investmentID))
		return nil, err
	}
	return inv, nil
}

func (s *investmentServiceImpl) Contribute(ctx context.Context, userID, investmentID string, req dto.ContributeRequest) (*domain.Investment, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: contribution must be positive", apperrors.ErrValidation)
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	inv, err := s.GetInvestmentByID(ctx, userID, investmentID)
	if err != nil {
		return nil, err
	}

	stats, err := s.statsRepo.FindStatsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load stats for contribution", slog.String("user_id", userID))
		return nil, err
	}
	if stats.Balance.LessThan(req.Amount) {
		return nil, fmt.Errorf("%w: balance %s, requested %s",
			apperrors.ErrInsufficientFunds, stats.Balance.StringFixed(2), req.Amount.StringFixed(2))
	}

	inv.Value = inv.Value.Add(req.Amount)
	inv.LastUpdatedAt = time.Now()
	inv.LastUpdatedBy = userID

	if err := s.investmentRepo.UpdateInvestment(ctx, *inv); err != nil {
		s.LogError(ctx, err, "Failed to persist contribution", slog.String("investment_id", investmentID))
		return nil, err
	}
	if err := s.statsRepo.UpdateBalance(ctx, userID, stats.Balance.Sub(req.Amount), userID); err != nil {
		s.LogError(ctx, err, "Failed to debit balance after contribution", slog.String("user_id", userID))
		return nil, err
	}
	if err := s.statsRepo.AddDeposit(ctx, userID, req.Amount, userID); err != nil {
		s.LogWarn(ctx, "Failed to record deposit total", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
	return inv, nil
}

// Withdraw redeems capital back to the free balance. Full withdrawals destroy
// the record; partial withdrawals must leave at least the minimum remainder
// so no dust positions linger in the accrual loop.
func (s *investmentServiceImpl) Withdraw(ctx context.Context, userID, investmentID string, req dto.WithdrawRequest) (*dto.WithdrawResult, error) {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	inv, err := s.GetInvestmentByID(ctx, userID, investmentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !inv.Matured(now) {
		return nil, fmt.Errorf("%w: redeemable after %s", apperrors.ErrLocked, inv.MaturityAt.Format(time.DateOnly))
	}

	stats, err := s.statsRepo.FindStatsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load stats for withdrawal", slog.String("user_id", userID))
		return nil, err
	}

	amount := req.Amount
	full := req.Full || amount.GreaterThanOrEqual(inv.Value)
	if full {
		amount = inv.Value
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", apperrors.ErrValidation)
	}

	remainder := inv.Value.Sub(amount)
	if !full && remainder.LessThan(domain.MinRemainder) {
		return nil, fmt.Errorf("%w: partial withdrawal must leave at least %s invested",
			apperrors.ErrValidation, domain.MinRemainder.StringFixed(2))
	}

	if full {
		if err := s.investmentRepo.DeleteInvestment(ctx, inv.InvestmentID); err != nil {
			s.LogError(ctx, err, "Failed to delete redeemed investment", slog.String("investment_id", investmentID))
			return nil, err
		}
	} else {
		inv.Value = remainder
		inv.LastUpdatedAt = now
		inv.LastUpdatedBy = userID
		if err := s.investmentRepo.UpdateInvestment(ctx, *inv); err != nil {
			s.LogError(ctx, err, "Failed to persist withdrawal", slog.String("investment_id", investmentID))
			return nil, err
		}
	}

	newBalance := stats.Balance.Add(amount)
	if err := s.statsRepo.UpdateBalance(ctx, userID, newBalance, userID); err != nil {
		s.LogError(ctx, err, "Failed to credit balance after withdrawal", slog.String("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Withdrawal processed",
		slog.String("user_id", userID),
		slog.String("investment_id", investmentID),
		slog.Bool("closed", full))

	return &dto.WithdrawResult{
		Redeemed:   amount,
		Remainder:  remainder,
		Closed:     full,
		NewBalance: newBalance,
	}, nil
}
