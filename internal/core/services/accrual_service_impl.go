package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	"github.com/cdisim/cdi_sim_app/internal/core/fincalc"
	portsrepo "github.com/cdisim/cdi_sim_app/internal/core/ports/repositories"
	portssvc "github.com/cdisim/cdi_sim_app/internal/core/ports/services"
	"github.com/cdisim/cdi_sim_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// marketClosedCooldown limits how often the market-closed notice is emitted
// while weekend ticks keep firing.
const marketClosedCooldown = 60 * time.Second

// reconcileEpsilon is the threshold below which recovered offline profit is
// not worth a history row. The advanced timestamp is persisted regardless.
var reconcileEpsilon = decimal.NewFromFloat(0.0001)

// accrualServiceImpl implements the AccrualSvc interface: the live per-tick
// engine and the offline catch-up reconciler share their rate derivation so
// the two paths cannot drift apart.
//
// Both investment and foreign-balance accrual are gated on business days, in
// the live path and in the reconciler alike. The reference behavior let the
// foreign balance accrue through weekends on the live path only; that
// asymmetry was unintentional and is not preserved.
type accrualServiceImpl struct {
	BaseService
	investmentRepo portsrepo.InvestmentRepositoryFacade
	statsRepo      portsrepo.StatsRepositoryFacade
	historyRepo    portsrepo.HistoryRepositoryFacade
	notifier       portssvc.Notifier
	locks          *userLocks
	tickSeconds    int64
	bigWin         decimal.Decimal

	mu               sync.Mutex
	lastClosedNotice map[string]time.Time
}

// NewAccrualService creates the accrual engine.
func NewAccrualService(
	investmentRepo portsrepo.InvestmentRepositoryFacade,
	statsRepo portsrepo.StatsRepositoryFacade,
	historyRepo portsrepo.HistoryRepositoryFacade,
	notifier portssvc.Notifier,
	locks *userLocks,
	tickSeconds int64,
	bigWinThreshold decimal.Decimal,
) portssvc.AccrualSvc {
	return &accrualServiceImpl{
		investmentRepo:   investmentRepo,
		statsRepo:        statsRepo,
		historyRepo:      historyRepo,
		notifier:         notifier,
		locks:            locks,
		tickSeconds:      tickSeconds,
		bigWin:           bigWinThreshold,
		lastClosedNotice: make(map[string]time.Time),
	}
}

var _ portssvc.AccrualSvc = (*accrualServiceImpl)(nil)

// RunCycle advances the user's positions by one tick's worth of yield.
func (s *accrualServiceImpl) RunCycle(ctx context.Context, userID string, now time.Time, rates domain.MarketRates) (*dto.CycleSummary, error) {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	if !fincalc.IsBusinessDay(now) {
		s.notifyMarketClosed(userID, now)
		return &dto.CycleSummary{BusinessDay: false, TotalProfit: decimal.Zero, ForeignProfit: decimal.Zero}, nil
	}

	stats, err := s.statsRepo.FindStatsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accrual state", slog.String("user_id", userID))
		return nil, err
	}

	investments, err := s.investmentRepo.FindInvestmentsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load investments for cycle", slog.String("user_id", userID))
		return nil, err
	}

	// Ownership guard: a record from another user means the batch is
	// inconsistent; skip the whole cycle rather than accrue onto it.
	for _, inv := range investments {
		if inv.UserID != userID {
			s.LogWarn(ctx, "Session/record ownership mismatch, aborting cycle",
				slog.String("user_id", userID),
				slog.String("investment_id", inv.InvestmentID))
			return &dto.CycleSummary{BusinessDay: true, TotalProfit: decimal.Zero, ForeignProfit: decimal.Zero}, nil
		}
	}

	cyclesPerDay := decimal.NewFromInt(fincalc.CyclesPerDay(s.tickSeconds))
	newDay := !fincalc.SameCalendarDay(stats.LastPayoutAt, now)
	if newDay {
		s.notifier.Notify(userID, "NEW TRADING DAY: DAILY YIELD COUNTERS RESET")
	}

	totalProfit := decimal.Zero
	for i := range investments {
		inv := &investments[i]
		createdAt := inv.CreatedAt
		tax := fincalc.Multipliers(&createdAt, now, false, inv.Type)
		annual := fincalc.EffectiveAnnualRate(inv.RateQuota, inv.YieldMode, inv.Type, rates)
		cycleYield := fincalc.DailyNet(inv.Value, annual, tax).Div(cyclesPerDay)

		inv.Value = inv.Value.Add(cycleYield)
		if newDay {
			inv.DailyYield = cycleYield
		} else {
			inv.DailyYield = inv.DailyYield.Add(cycleYield)
		}
		inv.LastUpdatedAt = now
		totalProfit = totalProfit.Add(cycleYield)
	}

	foreignProfit := s.accrueForeignCycle(ctx, userID, rates, cyclesPerDay)

	// Best-effort persistence: a failed write is logged and retried naturally
	// on the next tick; in-memory results are not rolled back.
	if len(investments) > 0 {
		if err := s.investmentRepo.UpsertInvestments(ctx, investments); err != nil {
			s.LogError(ctx, err, "Failed to persist cycle results", slog.String("user_id", userID))
		}
	}

	cycleTotal := totalProfit.Add(foreignProfit)
	if cycleTotal.IsPositive() {
		s.writeCycleHistory(ctx, userID, now, investments, foreignProfit)
	}
	if s.bigWin.IsPositive() && cycleTotal.GreaterThanOrEqual(s.bigWin) {
		s.notifier.Notify(userID, "BIG YIELD: +R$ "+cycleTotal.StringFixed(2)+" IN A SINGLE CYCLE")
	}

	if err := s.statsRepo.UpdateLastPayout(ctx, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to advance last payout", slog.String("user_id", userID))
	}

	return &dto.CycleSummary{
		BusinessDay:   true,
		TotalProfit:   cycleTotal,
		Investments:   len(investments),
		ForeignProfit: foreignProfit,
	}, nil
}

// Reconcile applies the lump-sum equivalent of every cycle missed since the
// user's last-processed timestamp.
func (s *accrualServiceImpl) Reconcile(ctx context.Context, userID string, now time.Time, rates domain.MarketRates) (*dto.ReconcileSummary, error) {
	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	stats, err := s.statsRepo.FindStatsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load accrual state for reconcile", slog.String("user_id", userID))
		return nil, err
	}

	lastPayout := stats.LastPayoutAt
	elapsedSeconds := int64(now.Sub(lastPayout) / time.Second)

	// Less than one full cycle elapsed: nothing to do, nothing to write.
	if elapsedSeconds < s.tickSeconds {
		return &dto.ReconcileSummary{
			ElapsedSeconds: elapsedSeconds,
			TotalProfit:    decimal.Zero,
			ForeignProfit:  decimal.Zero,
			NewLastPayout:  lastPayout,
		}, nil
	}

	// Consume only whole cycles so fractional leftover seconds carry over to
	// the next login instead of being discarded every time.
	cyclesMissed := elapsedSeconds / s.tickSeconds
	consumed := time.Duration(cyclesMissed*s.tickSeconds) * time.Second
	newLastPayout := lastPayout.Add(consumed)

	// A gap ending on a weekend yields nothing retroactively; just move the
	// marker to now so the gap is not reprocessed later.
	if !fincalc.IsBusinessDay(now) {
		if err := s.statsRepo.UpdateLastPayout(ctx, userID, now); err != nil {
			s.LogError(ctx, err, "Failed to advance last payout on weekend reconcile", slog.String("user_id", userID))
			return nil, err
		}
		return &dto.ReconcileSummary{
			ElapsedSeconds: elapsedSeconds,
			TotalProfit:    decimal.Zero,
			ForeignProfit:  decimal.Zero,
			NewLastPayout:  now,
		}, nil
	}

	weekendSeconds := fincalc.WeekendSeconds(lastPayout, now, s.tickSeconds)
	effectiveSeconds := elapsedSeconds - weekendSeconds
	if effectiveSeconds < 0 {
		effectiveSeconds = 0
	}
	effectiveCycles := effectiveSeconds / s.tickSeconds

	investments, err := s.investmentRepo.FindInvestmentsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load investments for reconcile", slog.String("user_id", userID))
		return nil, err
	}

	// Tax factors are evaluated once, at the current instant, for the whole
	// window. This is a documented approximation: a gap spanning an IR
	// bracket boundary is settled entirely at the rate now in force.
	cyclesPerDay := decimal.NewFromInt(fincalc.CyclesPerDay(s.tickSeconds))
	cyclesRatio := decimal.NewFromInt(effectiveCycles).Div(cyclesPerDay)
	newDay := !fincalc.SameCalendarDay(lastPayout, now)

	totalProfit := decimal.Zero
	details := make([]domain.HistoryDetail, 0, len(investments)+1)
	for i := range investments {
		inv := &investments[i]
		createdAt := inv.CreatedAt
		tax := fincalc.Multipliers(&createdAt, now, false, inv.Type)
		annual := fincalc.EffectiveAnnualRate(inv.RateQuota, inv.YieldMode, inv.Type, rates)
		profit := fincalc.DailyNet(inv.Value, annual, tax).Mul(cyclesRatio)

		inv.Value = inv.Value.Add(profit)
		if newDay {
			inv.DailyYield = profit
		} else {
			inv.DailyYield = inv.DailyYield.Add(profit)
		}
		inv.LastUpdatedAt = now
		totalProfit = totalProfit.Add(profit)

		details = append(details, domain.HistoryDetail{
			Name:    inv.Name,
			Value:   inv.Value,
			Yield:   profit,
			Offline: true,
		})
	}

	foreignProfit, foreignDetails := s.accrueForeignCatchUp(ctx, userID, rates, effectiveSeconds)
	details = append(details, foreignDetails...)

	total := totalProfit.Add(foreignProfit)
	applied := false
	if total.GreaterThan(reconcileEpsilon) {
		if len(investments) > 0 {
			if err := s.investmentRepo.UpsertInvestments(ctx, investments); err != nil {
				s.LogError(ctx, err, "Failed to persist reconciled investments", slog.String("user_id", userID))
				return nil, err
			}
		}
		s.mergeHistory(ctx, userID, now, total, details)
		applied = true
		s.notifier.Notify(userID, "SYSTEM RECONNECTED: +R$ "+total.StringFixed(12)+" ACCRUED WHILE AWAY")
	}

	// Always advance the marker, even for negligible profit, so rapid
	// login/logout cannot replay the same window.
	if err := s.statsRepo.UpdateLastPayout(ctx, userID, newLastPayout); err != nil {
		s.LogError(ctx, err, "Failed to advance last payout after reconcile", slog.String("user_id", userID))
		return nil, err
	}

	return &dto.ReconcileSummary{
		ElapsedSeconds:   elapsedSeconds,
		WeekendSeconds:   weekendSeconds,
		EffectiveCycles:  effectiveCycles,
		TotalProfit:      totalProfit,
		ForeignProfit:    foreignProfit,
		NewLastPayout:    newLastPayout,
		AppliedToHistory: applied,
	}, nil
}

// accrueForeignCycle advances each positive foreign balance by one discrete
// cycle of its savings APY and returns the home-currency profit.
func (s *accrualServiceImpl) accrueForeignCycle(ctx context.Context, userID string, rates domain.MarketRates, cyclesPerDay decimal.Decimal) decimal.Decimal {
	balances, err := s.statsRepo.FindForeignBalances(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load foreign balances", slog.String("user_id", userID))
		return decimal.Zero
	}

	profitHome := decimal.Zero
	for _, fb := range balances {
		apy := rates.APY(fb.CurrencyCode)
		if !fb.Amount.IsPositive() || !apy.IsPositive() {
			continue
		}
		interest := fb.Amount.Mul(apy).
			Div(decimal.NewFromInt(fincalc.CalendarDaysPerYear)).
			Div(cyclesPerDay)
		fb.Amount = fb.Amount.Add(interest)
		if err := s.statsRepo.UpsertForeignBalance(ctx, fb); err != nil {
			s.LogError(ctx, err, "Failed to persist foreign balance",
				slog.String("user_id", userID),
				slog.String("currency", fb.CurrencyCode))
			continue
		}
		profitHome = profitHome.Add(interest.Mul(rates.FXRate(fb.CurrencyCode)))
	}
	return profitHome
}

// accrueForeignCatchUp applies the continuous-time catch-up formula to each
// positive foreign balance: balance × APY / 365 × (effectiveSeconds/86400).
// Intentionally simpler than the discrete live path.
func (s *accrualServiceImpl) accrueForeignCatchUp(ctx context.Context, userID string, rates domain.MarketRates, effectiveSeconds int64) (decimal.Decimal, []domain.HistoryDetail) {
	balances, err := s.statsRepo.FindForeignBalances(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load foreign balances for reconcile", slog.String("user_id", userID))
		return decimal.Zero, nil
	}

	dayFraction := decimal.NewFromInt(effectiveSeconds).Div(decimal.NewFromInt(fincalc.SecondsPerDay))
	profitHome := decimal.Zero
	var details []domain.HistoryDetail
	for _, fb := range balances {
		apy := rates.APY(fb.CurrencyCode)
		if !fb.Amount.IsPositive() || !apy.IsPositive() {
			continue
		}
		interest := fb.Amount.Mul(apy).
			Div(decimal.NewFromInt(fincalc.CalendarDaysPerYear)).
			Mul(dayFraction)
		fb.Amount = fb.Amount.Add(interest)
		if err := s.statsRepo.UpsertForeignBalance(ctx, fb); err != nil {
			s.LogError(ctx, err, "Failed to persist reconciled foreign balance",
				slog.String("user_id", userID),
				slog.String("currency", fb.CurrencyCode))
			continue
		}
		interestHome := interest.Mul(rates.FXRate(fb.CurrencyCode))
		profitHome = profitHome.Add(interestHome)
		details = append(details, domain.HistoryDetail{
			Name:    fb.CurrencyCode + " SAVINGS",
			Value:   fb.Amount,
			Yield:   interestHome,
			Offline: true,
		})
	}
	return profitHome, details
}

// writeCycleHistory keeps a single aggregate row per calendar day, replacing
// its total with the current daily accumulators on every cycle.
func (s *accrualServiceImpl) writeCycleHistory(ctx context.Context, userID string, now time.Time, investments []domain.Investment, foreignProfit decimal.Decimal) {
	day := domain.DayKey(now)

	dailyTotal := foreignProfit
	details := make([]domain.HistoryDetail, 0, len(investments)+1)
	for _, inv := range investments {
		dailyTotal = dailyTotal.Add(inv.DailyYield)
		details = append(details, domain.HistoryDetail{
			Name:  inv.Name,
			Value: inv.Value,
			Yield: inv.DailyYield,
		})
	}
	if foreignProfit.IsPositive() {
		details = append(details, domain.HistoryDetail{
			Name:  "FOREIGN SAVINGS",
			Yield: foreignProfit,
		})
	}

	existing, err := s.historyRepo.FindHistoryByUserAndDate(ctx, userID, day)
	if err == nil && existing != nil {
		existing.TotalProfit = dailyTotal
		existing.Details = details
		existing.LastUpdatedAt = now
		if err := s.historyRepo.UpdateHistory(ctx, *existing); err != nil {
			s.LogError(ctx, err, "Failed to update daily history", slog.String("user_id", userID))
		}
		return
	}

	row := domain.DailyHistory{
		HistoryID:   uuid.NewString(),
		UserID:      userID,
		Date:        day,
		TotalProfit: dailyTotal,
		Details:     details,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.historyRepo.SaveHistory(ctx, row); err != nil {
		s.LogError(ctx, err, "Failed to insert daily history", slog.String("user_id", userID))
	}
}

// mergeHistory adds reconciled profit into today's row, appending the offline
// detail breakdown to whatever the live engine already recorded.
func (s *accrualServiceImpl) mergeHistory(ctx context.Context, userID string, now time.Time, total decimal.Decimal, details []domain.HistoryDetail) {
	day := domain.DayKey(now)

	existing, err := s.historyRepo.FindHistoryByUserAndDate(ctx, userID, day)
	if err == nil && existing != nil {
		existing.TotalProfit = existing.TotalProfit.Add(total)
		existing.Details = append(existing.Details, details...)
		existing.LastUpdatedAt = now
		if err := s.historyRepo.UpdateHistory(ctx, *existing); err != nil {
			s.LogError(ctx, err, "Failed to merge offline history", slog.String("user_id", userID))
		}
		return
	}

	row := domain.DailyHistory{
		HistoryID:   uuid.NewString(),
		UserID:      userID,
		Date:        day,
		TotalProfit: total,
		Details:     details,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.historyRepo.SaveHistory(ctx, row); err != nil {
		s.LogError(ctx, err, "Failed to insert offline history", slog.String("user_id", userID))
	}
}

// notifyMarketClosed emits the market-closed notice at most once per cooldown
// window per user.
func (s *accrualServiceImpl) notifyMarketClosed(userID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastClosedNotice[userID]; ok && now.Sub(last) < marketClosedCooldown {
		return
	}
	s.lastClosedNotice[userID] = now
	s.notifier.Notify(userID, "VALUES ARE STATIC: MARKET CLOSED TODAY")
}
