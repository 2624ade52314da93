package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/apperrors"
	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	portsrepo "github.com/cdisim/cdi_sim_app/internal/core/ports/repositories"
	portssvc "github.com/cdisim/cdi_sim_app/internal/core/ports/services"
	"github.com/cdisim/cdi_sim_app/internal/core/services"
	"github.com/shopspring/decimal"
)

// --- In-memory InvestmentRepository ---
// Stateful fakes rather than call-recording mocks: the engine tests need
// values to actually accumulate across many cycles.
type memInvestmentRepo struct {
	mu          sync.Mutex
	investments map[string]domain.Investment
	order       []string

	FindByUserFn func(ctx context.Context, userID string) ([]domain.Investment, error)
	UpsertFn     func(ctx context.Context, investments []domain.Investment) error
}

func newMemInvestmentRepo() *memInvestmentRepo {
	return &memInvestmentRepo{investments: make(map[string]domain.Investment)}
}

func (r *memInvestmentRepo) FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.investments[investmentID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &inv, nil
}

func (r *memInvestmentRepo) FindInvestmentsByUserID(ctx context.Context, userID string) ([]domain.Investment, error) {
	if r.FindByUserFn != nil {
		return r.FindByUserFn(ctx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Investment
	for _, id := range r.order {
		if inv := r.investments[id]; inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvestmentRepo) SaveInvestment(ctx context.Context, investment domain.Investment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.investments[investment.InvestmentID]; !exists {
		r.order = append(r.order, investment.InvestmentID)
	}
	r.investments[investment.InvestmentID] = investment
	return nil
}

func (r *memInvestmentRepo) UpdateInvestment(ctx context.Context, investment domain.Investment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.investments[investment.InvestmentID]; !ok {
		return apperrors.ErrNotFound
	}
	r.investments[investment.InvestmentID] = investment
	return nil
}

func (r *memInvestmentRepo) UpsertInvestments(ctx context.Context, investments []domain.Investment) error {
	if r.UpsertFn != nil {
		return r.UpsertFn(ctx, investments)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range investments {
		if _, exists := r.investments[inv.InvestmentID]; !exists {
			r.order = append(r.order, inv.InvestmentID)
		}
		r.investments[inv.InvestmentID] = inv
	}
	return nil
}

func (r *memInvestmentRepo) DeleteInvestment(ctx context.Context, investmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.investments[investmentID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.investments, investmentID)
	for i, id := range r.order {
		if id == investmentID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memInvestmentRepo) get(investmentID string) (domain.Investment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.investments[investmentID]
	return inv, ok
}

// --- In-memory StatsRepository ---
type memStatsRepo struct {
	mu      sync.Mutex
	stats   map[string]domain.UserStats
	foreign map[string]map[string]domain.ForeignBalance
}

func newMemStatsRepo() *memStatsRepo {
	return &memStatsRepo{
		stats:   make(map[string]domain.UserStats),
		foreign: make(map[string]map[string]domain.ForeignBalance),
	}
}

func (r *memStatsRepo) FindStatsByUserID(ctx context.Context, userID string) (*domain.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &stats, nil
}

func (r *memStatsRepo) FindForeignBalances(ctx context.Context, userID string) ([]domain.ForeignBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ForeignBalance
	for _, fb := range r.foreign[userID] {
		out = append(out, fb)
	}
	return out, nil
}

func (r *memStatsRepo) SaveStats(ctx context.Context, stats domain.UserStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.stats[stats.UserID]; exists {
		return apperrors.ErrDuplicate
	}
	r.stats[stats.UserID] = stats
	return nil
}

func (r *memStatsRepo) UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stats.Balance = balance
	r.stats[userID] = stats
	return nil
}

func (r *memStatsRepo) AddDeposit(ctx context.Context, userID string, amount decimal.Decimal, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stats.TotalDeposited = stats.TotalDeposited.Add(amount)
	r.stats[userID] = stats
	return nil
}

func (r *memStatsRepo) UpdateLastPayout(ctx context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stats.LastPayoutAt = at
	r.stats[userID] = stats
	return nil
}

func (r *memStatsRepo) UpsertForeignBalance(ctx context.Context, balance domain.ForeignBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.foreign[balance.UserID] == nil {
		r.foreign[balance.UserID] = make(map[string]domain.ForeignBalance)
	}
	r.foreign[balance.UserID][balance.CurrencyCode] = balance
	return nil
}

func (r *memStatsRepo) getStats(userID string) domain.UserStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats[userID]
}

func (r *memStatsRepo) getForeign(userID, code string) (domain.ForeignBalance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fb, ok := r.foreign[userID][code]
	return fb, ok
}

// --- In-memory HistoryRepository ---
type memHistoryRepo struct {
	mu   sync.Mutex
	rows []domain.DailyHistory
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{}
}

func (r *memHistoryRepo) FindHistoryByUserAndDate(ctx context.Context, userID string, day time.Time) (*domain.DailyHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].UserID == userID && r.rows[i].Date.Equal(day) {
			row := r.rows[i]
			return &row, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memHistoryRepo) ListRecentHistory(ctx context.Context, userID string, since time.Time) ([]domain.DailyHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DailyHistory
	for _, row := range r.rows {
		if row.UserID == userID && !row.Date.Before(since) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memHistoryRepo) SaveHistory(ctx context.Context, history domain.DailyHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, history)
	return nil
}

func (r *memHistoryRepo) UpdateHistory(ctx context.Context, history domain.DailyHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].HistoryID == history.HistoryID {
			r.rows[i] = history
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *memHistoryRepo) PurgeHistoryBefore(ctx context.Context, userID string, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID != userID || !row.Date.Before(cutoff) {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *memHistoryRepo) all(userID string) []domain.DailyHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DailyHistory
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out
}

// --- In-memory UserRepository ---
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]domain.User)}
}

func (r *memUserRepo) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

func (r *memUserRepo) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) SaveUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return apperrors.ErrDuplicate
		}
	}
	r.users[user.UserID] = user
	return nil
}

// --- Test fixture ---

type testFixture struct {
	investments *memInvestmentRepo
	stats       *memStatsRepo
	history     *memHistoryRepo
	users       *memUserRepo
	container   *portssvc.ServiceContainer
	shutdown    func()
}

func newTestFixture() *testFixture {
	f := &testFixture{
		investments: newMemInvestmentRepo(),
		stats:       newMemStatsRepo(),
		history:     newMemHistoryRepo(),
		users:       newMemUserRepo(),
	}
	repos := portsrepo.RepositoryProvider{
		UserRepo:       f.users,
		StatsRepo:      f.stats,
		InvestmentRepo: f.investments,
		HistoryRepo:    f.history,
	}
	cfg := services.Config{
		TickSeconds:     10,
		BigWinThreshold: decimal.NewFromInt(50),
		HistoryMaxAge:   72 * time.Hour,
		MarketData: services.MarketDataConfig{
			FallbackSelic:   decimal.NewFromFloat(0.15),
			CDISpread:       decimal.NewFromFloat(0.0010),
			InflationAnnual: decimal.NewFromFloat(0.045),
			ForeignAPY: map[string]decimal.Decimal{
				"USD": decimal.NewFromFloat(0.035),
			},
			FallbackFX: map[string]decimal.Decimal{
				"USD": decimal.NewFromFloat(5.37),
				"JPY": decimal.NewFromFloat(0.035),
			},
			RefreshInterval: time.Hour,
		},
	}
	f.container, f.shutdown = services.NewServiceContainer(repos, cfg)
	return f
}

// testMarketRates mirrors the fixture's fallback snapshot for direct engine
// invocations with a controlled clock.
func testMarketRates() domain.MarketRates {
	return domain.MarketRates{
		BenchmarkAnnual: decimal.NewFromFloat(0.1490),
		InflationAnnual: decimal.NewFromFloat(0.045),
		ForeignAPY: map[string]decimal.Decimal{
			"USD": decimal.NewFromFloat(0.035),
		},
		FX: map[string]decimal.Decimal{
			"USD": decimal.NewFromFloat(5.37),
		},
		FetchedAt: time.Now(),
	}
}
