package services

import (
	"time"

	portsrepo "github.com/cdisim/cdi_sim_app/internal/core/ports/repositories"
	portssvc "github.com/cdisim/cdi_sim_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Config carries the tunables the engine services need. Values come from the
// platform configuration; the core does not read the environment itself.
type Config struct {
	TickSeconds     int64
	BigWinThreshold decimal.Decimal
	HistoryMaxAge   time.Duration
	MarketData      MarketDataConfig
}

// NewServiceContainer wires every service implementation together. The
// returned shutdown function stops the tick scheduler and must be called on
// exit.
func NewServiceContainer(repos portsrepo.RepositoryProvider, cfg Config) (*portssvc.ServiceContainer, func()) {
	locks := newUserLocks()
	notices := newNoticeBuffer()

	marketData := NewMarketDataService(cfg.MarketData)
	accrual := NewAccrualService(
		repos.InvestmentRepo,
		repos.StatsRepo,
		repos.HistoryRepo,
		notices,
		locks,
		cfg.TickSeconds,
		cfg.BigWinThreshold,
	)
	session := NewSessionManager(accrual, marketData, repos.HistoryRepo, notices, cfg.TickSeconds, cfg.HistoryMaxAge)

	container := &portssvc.ServiceContainer{
		User:       NewUserService(repos.UserRepo, repos.StatsRepo, marketData, locks),
		Investment: NewInvestmentService(repos.InvestmentRepo, repos.StatsRepo, marketData, locks),
		Accrual:    accrual,
		MarketData: marketData,
		Session:    session,
	}
	return container, session.Shutdown
}
