package pgsql

import (
	portsrepo "github.com/cdisim/cdi_sim_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:       newPgxUserRepository(dbPool),
		StatsRepo:      newPgxStatsRepository(dbPool),
		InvestmentRepo: newPgxInvestmentRepository(dbPool),
		HistoryRepo:    newPgxHistoryRepository(dbPool),
	}
}
