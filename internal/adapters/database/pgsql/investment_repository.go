package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cdisim/cdi_sim_app/internal/apperrors"
	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	portsrepo "github.com/cdisim/cdi_sim_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxInvestmentRepository struct {
	BaseRepository
}

// newPgxInvestmentRepository creates a new repository for investment records.
func newPgxInvestmentRepository(pool *pgxpool.Pool) portsrepo.InvestmentRepositoryFacade {
	return &PgxInvestmentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxInvestmentRepository implements portsrepo.InvestmentRepositoryFacade
var _ portsrepo.InvestmentRepositoryFacade = (*PgxInvestmentRepository)(nil)

const investmentSelectQuery = `
SELECT investment_id, user_id, name, value, rate_quota, type, yield_mode,
	daily_yield, maturity_at, capacity_target,
	created_at, created_by, last_updated_at, last_updated_by
FROM investments
`

func scanInvestment(row pgx.Row) (domain.Investment, error) {
	var inv domain.Investment
	err := row.Scan(
		&inv.InvestmentID,
		&inv.UserID,
		&inv.Name,
		&inv.Value,
		&inv.RateQuota,
		&inv.Type,
		&inv.YieldMode,
		&inv.DailyYield,
		&inv.MaturityAt,
		&inv.CapacityTarget,
		&inv.CreatedAt,
		&inv.CreatedBy,
		&inv.LastUpdatedAt,
		&inv.LastUpdatedBy,
	)
	return inv, err
}

func (r *PgxInvestmentRepository) FindInvestmentByID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	inv, err := scanInvestment(r.Pool.QueryRow(ctx, investmentSelectQuery+`WHERE investment_id = $1`, investmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query investment %s: %w", investmentID, err)
	}
	return &inv, nil
}

func (r *PgxInvestmentRepository) FindInvestmentsByUserID(ctx context.Context, userID string) ([]domain.Investment, error) {
	rows, err := r.Pool.Query(ctx, investmentSelectQuery+`WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query investments for user %s: %w", userID, err)
	}
	defer rows.Close()

	var investments []domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment row: %w", err)
		}
		investments = append(investments, inv)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating investment rows: %w", rows.Err())
	}
	return investments, nil
}

const investmentUpsertQuery = `
	INSERT INTO investments (
		investment_id, user_id, name, value, rate_quota, type, yield_mode,
		daily_yield, maturity_at, capacity_target,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (investment_id) DO UPDATE SET
		name = EXCLUDED.name,
		value = EXCLUDED.value,
		rate_quota = EXCLUDED.rate_quota,
		daily_yield = EXCLUDED.daily_yield,
		maturity_at = EXCLUDED.maturity_at,
		capacity_target = EXCLUDED.capacity_target,
		last_updated_at = EXCLUDED.last_updated_at,
		last_updated_by = EXCLUDED.last_updated_by;
`

func upsertArgs(inv domain.Investment) []any {
	return []any{
		inv.InvestmentID,
		inv.UserID,
		inv.Name,
		inv.Value,
		inv.RateQuota,
		inv.Type,
		inv.YieldMode,
		inv.DailyYield,
		inv.MaturityAt,
		inv.CapacityTarget,
		inv.CreatedAt,
		inv.CreatedBy,
		inv.LastUpdatedAt,
		inv.LastUpdatedBy,
	}
}

func (r *PgxInvestmentRepository) SaveInvestment(ctx context.Context, investment domain.Investment) error {
	_, err := r.Pool.Exec(ctx, investmentUpsertQuery, upsertArgs(investment)...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save investment %s: %w", investment.InvestmentID, err)
	}
	return nil
}

func (r *PgxInvestmentRepository) UpdateInvestment(ctx context.Context, investment domain.Investment) error {
	query := `
		UPDATE investments
		SET name = $2, value = $3, rate_quota = $4, daily_yield = $5,
			maturity_at = $6, capacity_target = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE investment_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		investment.InvestmentID,
		investment.Name,
		investment.Value,
		investment.RateQuota,
		investment.DailyYield,
		investment.MaturityAt,
		investment.CapacityTarget,
		investment.LastUpdatedAt,
		investment.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update investment %s: %w", investment.InvestmentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpsertInvestments writes a whole accrual batch in one round trip. The
// engine runs this every cycle, so the write path stays a single network hop
// regardless of position count.
func (r *PgxInvestmentRepository) UpsertInvestments(ctx context.Context, investments []domain.Investment) error {
	if len(investments) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, inv := range investments {
		batch.Queue(investmentUpsertQuery, upsertArgs(inv)...)
	}

	results := r.Pool.SendBatch(ctx, batch)
	defer results.Close()
	for range investments {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert investment batch: %w", err)
		}
	}
	return nil
}

func (r *PgxInvestmentRepository) DeleteInvestment(ctx context.Context, investmentID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM investments WHERE investment_id = $1;`, investmentID)
	if err != nil {
		return fmt.Errorf("failed to delete investment %s: %w", investmentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
