package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/apperrors"
	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	portsrepo "github.com/cdisim/cdi_sim_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxStatsRepository struct {
	BaseRepository
}

// newPgxStatsRepository creates a new repository for accrual state and
// balances.
func newPgxStatsRepository(pool *pgxpool.Pool) portsrepo.StatsRepositoryFacade {
	return &PgxStatsRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxStatsRepository implements portsrepo.StatsRepositoryFacade
var _ portsrepo.StatsRepositoryFacade = (*PgxStatsRepository)(nil)

func (r *PgxStatsRepository) FindStatsByUserID(ctx context.Context, userID string) (*domain.UserStats, error) {
	query := `
		SELECT user_id, balance, total_deposited, last_payout_at,
			created_at, created_by, last_updated_at, last_updated_by
		FROM user_stats
		WHERE user_id = $1;
	`
	var stats domain.UserStats
	err := r.Pool.QueryRow(ctx, query, userID).Scan(
		&stats.UserID,
		&stats.Balance,
		&stats.TotalDeposited,
		&stats.LastPayoutAt,
		&stats.CreatedAt,
		&stats.CreatedBy,
		&stats.LastUpdatedAt,
		&stats.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query stats for user %s: %w", userID, err)
	}
	return &stats, nil
}

func (r *PgxStatsRepository) FindForeignBalances(ctx context.Context, userID string) ([]domain.ForeignBalance, error) {
	query := `
		SELECT user_id, currency_code, amount,
			created_at, created_by, last_updated_at, last_updated_by
		FROM user_foreign_balances
		WHERE user_id = $1
		ORDER BY currency_code;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign balances for user %s: %w", userID, err)
	}
	defer rows.Close()

	var balances []domain.ForeignBalance
	for rows.Next() {
		var fb domain.ForeignBalance
		if err := rows.Scan(
			&fb.UserID,
			&fb.CurrencyCode,
			&fb.Amount,
			&fb.CreatedAt,
			&fb.CreatedBy,
			&fb.LastUpdatedAt,
			&fb.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan foreign balance row: %w", err)
		}
		balances = append(balances, fb)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating foreign balance rows: %w", rows.Err())
	}
	return balances, nil
}

func (r *PgxStatsRepository) SaveStats(ctx context.Context, stats domain.UserStats) error {
	query := `
		INSERT INTO user_stats (
			user_id, balance, total_deposited, last_payout_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		stats.UserID,
		stats.Balance,
		stats.TotalDeposited,
		stats.LastPayoutAt,
		stats.CreatedAt,
		stats.CreatedBy,
		stats.LastUpdatedAt,
		stats.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save stats for user %s: %w", stats.UserID, err)
	}
	return nil
}

func (r *PgxStatsRepository) UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal, updatedBy string) error {
	query := `
		UPDATE user_stats
		SET balance = $2, last_updated_at = now(), last_updated_by = $3
		WHERE user_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, userID, balance, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to update balance for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxStatsRepository) AddDeposit(ctx context.Context, userID string, amount decimal.Decimal, updatedBy string) error {
	query := `
		UPDATE user_stats
		SET total_deposited = total_deposited + $2, last_updated_at = now(), last_updated_by = $3
		WHERE user_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, userID, amount, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to add deposit for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxStatsRepository) UpdateLastPayout(ctx context.Context, userID string, at time.Time) error {
	query := `
		UPDATE user_stats
		SET last_payout_at = $2, last_updated_at = now()
		WHERE user_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, userID, at)
	if err != nil {
		return fmt.Errorf("failed to update last payout for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxStatsRepository) UpsertForeignBalance(ctx context.Context, balance domain.ForeignBalance) error {
	query := `
		INSERT INTO user_foreign_balances (
			user_id, currency_code, amount,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, now(), $1, now(), $1)
		ON CONFLICT (user_id, currency_code) DO UPDATE SET
			amount = EXCLUDED.amount,
			last_updated_at = now();
	`
	_, err := r.Pool.Exec(ctx, query,
		balance.UserID,
		balance.CurrencyCode,
		balance.Amount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert foreign balance %s/%s: %w", balance.UserID, balance.CurrencyCode, err)
	}
	return nil
}
