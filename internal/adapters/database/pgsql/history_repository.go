package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cdisim/cdi_sim_app/internal/apperrors"
	"github.com/cdisim/cdi_sim_app/internal/core/domain"
	portsrepo "github.com/cdisim/cdi_sim_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxHistoryRepository struct {
	BaseRepository
}

// newPgxHistoryRepository creates a new repository for daily accrual history.
func newPgxHistoryRepository(pool *pgxpool.Pool) portsrepo.HistoryRepositoryFacade {
	return &PgxHistoryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxHistoryRepository implements portsrepo.HistoryRepositoryFacade
var _ portsrepo.HistoryRepositoryFacade = (*PgxHistoryRepository)(nil)

const historySelectQuery = `
SELECT history_id, user_id, date, total_profit, details,
	created_at, created_by, last_updated_at, last_updated_by
FROM daily_history
`

func scanHistory(row pgx.Row) (domain.DailyHistory, error) {
	var h domain.DailyHistory
	var details []byte
	err := row.Scan(
		&h.HistoryID,
		&h.UserID,
		&h.Date,
		&h.TotalProfit,
		&details,
		&h.CreatedAt,
		&h.CreatedBy,
		&h.LastUpdatedAt,
		&h.LastUpdatedBy,
	)
	if err != nil {
		return h, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &h.Details); err != nil {
			return h, fmt.Errorf("failed to decode history details: %w", err)
		}
	}
	return h, nil
}

func (r *PgxHistoryRepository) FindHistoryByUserAndDate(ctx context.Context, userID string, day time.Time) (*domain.DailyHistory, error) {
	h, err := scanHistory(r.Pool.QueryRow(ctx, historySelectQuery+`WHERE user_id = $1 AND date = $2`, userID, day))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query history for user %s: %w", userID, err)
	}
	return &h, nil
}

func (r *PgxHistoryRepository) ListRecentHistory(ctx context.Context, userID string, since time.Time) ([]domain.DailyHistory, error) {
	rows, err := r.Pool.Query(ctx, historySelectQuery+`WHERE user_id = $1 AND date >= $2 ORDER BY date DESC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent history for user %s: %w", userID, err)
	}
	defer rows.Close()

	var history []domain.DailyHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history = append(history, h)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", rows.Err())
	}
	return history, nil
}

func (r *PgxHistoryRepository) SaveHistory(ctx context.Context, history domain.DailyHistory) error {
	details, err := json.Marshal(history.Details)
	if err != nil {
		return fmt.Errorf("failed to encode history details: %w", err)
	}

	query := `
		INSERT INTO daily_history (
			history_id, user_id, date, total_profit, details,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = r.Pool.Exec(ctx, query,
		history.HistoryID,
		history.UserID,
		history.Date,
		history.TotalProfit,
		details,
		history.CreatedAt,
		history.CreatedBy,
		history.LastUpdatedAt,
		history.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save history %s: %w", history.HistoryID, err)
	}
	return nil
}

func (r *PgxHistoryRepository) UpdateHistory(ctx context.Context, history domain.DailyHistory) error {
	details, err := json.Marshal(history.Details)
	if err != nil {
		return fmt.Errorf("failed to encode history details: %w", err)
	}

	query := `
		UPDATE daily_history
		SET total_profit = $2, details = $3, last_updated_at = $4
		WHERE history_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		history.HistoryID,
		history.TotalProfit,
		details,
		history.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update history %s: %w", history.HistoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxHistoryRepository) PurgeHistoryBefore(ctx context.Context, userID string, cutoff time.Time) error {
	_, err := r.Pool.Exec(ctx, `DELETE FROM daily_history WHERE user_id = $1 AND date < $2;`, userID, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge history for user %s: %w", userID, err)
	}
	return nil
}
