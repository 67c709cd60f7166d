package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
)

const seriesColumns = `id, user_id, title, description, recurrence, occurrence_count, created_at, updated_at`

type seriesRepository struct {
	pool *pgxpool.Pool
}

// NewSeriesRepository returns a Postgres-backed implementation of SeriesRepository.
func NewSeriesRepository(pool *pgxpool.Pool) repository.SeriesRepository {
	return &seriesRepository{pool: pool}
}

func (r *seriesRepository) GetByID(ctx context.Context, id string) (*domain.TaskSeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM task_series WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanSeries(row)
}

func (r *seriesRepository) ListByUser(ctx context.Context, userID string) ([]domain.TaskSeries, error) {
	query := `SELECT ` + seriesColumns + ` FROM task_series WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []domain.TaskSeries
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		series = append(series, *s)
	}
	return series, rows.Err()
}

func (r *seriesRepository) Create(ctx context.Context, series *domain.TaskSeries) (*domain.TaskSeries, error) {
	if series == nil {
		return nil, domain.ErrInvalidPayload
	}
	if series.ID == "" {
		series.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO task_series (id, user_id, title, description, recurrence, occurrence_count)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		series.ID,
		series.UserID,
		series.Title,
		series.Description,
		marshalPattern(&series.Pattern),
		series.OccurrenceCount,
	).Scan(&series.CreatedAt, &series.UpdatedAt); err != nil {
		return nil, err
	}
	return series, nil
}

func (r *seriesRepository) UpdatePattern(ctx context.Context, id string, pattern domain.RecurrencePattern) error {
	const query = `
	UPDATE task_series SET recurrence = $2, updated_at = NOW()
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, marshalPattern(&pattern))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSeriesNotFound
	}
	return nil
}

// Delete detaches surviving occurrences before removing the series row, so
// no task is ever left holding a recurrence pattern without a series (or the
// other way around).
func (r *seriesRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE tasks SET series_id = NULL, recurrence = NULL, updated_at = NOW() WHERE series_id = $1`,
		id,
	); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM task_series WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSeriesNotFound
	}

	return tx.Commit(ctx)
}

func scanSeries(row interface {
	Scan(dest ...interface{}) error
}) (*domain.TaskSeries, error) {
	var series domain.TaskSeries
	var recurrence []byte

	if err := row.Scan(
		&series.ID,
		&series.UserID,
		&series.Title,
		&series.Description,
		&recurrence,
		&series.OccurrenceCount,
		&series.CreatedAt,
		&series.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSeriesNotFound
		}
		return nil, err
	}

	if len(recurrence) > 0 {
		_ = json.Unmarshal(recurrence, &series.Pattern)
	}
	series.Pattern.OccurrenceCount = series.OccurrenceCount

	return &series, nil
}
