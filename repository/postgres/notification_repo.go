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

const notificationColumns = `id, task_id, user_id, task_title, message, results, sent_at, created_at`

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a Postgres-backed implementation of NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) repository.NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, record *domain.NotificationRecord) (*domain.NotificationRecord, error) {
	if record == nil {
		return nil, domain.ErrInvalidPayload
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO notifications (id, task_id, user_id, task_title, message, results, sent_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.TaskID,
		record.UserID,
		record.TaskTitle,
		record.Message,
		marshalResults(record.Results),
		record.SentAt,
	).Scan(&record.CreatedAt); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.NotificationRecord, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanNotification(row)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.NotificationRecord, error) {
	query := `
	SELECT ` + notificationColumns + `
	FROM notifications
	WHERE user_id = $1
	ORDER BY sent_at DESC
	LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.NotificationRecord
	for rows.Next() {
		record, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func scanNotification(row interface {
	Scan(dest ...interface{}) error
}) (*domain.NotificationRecord, error) {
	var record domain.NotificationRecord
	var results []byte

	if err := row.Scan(
		&record.ID,
		&record.TaskID,
		&record.UserID,
		&record.TaskTitle,
		&record.Message,
		&results,
		&record.SentAt,
		&record.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}

	if len(results) > 0 {
		_ = json.Unmarshal(results, &record.Results)
	}

	return &record, nil
}
