package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
)

const taskColumns = `id, user_id, series_id, title, description, status, priority,
	due_date, reminder_time, recurrence, tags, created_at, updated_at, completed_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR status = $2)
	  AND ($3 = '' OR series_id = $3)
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query,
		filter.UserID, filter.Status, filter.SeriesID, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, series_id, title, description, status, priority,
		due_date, reminder_time, recurrence, tags)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.SeriesID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		nullTimePtr(task.DueDate),
		nullTimePtr(task.ReminderTime),
		marshalPattern(task.Recurrence),
		marshalTags(task.Tags),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		status = $4,
		priority = $5,
		due_date = $6,
		reminder_time = $7,
		tags = $8,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		nullTimePtr(task.DueDate),
		nullTimePtr(task.ReminderTime),
		marshalTags(task.Tags),
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

// Delete is a soft delete: the row survives for audit but leaves every
// active-task listing.
func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `
	UPDATE tasks SET status = $2, updated_at = NOW()
	WHERE id = $1 AND status <> $2
	`
	tag, err := r.pool.Exec(ctx, query, id, domain.StatusDeleted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Complete(ctx context.Context, id string) (*domain.Task, error) {
	// Only active tasks complete: a soft-deleted row must not resurrect as
	// completed.
	query := `
	UPDATE tasks
	SET status = $2, completed_at = NOW(), updated_at = NOW()
	WHERE id = $1 AND status = $3
	RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query, id, domain.StatusCompleted, domain.StatusActive)
	task, err := scanTask(row)
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, domain.ErrTaskNotFound) {
		return nil, err
	}

	// No row updated: missing, deleted, or someone else completed it first.
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, domain.ErrTaskNotFound
	}
	if existing.IsCompleted() {
		return nil, domain.ErrTaskAlreadyCompleted
	}
	return nil, domain.ErrTaskNotFound
}

func (r *taskRepository) CreateOccurrence(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.SeriesID == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// created_at is the occurrence date, not the insert time: the next
	// calculation anchors on it, so the chain of occurrences must not drift
	// with processing latency.
	const insert = `
	INSERT INTO tasks (id, user_id, series_id, title, description, status, priority,
		due_date, reminder_time, recurrence, tags, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING updated_at
	`
	if err := tx.QueryRow(ctx, insert,
		task.ID,
		task.UserID,
		task.SeriesID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		nullTimePtr(task.DueDate),
		nullTimePtr(task.ReminderTime),
		marshalPattern(task.Recurrence),
		marshalTags(task.Tags),
		task.CreatedAt,
	).Scan(&task.UpdatedAt); err != nil {
		return nil, err
	}

	const bump = `
	UPDATE task_series
	SET occurrence_count = occurrence_count + 1, updated_at = NOW()
	WHERE id = $1
	`
	tag, err := tx.Exec(ctx, bump, *task.SeriesID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrSeriesNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		due        *time.Time
		reminder   *time.Time
		completed  *time.Time
		recurrence []byte
		tags       []byte
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.SeriesID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&due,
		&reminder,
		&recurrence,
		&tags,
		&task.CreatedAt,
		&task.UpdatedAt,
		&completed,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.DueDate = due
	task.ReminderTime = reminder
	task.CompletedAt = completed
	if len(recurrence) > 0 {
		var pattern domain.RecurrencePattern
		if err := json.Unmarshal(recurrence, &pattern); err == nil {
			task.Recurrence = &pattern
		}
	}
	if len(tags) > 0 {
		_ = json.Unmarshal(tags, &task.Tags)
	}

	return &task, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
