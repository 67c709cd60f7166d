package repository

import (
	"context"

	"github.com/taskpulse/backend/domain"
)

type TaskFilter struct {
	UserID   string
	Status   string
	SeriesID string
	Limit    int
	Offset   int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error

	// Complete flips the task to completed with a single conditional update.
	// Returns domain.ErrTaskAlreadyCompleted when a concurrent request won the
	// race, so at most one caller ever observes the transition.
	Complete(ctx context.Context, id string) (*domain.Task, error)

	// CreateOccurrence inserts a materialized occurrence and bumps the series
	// occurrence counter in the same transaction.
	CreateOccurrence(ctx context.Context, task *domain.Task) (*domain.Task, error)
}
