package repository

import (
	"context"

	"github.com/taskpulse/backend/domain"
)

type SeriesRepository interface {
	GetByID(ctx context.Context, id string) (*domain.TaskSeries, error)
	ListByUser(ctx context.Context, userID string) ([]domain.TaskSeries, error)
	Create(ctx context.Context, series *domain.TaskSeries) (*domain.TaskSeries, error)
	// UpdatePattern swaps the recurrence pattern in place. Existing occurrences
	// keep their dates; only future calculations see the new pattern.
	UpdatePattern(ctx context.Context, id string, pattern domain.RecurrencePattern) error
	Delete(ctx context.Context, id string) error
}
