package repository

import (
	"context"

	"github.com/taskpulse/backend/domain"
)

// NotificationRepository is insert-only by design: records form an audit
// trail and are never mutated after creation.
type NotificationRepository interface {
	Create(ctx context.Context, record *domain.NotificationRecord) (*domain.NotificationRecord, error)
	GetByID(ctx context.Context, id string) (*domain.NotificationRecord, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.NotificationRecord, error)
}
