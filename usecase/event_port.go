package usecase

import (
	"context"

	"github.com/taskpulse/backend/domain"
)

// EventPublisher hands lifecycle events to the message bus. Delivery is
// at-least-once once Publish returns nil; callers treat a non-nil error as a
// policy decision to log and move on, never as a reason to fail the
// operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *domain.TaskEvent) error
}
