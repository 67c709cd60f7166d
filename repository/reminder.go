package repository

import (
	"context"
	"time"

	"github.com/taskpulse/backend/domain"
)

// ReminderQueue stores pending reminder triggers ordered by due time.
type ReminderQueue interface {
	// Schedule registers a trigger for the payload's reminder time, replacing
	// any pending trigger for the same task.
	Schedule(ctx context.Context, payload domain.ReminderPayload) error
	// Cancel removes a pending trigger. Cancelling a trigger that already
	// fired or never existed is not an error.
	Cancel(ctx context.Context, taskID string) error
	// PopDue atomically removes and returns up to limit payloads whose
	// reminder time is at or before now.
	PopDue(ctx context.Context, now time.Time, limit int) ([]domain.ReminderPayload, error)
}
