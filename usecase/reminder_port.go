package usecase

import (
	"context"

	"github.com/taskpulse/backend/domain"
)

// ReminderScheduler arranges future reminder triggers. Schedule reports false
// without error when the reminder time is not in the future; Cancel is
// idempotent and tolerates triggers that already fired or never existed.
type ReminderScheduler interface {
	Schedule(ctx context.Context, payload domain.ReminderPayload) bool
	Cancel(ctx context.Context, taskID string) error
}
