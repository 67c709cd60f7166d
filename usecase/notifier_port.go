package usecase

import (
	"context"

	"github.com/taskpulse/backend/domain"
)

// Notifier is one delivery channel. Send never panics the dispatch loop: a
// failed delivery comes back as a ChannelResult with status error.
type Notifier interface {
	Name() string
	Send(ctx context.Context, payload domain.ReminderPayload, message string) domain.ChannelResult
}
