package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
	"github.com/taskpulse/backend/usecase"
)

// ReminderScheduler implements the scheduler port on top of the queue. The
// future-only rule lives here so every storage backend gets it for free: a
// reminder in the past is reported as not scheduled, never as an error.
type ReminderScheduler struct {
	queue  repository.ReminderQueue
	now    func() time.Time
	logger *zap.Logger
}

func NewReminderScheduler(queue repository.ReminderQueue, logger *zap.Logger) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScheduler{
		queue:  queue,
		now:    time.Now,
		logger: logger,
	}
}

func (s *ReminderScheduler) Schedule(ctx context.Context, payload domain.ReminderPayload) bool {
	if !payload.ReminderTime.After(s.now()) {
		return false
	}
	if err := s.queue.Schedule(ctx, payload); err != nil {
		s.logger.Error("reminder schedule failed",
			zap.String("task_id", payload.TaskID),
			zap.Time("reminder_time", payload.ReminderTime),
			zap.Error(err))
		return false
	}
	return true
}

func (s *ReminderScheduler) Cancel(ctx context.Context, taskID string) error {
	return s.queue.Cancel(ctx, taskID)
}

var _ usecase.ReminderScheduler = (*ReminderScheduler)(nil)
