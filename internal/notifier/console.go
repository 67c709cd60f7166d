package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/usecase"
)

type consoleNotifier struct {
	logger *zap.Logger
}

// NewConsole returns a channel that writes reminders to the service log.
// It never fails, which makes it the baseline channel in every deployment.
func NewConsole(logger *zap.Logger) usecase.Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &consoleNotifier{logger: logger}
}

func (n *consoleNotifier) Name() string { return "console" }

func (n *consoleNotifier) Send(ctx context.Context, payload domain.ReminderPayload, message string) domain.ChannelResult {
	n.logger.Info("reminder",
		zap.String("user_id", payload.UserID),
		zap.String("task_id", payload.TaskID),
		zap.String("message", message))
	return domain.ChannelResult{
		Status:    domain.ChannelSent,
		Timestamp: time.Now(),
	}
}
