package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
	"github.com/taskpulse/backend/usecase"
)

type UseCase struct {
	notifiers []usecase.Notifier
	records   repository.NotificationRepository
	publisher usecase.EventPublisher
	logger    *zap.Logger
}

func New(
	notifiers []usecase.Notifier,
	records repository.NotificationRepository,
	publisher usecase.EventPublisher,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		notifiers: notifiers,
		records:   records,
		publisher: publisher,
		logger:    logger,
	}
}

// Dispatch delivers a due reminder through every configured channel. Channels
// fail independently; the audit record is written regardless of the outcome,
// so even a fully failed dispatch leaves a durable trace.
func (uc *UseCase) Dispatch(ctx context.Context, payload domain.ReminderPayload) map[string]domain.ChannelResult {
	message := fmt.Sprintf("Reminder: %s", payload.TaskTitle)

	results := make(map[string]domain.ChannelResult, len(uc.notifiers))
	for _, notifier := range uc.notifiers {
		result := notifier.Send(ctx, payload, message)
		results[notifier.Name()] = result
		if result.Status == domain.ChannelError {
			uc.logger.Warn("channel delivery failed",
				zap.String("channel", notifier.Name()),
				zap.String("task_id", payload.TaskID),
				zap.String("error", result.Error))
		}
	}

	record := &domain.NotificationRecord{
		ID:        uuid.NewString(),
		TaskID:    payload.TaskID,
		UserID:    payload.UserID,
		TaskTitle: payload.TaskTitle,
		Message:   message,
		Results:   results,
		SentAt:    time.Now(),
	}
	if _, err := uc.records.Create(ctx, record); err != nil {
		uc.logger.Error("notification audit write failed",
			zap.String("task_id", payload.TaskID),
			zap.Error(err))
	}

	uc.publishProcessed(ctx, payload, record)
	return results
}

func (uc *UseCase) GetNotification(ctx context.Context, id string) (*domain.NotificationRecord, error) {
	return uc.records.GetByID(ctx, id)
}

func (uc *UseCase) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]domain.NotificationRecord, error) {
	return uc.records.ListByUser(ctx, userID, limit, offset)
}

func (uc *UseCase) publishProcessed(ctx context.Context, payload domain.ReminderPayload, record *domain.NotificationRecord) {
	body, _ := json.Marshal(record)
	event := &domain.TaskEvent{
		ID:        uuid.NewString(),
		Type:      domain.EventReminder,
		TaskID:    payload.TaskID,
		UserID:    payload.UserID,
		Timestamp: time.Now(),
		Payload:   body,
	}
	if err := uc.publisher.Publish(ctx, domain.TopicRemindersProcessed, event); err != nil {
		uc.logger.Warn("event publish failed",
			zap.String("topic", domain.TopicRemindersProcessed),
			zap.String("task_id", payload.TaskID),
			zap.Error(err))
	}
}
