package series

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
	"github.com/taskpulse/backend/usecase"
)

// FirstOccurrence carries the per-task fields of the first materialized
// occurrence; title and description come from the series template.
type FirstOccurrence struct {
	DueDate      *time.Time
	ReminderTime *time.Time
	Priority     string
	Tags         []string
}

type UseCase struct {
	series    repository.SeriesRepository
	tasks     repository.TaskRepository
	publisher usecase.EventPublisher
	scheduler usecase.ReminderScheduler
	logger    *zap.Logger
}

func New(
	series repository.SeriesRepository,
	tasks repository.TaskRepository,
	publisher usecase.EventPublisher,
	scheduler usecase.ReminderScheduler,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		series:    series,
		tasks:     tasks,
		publisher: publisher,
		scheduler: scheduler,
		logger:    logger,
	}
}

// CreateSeries validates the pattern up front (malformed patterns are
// rejected here, not discovered later as a silently terminated series),
// stores the template and materializes its first occurrence.
func (uc *UseCase) CreateSeries(ctx context.Context, s *domain.TaskSeries, first FirstOccurrence) (*domain.TaskSeries, *domain.Task, error) {
	if s == nil || s.Title == "" {
		return nil, nil, domain.ErrInvalidPayload
	}
	if err := s.Pattern.Validate(); err != nil {
		return nil, nil, err
	}
	if first.Priority == "" {
		first.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(first.Priority) {
		return nil, nil, domain.WrapError(domain.ErrCodeInvalid, "unknown priority", nil)
	}

	created, err := uc.series.Create(ctx, s)
	if err != nil {
		return nil, nil, err
	}

	pattern := created.Pattern
	task := &domain.Task{
		ID:           uuid.NewString(),
		UserID:       created.UserID,
		SeriesID:     &created.ID,
		Title:        created.Title,
		Description:  created.Description,
		Status:       domain.StatusActive,
		Priority:     first.Priority,
		DueDate:      first.DueDate,
		ReminderTime: first.ReminderTime,
		Recurrence:   &pattern,
		Tags:         first.Tags,
		CreatedAt:    time.Now(),
	}

	if _, err := uc.tasks.CreateOccurrence(ctx, task); err != nil {
		// The series row without a first occurrence is useless; undo it.
		if delErr := uc.series.Delete(ctx, created.ID); delErr != nil {
			uc.logger.Error("series rollback failed", zap.String("series_id", created.ID), zap.Error(delErr))
		}
		return nil, nil, err
	}
	created.OccurrenceCount++

	uc.scheduleReminder(ctx, task)
	uc.publishCreated(ctx, task)

	return created, task, nil
}

func (uc *UseCase) GetSeries(ctx context.Context, id string) (*domain.TaskSeries, error) {
	return uc.series.GetByID(ctx, id)
}

func (uc *UseCase) ListSeries(ctx context.Context, userID string) ([]domain.TaskSeries, error) {
	return uc.series.ListByUser(ctx, userID)
}

// UpdatePattern swaps the recurrence rule prospectively: occurrences already
// materialized keep their dates.
func (uc *UseCase) UpdatePattern(ctx context.Context, id string, pattern domain.RecurrencePattern) error {
	if err := pattern.Validate(); err != nil {
		return err
	}
	return uc.series.UpdatePattern(ctx, id, pattern)
}

func (uc *UseCase) DeleteSeries(ctx context.Context, id string) error {
	return uc.series.Delete(ctx, id)
}

func (uc *UseCase) scheduleReminder(ctx context.Context, task *domain.Task) {
	if task.ReminderTime == nil {
		return
	}
	scheduled := uc.scheduler.Schedule(ctx, domain.ReminderPayload{
		TaskID:       task.ID,
		UserID:       task.UserID,
		TaskTitle:    task.Title,
		ReminderTime: *task.ReminderTime,
	})
	if !scheduled {
		uc.logger.Warn("reminder not scheduled",
			zap.String("task_id", task.ID),
			zap.Time("reminder_time", *task.ReminderTime))
	}
}

func (uc *UseCase) publishCreated(ctx context.Context, task *domain.Task) {
	event := &domain.TaskEvent{
		ID:        uuid.NewString(),
		Type:      domain.EventTaskCreated,
		TaskID:    task.ID,
		UserID:    task.UserID,
		Timestamp: time.Now(),
	}
	if err := uc.publisher.Publish(ctx, domain.TopicTaskEvents, event); err != nil {
		uc.logger.Warn("event publish failed",
			zap.String("event_type", event.Type),
			zap.String("task_id", task.ID),
			zap.Error(err))
	}
}
