package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
	"github.com/taskpulse/backend/usecase"
)

type UseCase struct {
	tasks     repository.TaskRepository
	series    repository.SeriesRepository
	publisher usecase.EventPublisher
	scheduler usecase.ReminderScheduler
	logger    *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	series repository.SeriesRepository,
	publisher usecase.EventPublisher,
	scheduler usecase.ReminderScheduler,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		series:    series,
		publisher: publisher,
		scheduler: scheduler,
		logger:    logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.Status == "" {
		task.Status = domain.StatusActive
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(task.Priority) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown priority", nil)
	}
	// Recurrence linkage comes from the series use case; a bare task carrying
	// only one half of the pair is malformed.
	if (task.Recurrence == nil) != (task.SeriesID == nil) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "recurrence pattern and series must be set together", nil)
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	uc.scheduleReminder(ctx, created)
	uc.publish(ctx, domain.EventTaskCreated, created)
	return created, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.Priority != "" && !domain.ValidPriority(task.Priority) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown priority", nil)
	}

	existing, err := uc.ownedTask(ctx, task.ID, task.UserID)
	if err != nil {
		return nil, err
	}
	// Status is not a free-form field: completion runs through CompleteTask so
	// the recurrence pipeline fires, deletion through DeleteTask.
	if task.Status != "" && task.Status != existing.Status {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "status cannot be changed via update", nil)
	}
	task.Status = existing.Status
	task.SeriesID = existing.SeriesID
	task.Recurrence = existing.Recurrence
	task.CreatedAt = existing.CreatedAt
	task.CompletedAt = existing.CompletedAt

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if err := uc.scheduler.Cancel(ctx, task.ID); err != nil {
		uc.logger.Warn("reminder cancel failed", zap.String("task_id", task.ID), zap.Error(err))
	}
	uc.scheduleReminder(ctx, task)
	uc.publish(ctx, domain.EventTaskUpdated, task)
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id string, userID string) error {
	if _, err := uc.ownedTask(ctx, id, userID); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		return err
	}
	if err := uc.scheduler.Cancel(ctx, id); err != nil {
		uc.logger.Warn("reminder cancel failed", zap.String("task_id", id), zap.Error(err))
	}
	uc.publish(ctx, domain.EventTaskDeleted, &domain.Task{ID: id, UserID: userID})
	return nil
}

// CompleteTask marks the task completed and, for recurring tasks, materializes
// the next occurrence of its series. Completion is the user-visible contract:
// once the conditional update commits, every follow-up step is best-effort and
// its failure is logged rather than surfaced.
func (uc *UseCase) CompleteTask(ctx context.Context, id string, userID string) (*domain.Task, error) {
	if _, err := uc.ownedTask(ctx, id, userID); err != nil {
		return nil, err
	}

	completed, err := uc.tasks.Complete(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.scheduler.Cancel(ctx, id); err != nil {
		uc.logger.Warn("reminder cancel failed", zap.String("task_id", id), zap.Error(err))
	}
	uc.publish(ctx, domain.EventTaskCompleted, completed)

	if completed.SeriesID == nil {
		return completed, nil
	}
	uc.advanceSeries(ctx, completed)
	return completed, nil
}

// advanceSeries creates the next occurrence after a recurring task completes.
// The conditional update in Complete guarantees at most one caller reaches
// this point per completion.
func (uc *UseCase) advanceSeries(ctx context.Context, completed *domain.Task) {
	series, err := uc.series.GetByID(ctx, *completed.SeriesID)
	if err != nil {
		uc.logger.Error("series load failed, skipping next occurrence",
			zap.String("task_id", completed.ID),
			zap.String("series_id", *completed.SeriesID),
			zap.Error(err))
		return
	}

	next, ok := series.Pattern.Next(completed.CreatedAt)
	if !ok {
		uc.logger.Info("series terminated",
			zap.String("series_id", series.ID),
			zap.Int("occurrences", series.OccurrenceCount))
		return
	}

	occurrence := uc.materializeOccurrence(completed, series, next)
	if _, err := uc.tasks.CreateOccurrence(ctx, occurrence); err != nil {
		uc.logger.Error("next occurrence creation failed",
			zap.String("series_id", series.ID),
			zap.Time("occurrence_date", next),
			zap.Error(err))
		return
	}

	uc.scheduleReminder(ctx, occurrence)
	uc.publish(ctx, domain.EventTaskCreated, occurrence)
	uc.publish(ctx, domain.EventRecurring, occurrence)
}

// materializeOccurrence copies the template fields onto a fresh task and
// shifts due date and reminder time by the same delta that separates the old
// anchor from the new occurrence date.
func (uc *UseCase) materializeOccurrence(prev *domain.Task, series *domain.TaskSeries, next time.Time) *domain.Task {
	pattern := series.Pattern
	occurrence := &domain.Task{
		ID:          uuid.NewString(),
		UserID:      prev.UserID,
		SeriesID:    &series.ID,
		Title:       series.Title,
		Description: series.Description,
		Status:      domain.StatusActive,
		Priority:    prev.Priority,
		Recurrence:  &pattern,
		Tags:        append([]string(nil), prev.Tags...),
		CreatedAt:   next,
	}

	delta := next.Sub(prev.CreatedAt)
	if prev.DueDate != nil {
		due := prev.DueDate.Add(delta)
		occurrence.DueDate = &due
	}
	if prev.ReminderTime != nil {
		reminder := prev.ReminderTime.Add(delta)
		occurrence.ReminderTime = &reminder
	}
	return occurrence
}

// ownedTask loads the task and verifies it belongs to the caller. A foreign
// task reads as not found so task IDs leak nothing across users.
func (uc *UseCase) ownedTask(ctx context.Context, id string, userID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
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

func (uc *UseCase) publish(ctx context.Context, eventType string, task *domain.Task) {
	payload, _ := json.Marshal(task)
	event := &domain.TaskEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		TaskID:    task.ID,
		UserID:    task.UserID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := uc.publisher.Publish(ctx, domain.TopicTaskEvents, event); err != nil {
		uc.logger.Warn("event publish failed",
			zap.String("event_type", eventType),
			zap.String("task_id", task.ID),
			zap.Error(err))
	}
}
