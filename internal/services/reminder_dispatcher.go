package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
	"github.com/taskpulse/backend/usecase"
)

// ReminderConsumer receives due reminders and dispatches notifications.
type ReminderConsumer interface {
	Dispatch(ctx context.Context, payload domain.ReminderPayload) map[string]domain.ChannelResult
}

// DedupGuard claims a one-shot key per fired trigger.
type DedupGuard interface {
	Claim(ctx context.Context, key string) bool
}

// DispatcherConfig controls the poll loop.
type DispatcherConfig struct {
	Interval  time.Duration
	BatchSize int
}

// ReminderDispatcher polls the queue for due triggers and hands each payload
// to the consumer exactly once per firing (the dedup guard absorbs queue
// redelivery and the cancel-versus-fire race).
type ReminderDispatcher struct {
	queue     repository.ReminderQueue
	consumer  ReminderConsumer
	dedup     DedupGuard
	publisher usecase.EventPublisher
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       DispatcherConfig
	now       func() time.Time
}

func NewReminderDispatcher(
	queue repository.ReminderQueue,
	consumer ReminderConsumer,
	dedup DedupGuard,
	publisher usecase.EventPublisher,
	logger *zap.Logger,
	cfg DispatcherConfig,
) *ReminderDispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &ReminderDispatcher{
		queue:     queue,
		consumer:  consumer,
		dedup:     dedup,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
		now:       time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = d.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval*2)
		defer cancel()
		if err := d.Poll(ctx); err != nil {
			d.logger.Error("reminder poll failed", zap.Error(err))
		}
	})

	return d
}

// Start launches the poll loop.
func (d *ReminderDispatcher) Start() {
	if d == nil || d.cron == nil {
		return
	}
	d.cron.Start()
	d.logger.Info("reminder dispatcher started")
}

// Stop gracefully stops the poll loop.
func (d *ReminderDispatcher) Stop(ctx context.Context) {
	if d == nil || d.cron == nil {
		return
	}
	stopCtx := d.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	d.logger.Info("reminder dispatcher stopped")
}

// Poll drains due triggers once.
func (d *ReminderDispatcher) Poll(ctx context.Context) error {
	payloads, err := d.queue.PopDue(ctx, d.now(), d.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, payload := range payloads {
		key := dedupKey(payload)
		if d.dedup != nil && !d.dedup.Claim(ctx, key) {
			d.logger.Debug("duplicate reminder trigger skipped", zap.String("task_id", payload.TaskID))
			continue
		}

		d.publishDue(ctx, payload)
		d.consumer.Dispatch(ctx, payload)
	}
	return nil
}

func (d *ReminderDispatcher) publishDue(ctx context.Context, payload domain.ReminderPayload) {
	if d.publisher == nil {
		return
	}
	body, _ := json.Marshal(payload)
	event := &domain.TaskEvent{
		ID:        uuid.NewString(),
		Type:      domain.EventReminder,
		TaskID:    payload.TaskID,
		UserID:    payload.UserID,
		Timestamp: d.now(),
		Payload:   body,
	}
	if err := d.publisher.Publish(ctx, domain.TopicReminders, event); err != nil {
		d.logger.Warn("reminder event publish failed",
			zap.String("task_id", payload.TaskID),
			zap.Error(err))
	}
}

func dedupKey(payload domain.ReminderPayload) string {
	return "reminder:" + payload.TaskID + ":" + strconv.FormatInt(payload.ReminderTime.Unix(), 10)
}
