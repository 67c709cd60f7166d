package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/internal/infrastructure/bus"
	"github.com/taskpulse/backend/internal/infrastructure/outbox"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// RelayConfig controls how frequently the outbox is drained.
type RelayConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// EventRelay drains the durable outbox to the external bus. Items stay in the
// outbox until the bus accepts them, so consumers see at-least-once delivery;
// draining in key order keeps events published by one request in program
// order.
type EventRelay struct {
	store   *outbox.Store
	bus     bus.Bus
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     RelayConfig
}

func NewEventRelay(
	store *outbox.Store,
	eventBus bus.Bus,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg RelayConfig,
) *EventRelay {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	relay := &EventRelay{
		store:   store,
		bus:     eventBus,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = relay.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := relay.Drain(ctx); err != nil {
			relay.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return relay
}

// Start launches the cron scheduler.
func (r *EventRelay) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("event relay started")
}

// Stop gracefully stops the scheduler.
func (r *EventRelay) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("event relay stopped")
}

// Drain publishes pending items synchronously.
func (r *EventRelay) Drain(ctx context.Context) error {
	if r == nil || r.store == nil {
		return nil
	}
	if r.monitor != nil && !r.monitor.IsOnline() {
		r.logger.Debug("skipping outbox drain (bus offline)")
		return nil
	}

	items, err := r.store.GetBatch(r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := r.bus.Publish(ctx, item.Topic, item.Event); err != nil {
			r.logger.Error("event publish to bus failed",
				zap.String("item_id", item.ID),
				zap.String("topic", item.Topic),
				zap.Error(err))

			item.Retries++
			if item.Retries >= r.cfg.MaxRetries {
				r.logger.Warn("dropping outbox item (max retries reached)", zap.String("item_id", item.ID))
				_ = r.store.Remove(item)
				continue
			}

			// The item retries in place: it keeps its key, so the next drain
			// attempts it first and same-task events behind it cannot overtake.
			if err := r.store.Update(item); err != nil {
				r.logger.Error("failed to persist outbox retry count", zap.Error(err))
			}
			return nil
		}

		if err := r.store.Remove(item); err != nil {
			r.logger.Warn("failed to purge published outbox item", zap.Error(err))
		}
	}
	return nil
}

// Size returns the number of pending outbox items.
func (r *EventRelay) Size() int {
	if r == nil || r.store == nil {
		return 0
	}
	size, err := r.store.Size()
	if err != nil {
		return 0
	}
	return size
}
