package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/internal/infrastructure/outbox"
	"github.com/taskpulse/backend/usecase"
)

// OutboxPublisher implements the event publisher port by appending events to
// the durable outbox. The relay drains the outbox to the bus, so a nil return
// here already means at-least-once delivery: the event survives restarts and
// bus outages.
type OutboxPublisher struct {
	store  *outbox.Store
	logger *zap.Logger
}

func NewOutboxPublisher(store *outbox.Store, logger *zap.Logger) *OutboxPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxPublisher{store: store, logger: logger}
}

func (p *OutboxPublisher) Publish(ctx context.Context, topic string, event *domain.TaskEvent) error {
	if p.store == nil || event == nil {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.store.Enqueue(outbox.Item{
		ID:    event.ID,
		Topic: topic,
		Event: payload,
	})
}

var _ usecase.EventPublisher = (*OutboxPublisher)(nil)
