package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/taskpulse/backend/domain"
)

type recordingConsumer struct {
	mu         sync.Mutex
	dispatched []domain.ReminderPayload
}

func (c *recordingConsumer) Dispatch(_ context.Context, payload domain.ReminderPayload) map[string]domain.ChannelResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dispatched = append(c.dispatched, payload)
	return map[string]domain.ChannelResult{"console": {Status: domain.ChannelSent}}
}

func (c *recordingConsumer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.dispatched)
}

type memDedup struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMemDedup() *memDedup { return &memDedup{seen: make(map[string]bool)} }

func (d *memDedup) Claim(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}

type captPublisher struct {
	mu     sync.Mutex
	topics []string
	events []*domain.TaskEvent
}

func (p *captPublisher) Publish(_ context.Context, topic string, event *domain.TaskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func newTestDispatcher(queue *memQueue, consumer ReminderConsumer, dedup DedupGuard, publisher *captPublisher) *ReminderDispatcher {
	d := NewReminderDispatcher(queue, consumer, dedup, publisher, nil, DispatcherConfig{
		Interval:  time.Second,
		BatchSize: 10,
	})
	d.now = fixedNow
	return d
}

func TestReminderDispatcher_DispatchesDueReminders(t *testing.T) {
	queue := newMemQueue()
	queue.entries["task-1"] = domain.ReminderPayload{
		TaskID:       "task-1",
		UserID:       "user-1",
		TaskTitle:    "Water plants",
		ReminderTime: fixedNow().Add(-time.Minute),
	}
	queue.entries["task-2"] = domain.ReminderPayload{
		TaskID:       "task-2",
		UserID:       "user-1",
		TaskTitle:    "Feed cat",
		ReminderTime: fixedNow().Add(time.Hour),
	}

	consumer := &recordingConsumer{}
	publisher := &captPublisher{}
	d := newTestDispatcher(queue, consumer, newMemDedup(), publisher)

	if err := d.Poll(context.Background()); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}

	if consumer.count() != 1 {
		t.Fatalf("dispatched %d reminders, want 1 (only the due one)", consumer.count())
	}
	if consumer.dispatched[0].TaskID != "task-1" {
		t.Errorf("dispatched %s, want task-1", consumer.dispatched[0].TaskID)
	}
	if queue.size() != 1 {
		t.Errorf("future reminder must stay queued, queue size = %d", queue.size())
	}
	if len(publisher.topics) != 1 || publisher.topics[0] != domain.TopicReminders {
		t.Errorf("due event topics = %v, want [%s]", publisher.topics, domain.TopicReminders)
	}
	if publisher.events[0].Type != domain.EventReminder {
		t.Errorf("due event type = %q", publisher.events[0].Type)
	}
}

func TestReminderDispatcher_DedupSkipsRedelivery(t *testing.T) {
	payload := domain.ReminderPayload{
		TaskID:       "task-1",
		UserID:       "user-1",
		TaskTitle:    "Water plants",
		ReminderTime: fixedNow().Add(-time.Minute),
	}
	consumer := &recordingConsumer{}
	dedup := newMemDedup()

	queue := newMemQueue()
	queue.entries["task-1"] = payload
	d := newTestDispatcher(queue, consumer, dedup, &captPublisher{})

	if err := d.Poll(context.Background()); err != nil {
		t.Fatalf("first poll failed: %v", err)
	}

	// The queue redelivers the same trigger, e.g. after a crash between pop
	// and dispatch.
	queue.entries["task-1"] = payload
	if err := d.Poll(context.Background()); err != nil {
		t.Fatalf("second poll failed: %v", err)
	}

	if consumer.count() != 1 {
		t.Errorf("dispatched %d times, want 1", consumer.count())
	}
}

func TestReminderDispatcher_RescheduledReminderFiresAgain(t *testing.T) {
	consumer := &recordingConsumer{}
	dedup := newMemDedup()
	queue := newMemQueue()

	queue.entries["task-1"] = domain.ReminderPayload{
		TaskID:       "task-1",
		ReminderTime: fixedNow().Add(-2 * time.Hour),
	}
	d := newTestDispatcher(queue, consumer, dedup, &captPublisher{})
	if err := d.Poll(context.Background()); err != nil {
		t.Fatalf("poll failed: %v", err)
	}

	// Same task, different trigger time: a distinct firing, not a duplicate.
	queue.entries["task-1"] = domain.ReminderPayload{
		TaskID:       "task-1",
		ReminderTime: fixedNow().Add(-time.Hour),
	}
	if err := d.Poll(context.Background()); err != nil {
		t.Fatalf("poll failed: %v", err)
	}

	if consumer.count() != 2 {
		t.Errorf("dispatched %d times, want 2", consumer.count())
	}
}

func TestReminderDispatcher_PollErrorPropagates(t *testing.T) {
	queue := newMemQueue()
	queue.popErr = errors.New("redis down")
	d := newTestDispatcher(queue, &recordingConsumer{}, newMemDedup(), &captPublisher{})

	if err := d.Poll(context.Background()); err == nil {
		t.Fatal("Poll must surface queue errors")
	}
}

func TestReminderDispatcher_NilDedupDispatchesEverything(t *testing.T) {
	queue := newMemQueue()
	queue.entries["task-1"] = domain.ReminderPayload{
		TaskID:       "task-1",
		ReminderTime: fixedNow().Add(-time.Minute),
	}
	consumer := &recordingConsumer{}
	d := NewReminderDispatcher(queue, consumer, nil, nil, nil, DispatcherConfig{})
	d.now = fixedNow

	if err := d.Poll(context.Background()); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if consumer.count() != 1 {
		t.Errorf("dispatched %d, want 1", consumer.count())
	}
}
