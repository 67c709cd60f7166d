package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/taskpulse/backend/domain"
)

type memQueue struct {
	mu        sync.Mutex
	entries   map[string]domain.ReminderPayload
	schedErr  error
	popErr    error
	cancelled []string
}

func newMemQueue() *memQueue {
	return &memQueue{entries: make(map[string]domain.ReminderPayload)}
}

func (q *memQueue) Schedule(_ context.Context, payload domain.ReminderPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.schedErr != nil {
		return q.schedErr
	}
	q.entries[payload.TaskID] = payload
	return nil
}

func (q *memQueue) Cancel(_ context.Context, taskID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, taskID)
	q.cancelled = append(q.cancelled, taskID)
	return nil
}

func (q *memQueue) PopDue(_ context.Context, now time.Time, limit int) ([]domain.ReminderPayload, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.popErr != nil {
		return nil, q.popErr
	}
	var due []domain.ReminderPayload
	for id, payload := range q.entries {
		if !payload.ReminderTime.After(now) {
			due = append(due, payload)
			delete(q.entries, id)
		}
		if len(due) == limit {
			break
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ReminderTime.Before(due[j].ReminderTime) })
	return due, nil
}

func (q *memQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func fixedNow() time.Time {
	return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func TestReminderScheduler_FutureOnly(t *testing.T) {
	queue := newMemQueue()
	s := NewReminderScheduler(queue, nil)
	s.now = fixedNow

	tests := []struct {
		name     string
		reminder time.Time
		want     bool
	}{
		{"future reminder accepted", fixedNow().Add(time.Hour), true},
		{"past reminder rejected", fixedNow().Add(-time.Hour), false},
		{"exactly now rejected", fixedNow(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Schedule(context.Background(), domain.ReminderPayload{
				TaskID:       "task-" + tt.name,
				UserID:       "user-1",
				TaskTitle:    "Water plants",
				ReminderTime: tt.reminder,
			})
			if got != tt.want {
				t.Errorf("Schedule() = %v, want %v", got, tt.want)
			}
		})
	}

	if queue.size() != 1 {
		t.Errorf("queue holds %d entries, want only the future one", queue.size())
	}
}

func TestReminderScheduler_QueueErrorReportsNotScheduled(t *testing.T) {
	queue := newMemQueue()
	queue.schedErr = errors.New("redis down")
	s := NewReminderScheduler(queue, nil)
	s.now = fixedNow

	ok := s.Schedule(context.Background(), domain.ReminderPayload{
		TaskID:       "task-1",
		ReminderTime: fixedNow().Add(time.Hour),
	})
	if ok {
		t.Error("Schedule() reported success on queue failure")
	}
}

func TestReminderScheduler_CancelIsIdempotent(t *testing.T) {
	queue := newMemQueue()
	s := NewReminderScheduler(queue, nil)
	s.now = fixedNow

	s.Schedule(context.Background(), domain.ReminderPayload{
		TaskID:       "task-1",
		ReminderTime: fixedNow().Add(time.Hour),
	})

	if err := s.Cancel(context.Background(), "task-1"); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if err := s.Cancel(context.Background(), "task-1"); err != nil {
		t.Fatalf("cancel of absent reminder must succeed, got %v", err)
	}
	if err := s.Cancel(context.Background(), "never-scheduled"); err != nil {
		t.Fatalf("cancel of unknown task must succeed, got %v", err)
	}
	if queue.size() != 0 {
		t.Errorf("queue holds %d entries after cancel", queue.size())
	}
}
