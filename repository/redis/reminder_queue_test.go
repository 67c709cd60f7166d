package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
)

func newTestQueue(t *testing.T) (*miniredis.Miniredis, *redislib.Client, repository.ReminderQueue) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return srv, client, NewReminderQueue(client)
}

func duePayload(taskID string, at time.Time) domain.ReminderPayload {
	return domain.ReminderPayload{
		TaskID:       taskID,
		UserID:       "user-1",
		TaskTitle:    "Water plants",
		ReminderTime: at,
	}
}

func TestReminderQueue_PopDueClaimsOnce(t *testing.T) {
	_, _, q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()

	if err := q.Schedule(ctx, duePayload("task-1", now.Add(-time.Minute))); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if err := q.Schedule(ctx, duePayload("task-2", now.Add(time.Hour))); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	payloads, err := q.PopDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("PopDue failed: %v", err)
	}
	if len(payloads) != 1 || payloads[0].TaskID != "task-1" {
		t.Fatalf("popped %v, want only task-1", payloads)
	}

	again, err := q.PopDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("second PopDue failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("claimed trigger popped twice: %v", again)
	}
}

func TestReminderQueue_CancelRemovesTrigger(t *testing.T) {
	_, _, q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()

	if err := q.Schedule(ctx, duePayload("task-1", now.Add(-time.Minute))); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if err := q.Cancel(ctx, "task-1"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if err := q.Cancel(ctx, "task-1"); err != nil {
		t.Fatalf("second cancel must be a no-op, got %v", err)
	}

	payloads, err := q.PopDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("PopDue failed: %v", err)
	}
	if len(payloads) != 0 {
		t.Errorf("cancelled trigger still fired: %v", payloads)
	}
}

func TestReminderQueue_RescheduleReplacesTriggerTime(t *testing.T) {
	_, _, q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()

	if err := q.Schedule(ctx, duePayload("task-1", now.Add(-time.Minute))); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if err := q.Schedule(ctx, duePayload("task-1", now.Add(time.Hour))); err != nil {
		t.Fatalf("reschedule failed: %v", err)
	}

	payloads, err := q.PopDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("PopDue failed: %v", err)
	}
	if len(payloads) != 0 {
		t.Errorf("rescheduled trigger fired at the old time: %v", payloads)
	}
}

func TestReminderQueue_OrphanedMemberIsSkippedAndCleaned(t *testing.T) {
	_, client, q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()

	if err := q.Schedule(ctx, duePayload("orphan", now.Add(-time.Minute))); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if err := q.Schedule(ctx, duePayload("healthy", now.Add(-time.Minute))); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	// A cancel that lost its ZRem half leaves the member without a payload.
	if err := client.HDel(ctx, "reminders:payload", "orphan").Err(); err != nil {
		t.Fatalf("HDel failed: %v", err)
	}

	payloads, err := q.PopDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("PopDue failed: %v", err)
	}
	if len(payloads) != 1 || payloads[0].TaskID != "healthy" {
		t.Fatalf("popped %v, want only healthy", payloads)
	}
	if n := client.ZCard(ctx, "reminders:due").Val(); n != 0 {
		t.Errorf("orphaned member not cleaned up, zset size = %d", n)
	}
}

func TestReminderQueue_PayloadReadFailureLeavesTriggerQueued(t *testing.T) {
	srv, client, q := newTestQueue(t)
	ctx := context.Background()
	now := time.Now()

	if err := q.Schedule(ctx, duePayload("task-1", now.Add(-time.Minute))); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	// Corrupt the payload hash into a plain string so the read fails with a
	// type error rather than a miss.
	srv.Del("reminders:payload")
	if err := srv.Set("reminders:payload", "corrupt"); err != nil {
		t.Fatalf("corrupting payload key failed: %v", err)
	}

	if _, err := q.PopDue(ctx, now, 10); err == nil {
		t.Fatal("PopDue must surface the payload read error")
	}
	if n := client.ZCard(ctx, "reminders:due").Val(); n != 1 {
		t.Fatalf("trigger lost on payload read failure, zset size = %d", n)
	}

	// Once the payload is readable again the trigger still fires.
	srv.Del("reminders:payload")
	if err := q.Schedule(ctx, duePayload("task-1", now.Add(-time.Minute))); err != nil {
		t.Fatalf("re-schedule failed: %v", err)
	}
	payloads, err := q.PopDue(ctx, now, 10)
	if err != nil {
		t.Fatalf("PopDue after recovery failed: %v", err)
	}
	if len(payloads) != 1 || payloads[0].TaskID != "task-1" {
		t.Fatalf("popped %v after recovery, want task-1", payloads)
	}
}
