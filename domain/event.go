package domain

import (
	"encoding/json"
	"time"
)

// Task lifecycle event types.
const (
	EventTaskCreated   = "created"
	EventTaskUpdated   = "updated"
	EventTaskCompleted = "completed"
	EventTaskDeleted   = "deleted"
	EventReminder      = "reminder"
	EventRecurring     = "recurring"
)

// Event bus topics.
const (
	TopicTaskEvents         = "task-events"
	TopicReminders          = "reminders"
	TopicRemindersProcessed = "reminders-processed"
)

// TaskEvent is a transient lifecycle message. Producers do not persist it;
// only the notification audit log keeps any durable trace of dispatches.
type TaskEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	TaskID    string          `json:"task_id"`
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
