package domain

import "time"

// Task statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusDeleted   = "deleted"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task represents a user-owned todo item. When SeriesID is set the task is one
// materialized occurrence of a recurring series; SeriesID and Recurrence are
// always both set or both nil.
type Task struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	SeriesID     *string            `json:"series_id,omitempty"`
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	Status       string             `json:"status"`
	Priority     string             `json:"priority"`
	DueDate      *time.Time         `json:"due_date,omitempty"`
	ReminderTime *time.Time         `json:"reminder_time,omitempty"`
	Recurrence   *RecurrencePattern `json:"recurrence_pattern,omitempty"`
	Tags         []string           `json:"tags,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

func (t *Task) IsRecurring() bool {
	return t != nil && t.SeriesID != nil
}

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
