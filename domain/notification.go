package domain

import "time"

// Channel dispatch statuses.
const (
	ChannelSent  = "sent"
	ChannelError = "error"
)

// ChannelResult records the outcome of one delivery attempt on one channel.
type ChannelResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// ReminderPayload is the tuple handed from the reminder scheduler to the
// notification consumer when a trigger fires.
type ReminderPayload struct {
	TaskID       string    `json:"task_id"`
	UserID       string    `json:"user_id"`
	TaskTitle    string    `json:"task_title"`
	ReminderTime time.Time `json:"reminder_time"`
}

// NotificationRecord is the immutable audit row written once per dispatched
// reminder, whether or not any channel succeeded.
type NotificationRecord struct {
	ID        string                   `json:"id"`
	TaskID    string                   `json:"task_id"`
	UserID    string                   `json:"user_id"`
	TaskTitle string                   `json:"task_title"`
	Message   string                   `json:"message"`
	Results   map[string]ChannelResult `json:"results"`
	SentAt    time.Time                `json:"sent_at"`
	CreatedAt time.Time                `json:"created_at"`
}
