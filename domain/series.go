package domain

import "time"

// TaskSeries is the recurring template that occurrences are generated from.
// Pattern changes apply prospectively: already materialized occurrences keep
// the dates they were created with.
type TaskSeries struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Pattern         RecurrencePattern `json:"recurrence_pattern"`
	OccurrenceCount int               `json:"occurrence_count"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
