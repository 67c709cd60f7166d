package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Item is one pending event publication. Items drain to the external bus in
// insertion order, which preserves the program order of events published by
// a single request.
type Item struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Event     json.RawMessage `json:"event"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
