package postgres

import (
	"encoding/json"
	"time"

	"github.com/taskpulse/backend/domain"
)

func marshalPattern(pattern *domain.RecurrencePattern) []byte {
	if pattern == nil {
		return nil
	}
	b, err := json.Marshal(pattern)
	if err != nil {
		return nil
	}
	return b
}

func marshalTags(tags []string) []byte {
	if len(tags) == 0 {
		return nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	return b
}

func marshalResults(results map[string]domain.ChannelResult) []byte {
	if len(results) == 0 {
		return []byte(`{}`)
	}
	b, err := json.Marshal(results)
	if err != nil {
		return []byte(`{}`)
	}
	return b
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
