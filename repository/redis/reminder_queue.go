package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
)

type reminderQueue struct {
	client     *redislib.Client
	dueKey     string
	payloadKey string
}

// NewReminderQueue creates a Redis-backed reminder queue. Pending triggers
// live in a sorted set scored by due time, with payloads in a companion hash
// so cancellation by task ID stays a constant-time operation.
func NewReminderQueue(client *redislib.Client) repository.ReminderQueue {
	return &reminderQueue{
		client:     client,
		dueKey:     "reminders:due",
		payloadKey: "reminders:payload",
	}
}

func (q *reminderQueue) Schedule(ctx context.Context, payload domain.ReminderPayload) error {
	if payload.TaskID == "" {
		return domain.ErrInvalidPayload
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	pipe := q.client.TxPipeline()
	pipe.ZAdd(ctx, q.dueKey, redislib.Z{
		Score:  float64(payload.ReminderTime.Unix()),
		Member: payload.TaskID,
	})
	pipe.HSet(ctx, q.payloadKey, payload.TaskID, body)
	_, err = pipe.Exec(ctx)
	return err
}

func (q *reminderQueue) Cancel(ctx context.Context, taskID string) error {
	if taskID == "" {
		return nil
	}
	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, q.dueKey, taskID)
	pipe.HDel(ctx, q.payloadKey, taskID)
	_, err := pipe.Exec(ctx)
	return err
}

func (q *reminderQueue) PopDue(ctx context.Context, now time.Time, limit int) ([]domain.ReminderPayload, error) {
	if limit <= 0 {
		limit = 100
	}

	ids, err := q.client.ZRangeByScore(ctx, q.dueKey, &redislib.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	var payloads []domain.ReminderPayload
	for _, id := range ids {
		// Read the payload before claiming: a transient error here leaves the
		// member in the set, so the trigger survives to the next poll instead
		// of vanishing half-claimed.
		body, err := q.client.HGet(ctx, q.payloadKey, id).Result()
		if err != nil {
			if err == redislib.Nil {
				// Orphaned member, e.g. a cancel that lost its ZRem half.
				q.client.ZRem(ctx, q.dueKey, id)
				continue
			}
			return payloads, err
		}

		// ZRem doubles as the claim: a concurrent dispatcher or a racing
		// cancellation removes the member first and we skip the payload.
		removed, err := q.client.ZRem(ctx, q.dueKey, id).Result()
		if err != nil {
			return payloads, err
		}
		if removed == 0 {
			continue
		}
		q.client.HDel(ctx, q.payloadKey, id)

		var payload domain.ReminderPayload
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			continue
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}
