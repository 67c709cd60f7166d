package bus

import (
	"context"

	redislib "github.com/redis/go-redis/v9"
)

// Bus is the external broadcast medium events drain to.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

type redisBus struct {
	client *redislib.Client
}

// NewRedis returns a Bus backed by Redis pub/sub channels.
func NewRedis(client *redislib.Client) Bus {
	return &redisBus{client: client}
}

func (b *redisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, topic, payload).Err()
}
