package redis

import (
	"context"
	"time"

	goRedis "github.com/redis/go-redis/v9"
)

// Deduper claims one-shot keys so redelivered triggers are processed at most
// once within the TTL window.
type Deduper struct {
	client *goRedis.Client
	ttl    time.Duration
}

func NewDeduper(client *goRedis.Client, ttl time.Duration) *Deduper {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Deduper{client: client, ttl: ttl}
}

// Claim returns true when the caller is the first to claim key within the
// window. Errors count as a successful claim: losing dedup degrades to
// duplicate delivery, which consumers must tolerate anyway.
func (d *Deduper) Claim(ctx context.Context, key string) bool {
	ok, err := d.client.SetNX(ctx, "dedup:"+key, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}
