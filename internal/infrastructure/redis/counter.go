package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/event-hub/internal/application/hub"
)

// Counters hands out per-context interaction counters.
type Counters struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewCounters(c *Client, prefix string, ttl time.Duration) *Counters {
	return &Counters{rdb: c.rdb, prefix: prefix, ttl: ttl}
}

func (c *Counters) For(contextID string) hub.Counter {
	return &counter{c: c, key: fmt.Sprintf("%s:interactions:%s", c.prefix, contextID)}
}

type counter struct {
	c   *Counters
	key string
}

// Incr bumps the counter and slides its expiry in one round trip.
func (k *counter) Incr(ctx context.Context) (int64, error) {
	pipe := k.c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k.key)
	if k.c.ttl > 0 {
		pipe.Expire(ctx, k.key, k.c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (k *counter) Get(ctx context.Context) (int64, error) {
	n, err := k.c.rdb.Get(ctx, k.key).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return n, err
}
