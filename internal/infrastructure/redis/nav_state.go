package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/event-hub/internal/application/navigation"
)

// NavStates keeps router state as JSON under <prefix>:nav:<cid>. Every save
// slides the expiry, like the interaction counter.
type NavStates struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewNavStates(c *Client, prefix string, ttl time.Duration) *NavStates {
	return &NavStates{rdb: c.rdb, prefix: prefix, ttl: ttl}
}

func (n *NavStates) For(contextID string) navigation.StateStore {
	return &navState{n: n, key: fmt.Sprintf("%s:nav:%s", n.prefix, contextID)}
}

type navState struct {
	n   *NavStates
	key string
}

func (s *navState) Load(ctx context.Context) (navigation.State, error) {
	raw, err := s.n.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return navigation.State{}, nil
	}
	if err != nil {
		return navigation.State{}, err
	}
	var st navigation.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return navigation.State{}, fmt.Errorf("decode nav state %s: %w", s.key, err)
	}
	return st, nil
}

func (s *navState) Save(ctx context.Context, st navigation.State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.n.rdb.Set(ctx, s.key, b, s.n.ttl).Err()
}
