package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/event-hub/internal/application/auth"
	"github.com/baechuer/event-hub/internal/domain"
)

// SessionStore keeps one JSON session per browser context under
// <prefix>:session:<cid>. The key TTL tracks the session's remaining lifetime.
type SessionStore struct {
	rdb    *goredis.Client
	prefix string
	now    func() time.Time
}

func NewSessionStore(c *Client, prefix string) *SessionStore {
	return &SessionStore{rdb: c.rdb, prefix: prefix, now: time.Now}
}

func (s *SessionStore) For(contextID string) auth.SessionStore {
	return &contextSession{store: s, key: fmt.Sprintf("%s:session:%s", s.prefix, contextID)}
}

type contextSession struct {
	store *SessionStore
	key   string
}

func (cs *contextSession) Load(ctx context.Context) (*domain.Session, error) {
	raw, err := cs.store.rdb.Get(ctx, cs.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", cs.key, err)
	}
	return &sess, nil
}

func (cs *contextSession) Save(ctx context.Context, sess domain.Session) error {
	ttl := sess.Remaining(cs.store.now())
	if ttl <= 0 {
		return cs.Clear(ctx)
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return cs.store.rdb.Set(ctx, cs.key, b, ttl).Err()
}

func (cs *contextSession) Clear(ctx context.Context) error {
	return cs.store.rdb.Del(ctx, cs.key).Err()
}
