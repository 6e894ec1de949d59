package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
)

// releaseScript deletes the lock only if we still own it.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// renewScript pushes the expiry out only if we still own the lock.
const renewScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`

var errLockBusy = errors.New("lock busy")

// Locker is a SET NX PX mutex shared by every instance talking to the same Redis.
// A held lock is renewed every ttl/3 until it is released, so work that
// outlives ttl (slow backend retries) keeps exclusive access.
type Locker struct {
	rdb     *goredis.Client
	prefix  string
	ttl     time.Duration
	poll    time.Duration
	maxWait time.Duration
}

func NewLocker(c *Client, prefix string) *Locker {
	return &Locker{
		rdb:     c.rdb,
		prefix:  prefix + ":lock:",
		ttl:     30 * time.Second,
		poll:    25 * time.Millisecond,
		maxWait: 10 * time.Second,
	}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	full := l.prefix + key

	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	for {
		ok, err := l.rdb.SetNX(waitCtx, full, token, l.ttl).Result()
		if err != nil {
			if waitCtx.Err() != nil && ctx.Err() == nil {
				return nil, domain.ErrTimeout(errLockBusy)
			}
			return nil, err
		}
		if ok {
			break
		}
		t := time.NewTimer(l.poll)
		select {
		case <-waitCtx.Done():
			t.Stop()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, domain.ErrTimeout(errLockBusy)
		case <-t.C:
		}
	}

	bg := context.WithoutCancel(ctx)
	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(bg, full, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			if err := l.rdb.Eval(bg, releaseScript, []string{full}, token).Err(); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("key", full).Msg("lock release failed")
			}
		})
	}, nil
}

func (l *Locker) keepAlive(ctx context.Context, key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	every := l.ttl / 3
	if every <= 0 {
		every = time.Millisecond
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}
		n, err := l.rdb.Eval(ctx, renewScript, []string{key}, token, l.ttl.Milliseconds()).Int64()
		switch {
		case err != nil:
			logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("lock renew failed")
		case n == 0:
			logger.Ctx(ctx).Error().Str("key", key).Msg("lock lost before release")
			return
		}
	}
}
