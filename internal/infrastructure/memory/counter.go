package memory

import (
	"context"
	"sync"

	"github.com/baechuer/event-hub/internal/application/hub"
)

type Counters struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewCounters() *Counters {
	return &Counters{counts: make(map[string]int64)}
}

func (c *Counters) For(contextID string) hub.Counter {
	return &counter{c: c, cid: contextID}
}

type counter struct {
	c   *Counters
	cid string
}

func (k *counter) Incr(ctx context.Context) (int64, error) {
	k.c.mu.Lock()
	defer k.c.mu.Unlock()
	k.c.counts[k.cid]++
	return k.c.counts[k.cid], nil
}

func (k *counter) Get(ctx context.Context) (int64, error) {
	k.c.mu.Lock()
	defer k.c.mu.Unlock()
	return k.c.counts[k.cid], nil
}
