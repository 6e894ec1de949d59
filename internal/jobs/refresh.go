package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/baechuer/event-hub/internal/logger"
	"github.com/baechuer/event-hub/internal/metrics"
)

const refreshTimeout = 30 * time.Second

// Loader reloads a cache; event.Service satisfies it.
type Loader interface {
	Load(ctx context.Context) error
}

// CacheRefresher reloads the event caches on a cron schedule.
type CacheRefresher struct {
	loader Loader
	spec   string
	cron   *cron.Cron

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCacheRefresher validates spec ("@every 1m", "*/5 * * * *", ...).
func NewCacheRefresher(loader Loader, spec string) (*CacheRefresher, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid CACHE_REFRESH_SPEC %q: %w", spec, err)
	}
	return &CacheRefresher{
		loader: loader,
		spec:   spec,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}, nil
}

func (r *CacheRefresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}
	r.ctx, r.cancel = context.WithCancel(ctx)

	if _, err := r.cron.AddFunc(r.spec, func() { r.RunOnce(r.ctx) }); err != nil {
		r.cancel()
		return err
	}
	r.cron.Start()
	r.running = true

	logger.Logger.Info().Str("spec", r.spec).Msg("cache refresher started")
	return nil
}

// Stop waits for a running refresh to finish.
func (r *CacheRefresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.cancel()
	<-r.cron.Stop().Done()
	r.running = false
	logger.Logger.Info().Msg("cache refresher stopped")
}

// RunOnce performs one reload and records its outcome.
func (r *CacheRefresher) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	err := r.loader.Load(ctx)
	metrics.RecordCacheRefresh(err == nil)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("cache refresh failed")
	}
}
