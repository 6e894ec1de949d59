package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/event-hub/internal/application/auth"
	"github.com/baechuer/event-hub/internal/application/event"
	"github.com/baechuer/event-hub/internal/application/hub"
	"github.com/baechuer/event-hub/internal/application/navigation"
	"github.com/baechuer/event-hub/internal/config"
	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/infrastructure/backend"
	"github.com/baechuer/event-hub/internal/infrastructure/db/postgres"
	"github.com/baechuer/event-hub/internal/infrastructure/memory"
	rabbitpub "github.com/baechuer/event-hub/internal/infrastructure/messaging/rabbitmq"
	hubredis "github.com/baechuer/event-hub/internal/infrastructure/redis"
	"github.com/baechuer/event-hub/internal/infrastructure/security"
	"github.com/baechuer/event-hub/internal/jobs"
	"github.com/baechuer/event-hub/internal/logger"
	"github.com/baechuer/event-hub/internal/transport/http/handlers"
	"github.com/baechuer/event-hub/internal/transport/http/router"
)

const shutdownTimeout = 10 * time.Second

// sysClock implements the Clock ports using system time
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// App holds all dependencies for the service
type App struct {
	Config    *config.Config
	Server    *http.Server
	Events    *event.Service
	Refresher *jobs.CacheRefresher

	closers []func() error
}

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("app init failed")
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Events.Load(ctx); err != nil {
		zlog.Warn().Err(err).Msg("initial event load failed: starting with empty caches")
	}
	if app.Refresher != nil {
		if err := app.Refresher.Start(ctx); err != nil {
			zlog.Fatal().Err(err).Msg("cache refresher start failed")
		}
		defer app.Refresher.Stop()
	}

	go func() {
		zlog.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreBackend).Msg("listening")
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server crashed")
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// stores are the persistence ports the selected STORE_BACKEND provides.
type stores struct {
	users  auth.UserRepo
	events event.EventRepo
	regs   event.RegistrationRepo
	seats  event.Seats
}

// contextStores back the per-browser-context state and the event lock.
type contextStores struct {
	sessions  auth.SessionStores
	counters  hub.Counters
	navStates hub.NavStates
	locker    event.Locker
}

func NewApp(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}
	clock := sysClock{}
	probes := map[string]handlers.Probe{}

	// 1) Infrastructure
	st, err := app.openStores(cfg, probes)
	if err != nil {
		app.Close()
		return nil, err
	}
	cs, err := app.openContextStores(cfg, probes)
	if err != nil {
		app.Close()
		return nil, err
	}

	var pub event.EventPublisher = event.NoopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, p.Close)
		pub = p
		zlog.Info().Str("exchange", cfg.RabbitExchange).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: domain events will not be published")
	}

	// 2) Application
	validator := domain.NewValidator(clock.Now, cfg.Location())
	events := event.NewService(event.Deps{
		Events:        st.events,
		Registrations: st.regs,
		Seats:         st.seats,
		Locker:        cs.locker,
		Publisher:     pub,
		Validator:     validator,
		Clock:         clock,
	}, event.Config{
		Location:     cfg.Location(),
		CancelWindow: cfg.CancelWindow,
	})
	app.Events = events

	table, err := navigation.DefaultTable(navigation.RouteName(cfg.DefaultRoute))
	if err != nil {
		app.Close()
		return nil, err
	}

	hb := hub.New(hub.Deps{
		Users:     st.users,
		Sessions:  cs.sessions,
		Counters:  cs.counters,
		NavStates: cs.navStates,
		Hasher:    security.NewBcryptHasher(cfg.BcryptCost),
		Validator: validator,
		Clock:     clock,
		Routes:    table,
		Events:    events,
		Auth:      auth.Config{SessionTTL: cfg.SessionTTL},
	})

	if cfg.CacheRefreshSpec != "" {
		r, err := jobs.NewCacheRefresher(events, cfg.CacheRefreshSpec)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Refresher = r
	}

	// 3) Transport
	signer := security.NewContextSigner(cfg.ContextSecret, cfg.ContextIssuer, cfg.ContextTTL)
	httpHandler := router.New(router.Handlers{
		Auth:    handlers.NewAuthHandler(),
		Events:  handlers.NewEventsHandler(events),
		Nav:     handlers.NewNavHandler(),
		Session: handlers.NewSessionHandler(),
		Health:  handlers.NewHealthHandler(probes),
	}, hb, signer, cfg)

	// 4) Server
	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
	return app, nil
}

func (a *App) openStores(cfg *config.Config, probes map[string]handlers.Probe) (stores, error) {
	if cfg.StoreBackend == config.StorePostgres {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return stores{}, err
		}
		a.closers = append(a.closers, db.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := postgres.Migrate(ctx, db); err != nil {
			return stores{}, err
		}
		probes["postgres"] = db.PingContext
		zlog.Info().Msg("postgres store ready")

		return stores{
			users:  postgres.NewUserRepo(db),
			events: postgres.NewEventRepo(db),
			regs:   postgres.NewRegistrationRepo(db),
			seats:  postgres.NewSeats(db),
		}, nil
	}

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout,
		Retry: backend.RetryPolicy{
			MaxAttempts:  cfg.BackendMaxAttempts,
			InitialDelay: cfg.BackendInitialDelay,
			MaxDelay:     cfg.BackendMaxDelay,
			RetryUnsafe:  cfg.BackendRetryUnsafe,
		},
	})
	probes["backend"] = func(ctx context.Context) error {
		return client.Probe(ctx, "/events?_limit=1")
	}
	zlog.Info().Str("backend_url", cfg.BackendURL).Msg("rest store ready")

	events := backend.NewEventRepo(client)
	regs := backend.NewRegistrationRepo(client)
	return stores{
		users:  backend.NewUserRepo(client),
		events: events,
		regs:   regs,
		seats:  backend.NewSeats(events, regs),
	}, nil
}

func (a *App) openContextStores(cfg *config.Config, probes map[string]handlers.Probe) (contextStores, error) {
	if cfg.RedisURL == "" {
		zlog.Warn().Msg("REDIS_URL empty: sessions and seat locks are process-local")
		return contextStores{
			sessions:  memory.NewSessionStore(),
			counters:  memory.NewCounters(),
			navStates: memory.NewNavStates(),
			locker:    memory.NewLocker(),
		}, nil
	}

	rc, err := hubredis.New(cfg.RedisURL)
	if err != nil {
		return contextStores{}, err
	}
	a.closers = append(a.closers, rc.Close)
	probes["redis"] = rc.Ping
	zlog.Info().Str("prefix", cfg.StorePrefix).Msg("redis stores ready")

	return contextStores{
		sessions:  hubredis.NewSessionStore(rc, cfg.StorePrefix),
		counters:  hubredis.NewCounters(rc, cfg.StorePrefix, cfg.ContextTTL),
		navStates: hubredis.NewNavStates(rc, cfg.StorePrefix, cfg.ContextTTL),
		locker:    hubredis.NewLocker(rc, cfg.StorePrefix),
	}, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			zlog.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
