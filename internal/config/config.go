package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreREST     = "rest"
	StorePostgres = "postgres"
)

type Config struct {
	AppEnv string

	HTTPAddr string

	// Backend (json-server style REST API)
	BackendURL          string
	BackendTimeout      time.Duration
	BackendMaxAttempts  int
	BackendInitialDelay time.Duration
	BackendMaxDelay     time.Duration
	BackendRetryUnsafe  bool

	StoreBackend string
	DatabaseURL  string

	// Redis; empty selects the in-process stores
	RedisURL    string
	StorePrefix string

	SessionTTL   time.Duration
	CancelWindow time.Duration
	EventTZ      string
	DefaultRoute string
	BcryptCost   int

	ContextSecret string
	ContextIssuer string
	ContextCookie string
	ContextTTL    time.Duration

	RabbitURL      string
	RabbitExchange string

	CacheRefreshSpec string

	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8090")

	cfg.BackendURL = strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:3001"), "/")
	cfg.BackendTimeout = getDuration("BACKEND_TIMEOUT", 10*time.Second)
	cfg.BackendMaxAttempts = getIntEnv("BACKEND_MAX_ATTEMPTS", 3)
	cfg.BackendInitialDelay = getDuration("BACKEND_INITIAL_DELAY", 2*time.Second)
	cfg.BackendMaxDelay = getDuration("BACKEND_MAX_DELAY", 8*time.Second)
	cfg.BackendRetryUnsafe = getBool("BACKEND_RETRY_UNSAFE", false)

	cfg.StoreBackend = getEnv("STORE_BACKEND", StoreREST)
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")

	cfg.RedisURL = getEnv("REDIS_URL", "")
	cfg.StorePrefix = getEnv("STORE_PREFIX", "eventhub")

	cfg.SessionTTL = getDuration("SESSION_TTL", 24*time.Hour)
	cfg.CancelWindow = getDuration("CANCEL_WINDOW", 24*time.Hour)
	cfg.EventTZ = getEnv("EVENT_TIMEZONE", "UTC")
	cfg.DefaultRoute = getEnv("DEFAULT_ROUTE", "404")
	cfg.BcryptCost = getIntEnv("BCRYPT_COST", 10)

	cfg.ContextSecret = getEnv("CONTEXT_SECRET", "")
	cfg.ContextIssuer = getEnv("CONTEXT_ISSUER", "event-hub")
	cfg.ContextCookie = getEnv("CONTEXT_COOKIE", "eventhub_ctx")
	cfg.ContextTTL = getDuration("CONTEXT_TTL", 30*24*time.Hour)

	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "eventhub.events")

	// empty disables the periodic refresh
	cfg.CacheRefreshSpec = strings.TrimSpace(os.Getenv("CACHE_REFRESH_SPEC"))
	if _, set := os.LookupEnv("CACHE_REFRESH_SPEC"); !set {
		cfg.CacheRefreshSpec = "@every 1m"
	}

	cfg.RLEnabled = getBool("RL_ENABLED", true)
	cfg.RLLimit = getIntEnv("RL_REQUESTS_PER_MINUTE", 120)
	cfg.RLWindow = getDuration("RL_WINDOW", time.Minute)

	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	// validation
	if cfg.ContextSecret == "" {
		if cfg.AppEnv != "dev" {
			return nil, fmt.Errorf("missing CONTEXT_SECRET (required when APP_ENV != dev)")
		}
		cfg.ContextSecret = "dev-context-secret"
	}
	switch cfg.StoreBackend {
	case StoreREST:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("missing DATABASE_URL (required when STORE_BACKEND=postgres)")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q (want rest or postgres)", cfg.StoreBackend)
	}
	if cfg.DefaultRoute != "404" && cfg.DefaultRoute != "dashboard" {
		return nil, fmt.Errorf("invalid DEFAULT_ROUTE %q (want 404 or dashboard)", cfg.DefaultRoute)
	}
	if cfg.BackendMaxAttempts < 1 {
		return nil, fmt.Errorf("BACKEND_MAX_ATTEMPTS must be >= 1")
	}
	if _, err := time.LoadLocation(cfg.EventTZ); err != nil {
		return nil, fmt.Errorf("invalid EVENT_TIMEZONE %q: %w", cfg.EventTZ, err)
	}

	return cfg, nil
}

// Location returns the zone event dates and times are interpreted in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.EventTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
