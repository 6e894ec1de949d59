package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/event-hub/internal/domain"
	appCtx "github.com/baechuer/event-hub/internal/pkg/context"
)

// newTestClient points a client at srv and records backoff waits instead of sleeping.
func newTestClient(t *testing.T, srv *httptest.Server, mut func(*Config)) (*Client, *[]time.Duration) {
	t.Helper()
	cfg := DefaultConfig(srv.URL)
	cfg.Timeout = 200 * time.Millisecond
	if mut != nil {
		mut(&cfg)
	}
	c := NewClient(cfg)
	var waits []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return c, &waits
}

func TestCalculateDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: 2 * time.Second, MaxDelay: 8 * time.Second}

	assert.Equal(t, 2*time.Second, CalculateDelay(1, p))
	assert.Equal(t, 4*time.Second, CalculateDelay(2, p))
	assert.Equal(t, 8*time.Second, CalculateDelay(3, p))
	assert.Equal(t, 8*time.Second, CalculateDelay(4, p), "capped at MaxDelay")
	assert.Equal(t, 2*time.Second, CalculateDelay(0, p))
}

func TestRetryPolicy_MayRetry(t *testing.T) {
	p := RetryPolicy{}
	assert.True(t, p.mayRetry(http.MethodGet))
	assert.True(t, p.mayRetry(http.MethodPut))
	assert.True(t, p.mayRetry(http.MethodDelete))
	assert.False(t, p.mayRetry(http.MethodPost))
	assert.False(t, p.mayRetry(http.MethodPatch))

	p.RetryUnsafe = true
	assert.True(t, p.mayRetry(http.MethodPost))
}

func TestClient_Get_DecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`[{"id":1,"title":"Jazz"}]`))
	}))
	defer srv.Close()

	c, waits := newTestClient(t, srv, nil)

	var out []domain.Event
	require.NoError(t, c.Get(context.Background(), "/events", &out))
	require.Len(t, out, 1)
	assert.Equal(t, domain.ID("1"), out[0].ID)
	assert.Empty(t, *waits)
}

func TestClient_RetriesServerErrors_WithBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, waits := newTestClient(t, srv, nil)

	var out []domain.Event
	require.NoError(t, c.Get(context.Background(), "/events", &out))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *waits)
}

func TestClient_ExhaustedRetries_ReturnBackendUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, nil)

	err := c.Get(context.Background(), "/events", nil)
	assert.True(t, domain.Is(err, domain.CodeBackendUnavailable), "got %v", err)
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusNotFound} {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{}`))
		}))

		c, waits := newTestClient(t, srv, nil)
		err := c.Get(context.Background(), "/events/9", nil)

		assert.True(t, IsStatus(err, code), "got %v", err)
		assert.Equal(t, int32(1), calls.Load())
		assert.Empty(t, *waits)
		srv.Close()
	}
}

func TestClient_Timeout_FailsFastWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, waits := newTestClient(t, srv, func(cfg *Config) { cfg.Timeout = 30 * time.Millisecond })

	err := c.Get(context.Background(), "/events", nil)
	assert.True(t, domain.Is(err, domain.CodeTimeout), "got %v", err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, *waits)
}

func TestClient_Post_NotRetriedByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	t.Run("default_single_attempt", func(t *testing.T) {
		calls.Store(0)
		c, _ := newTestClient(t, srv, nil)
		err := c.Post(context.Background(), "/events", map[string]string{"title": "x"}, nil)
		assert.True(t, domain.Is(err, domain.CodeBackendUnavailable))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("retry_unsafe_enabled", func(t *testing.T) {
		calls.Store(0)
		c, _ := newTestClient(t, srv, func(cfg *Config) { cfg.Retry.RetryUnsafe = true })
		_ = c.Post(context.Background(), "/events", map[string]string{"title": "x"}, nil)
		assert.Equal(t, int32(3), calls.Load())
	})
}

func TestClient_SendsBodyAndRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-9", r.Header.Get("X-Request-Id"))

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 4, body["registeredAttendees"])
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, nil)
	ctx := appCtx.WithRequestID(context.Background(), "req-9")

	var out domain.Event
	require.NoError(t, c.Patch(ctx, "/events/1", map[string]int{"registeredAttendees": 4}, &out))
}

func TestClient_DecodeError_NotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, nil)

	var out []domain.Event
	err := c.Get(context.Background(), "/events", &out)
	assert.True(t, domain.Is(err, domain.CodeInternal))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_CanceledContext_StopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, nil)
	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	err := c.Get(ctx, "/events", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_NetworkError_ReturnsBackendUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(DefaultConfig(url))
	c.sleep = func(context.Context, time.Duration) error { return nil }

	err := c.Get(context.Background(), "/events", nil)
	assert.True(t, domain.Is(err, domain.CodeBackendUnavailable), "got %v", err)
}

func TestClient_Probe_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv, nil)
	err := c.Probe(context.Background(), "/events?_limit=1")
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
	assert.Equal(t, int32(1), calls.Load())
}
