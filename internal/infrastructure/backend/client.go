package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
	"github.com/baechuer/event-hub/internal/metrics"
	appCtx "github.com/baechuer/event-hub/internal/pkg/context"
)

const headerRequestID = "X-Request-Id"

// Config holds configuration for the backend client.
type Config struct {
	BaseURL string
	// Timeout bounds a single attempt, not the whole retry sequence.
	Timeout time.Duration
	Retry   RetryPolicy
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
		Retry: RetryPolicy{
			MaxAttempts:  3,
			InitialDelay: 2 * time.Second,
			MaxDelay:     8 * time.Second,
		},
	}
}

// StatusError is a non-2xx backend response.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *StatusError) ClientError() bool { return e.StatusCode >= 400 && e.StatusCode < 500 }

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

var (
	errAttemptTimeout = errors.New("attempt timed out")
	errDecode         = errors.New("decode response")
)

// Client talks JSON to the REST backend. It:
// 1. injects X-Request-Id from context
// 2. bounds every attempt with a timeout and fails fast with domain Timeout
// 3. never retries 4xx; retries other failures with exponential backoff
// 4. reports exhaustion as domain BackendUnavailable
type Client struct {
	baseURL string
	http    *http.Client
	cfg     Config
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg Config) *Client {
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		// per-attempt timeouts come from the request context
		http:  &http.Client{Timeout: 0},
		cfg:   cfg,
		sleep: sleepCtx,
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPatch, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Probe sends a single GET with no retries. Used by health checks.
func (c *Client) Probe(ctx context.Context, path string) error {
	err := c.once(ctx, http.MethodGet, path, nil, nil)
	if errors.Is(err, errAttemptTimeout) {
		return domain.ErrTimeout(err)
	}
	return err
}

// Do sends method+path with an optional JSON body and decodes a JSON reply into out.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return domain.ErrInternal(fmt.Errorf("encode %s %s: %w", method, path, err))
		}
		payload = b
	}

	log := logger.Ctx(ctx).With().Str("method", method).Str("path", path).Logger()
	policy := c.cfg.Retry

	for attempt := 1; ; attempt++ {
		start := time.Now()
		err := c.once(ctx, method, path, payload, out)
		if err == nil {
			metrics.RecordBackendAttempt(method, "ok")
			log.Debug().Int("attempt", attempt).Dur("duration", time.Since(start)).Msg("backend_request_completed")
			return nil
		}

		var se *StatusError
		switch {
		case errors.As(err, &se) && se.ClientError():
			metrics.RecordBackendAttempt(method, "client_error")
			return err
		case errors.Is(err, errAttemptTimeout):
			metrics.RecordBackendAttempt(method, "timeout")
			log.Warn().Err(err).Int("attempt", attempt).Msg("backend_request_timeout")
			return domain.ErrTimeout(err)
		case errors.Is(err, errDecode):
			metrics.RecordBackendAttempt(method, "decode_error")
			return domain.ErrInternal(err)
		case ctx.Err() != nil:
			metrics.RecordBackendAttempt(method, "canceled")
			return ctx.Err()
		case se != nil:
			metrics.RecordBackendAttempt(method, "server_error")
		default:
			metrics.RecordBackendAttempt(method, "network")
		}

		log.Warn().Err(err).Int("attempt", attempt).Dur("duration", time.Since(start)).Msg("backend_request_failed")

		if attempt >= policy.MaxAttempts || !policy.mayRetry(method) {
			return domain.ErrBackendUnavailable(err)
		}

		delay := CalculateDelay(attempt, policy)
		metrics.RecordBackendRetry(method)
		if serr := c.sleep(ctx, delay); serr != nil {
			return serr
		}
	}
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) error {
	attemptCtx := ctx
	cancel := func() {}
	if c.cfg.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
	}
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reqID := appCtx.GetRequestID(ctx); reqID != "" {
		req.Header.Set(headerRequestID, reqID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.classify(ctx, attemptCtx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if attemptCtx.Err() != nil {
			return c.classify(ctx, attemptCtx, err)
		}
		return fmt.Errorf("%w: %s %s: %v", errDecode, method, path, err)
	}
	return nil
}

// classify separates our own per-attempt deadline from caller cancellation.
func (c *Client) classify(parent, attempt context.Context, err error) error {
	if parent.Err() == nil && errors.Is(attempt.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", errAttemptTimeout, err)
	}
	return err
}
