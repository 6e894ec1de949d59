package backend

import (
	"context"
	"math"
	"net/http"
	"time"
)

// RetryPolicy bounds how often and how patiently a request is re-sent.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// RetryUnsafe allows re-sending POST and PATCH after a server or network failure.
	RetryUnsafe bool
}

// CalculateDelay returns the wait after the given failed attempt (1-based):
// InitialDelay * 2^(attempt-1), capped at MaxDelay.
func CalculateDelay(attempt int, p RetryPolicy) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := time.Duration(float64(p.InitialDelay) * math.Pow(2, float64(attempt-1)))
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// mayRetry reports whether method can be re-sent without risking a duplicate write.
func (p RetryPolicy) mayRetry(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return p.RetryUnsafe
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
