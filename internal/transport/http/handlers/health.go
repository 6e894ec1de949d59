package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/event-hub/internal/domain"
	"github.com/baechuer/event-hub/internal/logger"
	"github.com/baechuer/event-hub/internal/transport/http/response"
)

// Probe checks one dependency; nil means healthy.
type Probe func(ctx context.Context) error

type HealthHandler struct {
	probes  map[string]Probe
	timeout time.Duration
}

func NewHealthHandler(probes map[string]Probe) *HealthHandler {
	return &HealthHandler{probes: probes, timeout: 3 * time.Second}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string, len(h.probes))
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("dependency", name).Msg("health probe failed")
			response.Fail(w, r, http.StatusServiceUnavailable, domain.CodeBackendUnavailable, name+" unreachable", map[string]string{
				"dependency": name,
			})
			return
		}
		checks[name] = "ok"
	}
	response.Data(w, r, http.StatusOK, map[string]any{"status": "ok", "checks": checks})
}
