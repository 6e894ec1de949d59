package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventhub"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// Backend REST client
	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Backend request attempts by outcome",
		},
		[]string{"method", "outcome"}, // ok, client_error, server_error, timeout, network
	)

	backendRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_retries_total",
			Help:      "Backend request retries",
		},
		[]string{"method"},
	)

	// Business
	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Event registration attempts by outcome",
		},
		[]string{"op", "outcome"},
	)

	navigationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Router navigations by final route",
		},
		[]string{"route"},
	)

	cacheRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_refresh_total",
			Help:      "Event cache reloads by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordBackendAttempt(method, outcome string) {
	backendRequestsTotal.WithLabelValues(method, outcome).Inc()
}

func RecordBackendRetry(method string) {
	backendRetriesTotal.WithLabelValues(method).Inc()
}

// RecordRegistration counts register/unregister results; outcome is "ok" or an error code.
func RecordRegistration(op, outcome string) {
	registrationsTotal.WithLabelValues(op, outcome).Inc()
}

func RecordNavigation(route string) {
	navigationsTotal.WithLabelValues(route).Inc()
}

func RecordCacheRefresh(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	cacheRefreshTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
