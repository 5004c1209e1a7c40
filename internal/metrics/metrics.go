// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequests counts handled HTTP requests by method, route and status.
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "music_api_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	// APIRequestDuration observes request latency by method and route.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "music_api_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// APIErrors counts error responses by kind (not_found, conflict, ...).
	APIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "music_api_errors_total",
			Help: "Total number of error responses by kind",
		},
		[]string{"kind"},
	)

	// AuthAttempts counts login and registration outcomes.
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "music_auth_attempts_total",
			Help: "Login and registration attempts by operation and result",
		},
		[]string{"operation", "result"},
	)
)

// RecordAPIRequest records one completed request.
func RecordAPIRequest(method, route, status string, d time.Duration) {
	APIRequests.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordError records an error response of the given kind.
func RecordError(kind string) {
	APIErrors.WithLabelValues(kind).Inc()
}

// RecordAuth records an authentication attempt.
func RecordAuth(operation string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	AuthAttempts.WithLabelValues(operation, result).Inc()
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
