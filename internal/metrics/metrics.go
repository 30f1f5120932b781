package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Boardwalk
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Ledger Metrics
	SessionsArchivedTotal prometheus.Counter
	SessionsReapedTotal   prometheus.Counter
	SessionMinutes        prometheus.Histogram
	LiveSessions          prometheus.Gauge

	// Upstream Metrics
	WebhookFailuresTotal  prometheus.Counter
	UpstreamRequestsTotal prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardwalk_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boardwalk_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "boardwalk_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		SessionsArchivedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "boardwalk_sessions_archived_total",
				Help: "Play sessions finalized into the archive",
			},
		),
		SessionsReapedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "boardwalk_sessions_reaped_total",
				Help: "Live sessions closed by the stale-session reaper",
			},
		),
		SessionMinutes: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "boardwalk_session_minutes",
				Help:    "Distribution of archived session durations in minutes",
				Buckets: []float64{1, 5, 10, 20, 30, 45, 60, 90, 120, 180, 240},
			},
		),
		LiveSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "boardwalk_live_sessions",
				Help: "Currently tracked live sessions",
			},
		),

		WebhookFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "boardwalk_webhook_failures_total",
				Help: "Fire-and-forget bot webhook deliveries that failed",
			},
		),
		UpstreamRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardwalk_upstream_requests_total",
				Help: "Requests to external identity APIs by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
	}
}
