package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	SynthesisRequests    *prometheus.CounterVec
	SynthesisLatency     prometheus.Histogram
	ConsoleSubmissions   *prometheus.CounterVec
	ConsoleNotifications *prometheus.CounterVec
	ConsoleReplays       *prometheus.CounterVec
	ActiveSessions       prometheus.Gauge
	SessionEvents        *prometheus.CounterVec
	WSMessages           *prometheus.CounterVec

	window *latencyWindow
}

func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith registers instruments on reg; tests pass a fresh registry.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SynthesisRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_requests_total",
			Help:      "Upstream synthesis requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		SynthesisLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_latency_ms",
			Help:      "Upstream synthesis latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000},
		}),
		ConsoleSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "console_submissions_total",
			Help:      "Console submissions by outcome.",
		}, []string{"outcome"}),
		ConsoleNotifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "console_notifications_total",
			Help:      "Console notifications by severity.",
		}, []string{"severity"}),
		ConsoleReplays: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "console_replays_total",
			Help:      "Console replay requests by outcome.",
		}, []string{"outcome"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of active console sessions.",
		}),
		SessionEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events by type.",
		}, []string{"event"}),
		WSMessages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		window: newLatencyWindow(256),
	}
}

func (m *Metrics) ObserveSynthesis(provider, outcome string, d time.Duration) {
	m.SynthesisRequests.WithLabelValues(provider, outcome).Inc()
	if outcome == "success" {
		m.SynthesisLatency.Observe(float64(d.Milliseconds()))
		m.window.Observe("upstream_synthesis", float64(d.Milliseconds()))
	}
}

func (m *Metrics) ObserveSubmission(outcome string, d time.Duration) {
	m.ConsoleSubmissions.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.window.Observe("console_submit", float64(d.Milliseconds()))
	}
	if outcome != "success" {
		m.window.ObserveIndicator("submit_" + outcome)
	}
}

func (m *Metrics) ObserveNotification(severity string) {
	m.ConsoleNotifications.WithLabelValues(severity).Inc()
}

func (m *Metrics) ObserveReplay(outcome string) {
	m.ConsoleReplays.WithLabelValues(outcome).Inc()
}

// SnapshotLatency summarizes the rolling latency window.
func (m *Metrics) SnapshotLatency() LatencySnapshot {
	return m.window.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
