package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "librarian"

// Chat outcomes recorded per request.
const (
	OutcomeAnswered     = "answered"
	OutcomeRejected     = "rejected"
	OutcomeNotFound     = "not_found"
	OutcomeEmptyLibrary = "empty_library"
	OutcomeQueryError   = "query_error"
	OutcomeError        = "error"
)

// ChatMetrics counts chat requests by routing strategy and outcome.
type ChatMetrics struct {
	// RequestsTotal labels: strategy, outcome.
	RequestsTotal *prometheus.CounterVec
	// DurationSeconds labels: strategy.
	DurationSeconds *prometheus.HistogramVec
}

// NewChatMetrics registers the chat metrics on reg. The server passes the
// registry it serves on /metrics; tests pass a fresh prometheus.NewRegistry().
func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	factory := promauto.With(reg)
	return &ChatMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "chat",
				Name:      "requests_total",
				Help:      "Chat requests by routing strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		DurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "chat",
				Name:      "duration_seconds",
				Help:      "Time to produce a chat reply by routing strategy",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"strategy"},
		),
	}
}

// Record notes one finished request. A nil receiver is a no-op.
func (m *ChatMetrics) Record(strategy, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(strategy, outcome).Inc()
	m.DurationSeconds.WithLabelValues(strategy).Observe(elapsed.Seconds())
}
