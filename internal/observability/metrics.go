// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/congo-pay/hoard_token/internal/fee"
)

// Metrics holds the Prometheus metrics of the token service.
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal    *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	FeesCollected      *prometheus.CounterVec
	TokensMinted       prometheus.Counter
	TokensBurned       prometheus.Counter
	EventPublishErrors *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "hoard_token"
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "operations_total",
			Help:      "Total number of token operations by name and result",
		}, []string{"operation", "result"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "operation_duration_seconds",
			Help:      "Token operation latency in seconds, ledger commit included",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		FeesCollected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "fees_collected_base_units_total",
			Help:      "Transfer fees routed to each treasury, in base units",
		}, []string{"treasury"}),
		TokensMinted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "minted_base_units_total",
			Help:      "Tokens issued, in base units",
		}),
		TokensBurned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "burned_base_units_total",
			Help:      "Tokens destroyed, in base units",
		}),
		EventPublishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "publish_errors_total",
			Help:      "Events that could not be published after commit",
		}, []string{"kind"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordOperation records the outcome and latency of a token operation.
func (m *Metrics) RecordOperation(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.OperationsTotal.WithLabelValues(operation, result).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// RecordFees adds the fee components of a committed transfer.
func (m *Metrics) RecordFees(split fee.Split) {
	if m == nil {
		return
	}
	m.FeesCollected.WithLabelValues("ecosystem").Add(float64(split.EcosystemFee))
	m.FeesCollected.WithLabelValues("reward").Add(float64(split.RewardFee))
}

// RecordMinted adds newly issued tokens.
func (m *Metrics) RecordMinted(amount uint64) {
	if m == nil {
		return
	}
	m.TokensMinted.Add(float64(amount))
}

// RecordBurned adds destroyed tokens.
func (m *Metrics) RecordBurned(amount uint64) {
	if m == nil {
		return
	}
	m.TokensBurned.Add(float64(amount))
}

// RecordPublishError counts an event that could not be published.
func (m *Metrics) RecordPublishError(kind string) {
	if m == nil {
		return
	}
	m.EventPublishErrors.WithLabelValues(kind).Inc()
}
