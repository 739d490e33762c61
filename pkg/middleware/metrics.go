package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/livecoll/pkg/protocol"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "livecoll").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for delivery and op durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "livecoll",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics of a stream server.
type Metrics struct {
	eventsTotal    *prometheus.CounterVec
	eventDelivery  *prometheus.HistogramVec
	opsTotal       *prometheus.CounterVec
	opDuration     prometheus.Histogram
	activeClients  prometheus.Gauge
	queueOverflows prometheus.Counter
	resumesTotal   *prometheus.CounterVec
	wsErrors       *prometheus.CounterVec
}

// NewMetrics creates and registers the metrics. Registering twice on the
// same registry panics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of collection events delivered",
			ConstLabels: config.ConstLabels,
		}, []string{"collection", "kind"}),

		eventDelivery: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_delivery_seconds",
			Help:        "Time spent delivering one event to its feed",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"collection"}),

		opsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "ops_total",
			Help:        "Total number of operations by target and status",
			ConstLabels: config.ConstLabels,
		}, []string{"target", "status"}),

		opDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "op_duration_seconds",
			Help:        "Operation processing duration in seconds, including event delivery",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		activeClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_clients",
			Help:        "Number of connected feed clients",
			ConstLabels: config.ConstLabels,
		}),

		queueOverflows: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "queue_overflows_total",
			Help:        "Total number of clients disconnected because their send queue overflowed",
			ConstLabels: config.ConstLabels,
		}),

		resumesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resumes_total",
			Help:        "Total number of feed reconnections by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Middleware counts and times every event passing through.
func (m *Metrics) Middleware() Middleware {
	return func(next protocol.Sink) protocol.Sink {
		return func(ev protocol.Event) {
			start := time.Now()
			next(ev)
			m.eventDelivery.WithLabelValues(ev.Collection).Observe(time.Since(start).Seconds())
			m.eventsTotal.WithLabelValues(ev.Collection, ev.Kind.String()).Inc()
		}
	}
}

// RecordOp records one applied operation.
func (m *Metrics) RecordOp(target string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.opsTotal.WithLabelValues(target, status).Inc()
	m.opDuration.Observe(d.Seconds())
}

// RecordClientConnect records a new feed client.
func (m *Metrics) RecordClientConnect() {
	m.activeClients.Inc()
}

// RecordClientDisconnect records a feed client leaving.
func (m *Metrics) RecordClientDisconnect() {
	m.activeClients.Dec()
}

// RecordOverflow records a client dropped for a full send queue.
func (m *Metrics) RecordOverflow() {
	m.queueOverflows.Inc()
}

// RecordResume records a reconnection. outcome is "replayed" when missed
// events were sent from history, "snapshot" when a fresh snapshot was sent.
func (m *Metrics) RecordResume(outcome string) {
	m.resumesTotal.WithLabelValues(outcome).Inc()
}

// RecordWebSocketError records a WebSocket error.
func (m *Metrics) RecordWebSocketError(errorType string) {
	m.wsErrors.WithLabelValues(errorType).Inc()
}
