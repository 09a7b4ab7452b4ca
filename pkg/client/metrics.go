package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics for the engine.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "parley").
	Namespace string

	// Subsystem is the metrics subsystem (default: "client").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the engine metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the Prometheus collectors for one engine instance. A nil
// *Metrics disables collection.
type Metrics struct {
	eventsReceived    *prometheus.CounterVec
	framesRejected    *prometheus.CounterVec
	framesSent        prometheus.Counter
	bytesSent         prometheus.Counter
	bytesReceived     prometheus.Counter
	affordancesPruned prometheus.Counter
	logSize           prometheus.Gauge
	sessionState      prometheus.Gauge
	teardowns         prometheus.Counter
}

// NewMetrics registers and returns engine metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "parley",
		Subsystem: "client",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		eventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "events_received_total",
			Help:        "Inbound events accepted, by event type.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"type"}),
		framesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "frames_rejected_total",
			Help:        "Inbound frames rejected fail-closed, by reason.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"reason"}),
		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "frames_sent_total",
			Help:        "Outbound frames sent.",
			ConstLabels: cfg.ConstLabels,
		}),
		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "bytes_sent_total",
			Help:        "Outbound frame bytes.",
			ConstLabels: cfg.ConstLabels,
		}),
		bytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "bytes_received_total",
			Help:        "Inbound frame bytes.",
			ConstLabels: cfg.ConstLabels,
		}),
		affordancesPruned: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "affordances_pruned_total",
			Help:        "Messages that aged out of the edit/delete window.",
			ConstLabels: cfg.ConstLabels,
		}),
		logSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "log_messages",
			Help:        "Messages currently in the local log.",
			ConstLabels: cfg.ConstLabels,
		}),
		sessionState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "session_state",
			Help:        "Connection state (0 disconnected, 1 connecting, 2 open).",
			ConstLabels: cfg.ConstLabels,
		}),
		teardowns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "teardowns_total",
			Help:        "Session teardowns, whatever the cause.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

func (m *Metrics) eventReceived(eventType string) {
	if m == nil {
		return
	}
	m.eventsReceived.WithLabelValues(eventType).Inc()
}

func (m *Metrics) frameRejected(reason string) {
	if m == nil {
		return
	}
	m.framesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) frameSent(bytes int) {
	if m == nil {
		return
	}
	m.framesSent.Inc()
	m.bytesSent.Add(float64(bytes))
}

func (m *Metrics) frameReceived(bytes int) {
	if m == nil {
		return
	}
	m.bytesReceived.Add(float64(bytes))
}

func (m *Metrics) affordancePruned() {
	if m == nil {
		return
	}
	m.affordancesPruned.Inc()
}

func (m *Metrics) setLogSize(n int) {
	if m == nil {
		return
	}
	m.logSize.Set(float64(n))
}

func (m *Metrics) setState(s State) {
	if m == nil {
		return
	}
	m.sessionState.Set(float64(s))
}

func (m *Metrics) teardown() {
	if m == nil {
		return
	}
	m.teardowns.Inc()
}
