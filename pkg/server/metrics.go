package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics for the server.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "parley").
	Namespace string

	// Subsystem is the metrics subsystem (default: "server").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the server metrics.
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

// Metrics holds the Prometheus collectors for one server instance. A nil
// *Metrics disables collection.
type Metrics struct {
	sessionsActive  prometheus.Gauge
	eventsReceived  *prometheus.CounterVec
	framesRejected  prometheus.Counter
	framesSent      prometheus.Counter
	bytesSent       prometheus.Counter
	bytesReceived   prometheus.Counter
	messagesPosted  prometheus.Counter
	attachmentBytes prometheus.Counter
}

// NewMetrics registers and returns server metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Namespace: "parley",
		Subsystem: "server",
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "sessions_active",
			Help:        "Currently joined client sessions.",
			ConstLabels: cfg.ConstLabels,
		}),
		eventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "events_received_total",
			Help:        "Client events accepted, by event type.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"type"}),
		framesRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "frames_rejected_total",
			Help:        "Frames that failed decoding or validation.",
			ConstLabels: cfg.ConstLabels,
		}),
		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "frames_sent_total",
			Help:        "Event frames written to clients.",
			ConstLabels: cfg.ConstLabels,
		}),
		bytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "bytes_sent_total",
			Help:        "Frame bytes written to clients.",
			ConstLabels: cfg.ConstLabels,
		}),
		bytesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "bytes_received_total",
			Help:        "Frame bytes read from clients.",
			ConstLabels: cfg.ConstLabels,
		}),
		messagesPosted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "messages_posted_total",
			Help:        "New chat messages accepted.",
			ConstLabels: cfg.ConstLabels,
		}),
		attachmentBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "attachment_bytes_total",
			Help:        "Decoded attachment bytes stored.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

func (m *Metrics) sessionJoined() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
}

func (m *Metrics) sessionLeft() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

func (m *Metrics) eventReceived(eventType string) {
	if m == nil {
		return
	}
	m.eventsReceived.WithLabelValues(eventType).Inc()
}

func (m *Metrics) frameRejected() {
	if m == nil {
		return
	}
	m.framesRejected.Inc()
}

func (m *Metrics) frameSent(n int) {
	if m == nil {
		return
	}
	m.framesSent.Inc()
	m.bytesSent.Add(float64(n))
}

func (m *Metrics) frameReceived(n int) {
	if m == nil {
		return
	}
	m.bytesReceived.Add(float64(n))
}

func (m *Metrics) messagePosted() {
	if m == nil {
		return
	}
	m.messagesPosted.Inc()
}

func (m *Metrics) attachmentStored(n int) {
	if m == nil {
		return
	}
	m.attachmentBytes.Add(float64(n))
}
