package mvvm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "viewmodel").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch task duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
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
		Namespace: "viewmodel",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the pipeline collectors. A nil *Metrics records nothing, so
// every component can take it as an optional dependency.
type Metrics struct {
	updates       *prometheus.CounterVec
	notifications *prometheus.CounterVec
	deliveries    *prometheus.CounterVec
	models        *prometheus.GaugeVec
	queueDepth    prometheus.Gauge
	taskDuration  prometheus.Histogram
	taskPanics    prometheus.Counter
}

// NewMetrics registers the collectors and returns them.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		updates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Snapshot updates applied to view-models, by result",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "result"}),

		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Change notifications scheduled on the dispatcher",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "listener_deliveries_total",
			Help:        "Listener callbacks invoked for change notifications",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		models: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "models",
			Help:        "View-models held by registries",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_queue_depth",
			Help:        "Tasks waiting on the dispatch loop",
			ConstLabels: config.ConstLabels,
		}),

		taskDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_task_duration_seconds",
			Help:        "Dispatch task run time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		taskPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_task_panics_total",
			Help:        "Dispatch tasks that panicked",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) recordUpdate(kind string, changed bool) {
	if m == nil {
		return
	}
	result := "unchanged"
	if changed {
		result = "changed"
	}
	m.updates.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) notificationScheduled(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *Metrics) delivered(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.deliveries.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) setModels(kind string, n int) {
	if m == nil {
		return
	}
	m.models.WithLabelValues(kind).Set(float64(n))
}

func (m *Metrics) setQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) observeTask(d time.Duration) {
	if m == nil {
		return
	}
	m.taskDuration.Observe(d.Seconds())
}

func (m *Metrics) taskPanicked() {
	if m == nil {
		return
	}
	m.taskPanics.Inc()
}
