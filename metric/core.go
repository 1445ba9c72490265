package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric the process exports
const Namespace = "randstream"

// Metrics contains the platform-level metrics shared by all components
type Metrics struct {
	ComponentStatus *prometheus.GaugeVec
	EventsReceived  *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	ActiveStreams   *prometheus.GaugeVec

	NATSConnected      prometheus.Gauge
	NATSReconnects     prometheus.Counter
	NATSCircuitBreaker prometheus.Gauge
}

// NewMetrics creates the core metrics, unregistered
func NewMetrics() *Metrics {
	return &Metrics{
		ComponentStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "component",
			Name:      "status",
			Help:      "Component status (0=stopped, 1=running, 2=failed)",
		}, []string{"component"}),

		EventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "events",
			Name:      "received_total",
			Help:      "Stream events received, by event type",
		}, []string{"component", "type"}),

		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Stream events published, by subject",
		}, []string{"component", "subject"}),

		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "errors",
			Name:      "total",
			Help:      "Errors by component and class",
		}, []string{"component", "class"}),

		ActiveStreams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "streams",
			Name:      "active",
			Help:      "Streams with an open engine",
		}, []string{"component"}),

		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "nats",
			Name:      "connected",
			Help:      "NATS connection status (0=disconnected, 1=connected)",
		}),

		NATSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "nats",
			Name:      "reconnects_total",
			Help:      "Total number of NATS reconnections",
		}),

		NATSCircuitBreaker: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "nats",
			Name:      "circuit_breaker",
			Help:      "NATS circuit breaker status (0=closed, 1=open)",
		}),
	}
}

func (c *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.ComponentStatus,
		c.EventsReceived,
		c.EventsPublished,
		c.ErrorsTotal,
		c.ActiveStreams,
		c.NATSConnected,
		c.NATSReconnects,
		c.NATSCircuitBreaker,
	}
}

// Component status values
const (
	StatusStopped = 0
	StatusRunning = 1
	StatusFailed  = 2
)

// RecordComponentStatus sets the component status gauge
func (c *Metrics) RecordComponentStatus(component string, status int) {
	if c == nil {
		return
	}
	c.ComponentStatus.WithLabelValues(component).Set(float64(status))
}

// RecordEventReceived counts one incoming stream event
func (c *Metrics) RecordEventReceived(component, eventType string) {
	if c == nil {
		return
	}
	c.EventsReceived.WithLabelValues(component, eventType).Inc()
}

// RecordEventPublished counts one outgoing stream event
func (c *Metrics) RecordEventPublished(component, subject string) {
	if c == nil {
		return
	}
	c.EventsPublished.WithLabelValues(component, subject).Inc()
}

// RecordError counts an error by its class
func (c *Metrics) RecordError(component, class string) {
	if c == nil {
		return
	}
	c.ErrorsTotal.WithLabelValues(component, class).Inc()
}

// SetActiveStreams records the number of open streams
func (c *Metrics) SetActiveStreams(component string, n int) {
	if c == nil {
		return
	}
	c.ActiveStreams.WithLabelValues(component).Set(float64(n))
}

// RecordNATSStatus updates NATS connection status
func (c *Metrics) RecordNATSStatus(connected bool) {
	if c == nil {
		return
	}
	value := 0.0
	if connected {
		value = 1.0
	}
	c.NATSConnected.Set(value)
}

// RecordNATSReconnect increments reconnection counter
func (c *Metrics) RecordNATSReconnect() {
	if c == nil {
		return
	}
	c.NATSReconnects.Inc()
}

// RecordCircuitBreakerState updates circuit breaker status
func (c *Metrics) RecordCircuitBreakerState(open bool) {
	if c == nil {
		return
	}
	value := 0.0
	if open {
		value = 1.0
	}
	c.NATSCircuitBreaker.Set(value)
}
