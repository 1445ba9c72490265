package randomprocessor

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/randstream/metric"
)

const metricsSubsystem = "random_number"

// randomMetrics holds Prometheus metrics for the random number processor.
// A nil *randomMetrics records nothing.
type randomMetrics struct {
	recordsProcessed *prometheus.CounterVec // By component
	recordsFailed    *prometheus.CounterVec // By component and reason

	samplesDrawn    *prometheus.CounterVec // By component
	nanSamples      *prometheus.CounterVec // By component
	nullConversions *prometheus.CounterVec // By component and output kind

	streamsOpened *prometheus.CounterVec // By component
	streamsClosed *prometheus.CounterVec // By component and final state

	sampleValue        *prometheus.HistogramVec // By component
	processingDuration *prometheus.HistogramVec // By component
}

// newRandomMetrics creates and registers the processor metrics with the
// provided registry. A nil registry disables metrics.
func newRandomMetrics(registry *metric.MetricsRegistry) (*randomMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &randomMetrics{
		recordsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: metricsSubsystem,
			Name:      "records_processed_total",
			Help:      "Total number of records augmented and pushed downstream",
		}, []string{"component"}),

		recordsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: metricsSubsystem,
			Name:      "records_failed_total",
			Help:      "Total number of events that could not be processed",
		}, []string{"component", "reason"}), // reason: decode, state, copy, push, init

		samplesDrawn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: metricsSubsystem,
			Name:      "samples_drawn_total",
			Help:      "Total number of samples drawn",
		}, []string{"component"}),

		nanSamples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: metricsSubsystem,
			Name:      "nan_samples_total",
			Help:      "Samples that were NaN, usually from degenerate parameters",
		}, []string{"component"}),

		nullConversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: metricsSubsystem,
			Name:      "null_conversions_total",
			Help:      "Samples written as null because the output kind cannot hold them",
		}, []string{"component", "kind"}),

		streamsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: metricsSubsystem,
			Name:      "streams_opened_total",
			Help:      "Total number of streams seen",
		}, []string{"component"}),

		streamsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: metricsSubsystem,
			Name:      "streams_closed_total",
			Help:      "Total number of streams closed, by the state they closed from",
		}, []string{"component", "state"}),

		sampleValue: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metric.Namespace,
			Subsystem: metricsSubsystem,
			Name:      "sample_value",
			Help:      "Distribution of finite sampled values",
			Buckets:   []float64{-1000, -100, -10, -1, 0, 0.25, 0.5, 0.75, 1, 10, 100, 1000},
		}, []string{"component"}),

		processingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metric.Namespace,
			Subsystem: metricsSubsystem,
			Name:      "processing_duration_seconds",
			Help:      "Per-record processing duration in seconds, including the push",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"component"}),
	}

	if err := registry.RegisterCounterVec(metricsSubsystem, "records_processed", m.recordsProcessed); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(metricsSubsystem, "records_failed", m.recordsFailed); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(metricsSubsystem, "samples_drawn", m.samplesDrawn); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(metricsSubsystem, "nan_samples", m.nanSamples); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(metricsSubsystem, "null_conversions", m.nullConversions); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(metricsSubsystem, "streams_opened", m.streamsOpened); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec(metricsSubsystem, "streams_closed", m.streamsClosed); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec(metricsSubsystem, "sample_value", m.sampleValue); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec(metricsSubsystem, "processing_duration", m.processingDuration); err != nil {
		return nil, err
	}

	return m, nil
}

// recordSample records one draw and whether it could be stored
func (m *randomMetrics) recordSample(componentName string, v float64, kind string, stored bool) {
	if m == nil {
		return
	}

	m.samplesDrawn.WithLabelValues(componentName).Inc()
	switch {
	case math.IsNaN(v):
		m.nanSamples.WithLabelValues(componentName).Inc()
	case !math.IsInf(v, 0):
		m.sampleValue.WithLabelValues(componentName).Observe(v)
	}
	if !stored {
		m.nullConversions.WithLabelValues(componentName, kind).Inc()
	}
}

// recordProcessed records a record pushed downstream
func (m *randomMetrics) recordProcessed(componentName string, duration time.Duration) {
	if m == nil {
		return
	}

	m.recordsProcessed.WithLabelValues(componentName).Inc()
	m.processingDuration.WithLabelValues(componentName).Observe(duration.Seconds())
}

// recordFailed records an event that could not be processed
func (m *randomMetrics) recordFailed(componentName, reason string) {
	if m == nil {
		return
	}

	m.recordsFailed.WithLabelValues(componentName, reason).Inc()
}

func (m *randomMetrics) recordStreamOpened(componentName string) {
	if m == nil {
		return
	}

	m.streamsOpened.WithLabelValues(componentName).Inc()
}

func (m *randomMetrics) recordStreamClosed(componentName, state string) {
	if m == nil {
		return
	}

	m.streamsClosed.WithLabelValues(componentName, state).Inc()
}
