// Package metric wraps a Prometheus registry for the randstream process.
//
// MetricsRegistry owns a private prometheus.Registry with the Go runtime and
// process collectors, a small set of core platform metrics (component status,
// stream events, NATS connection state), and whatever component-specific
// collectors are registered through MetricsRegistrar. Registration is keyed
// by "<component>.<metric>" so a component cannot register the same metric
// twice.
//
//	registry := metric.NewMetricsRegistry()
//	counter := prometheus.NewCounterVec(opts, []string{"component"})
//	if err := registry.RegisterCounterVec("random_number", "records", counter); err != nil {
//		return err
//	}
//
// Server exposes the registry over HTTP at a configurable path plus /health.
package metric
