package component

import (
	"log/slog"

	"github.com/c360/randstream/metric"
	"github.com/c360/randstream/natsclient"
)

// PlatformMeta provides platform identity to components.
type PlatformMeta struct {
	Org      string // Organization namespace (e.g., "c360")
	Platform string // Platform identifier (e.g., "lab-1")
}

// Dependencies provides the external dependencies needed by components.
type Dependencies struct {
	NATSClient      *natsclient.Client      // NATS client for messaging
	MetricsRegistry *metric.MetricsRegistry // Metrics registry for Prometheus (can be nil)
	Logger          *slog.Logger            // Structured logger (can be nil, defaults to slog.Default())
	Platform        PlatformMeta            // Platform identity
}

// GetLogger returns the configured logger or a default logger if none is provided
func (d *Dependencies) GetLogger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// GetLoggerWithComponent returns a logger configured with component context
func (d *Dependencies) GetLoggerWithComponent(componentName string) *slog.Logger {
	return d.GetLogger().With("component", componentName)
}

// CoreMetrics returns the platform metrics of the registry, or nil when no
// registry was provided. The metric recorders are nil-safe.
func (d *Dependencies) CoreMetrics() *metric.Metrics {
	if d.MetricsRegistry == nil {
		return nil
	}
	return d.MetricsRegistry.CoreMetrics()
}
