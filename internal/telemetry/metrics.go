package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/frontbuild"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Build metrics
	BuildsTotal      metric.Int64Counter
	BuildErrorsTotal metric.Int64Counter
	BuildDuration    metric.Float64Histogram

	// Async component registration metrics
	ComponentsRegistered metric.Int64Counter
	ComponentsSkipped    metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	// Build metrics
	m.BuildsTotal, _ = meter.Int64Counter(
		"frontbuild.builds.total",
		metric.WithDescription("Total number of asset builds"),
		metric.WithUnit("{build}"),
	)

	m.BuildErrorsTotal, _ = meter.Int64Counter(
		"frontbuild.builds.errors.total",
		metric.WithDescription("Total number of errors reported by asset builds"),
		metric.WithUnit("{error}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"frontbuild.builds.duration",
		metric.WithDescription("Duration of asset builds"),
		metric.WithUnit("ms"),
	)

	// Async component registration metrics
	m.ComponentsRegistered, _ = meter.Int64Counter(
		"frontbuild.components.registered.total",
		metric.WithDescription("Total number of async components registered into registry modules"),
		metric.WithUnit("{component}"),
	)

	m.ComponentsSkipped, _ = meter.Int64Counter(
		"frontbuild.components.skipped.total",
		metric.WithDescription("Total number of async component files skipped for not following the naming convention"),
		metric.WithUnit("{component}"),
	)

	return m
}
