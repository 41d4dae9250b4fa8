package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/bundlecompose"
)

// Metrics holds the build metric instruments
type Metrics struct {
	BuildsTotal   metric.Int64Counter
	BuildDuration metric.Float64Histogram
	OutputBytes   metric.Int64Counter
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

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.BuildsTotal, _ = meter.Int64Counter(
		"bundlecompose.builds.total",
		metric.WithDescription("Total number of builds, labelled by mode and success"),
		metric.WithUnit("{build}"),
	)

	m.BuildDuration, _ = meter.Float64Histogram(
		"bundlecompose.builds.emit.duration",
		metric.WithDescription("Duration of writing build outputs"),
		metric.WithUnit("s"),
	)

	m.OutputBytes, _ = meter.Int64Counter(
		"bundlecompose.outputs.bytes",
		metric.WithDescription("Bytes written by successful builds"),
		metric.WithUnit("By"),
	)

	return m
}
