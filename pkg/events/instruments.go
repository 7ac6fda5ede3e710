package events

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// instruments are the OTel counterparts of the dispatcher's prometheus
// counters, exported over OTLP when tracing is enabled
type instruments struct {
	published metric.Int64Counter
	failures  metric.Int64Counter
	duration  metric.Float64Histogram
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	published, err := meter.Int64Counter(
		"workboard.events.published",
		metric.WithDescription("Domain events published"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create events.published counter: %w", err)
	}

	failures, err := meter.Int64Counter(
		"workboard.events.subscriber_failures",
		metric.WithDescription("Event subscriber errors and panics"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create events.subscriber_failures counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"workboard.events.publish.duration",
		metric.WithDescription("Time to run every subscriber for one event"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create events.publish.duration histogram: %w", err)
	}

	return &instruments{published: published, failures: failures, duration: duration}, nil
}
