package events

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/workboard/pkg/observability"
)

// Publisher is what services depend on to announce a committed mutation
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Handler reacts to a published event
type Handler func(ctx context.Context, evt Event) error

type subscription struct {
	name    string
	handler Handler
}

// Dispatcher delivers events to subscribers synchronously, in subscription
// order. A failing or panicking subscriber is logged and skipped; it never
// affects the publisher or the other subscribers.
type Dispatcher struct {
	mu      sync.RWMutex
	subs    []subscription
	logger  *observability.Logger
	metrics *observability.Metrics
	otel    *instruments
	now     func() time.Time
}

// NewDispatcher creates a dispatcher. metrics may be nil.
func NewDispatcher(logger *observability.Logger, metrics *observability.Metrics) *Dispatcher {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	d := &Dispatcher{
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
	if err := d.instrument(observability.Meter()); err != nil {
		logger.WithError(err).Warn("event dispatcher OTel instruments disabled")
	}
	return d
}

// instrument records dispatch metrics to meter. On failure the dispatcher
// falls back to no-op instruments.
func (d *Dispatcher) instrument(meter metric.Meter) error {
	inst, err := newInstruments(meter)
	if err != nil {
		d.otel, _ = newInstruments(noop.NewMeterProvider().Meter(observability.TracerName))
		return err
	}
	d.otel = inst
	return nil
}

// Subscribe registers h under name. name labels logs and metrics.
func (d *Dispatcher) Subscribe(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, subscription{name: name, handler: h})
}

// Publish runs every subscriber for evt and returns once all have finished
func (d *Dispatcher) Publish(ctx context.Context, evt Event) {
	d.mu.RLock()
	subs := make([]subscription, len(d.subs))
	copy(subs, d.subs)
	d.mu.RUnlock()

	typ := string(evt.Type())
	ctx, span := observability.Tracer().Start(ctx, "events.Publish",
		trace.WithAttributes(
			attribute.String("event.type", typ),
			attribute.String("workspace.id", evt.Workspace()),
			attribute.Int("event.subscribers", len(subs)),
		),
	)
	defer span.End()

	if d.metrics != nil {
		d.metrics.EventsPublishedTotal.WithLabelValues(typ).Inc()
	}
	typeAttr := metric.WithAttributes(attribute.String("event.type", typ))
	d.otel.published.Add(ctx, 1, typeAttr)
	began := d.now()
	defer func() {
		d.otel.duration.Record(ctx, d.now().Sub(began).Seconds(), typeAttr)
	}()

	logger := observability.FromContext(ctx, d.logger).
		WithField("event_type", typ).
		WithField("workspace_id", evt.Workspace())

	failed := 0
	for _, sub := range subs {
		start := d.now()
		err := observability.Recover(logger, "event subscriber "+sub.name, func() error {
			return sub.handler(ctx, evt)
		})
		if err == nil {
			continue
		}

		failed++
		span.RecordError(err, trace.WithAttributes(attribute.String("subscriber", sub.name)))
		if d.metrics != nil {
			d.metrics.EventHandlerFailures.WithLabelValues(typ, sub.name).Inc()
		}
		d.otel.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event.type", typ),
			attribute.String("subscriber", sub.name),
		))
		logger.WithField("subscriber", sub.name).
			WithField("duration_ms", d.now().Sub(start).Milliseconds()).
			WithError(err).
			Error("event subscriber failed")
	}

	if failed > 0 {
		span.SetStatus(codes.Error, "subscriber failed")
	}
}
