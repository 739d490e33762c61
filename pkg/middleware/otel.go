package middleware

import (
	"context"
	"fmt"

	"github.com/vango-dev/livecoll/pkg/protocol"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name.
const defaultTracerName = "livecoll"

// OTelConfig configures OpenTelemetry tracing.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "livecoll").
	TracerName string

	// IncludeValues records event values as span attributes. Values may
	// contain sensitive data - disabled by default.
	IncludeValues bool

	// Filter determines which events to trace.
	// Return true to trace the event, false to skip.
	// If nil, all events are traced.
	Filter func(ev protocol.Event) bool

	// AttributeExtractor extracts custom attributes from an event.
	AttributeExtractor func(ev protocol.Event) []attribute.KeyValue
}

// OTelOption configures OpenTelemetry tracing.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeValues enables recording event values in spans.
func WithIncludeValues(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeValues = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ev protocol.Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev protocol.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing creates spans for events and operations.
type Tracing struct {
	config OTelConfig
	tracer trace.Tracer
}

// NewTracing resolves a tracer from the global provider.
func NewTracing(opts ...OTelOption) *Tracing {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	return &Tracing{config: config, tracer: otel.Tracer(config.TracerName)}
}

// OpenTelemetry is shorthand for NewTracing(opts...).Middleware().
func OpenTelemetry(opts ...OTelOption) Middleware {
	return NewTracing(opts...).Middleware()
}

// Middleware starts a span around the delivery of every event.
func (t *Tracing) Middleware() Middleware {
	return func(next protocol.Sink) protocol.Sink {
		return func(ev protocol.Event) {
			if t.config.Filter != nil && !t.config.Filter(ev) {
				next(ev)
				return
			}

			_, span := t.tracer.Start(context.Background(), "livecoll."+ev.Kind.String(),
				trace.WithSpanKind(trace.SpanKindProducer),
				trace.WithAttributes(t.eventAttributes(ev)...),
			)
			defer span.End()
			next(ev)
		}
	}
}

func (t *Tracing) eventAttributes(ev protocol.Event) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("livecoll.collection", ev.Collection),
		attribute.Int64("livecoll.seq", int64(ev.Seq)),
		attribute.String("livecoll.shape", ev.Shape.String()),
	}
	switch {
	case ev.Shape == protocol.ShapeMap:
		attrs = append(attrs, attribute.String("livecoll.key", ev.Key))
	case ev.Kind == protocol.KindMove:
		attrs = append(attrs, attribute.Int("livecoll.index", ev.Index), attribute.Int("livecoll.to", ev.To))
	case ev.Kind != protocol.KindReset:
		attrs = append(attrs, attribute.Int("livecoll.index", ev.Index))
	}
	if t.config.IncludeValues && ev.Value != nil {
		attrs = append(attrs, attribute.String("livecoll.value", fmt.Sprint(ev.Value)))
	}
	if t.config.AttributeExtractor != nil {
		attrs = append(attrs, t.config.AttributeExtractor(ev)...)
	}
	return attrs
}

// StartOp starts a span for an operation on target. Finish it with EndOp.
func (t *Tracing) StartOp(ctx context.Context, target, op string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "livecoll.op "+op,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("livecoll.target", target),
			attribute.String("livecoll.op", op),
		),
	)
}

// EndOp records the outcome of an operation and ends its span.
func EndOp(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
