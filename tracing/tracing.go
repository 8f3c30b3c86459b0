// Package tracing provides OpenTelemetry spans for cache loads. It is entirely
// optional: regions only trace when a [Config] is wired in via the
// WithTracerProvider registry option or region.WithTracing.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ScopeName identifies spans produced by this module.
const ScopeName = "github.com/Keksclan/rawrcache/tracing"

// SpanGetOrLoad is the name of the span wrapping region.GetOrLoad.
const SpanGetOrLoad = "rawrcache.GetOrLoad"

// Outcome describes how a GetOrLoad call was satisfied.
type Outcome string

const (
	// OutcomeHit means the value was already cached.
	OutcomeHit Outcome = "hit"
	// OutcomeLoad means this call ran the loader.
	OutcomeLoad Outcome = "load"
	// OutcomeShared means this call waited on another caller's loader.
	OutcomeShared Outcome = "shared"
)

// Config holds the OpenTelemetry configuration used by regions.
type Config struct {
	// TracerProvider supplies the Tracer used to create spans. When nil the
	// global otel.GetTracerProvider() is used.
	TracerProvider trace.TracerProvider
}

// Tracer returns a configured [trace.Tracer]. A nil Config yields a no-op
// tracer so callers never need to nil-check.
func (c *Config) Tracer() trace.Tracer {
	if c == nil {
		return noop.NewTracerProvider().Tracer(ScopeName)
	}
	tp := c.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(ScopeName)
}

// StartGetOrLoad starts the span for a GetOrLoad call on namespace.
func StartGetOrLoad(ctx context.Context, tracer trace.Tracer, namespace string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, SpanGetOrLoad, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attribute.String("cache.namespace", namespace))
	return ctx, span
}

// End records the outcome and error on span and ends it.
func End(span trace.Span, outcome Outcome, err error) {
	span.SetAttributes(attribute.String("cache.outcome", string(outcome)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
