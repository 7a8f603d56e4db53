// Package tracing wraps the OpenTelemetry tracer used across the pipeline and API
package tracing

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var tracer atomic.Value

func init() {
	SetTracer(nil)
}

// SetTracer installs t for StartSpan. nil restores the no-op tracer.
func SetTracer(t trace.Tracer) {
	if t == nil {
		t = noop.NewTracerProvider().Tracer("")
	}
	tracer.Store(&t)
}

// StartSpan starts a child of the span in ctx
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	t := *tracer.Load().(*trace.Tracer)
	return t.Start(ctx, spanName, opts...)
}

// GetTraceID returns the hex trace id of the span in ctx, or "" when ctx
// carries no recorded span
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
