package tracing

import (
	"context"

	"github.com/Ramsey-B/lily/pkg/tracing/exporters"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config controls how spans are exported
type Config struct {
	ServiceName string
	Enabled     bool
	Endpoint    string
	Protocol    string
	Insecure    bool
}

// Setup installs a tracer provider and returns its shutdown function.
// When tracing is disabled spans are recorded and discarded.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter = exporters.Discard{}
	if cfg.Enabled {
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		exp, err := exporters.NewOTLP(ctx, exporters.Collector{
			Endpoint: endpoint,
			Protocol: cfg.Protocol,
			Insecure: cfg.Insecure,
		})
		if err != nil {
			return nil, err
		}
		exporter = exp
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	SetTracer(tp.Tracer(cfg.ServiceName))

	return func(ctx context.Context) error {
		SetTracer(nil)
		return tp.Shutdown(ctx)
	}, nil
}
