package exporters

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Collector describes where spans are shipped
type Collector struct {
	Endpoint string
	// Protocol selects the transport: "grpc" (port 4317) or "http" (port 4318)
	Protocol string
	Insecure bool
	Timeout  time.Duration
}

// NewOTLP builds an exporter for c. The connection is lazy, so an
// unreachable collector does not fail here.
func NewOTLP(ctx context.Context, c Collector) (*otlptrace.Exporter, error) {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}

	switch c.Protocol {
	case "", "grpc":
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.Endpoint), otlptracegrpc.WithTimeout(c.Timeout)}
		if c.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure(),
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		}
		return otlptracegrpc.New(ctx, opts...)
	case "http":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(c.Endpoint), otlptracehttp.WithTimeout(c.Timeout)}
		if c.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	return nil, fmt.Errorf("unsupported OTLP protocol %q", c.Protocol)
}
