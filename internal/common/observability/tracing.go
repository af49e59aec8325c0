package observability

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InitTracing wires a Jaeger collector into the global tracer provider.
// Call only when a collector endpoint is configured; without it the
// fleet runs metrics-only.
func (o *Observability) InitTracing(collectorEndpoint string) error {
	exporter, err := jaeger.New(
		jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(collectorEndpoint)),
	)
	if err != nil {
		return fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", o.serviceName),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	o.tracerProvider = provider
	o.tracer = provider.Tracer(o.serviceName)
	return nil
}
