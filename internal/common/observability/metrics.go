package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the OpenTelemetry side of the fleet: a meter with
// two job instruments exported through the Prometheus bridge, and an
// optional tracer wired up by InitTracing. The per-task detail vectors
// live in internal/common/metrics; these instruments see every job at
// the polling wrapper, before handler code runs.
type Observability struct {
	serviceName    string
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{serviceName: serviceName}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Jobs handled by the fleet, per task type"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Wall time per job at the polling wrapper"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		serviceName:   serviceName,
		meterProvider: provider,
		meter:         meter,
		jobCounter:    jobCounter,
		jobDuration:   jobDuration,
	}
}

// ObserveJob runs one job invocation under a span and records the
// fleet-level instruments for taskType. It satisfies
// camunda.JobObserver.
func (o *Observability) ObserveJob(taskType string, invoke func()) {
	ctx, span := o.StartSpan(context.Background(), "job "+taskType)
	defer span.End()

	start := time.Now()
	invoke()

	o.RecordJobProcessed(ctx, taskType)
	o.RecordJobDuration(ctx, time.Since(start), taskType)
}

// StartSpan starts a span on the configured tracer. Before InitTracing
// is called (or when tracing is disabled) the global provider is a
// no-op, so spans cost nothing.
func (o *Observability) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if o.tracer != nil {
		return o.tracer.Start(ctx, name)
	}
	return otel.Tracer(o.serviceName).Start(ctx, name)
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, taskType string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if o.tracerProvider != nil {
		o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		o.meterProvider.Shutdown(ctx)
	}
}
