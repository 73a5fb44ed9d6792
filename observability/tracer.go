package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/streamkit/logger"
)

// instrumentation names the tracer and meter streamkit records with.
const instrumentation = "github.com/kbukum/streamkit/stream"

// Service identifies the process on every exported span and metric.
type Service struct {
	Name        string
	Version     string
	Environment string
}

func (s Service) resource() (*resource.Resource, error) {
	// Schemaless, so merging with the SDK default never hits a schema URL conflict.
	return resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(s.Name),
		semconv.ServiceVersion(s.Version),
		attribute.String("deployment.environment", s.Environment),
	))
}

// Collector is the OTLP HTTP endpoint telemetry is exported to.
type Collector struct {
	// Endpoint is host:port, e.g. "localhost:4318".
	Endpoint string
	Insecure bool
}

// TracerConfig configures span export.
type TracerConfig struct {
	Service
	Collector
	// SampleRate is the fraction of terminal spans kept, clamped to [0, 1].
	SampleRate float64
}

// InitTracer installs a batching OTLP tracer provider as the global provider.
// The caller shuts it down to flush pending spans.
func InitTracer(ctx context.Context, cfg *TracerConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	res, err := cfg.Service.resource()
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracer initialized", logger.Fields(
		"service", cfg.Name,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return tp, nil
}

func samplerFor(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// StartSpan starts a span on the streamkit tracer of the global provider.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentation).Start(ctx, name, opts...)
}

// SpanPrefix prefixes the span name of every terminal operation,
// e.g. "stream.collect".
const SpanPrefix = "stream."

// Span attribute keys.
const (
	AttrPipelineID   = "pipeline.id"
	AttrOperation    = "stream.operation"
	AttrMode         = "stream.mode"
	AttrPlan         = "stream.plan"
	AttrElements     = "stream.elements"
	AttrDurationMs   = "duration_ms"
	AttrStatus       = "status"
	AttrErrorCode    = "error.code"
	AttrErrorMessage = "error.message"
)

// Terminal status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
