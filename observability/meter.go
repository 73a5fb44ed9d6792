package observability

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/streamkit/logger"
)

// MeterConfig configures metric export.
type MeterConfig struct {
	Service
	Collector
	// Interval is the export period; zero keeps the SDK default.
	Interval time.Duration
}

// InitMeter installs a periodic OTLP meter provider as the global provider.
// The caller shuts it down to flush the last collection.
func InitMeter(ctx context.Context, cfg *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	res, err := cfg.Service.resource()
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.Name,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded for every terminal operation.
type Metrics struct {
	terminalTotal    metric.Int64Counter
	terminalDuration metric.Float64Histogram
	elementsTotal    metric.Int64Counter
	errorTotal       metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	terminalTotal, err := meter.Int64Counter("stream.terminal.total",
		metric.WithDescription("Total number of terminal operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.terminal.total counter: %w", err)
	}

	terminalDuration, err := meter.Float64Histogram("stream.terminal.duration",
		metric.WithDescription("Duration of terminal operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.terminal.duration histogram: %w", err)
	}

	elementsTotal, err := meter.Int64Counter("stream.elements.total",
		metric.WithDescription("Elements delivered to terminal operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.elements.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("stream.error.total",
		metric.WithDescription("Failed terminal operations by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stream.error.total counter: %w", err)
	}

	return &Metrics{
		terminalTotal:    terminalTotal,
		terminalDuration: terminalDuration,
		elementsTotal:    elementsTotal,
		errorTotal:       errorTotal,
	}, nil
}

// RecordTerminal records one completed terminal operation.
func (m *Metrics) RecordTerminal(ctx context.Context, operation, mode, status string, elements int64, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("mode", mode),
		attribute.String("status", status),
	)
	m.terminalTotal.Add(ctx, 1, attrs)
	m.elementsTotal.Add(ctx, elements, attrs)
	m.terminalDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("mode", mode),
	))
}

// RecordError records a failed terminal operation by error code.
func (m *Metrics) RecordError(ctx context.Context, code, operation string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("operation", operation),
	))
}

var defaultMetrics atomic.Pointer[Metrics]

// SetDefaultMetrics installs the instruments used by terminal operations.
// Passing nil disables metric recording.
func SetDefaultMetrics(m *Metrics) { defaultMetrics.Store(m) }

// DefaultMetrics returns the installed instruments, or nil.
func DefaultMetrics() *Metrics { return defaultMetrics.Load() }
