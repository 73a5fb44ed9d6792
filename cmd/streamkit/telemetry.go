package main

import (
	"context"

	"github.com/kbukum/streamkit/config"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/version"
)

// initTelemetry starts the OTLP trace and metric pipelines and installs the
// stream metrics. It returns the shutdown hooks in start order.
func initTelemetry(ctx context.Context, cfg *config.AppConfig) ([]func(context.Context) error, error) {
	tc := cfg.Telemetry
	svc := observability.Service{Name: cfg.Name, Version: version.Version, Environment: cfg.Environment}
	col := observability.Collector{Endpoint: tc.Endpoint, Insecure: tc.Insecure}

	tp, err := observability.InitTracer(ctx, &observability.TracerConfig{Service: svc, Collector: col, SampleRate: tc.SampleRate})
	if err != nil {
		return nil, err
	}

	mp, err := observability.InitMeter(ctx, &observability.MeterConfig{Service: svc, Collector: col, Interval: tc.Interval})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	metrics, err := observability.NewMetrics(observability.Meter("github.com/kbukum/streamkit/stream"))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, err
	}
	observability.SetDefaultMetrics(metrics)

	return []func(context.Context) error{tp.Shutdown, mp.Shutdown}, nil
}
