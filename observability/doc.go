// Package observability provides OpenTelemetry tracing and metrics for
// pipeline terminal operations.
//
// Tracing:
//
//	svc := observability.Service{Name: "streamkit", Version: version.Version}
//	tp, err := observability.InitTracer(ctx, &observability.TracerConfig{
//		Service:    svc,
//		Collector:  observability.Collector{Endpoint: "localhost:4318", Insecure: true},
//		SampleRate: 1,
//	})
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &observability.MeterConfig{Service: svc, Collector: col})
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("streamkit"))
//	observability.SetDefaultMetrics(metrics)
//
// Terminal operations use a Terminal tracker. A failed terminal ends its span
// with status Error and the error code as description:
//
//	t := observability.NewTerminal("count", id, "sequential", plan, observability.DefaultMetrics())
//	ctx, span := t.Start(ctx)
//	n, err := run(ctx)
//	t.End(ctx, span, n, code, err)
package observability
