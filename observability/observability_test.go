package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return rec
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordTerminal(ctx, "collect", "sequential", StatusOK, 4, 10*time.Millisecond)
	metrics.RecordError(ctx, "DUPLICATE_KEY", "to_map")
}

func TestDefaultMetrics(t *testing.T) {
	t.Cleanup(func() { SetDefaultMetrics(nil) })

	if DefaultMetrics() != nil {
		t.Fatal("expected no default metrics")
	}
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	SetDefaultMetrics(m)
	if DefaultMetrics() != m {
		t.Error("expected installed metrics")
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.rate), func(t *testing.T) {
			if got := samplerFor(tc.rate).Description(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMeter(t *testing.T) {
	meter := Meter("test-meter")
	if meter == nil {
		t.Fatal("expected non-nil meter")
	}
}

func TestStartSpan(t *testing.T) {
	rec := installRecorder(t)

	_, span := StartSpan(context.Background(), "test-operation")
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != "test-operation" {
		t.Errorf("got span name %q", ended[0].Name())
	}
}

func TestTerminal_StartEnd(t *testing.T) {
	rec := installRecorder(t)
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	term := NewTerminal("collect", "pid-1", "parallel", []string{"of", "map"}, metrics)
	ctx, span := term.Start(context.Background())
	term.End(ctx, span, 3, "", nil)

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	s := ended[0]
	if s.Name() != "stream.collect" {
		t.Errorf("got span name %q", s.Name())
	}
	attrs := s.Attributes()
	if v, _ := attrValue(attrs, AttrPipelineID); v.AsString() != "pid-1" {
		t.Errorf("pipeline id = %q", v.AsString())
	}
	if v, _ := attrValue(attrs, AttrMode); v.AsString() != "parallel" {
		t.Errorf("mode = %q", v.AsString())
	}
	if v, _ := attrValue(attrs, AttrElements); v.AsInt64() != 3 {
		t.Errorf("elements = %d", v.AsInt64())
	}
	if v, _ := attrValue(attrs, AttrStatus); v.AsString() != StatusOK {
		t.Errorf("status = %q", v.AsString())
	}
	if v, _ := attrValue(attrs, AttrPlan); len(v.AsStringSlice()) != 2 {
		t.Errorf("plan = %v", v.AsStringSlice())
	}
}

func TestTerminal_EndWithError(t *testing.T) {
	rec := installRecorder(t)

	term := NewTerminal("to_map", "pid-2", "sequential", nil, nil)
	ctx, span := term.Start(context.Background())
	term.End(ctx, span, 0, "DUPLICATE_KEY", fmt.Errorf("duplicate key 1"))

	s := rec.Ended()[0]
	if v, _ := attrValue(s.Attributes(), AttrStatus); v.AsString() != StatusError {
		t.Errorf("status = %q", v.AsString())
	}
	if v, _ := attrValue(s.Attributes(), AttrErrorMessage); v.AsString() != "duplicate key 1" {
		t.Errorf("error message = %q", v.AsString())
	}
	if v, _ := attrValue(s.Attributes(), AttrErrorCode); v.AsString() != "DUPLICATE_KEY" {
		t.Errorf("error code = %q", v.AsString())
	}
	if s.Status().Code != codes.Error || s.Status().Description != "DUPLICATE_KEY" {
		t.Errorf("unexpected span status %+v", s.Status())
	}
	if events := s.Events(); len(events) != 1 || events[0].Name != "exception" {
		t.Errorf("expected one exception event, got %v", events)
	}
	if _, ok := attrValue(s.Attributes(), AttrPlan); ok {
		t.Error("empty plan should not be recorded")
	}
}

func TestTerminal_SuccessLeavesStatusUnset(t *testing.T) {
	rec := installRecorder(t)

	term := NewTerminal("count", "pid-3", "sequential", nil, nil)
	ctx, span := term.Start(context.Background())
	term.End(ctx, span, 1, "", nil)

	s := rec.Ended()[0]
	if s.Status().Code != codes.Unset {
		t.Errorf("expected unset status, got %+v", s.Status())
	}
	if _, ok := attrValue(s.Attributes(), AttrErrorCode); ok {
		t.Error("successful span should carry no error code")
	}
}

func TestTerminal_Duration(t *testing.T) {
	term := NewTerminal("count", "pid", "sequential", nil, nil)
	time.Sleep(5 * time.Millisecond)
	if term.Duration() < 5*time.Millisecond {
		t.Errorf("duration too short: %v", term.Duration())
	}
}

func TestInitTracer(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		insecure   bool
	}{
		{"always sample", 1.0, true},
		{"never sample", 0.0, true},
		{"ratio based", 0.5, true},
		{"secure", 1.0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prev := otel.GetTracerProvider()
			defer otel.SetTracerProvider(prev)

			cfg := &TracerConfig{
				Service:    Service{Name: "test", Version: "1.0.0", Environment: "test"},
				Collector:  Collector{Endpoint: "localhost:4318", Insecure: tc.insecure},
				SampleRate: tc.sampleRate,
			}
			tp, err := InitTracer(context.Background(), cfg)
			if err != nil {
				t.Fatalf("InitTracer: %v", err)
			}
			_ = tp.Shutdown(context.Background())
		})
	}
}

func TestInitMeter(t *testing.T) {
	prev := otel.GetMeterProvider()
	defer otel.SetMeterProvider(prev)

	cfg := &MeterConfig{
		Service:   Service{Name: "test-service", Version: "1.0.0", Environment: "test"},
		Collector: Collector{Endpoint: "localhost:4318", Insecure: true},
		Interval:  time.Hour,
	}

	mp, err := InitMeter(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitMeter: %v", err)
	}
	// No collector is listening; shutdown may report an export failure.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = mp.Shutdown(ctx)
}

func TestServiceResource(t *testing.T) {
	res, err := Service{Name: "streamkit", Version: "1.2.3", Environment: "staging"}.resource()
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]string{}
	for _, kv := range res.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	if got["service.name"] != "streamkit" || got["service.version"] != "1.2.3" || got["deployment.environment"] != "staging" {
		t.Errorf("unexpected resource attributes: %v", got)
	}
}
