package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Terminal tracks one terminal operation from start to finish.
type Terminal struct {
	Operation  string
	PipelineID string
	Mode       string
	Plan       []string
	StartTime  time.Time
	Metrics    *Metrics
}

// NewTerminal creates a tracker for operation on the given pipeline.
// If metrics is nil, metric recording is silently skipped.
func NewTerminal(operation, pipelineID, mode string, plan []string, metrics *Metrics) *Terminal {
	return &Terminal{
		Operation:  operation,
		PipelineID: pipelineID,
		Mode:       mode,
		Plan:       plan,
		StartTime:  time.Now(),
		Metrics:    metrics,
	}
}

// Start starts the "stream.<operation>" span.
func (t *Terminal) Start(ctx context.Context) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanPrefix+t.Operation)
	span.SetAttributes(
		attribute.String(AttrPipelineID, t.PipelineID),
		attribute.String(AttrOperation, t.Operation),
		attribute.String(AttrMode, t.Mode),
	)
	if len(t.Plan) > 0 {
		span.SetAttributes(attribute.StringSlice(AttrPlan, t.Plan))
	}
	return ctx, span
}

// End ends the span and records the terminal metrics. code is the error code
// reported to the error counter when err is non-nil.
func (t *Terminal) End(ctx context.Context, span trace.Span, elements int64, code string, err error) {
	duration := time.Since(t.StartTime)
	status := StatusOK

	if err != nil {
		status = StatusError
		markFailed(span, code, err)
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrElements, elements),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if t.Metrics != nil {
		t.Metrics.RecordTerminal(ctx, t.Operation, t.Mode, status, elements, duration)
		if err != nil {
			t.Metrics.RecordError(ctx, code, t.Operation)
		}
	}
}

// Duration returns the elapsed time since the operation started.
func (t *Terminal) Duration() time.Duration {
	return time.Since(t.StartTime)
}

// markFailed records err as an exception event and sets the span status to
// Error with the error code as description.
func markFailed(span trace.Span, code string, err error) {
	span.RecordError(err, trace.WithAttributes(attribute.String(AttrErrorCode, code)))
	span.SetStatus(codes.Error, code)
	span.SetAttributes(
		attribute.String(AttrErrorCode, code),
		attribute.String(AttrErrorMessage, err.Error()),
	)
}
