package stream

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/optional"
)

const component = "stream"

var componentLogger atomic.Pointer[logger.Logger]

// SetLogger sets the logger terminal operations report to. Passing nil
// restores the "stream" logger from the logger registry.
func SetLogger(l *logger.Logger) { componentLogger.Store(l) }

func streamLogger() *logger.Logger {
	if l := componentLogger.Load(); l != nil {
		return l
	}
	return logger.Get(component)
}

// runTerminal claims p, evaluates it through body and reports the outcome.
// On failure the zero R is returned; no partial result escapes. The pipeline
// stays consumed whatever the outcome.
func runTerminal[T, R any](ctx context.Context, p *Pipeline[T], op string, body func(context.Context, Iterator[T], *evalContext) (R, error)) (result R, err error) {
	tracker := observability.NewTerminal(op, p.id, p.mode.String(), p.plan, observability.DefaultMetrics())
	ctx = logger.ContextWithPipelineID(ctx, p.id)
	ctx, span := tracker.Start(ctx)

	var (
		counted int64
		it      *countingIter[T]
	)
	defer func() {
		if r := recover(); r != nil {
			if it != nil {
				// Release sources such as FromSeq's pull goroutine before unwinding.
				_ = it.Close()
			}
			finish(ctx, p, tracker, span, counted, fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	if err = p.claim(); err != nil {
		finish(ctx, p, tracker, span, 0, err)
		return result, err
	}

	run := p.evalContext()
	it = &countingIter[T]{source: p.create(ctx, run), n: &counted}
	result, err = body(ctx, it, run)
	if cerr := it.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		var zero R
		result = zero
	}
	finish(ctx, p, tracker, span, counted, err)
	return result, err
}

type stats interface {
	Plan() []string
	Mode() Mode
}

func finish(ctx context.Context, p stats, tracker *observability.Terminal, span trace.Span, elements int64, err error) {
	tracker.End(ctx, span, elements, errorCode(err), err)

	log := streamLogger()
	if err == nil && !log.Enabled(zerolog.DebugLevel) {
		return
	}
	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError
	}
	fields := logger.Fields(
		logger.FieldOperation, tracker.Operation,
		logger.FieldStatus, status,
		logger.FieldMode, p.Mode().String(),
		logger.FieldPlan, strings.Join(p.Plan(), " -> "),
		logger.FieldElements, elements,
	)
	fields = logger.MergeWithDuration(fields, tracker.Duration())
	log = log.WithContext(ctx)
	if err != nil {
		log.Warn("terminal operation failed", logger.MergeWithError(fields, err))
		return
	}
	log.Debug("terminal operation completed", fields)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, context.Canceled):
		return "CANCELED"
	case stderrors.Is(err, context.DeadlineExceeded):
		return "DEADLINE_EXCEEDED"
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return "USER"
}

type countingIter[T any] struct {
	source Iterator[T]
	n      *int64
}

func (it *countingIter[T]) Next(ctx context.Context) (T, bool, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, false, err
	}
	val, ok, err := it.source.Next(ctx)
	if ok && err == nil {
		*it.n++
	}
	return val, ok, err
}

func (it *countingIter[T]) Close() error { return it.source.Close() }

// each calls fn for every value of it until fn returns false.
func each[T any](ctx context.Context, it Iterator[T], fn func(T) bool) error {
	for {
		val, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok || !fn(val) {
			return nil
		}
	}
}

// --- Terminals ---

// Count returns the number of values.
func Count[T any](ctx context.Context, p *Pipeline[T]) (int64, error) {
	return runTerminal(ctx, p, "count", func(ctx context.Context, it Iterator[T], _ *evalContext) (int64, error) {
		var n int64
		err := each(ctx, it, func(T) bool { n++; return true })
		return n, err
	})
}

// ForEach calls fn for every value. Sequential pipelines call fn in source
// order on the caller's goroutine; parallel pipelines call it concurrently in
// unspecified order.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(T)) error {
	_, err := runTerminal(ctx, p, "for_each", func(ctx context.Context, it Iterator[T], run *evalContext) (struct{}, error) {
		if !run.parallel() {
			return struct{}{}, each(ctx, it, func(v T) bool { fn(v); return true })
		}
		var batch []T
		for {
			var done bool
			var err error
			batch, done, err = pullBatch(ctx, it, run.batchSize, batch[:0])
			if err != nil {
				return struct{}{}, err
			}
			err = run.exec.Execute(ctx, len(batch), func(_ context.Context, i int) error {
				fn(batch[i])
				return nil
			})
			if err != nil {
				return struct{}{}, err
			}
			if done {
				return struct{}{}, nil
			}
		}
	})
	return err
}

// Reduce folds the values into one using identity and an associative
// combiner. identity must satisfy combiner(identity, x) == x. In parallel mode
// chunks are folded concurrently and the partial results combined in order.
func Reduce[T any](ctx context.Context, p *Pipeline[T], identity T, combiner func(T, T) T) (T, error) {
	return runTerminal(ctx, p, "reduce", func(ctx context.Context, it Iterator[T], run *evalContext) (T, error) {
		acc := identity
		if !run.parallel() {
			err := each(ctx, it, func(v T) bool { acc = combiner(acc, v); return true })
			return acc, err
		}
		var batch []T
		for {
			var done bool
			var err error
			batch, done, err = pullBatch(ctx, it, run.batchSize, batch[:0])
			if err != nil {
				return acc, err
			}
			partials, err := parallelFold(ctx, run, batch, identity, combiner)
			if err != nil {
				return acc, err
			}
			for _, part := range partials {
				acc = combiner(acc, part)
			}
			if done {
				return acc, nil
			}
		}
	})
}

// ReduceOptional folds the values with combiner and no identity. It returns
// an empty Optional for an empty pipeline.
func ReduceOptional[T any](ctx context.Context, p *Pipeline[T], combiner func(T, T) T) (optional.Optional[T], error) {
	return runTerminal(ctx, p, "reduce", func(ctx context.Context, it Iterator[T], _ *evalContext) (optional.Optional[T], error) {
		acc := optional.Empty[T]()
		err := each(ctx, it, func(v T) bool {
			if cur, ok := acc.Get(); ok {
				acc = optional.Of(combiner(cur, v))
			} else {
				acc = optional.Of(v)
			}
			return true
		})
		return acc, err
	})
}

// Fold is a sequential left fold into a result of a different type.
func Fold[T, R any](ctx context.Context, p *Pipeline[T], init R, fn func(R, T) R) (R, error) {
	return runTerminal(ctx, p, "fold", func(ctx context.Context, it Iterator[T], _ *evalContext) (R, error) {
		acc := init
		err := each(ctx, it, func(v T) bool { acc = fn(acc, v); return true })
		return acc, err
	})
}

func first[T any](ctx context.Context, p *Pipeline[T], op string) (optional.Optional[T], error) {
	return runTerminal(ctx, p, op, func(ctx context.Context, it Iterator[T], _ *evalContext) (optional.Optional[T], error) {
		val, ok, err := it.Next(ctx)
		return optional.OfOK(val, ok), err
	})
}

// FindFirst returns the first value, or an empty Optional. Nothing past the
// first value is pulled.
func FindFirst[T any](ctx context.Context, p *Pipeline[T]) (optional.Optional[T], error) {
	return first(ctx, p, "find_first")
}

// FindAny returns some value, or an empty Optional. Sequential pipelines
// return the first value.
func FindAny[T any](ctx context.Context, p *Pipeline[T]) (optional.Optional[T], error) {
	return first(ctx, p, "find_any")
}

func match[T any](ctx context.Context, p *Pipeline[T], op string, pred func(T) bool, stopOn, result bool) (bool, error) {
	return runTerminal(ctx, p, op, func(ctx context.Context, it Iterator[T], _ *evalContext) (bool, error) {
		found := false
		err := each(ctx, it, func(v T) bool {
			if pred(v) == stopOn {
				found = true
				return false
			}
			return true
		})
		if found {
			return result, err
		}
		return !result, err
	})
}

// AnyMatch reports whether any value satisfies pred, stopping at the first one.
func AnyMatch[T any](ctx context.Context, p *Pipeline[T], pred func(T) bool) (bool, error) {
	return match(ctx, p, "any_match", pred, true, true)
}

// AllMatch reports whether every value satisfies pred. It is true for an
// empty pipeline.
func AllMatch[T any](ctx context.Context, p *Pipeline[T], pred func(T) bool) (bool, error) {
	return match(ctx, p, "all_match", pred, false, false)
}

// NoneMatch reports whether no value satisfies pred. It is true for an empty
// pipeline.
func NoneMatch[T any](ctx context.Context, p *Pipeline[T], pred func(T) bool) (bool, error) {
	return match(ctx, p, "none_match", pred, true, false)
}
