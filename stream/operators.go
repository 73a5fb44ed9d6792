package stream

import (
	"cmp"
	"context"
	stderrors "errors"
	"fmt"
	"slices"

	"github.com/kbukum/streamkit/errors"
)

// stepFunc transforms one element. keep=false drops the element.
type stepFunc[I, O any] func(ctx context.Context, v I) (out O, keep bool, err error)

// stage derives an element-wise stage. In parallel mode the stage pulls a
// batch from upstream and runs step for each element on the executor.
func stage[I, O any](p *Pipeline[I], op string, step stepFunc[I, O]) *Pipeline[O] {
	return derive(p, op, func(ctx context.Context, run *evalContext) Iterator[O] {
		src := p.create(ctx, run)
		if run.parallel() {
			return &batchIter[I, O]{source: src, step: step, run: run}
		}
		return &stepIter[I, O]{source: src, step: step}
	})
}

// Filter keeps only values that satisfy the predicate.
func Filter[T any](p *Pipeline[T], pred func(T) bool) *Pipeline[T] {
	return stage(p, "filter", func(_ context.Context, v T) (T, bool, error) {
		return v, pred(v), nil
	})
}

// Map transforms each value using fn.
func Map[I, O any](p *Pipeline[I], fn func(I) O) *Pipeline[O] {
	return stage(p, "map", func(_ context.Context, v I) (O, bool, error) {
		return fn(v), true, nil
	})
}

// TryMap transforms each value using a fallible fn. The first error aborts
// the terminal operation and is returned unchanged.
func TryMap[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return stage(p, "try_map", func(ctx context.Context, v I) (O, bool, error) {
		out, err := fn(ctx, v)
		return out, err == nil, err
	})
}

// TryFilter keeps values for which a fallible predicate reports true.
func TryFilter[T any](p *Pipeline[T], pred func(context.Context, T) (bool, error)) *Pipeline[T] {
	return stage(p, "try_filter", func(ctx context.Context, v T) (T, bool, error) {
		keep, err := pred(ctx, v)
		return v, keep, err
	})
}

// Peek calls fn for each value as it passes, leaving the value unchanged.
func Peek[T any](p *Pipeline[T], fn func(T)) *Pipeline[T] {
	return stage(p, "peek", func(_ context.Context, v T) (T, bool, error) {
		fn(v)
		return v, true, nil
	})
}

// FlatMap replaces each value with the values of the pipeline fn returns,
// outer order first, then inner order. Every inner pipeline is consumed; one
// that was consumed before fails the terminal with INVALID_STATE. A nil inner
// pipeline contributes nothing.
//
// The result is bounded when p is. Inner pipelines are only known during
// evaluation, so an unbounded inner pipeline feeding Sorted without a Limit in
// between fails the terminal with UNBOUNDED_SORT when it is reached.
func FlatMap[I, O any](p *Pipeline[I], fn func(I) *Pipeline[O]) *Pipeline[O] {
	return derive(p, "flat_map", func(ctx context.Context, run *evalContext) Iterator[O] {
		return &flatMapIter[I, O]{source: p.create(ctx, run), fn: fn}
	})
}

// Limit truncates the pipeline to at most n values. Once n values have been
// produced upstream is never pulled again, so Limit makes an unbounded
// pipeline bounded. A negative n fails the terminal with INVALID_ARGUMENT.
//
// In parallel mode the batch size of upstream stages is lowered to n, so a
// parallel stage directly upstream of Limit evaluates at most n values. Stages
// further upstream of a Filter or Skip may still run ahead by one batch.
func Limit[T any](p *Pipeline[T], n int64) *Pipeline[T] {
	q := derive(p, fmt.Sprintf("limit(%d)", n), func(ctx context.Context, run *evalContext) Iterator[T] {
		return &limitIter[T]{source: p.create(ctx, run.capped(n)), remaining: n}
	})
	q.bounded = true
	if n < 0 && q.err == nil {
		q.err = errors.InvalidArgument("limit", fmt.Sprintf("count must not be negative, got %d", n))
	}
	return q
}

// Skip discards the first n values. A negative n fails the terminal with
// INVALID_ARGUMENT.
func Skip[T any](p *Pipeline[T], n int64) *Pipeline[T] {
	q := derive(p, fmt.Sprintf("skip(%d)", n), func(ctx context.Context, run *evalContext) Iterator[T] {
		return &skipIter[T]{source: p.create(ctx, run), remaining: n}
	})
	if n < 0 && q.err == nil {
		q.err = errors.InvalidArgument("skip", fmt.Sprintf("count must not be negative, got %d", n))
	}
	return q
}

// Distinct drops values equal to one seen earlier, keeping first occurrences
// in order. The seen-set lives for a single evaluation.
func Distinct[T comparable](p *Pipeline[T]) *Pipeline[T] {
	bounded := p.bounded
	return derive(p, "distinct", func(ctx context.Context, run *evalContext) Iterator[T] {
		src := p.create(ctx, run)
		if run.parallel() && bounded {
			return &barrierIter[T]{source: src, finish: func(ctx context.Context, items []T) ([]T, error) {
				return parallelDistinct(ctx, run, items)
			}}
		}
		return &distinctIter[T]{source: src, seen: make(map[T]struct{})}
	})
}

// Sorted buffers every value and yields them ordered by cmp. The sort is
// stable. Sorting a pipeline that is unbounded (Generate or Iterate without a
// Limit) fails the terminal with UNBOUNDED_SORT before any value is pulled.
func Sorted[T any](p *Pipeline[T], cmp func(a, b T) int) *Pipeline[T] {
	q := derive(p, "sorted", func(ctx context.Context, run *evalContext) Iterator[T] {
		return &barrierIter[T]{source: p.create(ctx, run), sorting: true, finish: func(ctx context.Context, items []T) ([]T, error) {
			if run.parallel() {
				return parallelSort(ctx, run, items, cmp)
			}
			slices.SortStableFunc(items, cmp)
			return items, nil
		}}
	})
	if !p.bounded && q.err == nil {
		q.err = errors.UnboundedSort()
	}
	return q
}

// sortingKey marks a context that drains the upstream of a Sorted barrier.
// Limit clears it for its own upstream.
type sortingKey struct{}

func underSort(ctx context.Context) bool {
	v, _ := ctx.Value(sortingKey{}).(bool)
	return v
}

// SortedNatural sorts values in their natural ascending order.
func SortedNatural[T cmp.Ordered](p *Pipeline[T]) *Pipeline[T] {
	return Sorted(p, cmp.Compare[T])
}

// NaturalOrder returns the ascending comparator for ordered types.
func NaturalOrder[T cmp.Ordered]() func(a, b T) int {
	return cmp.Compare[T]
}

// ReverseOrder returns the descending comparator for ordered types.
func ReverseOrder[T cmp.Ordered]() func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(b, a) }
}

// Comparing returns a comparator ordering values by the key fn extracts.
func Comparing[T any, K cmp.Ordered](key func(T) K) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(key(a), key(b)) }
}

// Reversed inverts a comparator.
func Reversed[T any](c func(a, b T) int) func(a, b T) int {
	return func(a, b T) int { return c(b, a) }
}

// --- Iterator implementations ---

type stepIter[I, O any] struct {
	source Iterator[I]
	step   stepFunc[I, O]
}

func (it *stepIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		out, keep, err := it.step(ctx, val)
		if err != nil {
			return zero, false, err
		}
		if keep {
			return out, true, nil
		}
	}
}

func (it *stepIter[I, O]) Close() error { return it.source.Close() }

type flatMapIter[I, O any] struct {
	source  Iterator[I]
	fn      func(I) *Pipeline[O]
	current Iterator[O]
}

func (it *flatMapIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	for {
		if it.current != nil {
			val, ok, err := it.current.Next(ctx)
			if err != nil {
				return zero, false, err
			}
			if ok {
				return val, true, nil
			}
			err = it.current.Close()
			it.current = nil
			if err != nil {
				return zero, false, err
			}
		}

		outer, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		inner := it.fn(outer)
		if inner == nil {
			continue
		}
		if !inner.bounded && underSort(ctx) {
			return zero, false, errors.UnboundedSort().WithDetail("source", "flat_map")
		}
		cur, err := inner.open(ctx)
		if errors.HasCode(err, errors.ErrCodeAlreadyConsumed) {
			return zero, false, errors.InvalidState("inner pipeline has already been operated upon or consumed").WithCause(err)
		}
		if err != nil {
			return zero, false, err
		}
		it.current = cur
	}
}

func (it *flatMapIter[I, O]) Close() error {
	var errs []error
	if it.current != nil {
		errs = append(errs, it.current.Close())
	}
	errs = append(errs, it.source.Close())
	return stderrors.Join(errs...)
}

type limitIter[T any] struct {
	source    Iterator[T]
	remaining int64
}

func (it *limitIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.remaining <= 0 {
		var zero T
		return zero, false, nil
	}
	if underSort(ctx) {
		ctx = context.WithValue(ctx, sortingKey{}, false)
	}
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return val, false, err
	}
	it.remaining--
	return val, true, nil
}

func (it *limitIter[T]) Close() error { return it.source.Close() }

type skipIter[T any] struct {
	source    Iterator[T]
	remaining int64
}

func (it *skipIter[T]) Next(ctx context.Context) (T, bool, error) {
	for it.remaining > 0 {
		_, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			var zero T
			return zero, false, err
		}
		it.remaining--
	}
	return it.source.Next(ctx)
}

func (it *skipIter[T]) Close() error { return it.source.Close() }

type distinctIter[T comparable] struct {
	source Iterator[T]
	seen   map[T]struct{}
}

func (it *distinctIter[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		if _, dup := it.seen[val]; dup {
			continue
		}
		it.seen[val] = struct{}{}
		return val, true, nil
	}
}

func (it *distinctIter[T]) Close() error { return it.source.Close() }

// barrierIter drains its source on the first pull, hands the buffered values
// to finish, then yields the result.
type barrierIter[T any] struct {
	source  Iterator[T]
	sorting bool
	finish  func(ctx context.Context, items []T) ([]T, error)
	items  []T
	pos    int
	filled bool
}

func (it *barrierIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if !it.filled {
		it.filled = true
		upstream := ctx
		if it.sorting {
			upstream = context.WithValue(ctx, sortingKey{}, true)
		}
		items, err := drain(upstream, it.source)
		if err != nil {
			return zero, false, err
		}
		if it.items, err = it.finish(ctx, items); err != nil {
			return zero, false, err
		}
	}
	if it.pos >= len(it.items) {
		return zero, false, nil
	}
	val := it.items[it.pos]
	it.pos++
	return val, true, nil
}

func (it *barrierIter[T]) Close() error { return it.source.Close() }

// drain pulls every remaining value from it.
func drain[T any](ctx context.Context, it Iterator[T]) ([]T, error) {
	var items []T
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		val, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, val)
	}
}
