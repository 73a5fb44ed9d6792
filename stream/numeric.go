package stream

import (
	"cmp"
	"context"
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/kbukum/streamkit/optional"
)

// Number is any integer or floating-point type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Range creates the pipeline lo, lo+1, ..., hi-1.
func Range[N constraints.Integer](lo, hi N) *Pipeline[N] {
	return source(fmt.Sprintf("range(%d,%d)", lo, hi), true, func(_ context.Context, _ *evalContext) Iterator[N] {
		return &rangeIter[N]{next: lo, hi: hi, done: lo >= hi}
	})
}

// RangeClosed creates the pipeline lo, lo+1, ..., hi.
func RangeClosed[N constraints.Integer](lo, hi N) *Pipeline[N] {
	return source(fmt.Sprintf("range_closed(%d,%d)", lo, hi), true, func(_ context.Context, _ *evalContext) Iterator[N] {
		return &rangeIter[N]{next: lo, hi: hi, closed: true, done: lo > hi}
	})
}

type rangeIter[N constraints.Integer] struct {
	next, hi N
	closed   bool
	done     bool
}

func (it *rangeIter[N]) Next(_ context.Context) (N, bool, error) {
	if it.done {
		return 0, false, nil
	}
	v := it.next
	switch {
	case it.closed && v == it.hi:
		it.done = true
	case !it.closed && v+1 == it.hi:
		it.done = true
	default:
		it.next++
	}
	return v, true, nil
}

func (it *rangeIter[N]) Close() error { return nil }

// Sum adds up the values. An empty pipeline sums to zero.
func Sum[N Number](ctx context.Context, p *Pipeline[N]) (N, error) {
	return Reduce(ctx, p, 0, func(a, b N) N { return a + b })
}

// Max returns the largest value, or an empty Optional.
func Max[T cmp.Ordered](ctx context.Context, p *Pipeline[T]) (optional.Optional[T], error) {
	return ReduceOptional(ctx, p, func(a, b T) T { return max(a, b) })
}

// Min returns the smallest value, or an empty Optional.
func Min[T cmp.Ordered](ctx context.Context, p *Pipeline[T]) (optional.Optional[T], error) {
	return ReduceOptional(ctx, p, func(a, b T) T { return min(a, b) })
}

// MaxFunc returns the largest value by cmp; the first of equal values wins.
func MaxFunc[T any](ctx context.Context, p *Pipeline[T], cmp func(a, b T) int) (optional.Optional[T], error) {
	return ReduceOptional(ctx, p, func(a, b T) T {
		if cmp(b, a) > 0 {
			return b
		}
		return a
	})
}

// MinFunc returns the smallest value by cmp; the first of equal values wins.
func MinFunc[T any](ctx context.Context, p *Pipeline[T], cmp func(a, b T) int) (optional.Optional[T], error) {
	return ReduceOptional(ctx, p, func(a, b T) T {
		if cmp(b, a) < 0 {
			return b
		}
		return a
	})
}
