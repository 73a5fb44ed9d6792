package stream

import (
	"context"
	"strings"

	"github.com/kbukum/streamkit/errors"
)

// Collect returns every value in order. An empty pipeline yields an empty,
// non-nil slice.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	return runTerminal(ctx, p, "collect", func(ctx context.Context, it Iterator[T], _ *evalContext) ([]T, error) {
		result := make([]T, 0)
		err := each(ctx, it, func(v T) bool { result = append(result, v); return true })
		return result, err
	})
}

// Identity returns the function that returns its argument, for use as a
// ToMap value function.
func Identity[T any]() func(T) T {
	return func(v T) T { return v }
}

// ToMap collects values into a map. Two values producing the same key fail
// with DUPLICATE_KEY; the error details carry the key.
func ToMap[T any, K comparable, V any](ctx context.Context, p *Pipeline[T], keyFn func(T) K, valueFn func(T) V) (map[K]V, error) {
	return runTerminal(ctx, p, "to_map", func(ctx context.Context, it Iterator[T], _ *evalContext) (map[K]V, error) {
		result := make(map[K]V)
		var dupErr error
		err := each(ctx, it, func(v T) bool {
			k := keyFn(v)
			if _, exists := result[k]; exists {
				dupErr = errors.DuplicateKey(k)
				return false
			}
			result[k] = valueFn(v)
			return true
		})
		if err != nil {
			return nil, err
		}
		return result, dupErr
	})
}

// GroupBy collects values into lists keyed by keyFn. Each list keeps the
// order values arrived in.
func GroupBy[T any, K comparable](ctx context.Context, p *Pipeline[T], keyFn func(T) K) (map[K][]T, error) {
	return runTerminal(ctx, p, "group_by", func(ctx context.Context, it Iterator[T], _ *evalContext) (map[K][]T, error) {
		result := make(map[K][]T)
		err := each(ctx, it, func(v T) bool {
			k := keyFn(v)
			result[k] = append(result[k], v)
			return true
		})
		return result, err
	})
}

// Reducer is a downstream reduction applied to each group.
type Reducer[T, A any] struct {
	// Identity returns a fresh accumulator for a new group.
	Identity func() A
	// Accumulate folds one value into the accumulator.
	Accumulate func(A, T) A
}

// Counting counts the values of each group.
func Counting[T any]() Reducer[T, int64] {
	return Reducer[T, int64]{
		Identity:   func() int64 { return 0 },
		Accumulate: func(n int64, _ T) int64 { return n + 1 },
	}
}

// Summing sums fn over the values of each group.
func Summing[T any, N Number](fn func(T) N) Reducer[T, N] {
	return Reducer[T, N]{
		Identity:   func() N { return 0 },
		Accumulate: func(sum N, v T) N { return sum + fn(v) },
	}
}

// Mapping applies fn to each value before handing it to downstream.
func Mapping[T, U, A any](fn func(T) U, downstream Reducer[U, A]) Reducer[T, A] {
	return Reducer[T, A]{
		Identity:   downstream.Identity,
		Accumulate: func(acc A, v T) A { return downstream.Accumulate(acc, fn(v)) },
	}
}

// GroupByReduce groups values by keyFn and reduces each group with downstream.
func GroupByReduce[T any, K comparable, A any](ctx context.Context, p *Pipeline[T], keyFn func(T) K, downstream Reducer[T, A]) (map[K]A, error) {
	return runTerminal(ctx, p, "group_by", func(ctx context.Context, it Iterator[T], _ *evalContext) (map[K]A, error) {
		result := make(map[K]A)
		err := each(ctx, it, func(v T) bool {
			k := keyFn(v)
			acc, ok := result[k]
			if !ok {
				acc = downstream.Identity()
			}
			result[k] = downstream.Accumulate(acc, v)
			return true
		})
		return result, err
	})
}

// Partition holds the values that satisfied a predicate and those that did
// not. Both lists are non-nil.
type Partition[T any] struct {
	True  []T
	False []T
}

// PartitionBy splits values by pred, keeping order within each side.
func PartitionBy[T any](ctx context.Context, p *Pipeline[T], pred func(T) bool) (Partition[T], error) {
	return runTerminal(ctx, p, "partition_by", func(ctx context.Context, it Iterator[T], _ *evalContext) (Partition[T], error) {
		part := Partition[T]{True: make([]T, 0), False: make([]T, 0)}
		err := each(ctx, it, func(v T) bool {
			if pred(v) {
				part.True = append(part.True, v)
			} else {
				part.False = append(part.False, v)
			}
			return true
		})
		return part, err
	})
}

// Joining concatenates the strings with sep between consecutive values.
func Joining(ctx context.Context, p *Pipeline[string], sep string) (string, error) {
	return runTerminal(ctx, p, "joining", func(ctx context.Context, it Iterator[string], _ *evalContext) (string, error) {
		var b strings.Builder
		n := 0
		err := each(ctx, it, func(s string) bool {
			if n > 0 {
				b.WriteString(sep)
			}
			b.WriteString(s)
			n++
			return true
		})
		return b.String(), err
	})
}
