package stream

import (
	"context"
	"slices"
)

// batchIter is the parallel form of an element-wise stage. It pulls up to
// run.batchSize values, runs step for each on the executor, and yields the
// kept results in source order.
type batchIter[I, O any] struct {
	source Iterator[I]
	step   stepFunc[I, O]
	run    *evalContext

	in   []I
	out  []O
	pos  int
	done bool
}

func (it *batchIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	for it.pos >= len(it.out) {
		if it.done {
			var zero O
			return zero, false, nil
		}
		if err := it.fill(ctx); err != nil {
			var zero O
			return zero, false, err
		}
	}
	val := it.out[it.pos]
	it.pos++
	return val, true, nil
}

func (it *batchIter[I, O]) fill(ctx context.Context) error {
	var err error
	it.in, it.done, err = pullBatch(ctx, it.source, it.run.batchSize, it.in[:0])
	if err != nil {
		return err
	}
	it.out, it.pos = it.out[:0], 0
	if len(it.in) == 0 {
		return nil
	}

	results := make([]O, len(it.in))
	keep := make([]bool, len(it.in))
	err = it.run.exec.Execute(ctx, len(it.in), func(ctx context.Context, i int) error {
		out, k, err := it.step(ctx, it.in[i])
		results[i], keep[i] = out, k
		return err
	})
	if err != nil {
		return err
	}
	for i, r := range results {
		if keep[i] {
			it.out = append(it.out, r)
		}
	}
	return nil
}

func (it *batchIter[I, O]) Close() error { return it.source.Close() }

// pullBatch appends up to size values from it to buf. done reports that the
// source is exhausted.
func pullBatch[T any](ctx context.Context, it Iterator[T], size int, buf []T) (batch []T, done bool, err error) {
	for len(buf) < size {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		val, ok, err := it.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return buf, true, nil
		}
		buf = append(buf, val)
	}
	return buf, false, nil
}

type bounds struct{ lo, hi int }

// chunks splits n items into at most parts contiguous, near-equal spans.
func chunks(n, parts int) []bounds {
	if n == 0 {
		return nil
	}
	parts = max(1, min(parts, n))
	out := make([]bounds, 0, parts)
	size, rem := n/parts, n%parts
	lo := 0
	for i := range parts {
		hi := lo + size
		if i < rem {
			hi++
		}
		out = append(out, bounds{lo, hi})
		lo = hi
	}
	return out
}

// parallelDistinct deduplicates chunks concurrently, then merges them in
// order so the result matches a sequential pass.
func parallelDistinct[T comparable](ctx context.Context, run *evalContext, items []T) ([]T, error) {
	parts := chunks(len(items), run.exec.Workers())
	local := make([][]T, len(parts))
	err := run.exec.Execute(ctx, len(parts), func(_ context.Context, i int) error {
		seen := make(map[T]struct{})
		for _, v := range items[parts[i].lo:parts[i].hi] {
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				local[i] = append(local[i], v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[T]struct{})
	out := make([]T, 0, len(items))
	for _, part := range local {
		for _, v := range part {
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// parallelSort stable-sorts chunks concurrently, then merges the runs left to
// right. Ties keep the earlier run's element first, so the result equals a
// sequential stable sort.
func parallelSort[T any](ctx context.Context, run *evalContext, items []T, cmp func(a, b T) int) ([]T, error) {
	parts := chunks(len(items), run.exec.Workers())
	err := run.exec.Execute(ctx, len(parts), func(_ context.Context, i int) error {
		slices.SortStableFunc(items[parts[i].lo:parts[i].hi], cmp)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var merged []T
	for _, s := range parts {
		merged = mergeRuns(merged, items[s.lo:s.hi], cmp)
	}
	return merged, nil
}

func mergeRuns[T any](a, b []T, cmp func(a, b T) int) []T {
	out := make([]T, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if cmp(b[j], a[i]) < 0 {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// parallelFold folds each chunk of batch from identity concurrently and
// returns the partial results in chunk order.
func parallelFold[T any](ctx context.Context, run *evalContext, batch []T, identity T, combiner func(T, T) T) ([]T, error) {
	parts := chunks(len(batch), run.exec.Workers())
	partials := make([]T, len(parts))
	err := run.exec.Execute(ctx, len(parts), func(_ context.Context, i int) error {
		acc := identity
		for _, v := range batch[parts[i].lo:parts[i].hi] {
			acc = combiner(acc, v)
		}
		partials[i] = acc
		return nil
	})
	return partials, err
}
