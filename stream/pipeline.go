package stream

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/streamkit/errors"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Mode selects how a pipeline is evaluated by its terminal operation.
type Mode int

const (
	// ModeSequential pulls one element at a time on the caller's goroutine.
	ModeSequential Mode = iota
	// ModeParallel fans element-wise work out to an executor.
	ModeParallel
)

func (m Mode) String() string {
	if m == ModeParallel {
		return "parallel"
	}
	return "sequential"
}

// lineage is the type-erased view of a pipeline used to walk and claim the
// chain of pipelines a terminal operation consumes.
type lineage interface {
	tryClaim() bool
	isConsumed() bool
	upstream() []lineage
}

// Pipeline is a lazy, single-use sequence of values.
// No work happens until a terminal operation such as Collect, Count or
// Reduce pulls values. Intermediate operations return a new Pipeline and
// never evaluate anything.
//
// A Pipeline may be consumed by at most one terminal operation. Deriving a
// pipeline links it to its upstream: once the derived pipeline is evaluated
// the upstream is consumed too.
type Pipeline[T any] struct {
	id      string
	plan    []string
	parents []lineage
	create  func(ctx context.Context, run *evalContext) Iterator[T]

	bounded bool
	err     error
	mode    Mode
	par     parallelOptions

	consumed atomic.Bool
}

// ID returns the identifier attached to this pipeline's logs and spans.
func (p *Pipeline[T]) ID() string { return p.id }

// Plan returns the ordered stage descriptors, source first, e.g.
// ["generate", "skip(3)", "limit(3)", "map"].
func (p *Pipeline[T]) Plan() []string { return slices.Clone(p.plan) }

// Mode reports the evaluation mode.
func (p *Pipeline[T]) Mode() Mode { return p.mode }

// IsParallel reports whether the pipeline evaluates in parallel mode.
func (p *Pipeline[T]) IsParallel() bool { return p.mode == ModeParallel }

// IsBounded reports whether the pipeline is known to be finite.
func (p *Pipeline[T]) IsBounded() bool { return p.bounded }

// Err returns the construction error the terminal operation will report,
// if any.
func (p *Pipeline[T]) Err() error { return p.err }

func (p *Pipeline[T]) tryClaim() bool      { return p.consumed.CompareAndSwap(false, true) }
func (p *Pipeline[T]) isConsumed() bool    { return p.consumed.Load() }
func (p *Pipeline[T]) upstream() []lineage { return p.parents }

// claim marks p and every pipeline it was derived from as consumed.
func (p *Pipeline[T]) claim() error {
	if !p.tryClaim() {
		return errors.AlreadyConsumed(p.id)
	}
	upErr := claimUpstream(p.parents)
	if p.err != nil {
		return p.err
	}
	return upErr
}

func claimUpstream(parents []lineage) error {
	var first error
	for _, u := range parents {
		if !u.tryClaim() {
			if first == nil {
				first = errors.InvalidState("upstream pipeline has already been operated upon or consumed")
			}
			continue
		}
		if err := claimUpstream(u.upstream()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// open claims p and returns its iterator, evaluated sequentially.
func (p *Pipeline[T]) open(ctx context.Context) (Iterator[T], error) {
	if err := p.claim(); err != nil {
		return nil, err
	}
	return p.create(ctx, sequentialRun), nil
}

func source[T any](op string, bounded bool, create func(ctx context.Context, run *evalContext) Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{
		id:      uuid.NewString(),
		plan:    []string{op},
		create:  create,
		bounded: bounded,
	}
}

// derive builds a pipeline one stage downstream of p. The new pipeline
// inherits p's boundedness, deferred error and evaluation mode.
func derive[I, O any](p *Pipeline[I], op string, create func(ctx context.Context, run *evalContext) Iterator[O]) *Pipeline[O] {
	return &Pipeline[O]{
		id:      uuid.NewString(),
		plan:    append(slices.Clone(p.plan), op),
		parents: []lineage{p},
		create:  create,
		bounded: p.bounded,
		err:     p.err,
		mode:    p.mode,
		par:     p.par,
	}
}

// --- Constructors ---

// Of creates a pipeline over the given values, in order.
func Of[T any](items ...T) *Pipeline[T] {
	return source("of", true, func(_ context.Context, _ *evalContext) Iterator[T] {
		return &sliceIter[T]{items: items}
	})
}

// FromSlice creates a pipeline over a slice of values. The slice is read,
// never modified.
func FromSlice[T any](items []T) *Pipeline[T] {
	return source("from_slice", true, func(_ context.Context, _ *evalContext) Iterator[T] {
		return &sliceIter[T]{items: items}
	})
}

// Empty creates a pipeline with no values.
func Empty[T any]() *Pipeline[T] {
	return source("empty", true, func(_ context.Context, _ *evalContext) Iterator[T] {
		return &sliceIter[T]{}
	})
}

// Generate creates an unbounded pipeline; every pull calls fn. Combine it with
// Limit before any operation that needs the whole input.
func Generate[T any](fn func() T) *Pipeline[T] {
	return source("generate", false, func(_ context.Context, _ *evalContext) Iterator[T] {
		return &generateIter[T]{fn: fn}
	})
}

// Iterate creates an unbounded pipeline seed, next(seed), next(next(seed)), ...
func Iterate[T any](seed T, next func(T) T) *Pipeline[T] {
	return source("iterate", false, func(_ context.Context, _ *evalContext) Iterator[T] {
		return &iterateIter[T]{cur: seed, next: next}
	})
}

// From creates a pipeline from an existing Iterator. The iterator is assumed
// to be finite.
func From[T any](it Iterator[T]) *Pipeline[T] {
	return source("from", true, func(_ context.Context, _ *evalContext) Iterator[T] {
		return it
	})
}

// FromSeq creates a pipeline from a range-over-func sequence. The sequence is
// assumed to be finite.
func FromSeq[T any](seq iter.Seq[T]) *Pipeline[T] {
	return source("from_seq", true, func(_ context.Context, _ *evalContext) Iterator[T] {
		next, stop := iter.Pull(seq)
		return &seqIter[T]{next: next, stop: stop}
	})
}

// Concat creates a pipeline that yields all of a, then all of b.
//
// If either operand has already been consumed, the terminal operation of the
// result fails with INVALID_STATE. Evaluating the result consumes both
// operands. The result is bounded only when both operands are, and parallel
// when either is.
func Concat[T any](a, b *Pipeline[T]) *Pipeline[T] {
	p := &Pipeline[T]{
		id:      uuid.NewString(),
		plan:    []string{"concat"},
		parents: []lineage{a, b},
		bounded: a.bounded && b.bounded,
		err:     cmp.Or(a.err, b.err),
		mode:    a.mode,
		par:     a.par,
	}
	if b.mode == ModeParallel && a.mode != ModeParallel {
		p.mode, p.par = b.mode, b.par
	}
	if a.isConsumed() || b.isConsumed() {
		p.err = errors.InvalidState("concatenated pipeline has already been operated upon or consumed")
	}
	p.create = func(ctx context.Context, run *evalContext) Iterator[T] {
		return &concatIter[T]{parts: []func() Iterator[T]{
			func() Iterator[T] { return a.create(ctx, run) },
			func() Iterator[T] { return b.create(ctx, run) },
		}}
	}
	return p
}

// --- Source iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type generateIter[T any] struct {
	fn func() T
}

func (it *generateIter[T]) Next(_ context.Context) (T, bool, error) {
	return it.fn(), true, nil
}

func (it *generateIter[T]) Close() error { return nil }

type iterateIter[T any] struct {
	cur     T
	next    func(T) T
	started bool
}

func (it *iterateIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.started {
		it.cur = it.next(it.cur)
	}
	it.started = true
	return it.cur, true, nil
}

func (it *iterateIter[T]) Close() error { return nil }

type seqIter[T any] struct {
	next func() (T, bool)
	stop func()
}

func (it *seqIter[T]) Next(_ context.Context) (T, bool, error) {
	v, ok := it.next()
	return v, ok, nil
}

func (it *seqIter[T]) Close() error {
	it.stop()
	return nil
}

type concatIter[T any] struct {
	parts   []func() Iterator[T]
	current Iterator[T]
	opened  []Iterator[T]
}

func (it *concatIter[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		if it.current == nil {
			if len(it.parts) == 0 {
				var zero T
				return zero, false, nil
			}
			it.current = it.parts[0]()
			it.parts = it.parts[1:]
			it.opened = append(it.opened, it.current)
		}
		val, ok, err := it.current.Next(ctx)
		if err != nil {
			var zero T
			return zero, false, err
		}
		if ok {
			return val, true, nil
		}
		it.current = nil
	}
}

func (it *concatIter[T]) Close() error {
	var first error
	for _, o := range it.opened {
		if err := o.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
