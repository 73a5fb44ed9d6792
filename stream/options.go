package stream

import "github.com/kbukum/streamkit/executor"

// DefaultBatchSize is the number of elements a parallel stage pulls from
// upstream before fanning them out.
const DefaultBatchSize = 64

type parallelOptions struct {
	executor  executor.Executor
	batchSize int
}

// Option configures parallel evaluation.
type Option func(*parallelOptions)

// WithExecutor sets the executor parallel stages fan work out to.
func WithExecutor(e executor.Executor) Option {
	return func(o *parallelOptions) {
		if e != nil {
			o.executor = e
		}
	}
}

// WithWorkers runs parallel stages on a pool of n workers. A non-positive n
// means executor.DefaultWorkers.
func WithWorkers(n int) Option {
	return func(o *parallelOptions) {
		o.executor = executor.NewPool(n)
	}
}

// WithBatchSize sets how many elements are pulled per fan-out. Non-positive
// sizes are ignored.
func WithBatchSize(n int) Option {
	return func(o *parallelOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// Parallel returns p switched to parallel mode. The mode applies to the whole
// pipeline when its terminal operation runs; the last Parallel or Sequential
// call before the terminal wins.
//
// In parallel mode element-wise stages (Filter, Map, TryMap, TryFilter, Peek)
// process batches on the executor and keep source order; ForEach runs its
// action in unspecified order. Stages pull a whole batch before evaluating
// it, so a source may be pulled ahead of what a short-circuiting terminal
// needs; Limit lowers the batch size of its upstream to its count.
func Parallel[T any](p *Pipeline[T], opts ...Option) *Pipeline[T] {
	par := p.par
	for _, opt := range opts {
		opt(&par)
	}
	if par.executor == nil {
		par.executor = executor.NewPool(0)
	}
	if par.batchSize <= 0 {
		par.batchSize = DefaultBatchSize
	}
	q := derive(p, "parallel", p.create)
	q.mode, q.par = ModeParallel, par
	return q
}

// Sequential returns p switched back to sequential mode.
func Sequential[T any](p *Pipeline[T]) *Pipeline[T] {
	q := derive(p, "sequential", p.create)
	q.mode = ModeSequential
	return q
}

// evalContext carries the mode chosen at the terminal to every stage.
type evalContext struct {
	exec      executor.Executor
	batchSize int
}

var sequentialRun = &evalContext{}

func (r *evalContext) parallel() bool { return r != nil && r.exec != nil }

// capped returns r with its batch size lowered to n. r itself is never
// modified since sequentialRun is shared.
func (r *evalContext) capped(n int64) *evalContext {
	if !r.parallel() || n <= 0 || n >= int64(r.batchSize) {
		return r
	}
	return &evalContext{exec: r.exec, batchSize: int(n)}
}

func (p *Pipeline[T]) evalContext() *evalContext {
	if p.mode != ModeParallel || p.par.executor == nil {
		return sequentialRun
	}
	size := p.par.batchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &evalContext{exec: p.par.executor, batchSize: size}
}
