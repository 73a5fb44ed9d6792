package executor

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/errgroup"
)

// Task is one unit of indexed work. Tasks for different indexes may run
// concurrently and must only touch state owned by their index.
type Task func(ctx context.Context, i int) error

// Executor runs n indexed tasks and waits for all of them.
//
// Execute returns the first error reported by any task. Once a task fails the
// context passed to the remaining tasks is canceled; tasks that have not
// started yet may be skipped. A panicking task is re-panicked in the caller.
type Executor interface {
	Execute(ctx context.Context, n int, task Task) error
	// Workers reports the maximum number of tasks that run at once.
	Workers() int
}

// DefaultWorkers is the worker count used when a non-positive count is given.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

func normalize(workers int) int {
	if workers <= 0 {
		return DefaultWorkers()
	}
	return workers
}

// --- conc pool ---

// Pool is an Executor backed by a sourcegraph/conc context pool.
type Pool struct {
	workers int
}

// NewPool returns a pool-backed Executor limited to workers goroutines.
func NewPool(workers int) *Pool {
	return &Pool{workers: normalize(workers)}
}

// Workers reports the goroutine limit.
func (p *Pool) Workers() int { return p.workers }

// Execute runs every task on the pool.
func (p *Pool) Execute(ctx context.Context, n int, task Task) error {
	if n <= 0 {
		return ctx.Err()
	}
	cp := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(min(p.workers, n))
	for i := range n {
		cp.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return task(ctx, i)
		})
	}
	return cp.Wait()
}

// --- errgroup ---

// Group is an Executor backed by golang.org/x/sync/errgroup.
type Group struct {
	workers int
}

// NewGroup returns an errgroup-backed Executor limited to workers goroutines.
func NewGroup(workers int) *Group {
	return &Group{workers: normalize(workers)}
}

// Workers reports the goroutine limit.
func (g *Group) Workers() int { return g.workers }

// Execute runs every task in an errgroup.
func (g *Group) Execute(ctx context.Context, n int, task Task) error {
	if n <= 0 {
		return ctx.Err()
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(min(g.workers, n))
	for i := range n {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{Value: r}
				}
			}()
			if err := egCtx.Err(); err != nil {
				return err
			}
			return task(egCtx, i)
		})
	}
	err := eg.Wait()
	if pe, ok := err.(*PanicError); ok {
		panic(pe.Value)
	}
	if err == nil {
		err = ctx.Err()
	}
	return err
}

// PanicError carries a recovered panic value across goroutines.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "executor: task panicked"
}

// --- inline ---

// Inline is an Executor that runs tasks one after another on the calling
// goroutine, in index order. Useful for deterministic tests.
type Inline struct{}

// NewInline returns an Executor that does no fan-out.
func NewInline() Inline { return Inline{} }

// Workers always reports one.
func (Inline) Workers() int { return 1 }

// Execute runs tasks sequentially, stopping at the first error.
func (Inline) Execute(ctx context.Context, n int, task Task) error {
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := task(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ Executor = (*Pool)(nil)
	_ Executor = (*Group)(nil)
	_ Executor = Inline{}
)

// New returns the Executor registered under kind: "pool", "group" or "inline".
// Unknown kinds fall back to "pool".
func New(kind string, workers int) Executor {
	switch kind {
	case KindGroup:
		return NewGroup(workers)
	case KindInline:
		return NewInline()
	default:
		return NewPool(workers)
	}
}

// Executor kinds accepted by New.
const (
	KindPool   = "pool"
	KindGroup  = "group"
	KindInline = "inline"
)
