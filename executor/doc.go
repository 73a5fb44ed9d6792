// Package executor distributes indexed units of work across a fixed set of
// worker goroutines and joins them again (fan-out/fan-in).
//
// The stream package uses an Executor for its parallel mode, but nothing in
// here knows about pipelines: an Executor only runs task(i) for every i in
// [0, n) and reports the first failure.
//
//	exec := executor.NewPool(8)
//	err := exec.Execute(ctx, len(items), func(ctx context.Context, i int) error {
//	    results[i] = work(items[i])
//	    return nil
//	})
package executor
