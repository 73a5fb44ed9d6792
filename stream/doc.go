// Package stream provides lazy, single-use, pull-based sequence pipelines.
//
// A Pipeline is built from a source (Of, FromSlice, Generate, Iterate, Range,
// Concat) and a chain of intermediate operations (Filter, Map, FlatMap,
// Distinct, Sorted, Limit, Skip, Peek). Nothing runs until a terminal
// operation (Collect, Count, Reduce, ForEach, ToMap, GroupBy, ...) pulls
// values through the chain.
//
// Basic usage:
//
//	p := stream.Of("a", "bb", "ccc")
//	lengths := stream.Map(p, func(s string) int { return len(s) })
//	total, err := stream.Sum(ctx, lengths)
//
// Unbounded sources must be limited before any operation that needs the
// whole input:
//
//	rnd := stream.Limit(stream.Generate(rand.Float64), 5)
//	stream.ForEach(ctx, rnd, func(f float64) { fmt.Println(f) })
//
// A pipeline can be consumed once. A second terminal operation fails with
// ALREADY_CONSUMED; evaluating a pipeline derived from an already consumed
// one fails with INVALID_STATE. Construction mistakes such as a negative
// Limit or sorting an unbounded source are reported by the terminal
// operation, never by the intermediate call.
//
// Parallel mode runs element-wise work on an executor.Executor:
//
//	p := stream.Parallel(words, stream.WithWorkers(8))
//	n, err := stream.Count(ctx, stream.Filter(p, isLong))
//
// Every terminal operation is traced as a "stream.<op>" span, recorded on the
// observability metrics when installed, and logged at debug level.
package stream
