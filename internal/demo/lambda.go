package demo

import (
	"cmp"
	"context"
	"slices"

	"golang.org/x/text/cases"

	"github.com/kbukum/streamkit/stream"
)

// compareIgnoreCase orders strings by their case-folded form.
func compareIgnoreCase(a, b string) int {
	fold := cases.Fold()
	return cmp.Compare(fold.String(a), fold.String(b))
}

// Lambda sorts a small slice with function values and method expressions.
// The sorts here work on the slice directly, not through a pipeline.
func (r *Runner) Lambda(ctx context.Context) error {
	words := []string{"a", "bbb", "CC"}
	// list shares its backing array with words, so it sees every sort.
	list := words[:]

	return r.runSections(ctx, "lambda", []section{
		{
			name:  "function-value",
			title: "using lambda expression to interface that has single abstract method",
			run: func(context.Context) error {
				slices.SortStableFunc(words, func(first, second string) int {
					return cmp.Compare(len(first), len(second))
				})
				r.printList(words)
				r.println()
				return nil
			},
		},
		{
			name:  "method-reference",
			title: "using method reference",
			run: func(context.Context) error {
				slices.SortStableFunc(words, compareIgnoreCase)
				r.printList(words)
				r.println()
				return nil
			},
		},
		{
			name:  "for-each",
			title: "using forEach method",
			run: func(ctx context.Context) error {
				if err := stream.ForEach(ctx, stream.FromSlice(list), func(s string) { r.println(s) }); err != nil {
					return err
				}
				r.println()
				r.println()
				return nil
			},
		},
		{
			name:  "comparator-factory",
			title: "using static method of interface",
			run: func(context.Context) error {
				slices.SortStableFunc(words, stream.Comparing(func(s string) int { return len(s) }))
				r.printList(words)
				r.println()
				r.println()
				return nil
			},
		},
	})
}
