package demo

import (
	"context"
	"unicode/utf8"

	"github.com/kbukum/streamkit/stream"
)

func isLong(w string) bool { return utf8.RuneCountInString(w) > 5 }

// CountLongWords counts the words of text longer than five letters.
func CountLongWords(ctx context.Context, text string, parallel bool, opts ...stream.Option) (int64, error) {
	p := stream.FromSlice(Words(text))
	if parallel {
		p = stream.Parallel(p, opts...)
	}
	return stream.Count(ctx, stream.Filter(p, isLong))
}

// WordCount prints the long-word count of Contents, first sequentially and
// then in parallel mode. With onlyParallel set the sequential run is skipped.
func (r *Runner) WordCount(ctx context.Context, onlyParallel bool) error {
	var sections []section
	if !onlyParallel {
		sections = append(sections, section{
			name:  "sequential",
			title: "use stream instead of iteration",
			run: func(ctx context.Context) error {
				n, err := CountLongWords(ctx, Contents, false)
				if err != nil {
					return err
				}
				r.println(n)
				r.println()
				r.println()
				return nil
			},
		})
	}
	sections = append(sections, section{
		name:  "parallel",
		title: "use parallel stream instead of iteration",
		run: func(ctx context.Context) error {
			n, err := CountLongWords(ctx, Contents, true, r.opts...)
			if err != nil {
				return err
			}
			r.println(n)
			r.println()
			r.println()
			return nil
		},
	})
	return r.runSections(ctx, "words", sections)
}
