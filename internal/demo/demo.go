// Package demo holds the instructional programs behind the streamkit CLI.
// Every program writes human-readable output to an io.Writer, one write per
// printed line.
package demo

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/stream"
)

// Contents is the sentence the word demos operate on.
const Contents = "Java 8 is a revolutionary release of the world’s #1 development platform."

var nonLetters = regexp.MustCompile(`[\P{L}]+`)

// Words splits text on runs of non-letters. Trailing empty fields are
// dropped; a leading empty field is kept when text starts with a separator.
func Words(text string) []string {
	words := nonLetters.Split(text, -1)
	for len(words) > 0 && words[len(words)-1] == "" {
		words = words[:len(words)-1]
	}
	return words
}

// Runner executes the demo programs against an output sink.
type Runner struct {
	out      io.Writer
	log      *logger.Logger
	rng      *rand.Rand
	parallel bool
	opts     []stream.Option
	werr     error
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger sections report to. The default discards.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithSeed makes the random values of the generate demos reproducible.
func WithSeed(seed uint64) Option {
	return func(r *Runner) { r.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithParallel evaluates the order-insensitive demo pipelines in parallel mode.
func WithParallel(parallel bool) Option {
	return func(r *Runner) { r.parallel = parallel }
}

// WithStreamOptions sets the options passed to stream.Parallel.
func WithStreamOptions(opts ...stream.Option) Option {
	return func(r *Runner) { r.opts = append(r.opts, opts...) }
}

// New creates a Runner writing to out.
func New(out io.Writer, opts ...Option) *Runner {
	r := &Runner{
		out: out,
		log: logger.NewNop(),
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// pipe switches p to parallel mode when the runner is configured for it.
func pipe[T any](r *Runner, p *stream.Pipeline[T]) *stream.Pipeline[T] {
	if r.parallel {
		return stream.Parallel(p, r.opts...)
	}
	return p
}

func (r *Runner) println(a ...any) {
	if r.werr != nil {
		return
	}
	_, r.werr = fmt.Fprintln(r.out, a...)
}

func (r *Runner) printf(format string, a ...any) {
	if r.werr != nil {
		return
	}
	_, r.werr = fmt.Fprintf(r.out, format, a...)
}

// printList prints items as "a, b, c, " on a single line.
func (r *Runner) printList(items []string) {
	var b strings.Builder
	for _, s := range items {
		b.WriteString(s)
		b.WriteString(", ")
	}
	r.println(b.String())
}

// section is one numbered block of demo output.
type section struct {
	name  string
	title string
	run   func(ctx context.Context) error
}

func (r *Runner) runSections(ctx context.Context, program string, sections []section) error {
	log := r.log.WithContext(ctx)
	for i, s := range sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		fields := logger.Fields(logger.FieldSection, s.name, "program", program)
		log.Debug("running section", fields)

		r.printf("%d. %s\n", i+1, s.title)
		if err := s.run(ctx); err != nil {
			log.Error("section failed", logger.MergeWithError(fields, err))
			return fmt.Errorf("%s section %q: %w", program, s.name, err)
		}
		if r.werr != nil {
			return fmt.Errorf("write output: %w", r.werr)
		}
	}
	return nil
}
