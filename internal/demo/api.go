package demo

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/optional"
	"github.com/kbukum/streamkit/stream"
)

// Person is the record type of the map collection demo.
type Person struct {
	ID   int
	Name string
}

func (p Person) String() string {
	return fmt.Sprintf("Person{id=%d, name=%s}", p.ID, p.Name)
}

// People returns the three demo persons.
func People() []Person {
	return []Person{{1, "Michael"}, {2, "Jason"}, {3, "Shine"}}
}

// Inverse returns 1/x, or empty for zero.
func Inverse(x float64) optional.Optional[float64] {
	if x == 0 {
		return optional.Empty[float64]()
	}
	return optional.Of(1 / x)
}

// SquareRoot returns the square root of x, or empty for negative x.
func SquareRoot(x float64) optional.Optional[float64] {
	if x < 0 {
		return optional.Empty[float64]()
	}
	return optional.Of(math.Sqrt(x))
}

// InverseSquareRoot chains Inverse and SquareRoot.
func InverseSquareRoot(x float64) optional.Optional[float64] {
	return optional.FlatMap(optional.FlatMap(optional.Of(x), Inverse), SquareRoot)
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func toLower(w string) string { return cases.Lower(language.Und).String(w) }

// SectionNames lists the API tour sections in the order they run.
func (r *Runner) SectionNames() []string {
	names := make([]string, 0, 15)
	for _, s := range r.apiSections() {
		names = append(names, s.name)
	}
	return names
}

// API runs the stream API tour. With names given only those sections run, in
// tour order; an unknown name fails with INVALID_ARGUMENT before any output.
func (r *Runner) API(ctx context.Context, names ...string) error {
	all := r.apiSections()
	if len(names) == 0 {
		return r.runSections(ctx, "api", all)
	}
	for _, n := range names {
		if !slices.ContainsFunc(all, func(s section) bool { return s.name == n }) {
			return errors.InvalidArgument("api", fmt.Sprintf("unknown section %q", n)).
				WithDetail("known", strings.Join(r.SectionNames(), ","))
		}
	}
	selected := slices.DeleteFunc(all, func(s section) bool { return !slices.Contains(names, s.name) })
	return r.runSections(ctx, "api", selected)
}

func (r *Runner) words() *stream.Pipeline[string] {
	return stream.FromSlice(Words(Contents))
}

func (r *Runner) random() *stream.Pipeline[float64] {
	return stream.Generate(r.rng.Float64)
}

func (r *Runner) printJoined(ctx context.Context, p *stream.Pipeline[string]) error {
	s, err := stream.Joining(ctx, p, ", ")
	if err != nil {
		return err
	}
	r.println(s)
	return nil
}

func (r *Runner) apiSections() []section {
	return []section{
		{name: "iteration", title: "use stream instead of iteration", run: r.iteration},
		{name: "parallel-iteration", title: "use parallel stream instead of iteration", run: r.parallelIteration},
		{name: "sources", title: "convert collection to stream", run: r.sources},
		{name: "map", title: "use map method", run: r.mapWords},
		{name: "substream", title: "extract substream", run: r.substream},
		{name: "stateful", title: "stateful transformation: distinct, reversed, ...", run: r.stateful},
		{name: "find", title: "use Optional<T> for reduce operation", run: r.find},
		{name: "optional", title: "Optional<T> Composition", run: r.optionalComposition},
		{name: "reduce", title: "Reduction Method", run: r.reduce},
		{name: "joining", title: "Collect Results", run: r.joining},
		{name: "to-map", title: "Collect Results to Map", run: r.toMap},
		{name: "grouping", title: "Grouping", run: r.grouping},
		{name: "partitioning", title: "Partitioning", run: r.partitioning},
		{name: "numeric", title: "Primitive Type Streams", run: r.numeric},
		{name: "parallel", title: "Parallel Streams", run: r.parallelCount},
	}
}

func (r *Runner) iteration(ctx context.Context) error {
	n, err := CountLongWords(ctx, Contents, r.parallel, r.opts...)
	if err != nil {
		return err
	}
	r.println(n)
	r.println()
	return nil
}

func (r *Runner) parallelIteration(ctx context.Context) error {
	n, err := CountLongWords(ctx, Contents, true, r.opts...)
	if err != nil {
		return err
	}
	r.println(n)
	r.println()
	return nil
}

func (r *Runner) sources(ctx context.Context) error {
	n, err := stream.Count(ctx, stream.Filter(pipe(r, stream.Of(Words(Contents)...)), isLong))
	if err != nil {
		return err
	}
	r.println(n)

	n, err = stream.Count(ctx, stream.Filter(stream.Empty[string](), isLong))
	if err != nil {
		return err
	}
	r.println(n)
	r.println()
	return nil
}

func (r *Runner) mapWords(ctx context.Context) error {
	// ForEach is unordered in parallel mode, so this section always runs sequentially.
	err := stream.ForEach(ctx, stream.Map(r.words(), toLower), func(w string) {
		r.printf("%s", w)
	})
	if err != nil {
		return err
	}
	r.println()
	r.println()
	return nil
}

func (r *Runner) substream(ctx context.Context) error {
	random5 := stream.Limit(r.random(), 5)
	if err := r.printJoined(ctx, stream.Map(random5, formatFloat)); err != nil {
		return err
	}

	random3 := stream.Limit(stream.Skip(r.random(), 3), 3)
	if err := r.printJoined(ctx, stream.Map(random3, formatFloat)); err != nil {
		return err
	}

	random4 := stream.Concat(stream.Limit(r.random(), 1), stream.Limit(r.random(), 3))
	if err := r.printJoined(ctx, stream.Map(random4, formatFloat)); err != nil {
		return err
	}
	r.println()
	return nil
}

func (r *Runner) stateful(ctx context.Context) error {
	unique := stream.Distinct(pipe(r, stream.Of("1", "2", "3", "4", "1")))
	if err := r.printJoined(ctx, unique); err != nil {
		return err
	}

	reversed := stream.Sorted(pipe(r, stream.Of(1, 3, 2, 4, 5)), stream.ReverseOrder[int]())
	if err := r.printJoined(ctx, stream.Map(reversed, strconv.Itoa)); err != nil {
		return err
	}
	r.println()
	return nil
}

func (r *Runner) find(ctx context.Context) error {
	found, err := stream.FindAny(ctx, stream.Filter(pipe(r, r.words()), func(s string) bool {
		return strings.HasPrefix(s, "J")
	}))
	if err != nil {
		return err
	}
	found.IfPresent(func(s string) { r.println(s) })
	r.println()
	return nil
}

func (r *Runner) optionalComposition(context.Context) error {
	for _, x := range []float64{-4, 0, 4} {
		r.println(InverseSquareRoot(x))
	}
	r.println()
	return nil
}

func (r *Runner) reduce(ctx context.Context) error {
	sum, err := stream.Reduce(ctx, pipe(r, stream.Of(1, 2, 3, 4)), 0, func(x, y int) int { return x + y })
	if err != nil {
		return err
	}
	r.println(sum)
	r.println()
	return nil
}

func (r *Runner) joining(ctx context.Context) error {
	if err := r.printJoined(ctx, pipe(r, r.words())); err != nil {
		return err
	}
	r.println()
	return nil
}

func (r *Runner) toMap(ctx context.Context) error {
	idToName, err := stream.ToMap(ctx, stream.FromSlice(People()),
		func(p Person) int { return p.ID },
		func(p Person) string { return p.Name })
	if err != nil {
		return err
	}
	r.println(idToName)

	idToPerson, err := stream.ToMap(ctx, stream.FromSlice(People()),
		func(p Person) int { return p.ID },
		stream.Identity[Person]())
	if err != nil {
		return err
	}
	r.println(idToPerson)
	r.println()
	return nil
}

func (r *Runner) grouping(ctx context.Context) error {
	countryToLocales, err := stream.GroupBy(ctx, pipe(r, stream.FromSlice(Locales)), Country)
	if err != nil {
		return err
	}
	r.println(countryToLocales)

	countryToCounts, err := stream.GroupByReduce(ctx, pipe(r, stream.FromSlice(Locales)), Country,
		stream.Counting[language.Tag]())
	if err != nil {
		return err
	}
	r.println(countryToCounts)
	r.println()
	return nil
}

func (r *Runner) partitioning(ctx context.Context) error {
	parts, err := stream.PartitionBy(ctx, pipe(r, stream.FromSlice(Locales)), func(t language.Tag) bool {
		return Language(t) == "en"
	})
	if err != nil {
		return err
	}
	r.println(map[bool][]language.Tag{true: parts.True, false: parts.False})
	r.println()
	return nil
}

func (r *Runner) numeric(ctx context.Context) error {
	small, err := stream.Sum(ctx, stream.Of(1, 2, 3, 4, 5))
	if err != nil {
		return err
	}
	below, err := stream.Sum(ctx, pipe(r, stream.Range(0, 100)))
	if err != nil {
		return err
	}
	upTo, err := stream.Sum(ctx, pipe(r, stream.RangeClosed(0, 100)))
	if err != nil {
		return err
	}
	r.printf("%d %d %d\n", small, below, upTo)

	longest, err := stream.Max(ctx, stream.Map(pipe(r, r.words()), utf8.RuneCountInString))
	if err != nil {
		return err
	}
	r.println(longest)
	r.println()
	return nil
}

func (r *Runner) parallelCount(ctx context.Context) error {
	n, err := stream.Count(ctx, stream.Parallel(r.words(), r.opts...))
	if err != nil {
		return err
	}
	r.println(n)
	r.println()
	return nil
}
