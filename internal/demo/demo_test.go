package demo

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"golang.org/x/text/language"

	apperrors "github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/executor"
	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/stream"
)

func TestMain(m *testing.M) {
	stream.SetLogger(logger.NewNop())
	goleak.VerifyTestMain(m)
}

func TestWords(t *testing.T) {
	want := []string{"Java", "is", "a", "revolutionary", "release", "of", "the", "world", "s", "development", "platform"}
	if diff := cmp.Diff(want, Words(Contents)); diff != "" {
		t.Errorf("Words mismatch (-want +got):\n%s", diff)
	}
}

func TestWords_Edges(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"leading separator kept", "  go fast", []string{"", "go", "fast"}},
		{"trailing dropped", "go fast!!", []string{"go", "fast"}},
		{"only separators", "1 2 3", []string{}},
		{"non-latin letters", "héllo wörld", []string{"héllo", "wörld"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Words(tc.in)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Words(%q) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}

func TestLambda(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf).Lambda(context.Background()); err != nil {
		t.Fatalf("Lambda: %v", err)
	}
	want := "1. using lambda expression to interface that has single abstract method\n" +
		"a, CC, bbb, \n\n" +
		"2. using method reference\n" +
		"a, bbb, CC, \n\n" +
		"3. using forEach method\n" +
		"a\nbbb\nCC\n\n\n" +
		"4. using static method of interface\n" +
		"a, CC, bbb, \n\n\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWordCount(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf).WordCount(context.Background(), false); err != nil {
		t.Fatalf("WordCount: %v", err)
	}
	want := "1. use stream instead of iteration\n4\n\n\n" +
		"2. use parallel stream instead of iteration\n4\n\n\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWordCount_OnlyParallel(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf).WordCount(context.Background(), true); err != nil {
		t.Fatalf("WordCount: %v", err)
	}
	if got := buf.String(); got != "1. use parallel stream instead of iteration\n4\n\n\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestCountLongWords_ModesAgree(t *testing.T) {
	ctx := context.Background()
	seq, err := CountLongWords(ctx, Contents, false)
	if err != nil {
		t.Fatal(err)
	}
	par, err := CountLongWords(ctx, Contents, true, stream.WithWorkers(4), stream.WithBatchSize(2))
	if err != nil {
		t.Fatal(err)
	}
	if seq != 4 || par != 4 {
		t.Errorf("expected 4 in both modes, got sequential=%d parallel=%d", seq, par)
	}
}

func TestInverseSquareRoot(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{-4, "Optional.empty"},
		{0, "Optional.empty"},
		{4, "Optional[0.5]"},
		{0.25, "Optional[2]"},
	}
	for _, tc := range tests {
		if got := InverseSquareRoot(tc.in).String(); got != tc.want {
			t.Errorf("InverseSquareRoot(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestAPI_FullTour(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, WithSeed(7)).API(context.Background()); err != nil {
		t.Fatalf("API: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"1. use stream instead of iteration\n4\n",
		"3. convert collection to stream\n4\n0\n",
		"4. use map method\njavaisarevolutionaryreleaseoftheworldsdevelopmentplatform\n",
		"6. stateful transformation: distinct, reversed, ...\n1, 2, 3, 4\n5, 4, 3, 2, 1\n",
		"7. use Optional<T> for reduce operation\nJava\n",
		"Optional.empty\nOptional.empty\nOptional[0.5]\n",
		"9. Reduction Method\n10\n",
		"10. Collect Results\nJava, is, a, revolutionary, release, of, the, world, s, development, platform\n",
		"map[1:Michael 2:Jason 3:Shine]\n",
		"map[1:Person{id=1, name=Michael} 2:Person{id=2, name=Jason} 3:Person{id=3, name=Shine}]\n",
		"15 4950 5050\nOptional[13]\n",
		"15. Parallel Streams\n11\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n---\n%s", want, out)
		}
	}
}

func TestAPI_RandomSubstreams(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, WithSeed(1)).API(context.Background(), "substream"); err != nil {
		t.Fatalf("API: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "1. extract substream" {
		t.Fatalf("unexpected title %q", lines[0])
	}
	for i, want := range []int{5, 3, 4} {
		if got := len(strings.Split(lines[i+1], ", ")); got != want {
			t.Errorf("line %d: expected %d values, got %d (%q)", i+1, want, got, lines[i+1])
		}
	}
}

func TestAPI_SeedIsReproducible(t *testing.T) {
	run := func() string {
		var buf bytes.Buffer
		if err := New(&buf, WithSeed(42)).API(context.Background(), "substream"); err != nil {
			t.Fatalf("API: %v", err)
		}
		return buf.String()
	}
	if a, b := run(), run(); a != b {
		t.Errorf("same seed produced different output:\n%s\n%s", a, b)
	}
}

func TestAPI_ParallelMatchesSequential(t *testing.T) {
	ctx := context.Background()
	var seq, par bytes.Buffer
	if err := New(&seq, WithSeed(3)).API(ctx); err != nil {
		t.Fatalf("sequential: %v", err)
	}
	err := New(&par, WithSeed(3), WithParallel(true),
		WithStreamOptions(stream.WithExecutor(executor.NewPool(4)), stream.WithBatchSize(3)),
	).API(ctx)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if diff := cmp.Diff(seq.String(), par.String()); diff != "" {
		t.Errorf("parallel output differs (-seq +par):\n%s", diff)
	}
}

func TestAPI_SelectedSectionsRunInTourOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf).API(context.Background(), "reduce", "stateful"); err != nil {
		t.Fatalf("API: %v", err)
	}
	want := "1. stateful transformation: distinct, reversed, ...\n1, 2, 3, 4\n5, 4, 3, 2, 1\n\n" +
		"2. Reduction Method\n10\n\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestAPI_MapSectionPrintsInSourceOrder(t *testing.T) {
	want := "1. use map method\njavaisarevolutionaryreleaseoftheworldsdevelopmentplatform\n\n"
	for _, parallel := range []bool{false, true} {
		var buf bytes.Buffer
		r := New(&buf, WithParallel(parallel), WithStreamOptions(stream.WithWorkers(4), stream.WithBatchSize(2)))
		if err := r.API(context.Background(), "map"); err != nil {
			t.Fatalf("parallel=%v: %v", parallel, err)
		}
		if diff := cmp.Diff(want, buf.String()); diff != "" {
			t.Errorf("parallel=%v output mismatch (-want +got):\n%s", parallel, diff)
		}
	}
}

func TestAPI_UnknownSection(t *testing.T) {
	var buf bytes.Buffer
	err := New(&buf).API(context.Background(), "reduce", "nope")
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSectionNames(t *testing.T) {
	names := New(&bytes.Buffer{}).SectionNames()
	if len(names) != 15 {
		t.Fatalf("expected 15 sections, got %d", len(names))
	}
	if names[0] != "iteration" || names[14] != "parallel" {
		t.Errorf("unexpected order: %v", names)
	}
}

func TestGroupingByCountry(t *testing.T) {
	groups, err := stream.GroupBy(context.Background(), stream.FromSlice(Locales), Country)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, tags := range groups {
		total += len(tags)
	}
	if total != len(Locales) {
		t.Errorf("group sizes sum to %d, want %d", total, len(Locales))
	}
	if got := len(groups["CH"]); got != 3 {
		t.Errorf("expected 3 locales for CH, got %d", got)
	}
	if got := len(groups[""]); got != 4 {
		t.Errorf("expected 4 language-only locales, got %d", got)
	}
}

func TestPartitionEnglish(t *testing.T) {
	parts, err := stream.PartitionBy(context.Background(), stream.FromSlice(Locales), func(tag language.Tag) bool {
		return Language(tag) == "en"
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(parts.True) != 5 || len(parts.True)+len(parts.False) != len(Locales) {
		t.Errorf("unexpected partition sizes: %d/%d", len(parts.True), len(parts.False))
	}
}

type failingWriter struct{}

var errWrite = errors.New("disk full")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestRunner_WriteErrorStopsTour(t *testing.T) {
	err := New(failingWriter{}).API(context.Background())
	if !errors.Is(err, errWrite) {
		t.Fatalf("expected write error, got %v", err)
	}
}

func TestRunner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := New(&buf).Lambda(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
