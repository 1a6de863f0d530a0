package segment

import (
	"context"
	"reflect"
	"testing"
	"time"
	"unicode/utf8"
)

func texts(units []Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Text
	}
	return out
}

func TestSplitByWord(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"two words", "hello world", []string{"hello ", "world"}},
		{"trailing space", "hello world ", []string{"hello ", "world "}},
		{"leading space kept", "  hello world", []string{"  hello ", "world"}},
		{"whitespace only", "   ", []string{"   "}},
		{"single word", "hello", []string{"hello"}},
		{"newlines attached", "a\nb\n", []string{"a\n", "b\n"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(Split(tt.in, ByWord()))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Split(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitBySizeBreaksAtSpace(t *testing.T) {
	// Space at index 6 is past half the 10-byte window, so the break lands
	// right after it.
	got := texts(Split("abcdef ghijklmnop", BySize(10)))
	want := []string{"abcdef ", "ghijklmnop"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSplitBySizeIgnoresEarlySpace(t *testing.T) {
	// Space at index 2 is before the midpoint, so the split is a raw cut at
	// the size boundary.
	got := texts(Split("ab cdefghijklmnop", BySize(10)))
	want := []string{"ab cdefghi", "jklmnop"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSplitBySizePrefersLateNewline(t *testing.T) {
	// No space in the window; the newline at index 8 is past 0.7 of the
	// break point and wins over the raw cut.
	got := texts(Split("abcdefgh\nijklmnopqrstu", BySize(10)))
	want := []string{"abcdefgh\n", "ijklmnopqr", "stu"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSplitBySizeShortText(t *testing.T) {
	got := texts(Split("short", BySize(50)))
	want := []string{"short"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSplitBySizeKeepsRunesIntact(t *testing.T) {
	inputs := []string{
		"héllo wörld",
		"日本語のテキストです",
		"emoji 🎉 inside 🚀 text",
	}

	for _, text := range inputs {
		for _, size := range []int{1, 2, 3, 5, 10} {
			units := Split(text, BySize(size))
			for _, u := range units {
				if !utf8.ValidString(u.Text) {
					t.Fatalf("size %d: unit %d of %q is not valid UTF-8: %q",
						size, u.Index, text, u.Text)
				}
			}
			if got := Reassemble(units); got != text {
				t.Fatalf("size %d: reassembled %q, want %q", size, got, text)
			}
		}
	}
}

func TestSplitRoundTrip(t *testing.T) {
	samples := []string{
		"hello world",
		"  leading and trailing  ",
		"one\ntwo\nthree\n",
		"a long sentence that should be cut into several chunks without losing a single byte of text",
		"unicode: héllo wörld, 日本語のテキスト",
		"tabs\tand\tnewlines\nmixed   with  runs of   spaces",
		"",
	}

	for _, text := range samples {
		if got := Reassemble(Split(text, ByWord())); got != text {
			t.Fatalf("word round trip: got %q, want %q", got, text)
		}
		for _, size := range []int{1, 2, 5, 10, 50, 4096} {
			if got := Reassemble(Split(text, BySize(size))); got != text {
				t.Fatalf("size %d round trip: got %q, want %q", size, got, text)
			}
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := "the same input must always produce the same units\nacross calls"
	for _, g := range []Granularity{ByWord(), BySize(12)} {
		first := Split(text, g)
		second := Split(text, g)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("split not deterministic for %+v", g)
		}
		for i, u := range first {
			if u.Index != i {
				t.Fatalf("unit %d has index %d", i, u.Index)
			}
		}
	}
}

func TestBySizeRejectsNonPositive(t *testing.T) {
	g := BySize(0)
	if g.Size != DefaultChunkSize {
		t.Fatalf("expected default size %d, got %d", DefaultChunkSize, g.Size)
	}
}

func TestMeasure(t *testing.T) {
	stats := Measure("hello world", ByWord())
	if stats.TotalLength != 11 {
		t.Fatalf("expected total length 11, got %d", stats.TotalLength)
	}
	if stats.UnitCount != 2 {
		t.Fatalf("expected 2 units, got %d", stats.UnitCount)
	}
	// 11 / 2 rounds to 6
	if stats.AverageUnitSize != 6 {
		t.Fatalf("expected average 6, got %d", stats.AverageUnitSize)
	}

	empty := Measure("", ByWord())
	if empty.UnitCount != 0 || empty.AverageUnitSize != 0 {
		t.Fatalf("expected zero stats for empty text, got %+v", empty)
	}
}

func TestSequenceRestartable(t *testing.T) {
	seq := NewSequence(Split("a b c", ByWord()))
	if seq.Len() != 3 {
		t.Fatalf("expected 3 units, got %d", seq.Len())
	}

	var first []string
	for {
		u, ok := seq.Next()
		if !ok {
			break
		}
		first = append(first, u.Text)
	}

	seq.Reset()
	var second []string
	for {
		u, ok := seq.Next()
		if !ok {
			break
		}
		second = append(second, u.Text)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("sequence not restartable: %q vs %q", first, second)
	}
}

func TestTimedSequenceSpacing(t *testing.T) {
	const delay = 30 * time.Millisecond

	seq := NewSequence(Split("one two three", ByWord()))
	timed := NewTimedSequence(seq, delay)

	start := time.Now()
	var got []string
	for {
		u, ok, err := timed.Next(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		got = append(got, u.Text)
	}
	elapsed := time.Since(start)

	if len(got) != 3 {
		t.Fatalf("expected 3 units, got %d", len(got))
	}
	// Two inter-unit gaps, no delay before the first or after the last.
	if elapsed < 2*delay {
		t.Fatalf("expected at least %v elapsed, got %v", 2*delay, elapsed)
	}
}

func TestTimedSequenceNoDelayForSingleUnit(t *testing.T) {
	seq := NewSequence(Split("solo", ByWord()))
	timed := NewTimedSequence(seq, 500*time.Millisecond)

	start := time.Now()
	if _, ok, err := timed.Next(context.Background()); err != nil || !ok {
		t.Fatalf("expected unit, got ok=%v err=%v", ok, err)
	}
	if _, ok, _ := timed.Next(context.Background()); ok {
		t.Fatal("expected exhausted sequence")
	}
	if elapsed := time.Since(start); elapsed >= 400*time.Millisecond {
		t.Fatalf("single unit should not be delayed, took %v", elapsed)
	}
}

func TestTimedSequenceCancellation(t *testing.T) {
	seq := NewSequence(Split("a b c d", ByWord()))
	timed := NewTimedSequence(seq, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	if _, ok, err := timed.Next(ctx); err != nil || !ok {
		t.Fatalf("expected first unit, got ok=%v err=%v", ok, err)
	}

	cancel()
	if _, _, err := timed.Next(ctx); err == nil {
		t.Fatal("expected context error after cancellation")
	}
}
