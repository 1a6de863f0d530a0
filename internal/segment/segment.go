// Package segment splits a complete reply into ordered delivery units for
// progressive streaming. Splitting is pure and deterministic: the same text and
// granularity always produce the same units, and concatenating the units in
// order reproduces the input exactly.
package segment

import (
	"math"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the target size in bytes for fixed-size units.
const DefaultChunkSize = 50

// Unit is a single position-stamped fragment of a reply.
type Unit struct {
	Index int
	Text  string
}

// Kind selects the splitting strategy.
type Kind int

const (
	// Word yields one unit per word with its trailing whitespace attached.
	Word Kind = iota
	// FixedSize yields units of roughly Size bytes, preferring to break at
	// spaces or newlines near the window boundary.
	FixedSize
)

// Granularity describes how text is split into units.
type Granularity struct {
	Kind Kind
	Size int // target unit size in bytes, FixedSize only
}

// ByWord returns word granularity.
func ByWord() Granularity {
	return Granularity{Kind: Word}
}

// BySize returns fixed-size granularity with the given target size.
// Sizes below 1 fall back to DefaultChunkSize.
func BySize(size int) Granularity {
	if size < 1 {
		size = DefaultChunkSize
	}
	return Granularity{Kind: FixedSize, Size: size}
}

// Split breaks text into ordered units per the granularity. Empty text yields
// no units.
func Split(text string, g Granularity) []Unit {
	var parts []string
	switch g.Kind {
	case FixedSize:
		size := g.Size
		if size < 1 {
			size = DefaultChunkSize
		}
		parts = chunks(text, size)
	default:
		parts = words(text)
	}

	units := make([]Unit, len(parts))
	for i, p := range parts {
		units[i] = Unit{Index: i, Text: p}
	}
	return units
}

// Reassemble concatenates units in order.
func Reassemble(units []Unit) string {
	var b strings.Builder
	for _, u := range units {
		b.WriteString(u.Text)
	}
	return b.String()
}

// words splits text at the boundary between a run of non-whitespace and its
// trailing whitespace. Trailing whitespace stays attached to the preceding
// word so reassembly needs no separators; whitespace at the very start of the
// text is attached to the first word.
func words(text string) []string {
	var out []string
	i, n := 0, len(text)
	for i < n {
		start := i
		for i < n && isSpace(text[i]) {
			i++
		}
		for i < n && !isSpace(text[i]) {
			i++
		}
		for i < n && isSpace(text[i]) {
			i++
		}
		out = append(out, text[start:i])
	}
	return out
}

// chunks splits text into pieces of at most size bytes. Within each window it
// prefers breaking after a space when the space sits past half the window, and
// after a newline when the newline sits past 0.7 of the chosen break point.
func chunks(text string, size int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var out []string
	remaining := text
	for len(remaining) > 0 {
		if len(remaining) <= size {
			out = append(out, remaining)
			break
		}

		window := remaining[:size+1]
		breakPoint := size

		if spaceIdx := strings.LastIndexByte(window, ' '); float64(spaceIdx) > float64(size)*0.5 {
			breakPoint = spaceIdx + 1
		}
		if nlIdx := strings.LastIndexByte(window, '\n'); float64(nlIdx) > float64(breakPoint)*0.7 {
			breakPoint = nlIdx + 1
		}

		// Never cut inside a multibyte rune: back off to the nearest rune
		// boundary, or take the whole first rune when it alone exceeds the
		// window.
		for breakPoint > 0 && isContinuation(remaining[breakPoint]) {
			breakPoint--
		}
		if breakPoint == 0 {
			_, n := utf8.DecodeRuneInString(remaining)
			breakPoint = n
		}

		out = append(out, remaining[:breakPoint])
		remaining = remaining[breakPoint:]
	}
	return out
}

// isContinuation reports whether b is a UTF-8 continuation byte.
func isContinuation(b byte) bool {
	return b&0xC0 == 0x80
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// Stats summarizes how a text splits under a granularity.
type Stats struct {
	TotalLength     int `json:"totalLength"`
	UnitCount       int `json:"chunkCount"`
	AverageUnitSize int `json:"avgChunkSize"`
}

// Measure returns split statistics without retaining the units.
func Measure(text string, g Granularity) Stats {
	units := Split(text, g)
	s := Stats{
		TotalLength: len(text),
		UnitCount:   len(units),
	}
	if s.UnitCount > 0 {
		s.AverageUnitSize = int(math.Round(float64(s.TotalLength) / float64(s.UnitCount)))
	}
	return s
}
