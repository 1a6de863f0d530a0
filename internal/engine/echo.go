package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Pkra99/minichat-v2/internal/models"
)

// transformations are the echo variants; one is picked at random per reply.
var transformations = []func(string) string{
	func(s string) string { return fmt.Sprintf("Echo: %q", s) },
	func(s string) string { return "You said: " + strings.ToUpper(s) },
	func(s string) string { return "Reversed: " + reverse(s) },
	func(s string) string { return "Sparkle: * " + s + " *" },
	func(s string) string { return "Whisper: *" + strings.ToLower(s) + "*" },
}

// EchoEngine echoes the input back with a random transformation applied.
type EchoEngine struct {
	mu  sync.Mutex // guards rnd, which is not safe for concurrent use
	rnd *rand.Rand
}

// NewEchoEngine creates an echo engine.
func NewEchoEngine() *EchoEngine {
	return &EchoEngine{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Name returns the engine name.
func (e *EchoEngine) Name() string {
	return "EchoEngine"
}

func (e *EchoEngine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Intn(n)
}

// GenerateReply returns the transformed input, extended in slow mode.
func (e *EchoEngine) GenerateReply(ctx context.Context, message string, mode models.Mode) (string, error) {
	transform := transformations[e.intn(len(transformations))]
	base := transform(message)

	if mode == models.ModeSlow {
		return e.slowReply(message, base), nil
	}
	return base, nil
}

// slowReply pads the reply with commentary so slow mode has enough text to
// demonstrate chunked delivery.
func (e *EchoEngine) slowReply(original, transformed string) string {
	var b strings.Builder
	b.WriteString(transformed)
	fmt.Fprintf(&b, "\n\nOriginal message had %d characters.", len(original))
	fmt.Fprintf(&b, "\nWord count: %d", len(strings.Fields(original)))
	fmt.Fprintf(&b, "\nProcessed at: %s", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "\n\nFun fact: If you reverse %q, you get %q!", original, reverse(original))
	fmt.Fprintf(&b, "\n\nRandom number for you: %d", e.intn(1000))
	b.WriteString("\n\nThe EchoEngine appreciates your message!")
	b.WriteString("\n\nThis is a longer response designed to demonstrate the chunking feature.")
	b.WriteString(" The gateway service will split this into multiple SSE events.")
	return b.String()
}

// reverse reverses a string by runes.
func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
