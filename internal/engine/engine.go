// Package engine holds the pluggable reply generators for the responder
// service. An engine produces one complete reply per request; streaming and
// persistence are the gateway's concern.
package engine

import (
	"context"
	"strings"

	"github.com/Pkra99/minichat-v2/internal/models"
)

// Engine generates a complete reply to a single user message.
type Engine interface {
	// Name is the human-readable engine name reported to callers.
	Name() string
	// GenerateReply produces one complete reply. Slow mode returns an
	// extended response so the gateway has something worth chunking.
	GenerateReply(ctx context.Context, message string, mode models.Mode) (string, error)
}

// New returns the engine selected by name. Unknown names fall back to the
// echo engine.
func New(name string) Engine {
	switch strings.ToLower(name) {
	case "rulebased", "rule-based", "rule":
		return NewRuleBasedEngine()
	case "echo":
		return NewEchoEngine()
	default:
		return NewEchoEngine()
	}
}
