package models

import (
	"time"
)

// Mode selects how a reply is generated and how fast it is streamed back.
type Mode string

const (
	ModeDefault Mode = ""
	ModeFast    Mode = "fast"
	ModeSlow    Mode = "slow"
)

// ParseMode maps a caller-supplied mode string to a Mode.
// Unknown values fall back to the default mode.
func ParseMode(s string) Mode {
	switch s {
	case "fast":
		return ModeFast
	case "slow":
		return ModeSlow
	default:
		return ModeDefault
	}
}

// GeneratedReply is the responder's answer to a single turn. It is ephemeral:
// its text becomes the content of an assistant Message.
type GeneratedReply struct {
	Reply     string    `json:"reply"`
	Engine    string    `json:"engine"`
	Timestamp time.Time `json:"timestamp"`
}
