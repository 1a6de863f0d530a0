package models

import (
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Metadata is an open-ended key/value map attached to a message.
type Metadata map[string]any

// Message is a single entry in a tenant's conversation history.
// Messages are immutable once created.
type Message struct {
	ID        string    `json:"id"` // ULID
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  Metadata  `json:"metadata,omitempty"`
}

// TenantHistory is the ordered, append-only message log for one tenant.
type TenantHistory struct {
	TenantID       string    `json:"tenantId"`
	Messages       []Message `json:"messages"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}
