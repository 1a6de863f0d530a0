package store

import (
	"context"

	"github.com/Pkra99/minichat-v2/internal/models"
)

// Stats aggregates store-wide counters.
type Stats struct {
	TenantCount   int `json:"tenantCount"`
	TotalMessages int `json:"totalMessages"`
}

// HistoryStore is the per-tenant conversation log. Unknown tenants are never
// an error: they are materialized on demand. Within one tenant, message order
// is the order Append calls reached the store.
//
// MemoryStore is the default backend; RedisStore, SQLiteStore and
// PostgresStore implement the same contract for deployments that want the
// log kept outside the gateway process.
type HistoryStore interface {
	// GetOrCreate returns the tenant's history, creating an empty one on
	// first reference. Idempotent.
	GetOrCreate(ctx context.Context, tenantID string) (*models.TenantHistory, error)

	// Append adds an immutable message to the tenant's log and advances its
	// last-activity timestamp.
	Append(ctx context.Context, tenantID string, role models.Role, content string, meta models.Metadata) (*models.Message, error)

	// Clear removes the tenant's history entirely and reports whether one
	// existed. A later GetOrCreate starts from empty.
	Clear(ctx context.Context, tenantID string) (bool, error)

	// Snapshot returns a read-only copy of the tenant's history without
	// creating one for unknown tenants.
	Snapshot(ctx context.Context, tenantID string) (*models.TenantHistory, error)

	// GlobalStats counts tenants and messages across the whole store.
	GlobalStats(ctx context.Context) (Stats, error)

	Ping(ctx context.Context) error
	Close()
}

// Open selects a backend from configuration. Precedence mirrors how the URLs
// are usually provisioned: Postgres, then SQLite, then Redis, then the
// in-process memory store.
func Open(ctx context.Context, databaseURL, sqlitePath, redisURL string) (HistoryStore, string, error) {
	switch {
	case databaseURL != "":
		s, err := NewPostgresStore(ctx, databaseURL)
		return s, "postgres", err
	case sqlitePath != "":
		s, err := NewSQLiteStore(ctx, sqlitePath)
		return s, "sqlite", err
	case redisURL != "":
		s, err := NewRedisStore(ctx, redisURL)
		return s, "redis", err
	default:
		return NewMemoryStore(), "memory", nil
	}
}
