package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/Pkra99/minichat-v2/internal/models"
)

// PostgresStore keeps tenant histories in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed history store with a
// connection pool and initializes the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// initSchema creates tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		last_activity_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT UNIQUE NOT NULL,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_tenant ON messages(tenant_id, seq);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// GetOrCreate returns the tenant's history, inserting an empty tenant row on
// first reference.
func (s *PostgresStore) GetOrCreate(ctx context.Context, tenantID string) (*models.TenantHistory, error) {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tenants (id, created_at, last_activity_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (id) DO NOTHING
	`, tenantID, now)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, tenantID)
}

// load reads a tenant row and its ordered messages.
func (s *PostgresStore) load(ctx context.Context, tenantID string) (*models.TenantHistory, error) {
	h := &models.TenantHistory{TenantID: tenantID, Messages: []models.Message{}}

	err := s.pool.QueryRow(ctx, `
		SELECT created_at, last_activity_at FROM tenants WHERE id = $1
	`, tenantID).Scan(&h.CreatedAt, &h.LastActivityAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return h, nil
		}
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, role, content, metadata, created_at
		FROM messages WHERE tenant_id = $1 ORDER BY seq
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var msg models.Message
		var metaJSON []byte
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &metaJSON, &msg.Timestamp); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &msg.Metadata)
		}
		h.Messages = append(h.Messages, msg)
	}

	return h, rows.Err()
}

// Append inserts a message and advances the tenant's last activity inside a
// transaction, locking the tenant row so concurrent appends serialize.
func (s *PostgresStore) Append(ctx context.Context, tenantID string, role models.Role, content string, meta models.Metadata) (*models.Message, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		INSERT INTO tenants (id, created_at, last_activity_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (id) DO NOTHING
	`, tenantID, now); err != nil {
		return nil, err
	}

	ts := now
	var last time.Time
	if err := tx.QueryRow(ctx, `
		SELECT last_activity_at FROM tenants WHERE id = $1 FOR UPDATE
	`, tenantID).Scan(&last); err == nil && ts.Before(last) {
		ts = last
	}

	msg := models.Message{
		ID:        ulid.Make().String(),
		Role:      role,
		Content:   content,
		Timestamp: ts,
		Metadata:  meta,
	}

	var metaJSON []byte
	if len(meta) > 0 {
		if metaJSON, err = json.Marshal(meta); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO messages (id, tenant_id, role, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, msg.ID, tenantID, string(role), content, metaJSON, ts); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE tenants SET last_activity_at = $1 WHERE id = $2
	`, ts, tenantID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Clear removes the tenant row and its messages.
func (s *PostgresStore) Clear(ctx context.Context, tenantID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, tenantID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Snapshot returns the tenant's history without creating an unknown one.
func (s *PostgresStore) Snapshot(ctx context.Context, tenantID string) (*models.TenantHistory, error) {
	return s.load(ctx, tenantID)
}

// GlobalStats counts tenants and messages.
func (s *PostgresStore) GlobalStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&stats.TenantCount); err != nil {
		return Stats{}, err
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&stats.TotalMessages); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
