package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/Pkra99/minichat-v2/internal/models"
)

// SQLiteStore keeps tenant histories in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed history store.
// If dbPath is empty, defaults to "./data/minichat.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/minichat.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		last_activity_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		tenant_id TEXT NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_tenant ON messages(tenant_id, seq);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetOrCreate returns the tenant's history, inserting an empty tenant row on
// first reference.
func (s *SQLiteStore) GetOrCreate(ctx context.Context, tenantID string) (*models.TenantHistory, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO tenants (id, created_at, last_activity_at)
		VALUES (?, ?, ?)
	`, tenantID, now, now)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, tenantID)
}

// load reads a tenant row and its ordered messages.
func (s *SQLiteStore) load(ctx context.Context, tenantID string) (*models.TenantHistory, error) {
	h := &models.TenantHistory{TenantID: tenantID, Messages: []models.Message{}}

	err := s.db.QueryRowContext(ctx, `
		SELECT created_at, last_activity_at FROM tenants WHERE id = ?
	`, tenantID).Scan(&h.CreatedAt, &h.LastActivityAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return h, nil
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, metadata, created_at
		FROM messages WHERE tenant_id = ? ORDER BY seq
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var msg models.Message
		var metaJSON *string
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &metaJSON, &msg.Timestamp); err != nil {
			return nil, err
		}
		if metaJSON != nil {
			_ = json.Unmarshal([]byte(*metaJSON), &msg.Metadata)
		}
		h.Messages = append(h.Messages, msg)
	}

	return h, rows.Err()
}

// Append inserts a message and advances the tenant's last activity, all in
// one transaction so concurrent appends keep a consistent order.
func (s *SQLiteStore) Append(ctx context.Context, tenantID string, role models.Role, content string, meta models.Metadata) (*models.Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO tenants (id, created_at, last_activity_at)
		VALUES (?, ?, ?)
	`, tenantID, now, now); err != nil {
		return nil, err
	}

	ts := now
	var last time.Time
	if err := tx.QueryRowContext(ctx, `
		SELECT last_activity_at FROM tenants WHERE id = ?
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

	var metaJSON *string
	if len(meta) > 0 {
		data, err := json.Marshal(meta)
		if err != nil {
			return nil, err
		}
		str := string(data)
		metaJSON = &str
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, tenant_id, role, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, tenantID, string(role), content, metaJSON, ts); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE tenants SET last_activity_at = ? WHERE id = ?
	`, ts, tenantID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Clear removes the tenant row and its messages.
func (s *SQLiteStore) Clear(ctx context.Context, tenantID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, tenantID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Snapshot returns the tenant's history without creating an unknown one.
func (s *SQLiteStore) Snapshot(ctx context.Context, tenantID string) (*models.TenantHistory, error) {
	return s.load(ctx, tenantID)
}

// GlobalStats counts tenants and messages.
func (s *SQLiteStore) GlobalStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&stats.TenantCount); err != nil {
		return Stats{}, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&stats.TotalMessages); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
