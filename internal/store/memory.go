package store

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Pkra99/minichat-v2/internal/models"
)

// MemoryStore keeps tenant histories in process memory. It is the default
// backend: state lives from NewMemoryStore until Close and is shared by every
// channel in the process. A single mutex serializes operations, so each
// Append is atomic with respect to other appends; no transaction spans a
// whole turn.
type MemoryStore struct {
	mu      sync.Mutex
	tenants map[string]*models.TenantHistory
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: make(map[string]*models.TenantHistory)}
}

// getOrCreateLocked returns the live history for a tenant, creating it on
// first reference. Caller must hold the mutex.
func (s *MemoryStore) getOrCreateLocked(tenantID string) *models.TenantHistory {
	h, ok := s.tenants[tenantID]
	if !ok {
		now := time.Now().UTC()
		h = &models.TenantHistory{
			TenantID:       tenantID,
			Messages:       []models.Message{},
			CreatedAt:      now,
			LastActivityAt: now,
		}
		s.tenants[tenantID] = h
	}
	return h
}

// GetOrCreate returns a copy of the tenant's history, materializing an empty
// one on first reference.
func (s *MemoryStore) GetOrCreate(ctx context.Context, tenantID string) (*models.TenantHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyHistory(s.getOrCreateLocked(tenantID)), nil
}

// Append adds a message to the tenant's log. Timestamps are clamped so they
// never decrease within a tenant, even if the wall clock steps backwards.
func (s *MemoryStore) Append(ctx context.Context, tenantID string, role models.Role, content string, meta models.Metadata) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.getOrCreateLocked(tenantID)

	ts := time.Now().UTC()
	if ts.Before(h.LastActivityAt) {
		ts = h.LastActivityAt
	}

	msg := models.Message{
		ID:        ulid.Make().String(),
		Role:      role,
		Content:   content,
		Timestamp: ts,
		Metadata:  meta,
	}

	h.Messages = append(h.Messages, msg)
	h.LastActivityAt = ts

	return &msg, nil
}

// Clear removes the tenant's history and reports whether one existed.
func (s *MemoryStore) Clear(ctx context.Context, tenantID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.tenants[tenantID]
	delete(s.tenants, tenantID)
	return existed, nil
}

// Snapshot returns a copy of the tenant's history, or an empty one for
// unknown tenants without creating it.
func (s *MemoryStore) Snapshot(ctx context.Context, tenantID string) (*models.TenantHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.tenants[tenantID]; ok {
		return copyHistory(h), nil
	}
	return &models.TenantHistory{TenantID: tenantID, Messages: []models.Message{}}, nil
}

// GlobalStats counts tenants and messages.
func (s *MemoryStore) GlobalStats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{TenantCount: len(s.tenants)}
	for _, h := range s.tenants {
		stats.TotalMessages += len(h.Messages)
	}
	return stats, nil
}

// Ping always succeeds for the memory backend.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close drops all histories.
func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants = make(map[string]*models.TenantHistory)
}

// copyHistory returns a copy whose message slice is detached from the live
// log. Message values are immutable once created, so a slice copy is enough.
func copyHistory(h *models.TenantHistory) *models.TenantHistory {
	msgs := make([]models.Message, len(h.Messages))
	copy(msgs, h.Messages)
	return &models.TenantHistory{
		TenantID:       h.TenantID,
		Messages:       msgs,
		CreatedAt:      h.CreatedAt,
		LastActivityAt: h.LastActivityAt,
	}
}
