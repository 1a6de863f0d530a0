package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Pkra99/minichat-v2/internal/models"
)

// RedisStore keeps tenant histories in Redis: a hash per tenant for the
// lifecycle timestamps and a list per tenant for the ordered message log.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed history store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() {
	s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// tenantMetaKey returns the key for a tenant's lifecycle hash.
func tenantMetaKey(tenantID string) string {
	return fmt.Sprintf("tenant:%s:meta", tenantID)
}

// tenantMessagesKey returns the key for a tenant's message list.
func tenantMessagesKey(tenantID string) string {
	return fmt.Sprintf("tenant:%s:messages", tenantID)
}

// ensure materializes the tenant's meta hash on first reference.
func (s *RedisStore) ensure(ctx context.Context, tenantID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	key := tenantMetaKey(tenantID)

	created, err := s.client.HSetNX(ctx, key, "created_at", now).Result()
	if err != nil {
		return err
	}
	if created {
		return s.client.HSetNX(ctx, key, "last_activity_at", now).Err()
	}
	return nil
}

// GetOrCreate returns the tenant's history, creating an empty one on first
// reference.
func (s *RedisStore) GetOrCreate(ctx context.Context, tenantID string) (*models.TenantHistory, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.load(ctx, tenantID)
}

// load reads a tenant's meta hash and message list into a TenantHistory.
func (s *RedisStore) load(ctx context.Context, tenantID string) (*models.TenantHistory, error) {
	meta, err := s.client.HGetAll(ctx, tenantMetaKey(tenantID)).Result()
	if err != nil {
		return nil, err
	}

	h := &models.TenantHistory{TenantID: tenantID, Messages: []models.Message{}}
	if v, ok := meta["created_at"]; ok {
		h.CreatedAt, _ = time.Parse(time.RFC3339Nano, v)
	}
	if v, ok := meta["last_activity_at"]; ok {
		h.LastActivityAt, _ = time.Parse(time.RFC3339Nano, v)
	}

	entries, err := s.client.LRange(ctx, tenantMessagesKey(tenantID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	for _, data := range entries {
		var msg models.Message
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}
		h.Messages = append(h.Messages, msg)
	}

	return h, nil
}

// Append pushes a message onto the tenant's list and advances last activity.
func (s *RedisStore) Append(ctx context.Context, tenantID string, role models.Role, content string, meta models.Metadata) (*models.Message, error) {
	if err := s.ensure(ctx, tenantID); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	if last, err := s.client.HGet(ctx, tenantMetaKey(tenantID), "last_activity_at").Result(); err == nil {
		if prev, perr := time.Parse(time.RFC3339Nano, last); perr == nil && ts.Before(prev) {
			ts = prev
		}
	}

	msg := models.Message{
		ID:        ulid.Make().String(),
		Role:      role,
		Content:   content,
		Timestamp: ts,
		Metadata:  meta,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, tenantMessagesKey(tenantID), string(data))
	pipe.HSet(ctx, tenantMetaKey(tenantID), "last_activity_at", ts.Format(time.RFC3339Nano))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return &msg, nil
}

// Clear deletes the tenant's keys and reports whether a history existed.
func (s *RedisStore) Clear(ctx context.Context, tenantID string) (bool, error) {
	existed, err := s.client.Exists(ctx, tenantMetaKey(tenantID)).Result()
	if err != nil {
		return false, err
	}

	if err := s.client.Del(ctx, tenantMetaKey(tenantID), tenantMessagesKey(tenantID)).Err(); err != nil {
		return false, err
	}
	return existed > 0, nil
}

// Snapshot returns the tenant's history without materializing an unknown one.
func (s *RedisStore) Snapshot(ctx context.Context, tenantID string) (*models.TenantHistory, error) {
	exists, err := s.client.Exists(ctx, tenantMetaKey(tenantID)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return &models.TenantHistory{TenantID: tenantID, Messages: []models.Message{}}, nil
	}
	return s.load(ctx, tenantID)
}

// GlobalStats scans tenant meta keys and sums message list lengths.
func (s *RedisStore) GlobalStats(ctx context.Context) (Stats, error) {
	var stats Stats

	iter := s.client.Scan(ctx, 0, "tenant:*:meta", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		stats.TenantCount++

		// tenant:{id}:meta -> tenant:{id}:messages
		msgKey := key[:len(key)-len("meta")] + "messages"
		n, err := s.client.LLen(ctx, msgKey).Result()
		if err != nil {
			return Stats{}, err
		}
		stats.TotalMessages += int(n)
	}
	if err := iter.Err(); err != nil {
		return Stats{}, err
	}

	return stats, nil
}
