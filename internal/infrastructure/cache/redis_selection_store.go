package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultSelectionPrefix = "console:selection:"

// RedisSelectionStore implements selection.SnapshotRepository on Redis so
// that several console instances share operator selections.
type RedisSelectionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

type redisSnapshot struct {
	IDs       []uuid.UUID `json:"ids"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisSelectionStoreWithClient creates a store on an existing client
func NewRedisSelectionStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSelectionStore {
	if keyPrefix == "" {
		keyPrefix = defaultSelectionPrefix
	}
	return &RedisSelectionStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisSelectionStore) key(k selection.Key) string {
	return s.keyPrefix + k.String()
}

// Load returns the snapshot for key or shared.ErrNotFound
func (s *RedisSelectionStore) Load(ctx context.Context, key selection.Key) (*selection.Snapshot, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load selection: %w", err)
	}

	var stored redisSnapshot
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode selection %s: %w", key, err)
	}
	return &selection.Snapshot{Key: key, IDs: stored.IDs, UpdatedAt: stored.UpdatedAt}, nil
}

// Save writes snapshot with the store TTL
func (s *RedisSelectionStore) Save(ctx context.Context, snapshot *selection.Snapshot) error {
	updatedAt := snapshot.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	raw, err := json.Marshal(redisSnapshot{IDs: snapshot.IDs, UpdatedAt: updatedAt})
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}
	if err := s.client.Set(ctx, s.key(snapshot.Key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}

// Delete removes the snapshot for key
func (s *RedisSelectionStore) Delete(ctx context.Context, key selection.Key) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}
	return nil
}

// Ping checks that Redis answers
func (s *RedisSelectionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisSelectionStore) Close() error {
	return s.client.Close()
}

var _ selection.SnapshotRepository = (*RedisSelectionStore)(nil)
