package cache

import (
	"context"
	"fmt"
	"io"

	"github.com/opsconsole/backend/internal/domain/selection"
	"github.com/opsconsole/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SelectionStore is a snapshot repository that owns resources
type SelectionStore interface {
	selection.SnapshotRepository
	io.Closer
	Ping(ctx context.Context) error
}

// SelectionStoreFactory creates selection stores based on configuration
type SelectionStoreFactory struct {
	selectionConfig       config.SelectionConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SelectionStoreFactoryOption is a functional option for configuring the factory
type SelectionStoreFactoryOption func(*SelectionStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SelectionStoreFactoryOption {
	return func(f *SelectionStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to memory when Redis
// is unreachable. Default is true.
func WithInMemoryFallback(allow bool) SelectionStoreFactoryOption {
	return func(f *SelectionStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSelectionStoreFactory creates a new factory
func NewSelectionStoreFactory(sel config.SelectionConfig, redisCfg config.RedisConfig, opts ...SelectionStoreFactoryOption) *SelectionStoreFactory {
	f := &SelectionStoreFactory{
		selectionConfig:       sel,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the configured store. With store = "redis" it
// connects first and, if allowed, falls back to memory on failure.
func (f *SelectionStoreFactory) CreateStore() (SelectionStore, error) {
	if f.selectionConfig.Store != config.SelectionStoreRedis {
		f.logger.Info("using in-memory selection store")
		return NewInMemorySelectionStore(f.selectionConfig.TTL), nil
	}

	client, err := NewRedisClient(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis selection store", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisSelectionStoreWithClient(client, f.selectionConfig.Prefix, f.selectionConfig.TTL), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis selection store unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory selection store. "+
		"Selections will not be shared between instances.",
		zap.Error(err),
	)
	return NewInMemorySelectionStore(f.selectionConfig.TTL), nil
}
