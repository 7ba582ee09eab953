package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/config"
)

// ErrNotFound is returned by Store.Get for a missing key
var ErrNotFound = errors.New("key not found")

// Store is a small durable key/value store for client-side state
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Type represents the type of identity store
type Type string

const (
	TypeMemory Type = "memory"
	TypeDisk   Type = "disk"
	TypeRedis  Type = "redis"
)

// NewStore creates a store based on configuration
func NewStore(ctx context.Context, logger *zap.Logger, cfg *config.IdentityStoreConfig) (Store, error) {
	logger.Info("Initializing identity store", zap.String("type", cfg.Type))
	switch Type(cfg.Type) {
	case TypeMemory:
		return NewMemoryStore(), nil
	case TypeDisk:
		return NewDiskStore(cfg.Disk.Path)
	case TypeRedis:
		return NewRedisStore(ctx, logger, cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported identity store type: %s", cfg.Type)
	}
}
