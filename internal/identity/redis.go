package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/config"
)

// RedisStore shares client state between processes through Redis
type RedisStore struct {
	logger *zap.Logger
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(ctx context.Context, logger *zap.Logger, cfg config.IdentityRedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := "identity:"
	if cfg.Prefix != "" {
		prefix = cfg.Prefix + ":identity:"
	}
	return &RedisStore{
		logger: logger.Named("identity.store.redis"),
		client: client,
		prefix: prefix,
		ttl:    cfg.TTL,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return err
	}
	s.logger.Debug("stored identity value", zap.String("key", s.prefix+key), zap.Duration("ttl", s.ttl))
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
