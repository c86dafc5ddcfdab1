package common

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}

// Cache is the narrow Redis surface shared by repositories.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Client() *redis.Client
}
