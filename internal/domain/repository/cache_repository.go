package repository

import (
	"context"
	"time"
)

// CacheRepository defines the interface for short-lived key/value caching
type CacheRepository interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// IsNotFound reports whether err from Get means a cache miss
	IsNotFound(err error) bool
}
