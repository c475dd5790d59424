// Package cache is a small expiring key/value store. The memory implementation
// owns a sweep goroutine; the redis implementation leans on server-side TTLs.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is safe for concurrent use. A ttl <= 0 means no expiry.
type Cache interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
