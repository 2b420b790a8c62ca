// Package db is the storage facade behind the document cache. Redis and Valkey
// both satisfy it through the redis subpackage.
package db

import (
	"context"
	"time"
)

// Store is everything the engine needs from a cache backend.
type Store interface {
	Pinger
	Cache
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity. Health checks use it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Cache holds opaque values under string keys with an expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix and reports how many went.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
