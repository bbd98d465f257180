// Package cache is a small JSON key-value cache with a Redis implementation
// for production and an in-process one for tests and Redis-less development.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by constructors when the backend cannot be reached.
var ErrUnavailable = errors.New("cache: backend unavailable")

// Store is the cache contract used by repositories and the rate limiter.
type Store interface {
	// Get unmarshals the value under key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set marshals value as JSON and stores it for ttl (0 = no expiry).
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// DelPattern removes every key matching a glob such as "products:*".
	DelPattern(ctx context.Context, pattern string) error
	// Incr increments a counter, starting its ttl when the key is created.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Name() string
}
