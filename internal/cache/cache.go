// Package cache provides the key-value cache used to memoize external
// API calls such as GitHub stats. Redis backs production deployments; an
// in-process implementation serves development and tests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a string-keyed byte cache with per-entry TTL.
type Cache interface {
	// Get returns the cached value or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl. A non-positive ttl means no
	// expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases underlying resources.
	Close() error
}
