package shared

import (
	"context"
	"time"
)

// IdempotencyCache stores responses of completed mutating operations keyed
// by the client-supplied idempotency key. A hit within the TTL means the
// operation already executed: the cached response is returned verbatim and
// no side effect runs again.
//
// The cache is consulted before any transaction opens and never
// participates in one. Cache outages are handled fail-open by callers:
// errors are logged and the operation proceeds without replay protection.
type IdempotencyCache interface {
	// Get returns the cached response for the key, if present and unexpired
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set caches a response under the key with the given TTL
	Set(ctx context.Context, key string, response []byte, ttl time.Duration) error

	// Close closes the cache and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for cached responses.
	// After this duration the same key executes the operation again.
	// Default: 24 hours
	TTL time.Duration
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL: 24 * time.Hour,
	}
}
