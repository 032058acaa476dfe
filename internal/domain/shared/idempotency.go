package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed webhook event IDs so that redelivered
// events (processors retry on non-2xx responses) are acknowledged without
// being applied twice.
type IdempotencyStore interface {
	// MarkProcessed records an event ID with a TTL. It returns true when the
	// ID was newly recorded and false when it had been seen before.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether an event ID has already been recorded.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}

// IdempotencyConfig holds configuration for event deduplication.
type IdempotencyConfig struct {
	// TTL bounds how long a processed event ID is remembered. Processor
	// retry windows are measured in days, so the default is generous.
	TTL time.Duration
}

// DefaultIdempotencyConfig returns the default deduplication configuration.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL: 24 * time.Hour,
	}
}
