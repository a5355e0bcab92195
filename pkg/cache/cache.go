// Package cache provides pluggable artifact caching for poster runs.
//
// Three backends are available: a file-based cache for CLI usage, a
// Redis-backed cache for server deployments, and a null cache that
// disables caching entirely. Keys are derived from content hashes so a
// changed record, config, or format never serves a stale artifact.
package cache

import (
	"context"
	"time"
)

// Cache is the storage backend interface. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
