// Package cache stores rendered artifacts keyed by a hash of their inputs.
//
// # Backends
//
//   - [NullCache]: stores nothing; used with --no-cache and in tests
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: one document per entry, expired by a TTL index
//
// [Open] picks a backend from a [Config].
//
// # Keys
//
// A [Keyer] builds keys from a content hash and the render options, so a
// change to any input produces a different key. [NewScopedKeyer] prefixes
// keys, which the CLI and server use to separate releases:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "v1.2.0:")
//	key := keyer.ArtifactKey(cache.Hash(code), cache.ArtifactKeyOpts{Format: "xlsx"})
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the value for key and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the resources of the backend.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact.
	ArtifactKey(contentHash string, opts ArtifactKeyOpts) string

	// TreeKey returns the key of a parsed block tree.
	TreeKey(contentHash string, strict bool) string
}

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	Strict      bool   `json:"strict,omitempty"`
	ActionLabel string `json:"action_label,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", contentHash, opts)
}

// TreeKey implements [Keyer].
func (DefaultKeyer) TreeKey(contentHash string, strict bool) string {
	return hashKey("tree", contentHash, strict)
}
