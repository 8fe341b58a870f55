// Package cache stores computed subarchitecture libraries so a device's order
// is only enumerated once.
//
// # Backends
//
//   - [NullCache]: stores nothing, used with --no-cache
//   - [FileCache]: one JSON file per entry under the XDG cache directory
//   - [BadgerCache]: an embedded key/value store, one directory per cache
//   - [RedisCache]: a shared Redis instance, for server deployments
//   - [MongoCache]: a MongoDB collection, for server deployments
//
// [Open] selects a backend from a [Config], typically populated from the
// SUBARCH_CACHE and SUBARCH_CACHE_URL environment variables.
//
// # Keys
//
// Keys are produced by a [Keyer]. Library keys hash the canonical coupling
// map of a device together with the library version, so renaming a device
// file does not invalidate its entry while changing a coupling does.
package cache

import (
	"context"
	"time"
)

// TTLs for the kinds of entries the cache holds.
const (
	// LibraryTTL is how long computed libraries are kept. Libraries are
	// deterministic for a given coupling map, so they rarely need to expire.
	LibraryTTL = 30 * 24 * time.Hour

	// ArtifactTTL is how long rendered artifacts are kept.
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// LibraryKeyOpts are the build parameters that affect a library.
type LibraryKeyOpts struct {
	Version int    `json:"version"`
	Matcher string `json:"matcher,omitempty"`
}

// ArtifactKeyOpts are the render parameters that affect an artifact.
type ArtifactKeyOpts struct {
	Kind   string `json:"kind"`   // "order" or "device"
	Format string `json:"format"` // "dot" or "svg"
	Qubits int    `json:"qubits,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// LibraryKey returns the key of the library for a device whose
	// canonical coupling map hashes to archHash.
	LibraryKey(archHash string, opts LibraryKeyOpts) string

	// ArtifactKey returns the key of a rendered artifact of a library.
	ArtifactKey(libraryHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LibraryKey returns "library:<hash>".
func (DefaultKeyer) LibraryKey(archHash string, opts LibraryKeyOpts) string {
	return hashKey("library", archHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(libraryHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", libraryHash, opts)
}
