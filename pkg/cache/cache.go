// Package cache provides pluggable caching for pipeline stages.
//
// Builds and layouts are content-addressed: keys are derived from a SHA-256
// hash of the inputs plus the options that influence the result, so a cache
// hit is always safe to reuse. Three backends are provided - an in-memory
// cache for the server, a Redis cache for shared deployments, and a no-op
// null cache for tests and one-shot CLI runs.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// TTLs per entry class. Snapshots are derived from immutable input data and
// keep the longest; live layouts are cheap to recompute and keep the shortest.
const (
	TTLSnapshot = 24 * time.Hour
	TTLLayout   = 12 * time.Hour
	TTLArtifact = 6 * time.Hour
)

// Cache stores byte blobs under string keys with optional expiry.
type Cache interface {
	// Get returns the cached data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SnapshotKeyOpts are the options that influence graph construction and
// therefore must be part of the snapshot cache key.
type SnapshotKeyOpts struct {
	ParameterDivisor float64
	BiologyDivisor   float64
}

// LayoutKeyOpts are the options that influence the settled layout.
type LayoutKeyOpts struct {
	Width        float64
	Height       float64
	LinkDistance float64
	Charge       float64
	AlphaDecay   float64
	Seed         uint64
}

// ArtifactKeyOpts are the options that influence rendered output.
type ArtifactKeyOpts struct {
	Format string
	Scale  float64
}

// Keyer builds cache keys for each pipeline stage.
type Keyer interface {
	// SnapshotKey keys a built snapshot by the dataset content hash.
	SnapshotKey(datasetHash string, opts SnapshotKeyOpts) string

	// LayoutKey keys a settled layout by the snapshot content hash.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the layout content hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the stage inputs and options into prefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// SnapshotKey generates a key for a built snapshot.
func (k *DefaultKeyer) SnapshotKey(datasetHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", datasetHash, opts)
}

// LayoutKey generates a key for a settled layout.
func (k *DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
