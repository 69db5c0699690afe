// Package store persists built graph snapshots.
//
// Snapshots are content-addressed: the key is the SHA-256 hash of the
// snapshot's canonical JSON, so saving the same dataset twice is a no-op
// and a stored snapshot can never be silently replaced by different data.
// Two backends are provided: an in-memory store for tests and single-process
// servers, and a MongoDB store for durable deployments.
package store

import (
	"context"
	"time"

	"github.com/oceanviz/reefgraph/pkg/cache"
	"github.com/oceanviz/reefgraph/pkg/errors"
	"github.com/oceanviz/reefgraph/pkg/graph"
)

// Meta summarizes a stored snapshot without its node and edge payload.
type Meta struct {
	Hash      string    `json:"hash" bson:"_id"`
	NodeCount int       `json:"node_count" bson:"node_count"`
	EdgeCount int       `json:"edge_count" bson:"edge_count"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Store saves and retrieves snapshots by content hash.
type Store interface {
	// Save stores the snapshot and returns its content hash.
	// Saving an already-stored snapshot returns the same hash without error.
	Save(ctx context.Context, s graph.Snapshot) (string, error)

	// Load retrieves a snapshot by hash. A missing hash yields an error
	// with code SNAPSHOT_NOT_FOUND.
	Load(ctx context.Context, hash string) (graph.Snapshot, error)

	// List returns metadata for all stored snapshots, newest first.
	List(ctx context.Context) ([]Meta, error)

	// Delete removes a snapshot. Deleting a missing hash is not an error.
	Delete(ctx context.Context, hash string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// HashSnapshot computes the content hash used as a snapshot's storage key.
func HashSnapshot(s graph.Snapshot) (string, error) {
	data, err := graph.MarshalSnapshot(s)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash snapshot")
	}
	return cache.Hash(data), nil
}
