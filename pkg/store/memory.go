package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oceanviz/reefgraph/pkg/errors"
	"github.com/oceanviz/reefgraph/pkg/graph"
)

// MemoryStore keeps snapshots in process memory. It is safe for
// concurrent use and intended for tests and single-process servers.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	snapshot  graph.Snapshot
	createdAt time.Time
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Save stores the snapshot under its content hash.
func (m *MemoryStore) Save(_ context.Context, s graph.Snapshot) (string, error) {
	hash, err := HashSnapshot(s)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[hash]; !ok {
		m.entries[hash] = memoryEntry{snapshot: s, createdAt: time.Now()}
	}
	return hash, nil
}

// Load retrieves a snapshot by hash.
func (m *MemoryStore) Load(_ context.Context, hash string) (graph.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[hash]
	if !ok {
		return graph.Snapshot{}, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", hash)
	}
	return entry.snapshot, nil
}

// List returns metadata for all stored snapshots, newest first.
func (m *MemoryStore) List(_ context.Context) ([]Meta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metas := make([]Meta, 0, len(m.entries))
	for hash, entry := range m.entries {
		metas = append(metas, Meta{
			Hash:      hash,
			NodeCount: len(entry.snapshot.Nodes),
			EdgeCount: len(entry.snapshot.Edges),
			CreatedAt: entry.createdAt,
		})
	}
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].CreatedAt.Equal(metas[j].CreatedAt) {
			return metas[i].Hash < metas[j].Hash
		}
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

// Delete removes a snapshot. Missing hashes are ignored.
func (m *MemoryStore) Delete(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, hash)
	return nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close(_ context.Context) error { return nil }

// Len reports the number of stored snapshots.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
