package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// MarshalSnapshot converts a snapshot to indented JSON bytes.
// Node and edge order is snapshot order, which the builder makes
// deterministic, so identical inputs produce identical bytes.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeSnapshotTo(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSnapshotFile writes a snapshot to a JSON file.
// The file is created with 0644 permissions.
func WriteSnapshotFile(s Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeSnapshotTo(s, f)
}

// WriteSnapshot writes a snapshot as JSON to an io.Writer.
// Use MarshalSnapshot for in-memory serialization or WriteSnapshotFile for files.
func WriteSnapshot(s Snapshot, w io.Writer) error {
	return writeSnapshotTo(s, w)
}

// ReadSnapshotFile reads a JSON file and returns the decoded snapshot.
// The snapshot is validated after decoding, so hand-edited files with
// dangling edges or duplicate IDs are rejected.
func ReadSnapshotFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readSnapshotFrom(f)
}

// ReadSnapshot decodes a JSON snapshot from an io.Reader.
// Use ReadSnapshotFile for files or pass bytes.NewReader for in-memory data.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	return readSnapshotFrom(r)
}

// =============================================================================
// Enum Token Round-Tripping
// =============================================================================

// MarshalText encodes the kind as its token, so JSON carries "region"
// rather than an opaque integer.
func (k NodeKind) MarshalText() ([]byte, error) {
	if _, ok := kindTokens[k]; !ok {
		return nil, fmt.Errorf("unknown node kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind token written by MarshalText.
func (k *NodeKind) UnmarshalText(text []byte) error {
	for kind, token := range kindTokens {
		if token == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown node kind %q", text)
}

// MarshalText encodes the category as its token.
func (c EdgeCategory) MarshalText() ([]byte, error) {
	switch c {
	case ParameterLink, BiologyLink, TemporalLink:
		return []byte(c.String()), nil
	}
	return nil, fmt.Errorf("unknown edge category %d", int(c))
}

// UnmarshalText decodes a category token written by MarshalText.
func (c *EdgeCategory) UnmarshalText(text []byte) error {
	switch string(text) {
	case "parameter_link":
		*c = ParameterLink
	case "biology_link":
		*c = BiologyLink
	case "temporal_link":
		*c = TemporalLink
	default:
		return fmt.Errorf("unknown edge category %q", text)
	}
	return nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeSnapshotTo(s Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readSnapshotFrom(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
