package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrDanglingEdge is returned by [Snapshot.Validate] when an edge
	// references a node that doesn't exist. The builder adds all nodes
	// before any edge, so this indicates snapshot corruption, not bad input.
	ErrDanglingEdge = errors.New("edge references unknown node")

	// ErrDuplicateNodeID is returned by [Snapshot.Validate] when two nodes
	// share an ID. Node IDs are derived from (kind, label) and must be
	// unique across the whole node set.
	ErrDuplicateNodeID = errors.New("duplicate node ID")
)

// NodeKind classifies a node by the dimension of the data it summarizes.
type NodeKind int

const (
	// KindRegion represents a geographic sampling region.
	KindRegion NodeKind = iota
	// KindParameter represents a measured physical parameter (salinity, pH, ...).
	KindParameter
	// KindBiology represents a biological indicator (fish population, coral, ...).
	KindBiology
	// KindTimePeriod represents a year-month observation window.
	KindTimePeriod
)

// kindTokens maps each kind to the ID prefix and serialization token.
var kindTokens = map[NodeKind]string{
	KindRegion:     "region",
	KindParameter:  "parameter",
	KindBiology:    "biology",
	KindTimePeriod: "period",
}

// String returns the serialization token for the kind ("region", "parameter",
// "biology", "period"). Unknown kinds format as "kind(N)".
func (k NodeKind) String() string {
	if s, ok := kindTokens[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Group returns the style group for the kind: Region=1, Parameter=2,
// Biology=3, TimePeriod=4. Groups exist only for the drawing layer.
func (k NodeKind) Group() int { return int(k) + 1 }

// NodeID derives the canonical node identifier for a kind and label,
// e.g. NodeID(KindRegion, "Pacific") == "region:Pacific". The mapping is
// deterministic: identical (kind, label) pairs always produce the same ID.
func NodeID(kind NodeKind, label string) string {
	return kind.String() + ":" + label
}

// EdgeCategory classifies an edge by the relationship it encodes.
type EdgeCategory int

const (
	// ParameterLink connects a region to a physical parameter, weighted by
	// the region's mean measurement.
	ParameterLink EdgeCategory = iota
	// BiologyLink connects a region to a biological indicator.
	BiologyLink
	// TemporalLink connects a time period to a region observed in it.
	// Temporal links always carry weight 1.
	TemporalLink
)

// String returns the serialization token for the category.
func (c EdgeCategory) String() string {
	switch c {
	case ParameterLink:
		return "parameter_link"
	case BiologyLink:
		return "biology_link"
	case TemporalLink:
		return "temporal_link"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Node is a vertex in the knowledge graph. Nodes are immutable once built;
// layout state (position, velocity, pin) lives in package layout, keyed by ID.
type Node struct {
	ID    string   `json:"id" bson:"id"`
	Kind  NodeKind `json:"kind" bson:"kind"`
	Label string   `json:"label" bson:"label"`
	Group int      `json:"group" bson:"group"` // styling group, 1-4, one per kind
}

// Edge is a weighted connection between two nodes. Direction is nominal
// (source is the context node, target the attribute node) and only matters
// for link-force anchoring; forces treat edges as undirected.
type Edge struct {
	Source   string       `json:"source" bson:"source"`
	Target   string       `json:"target" bson:"target"`
	Weight   float64      `json:"weight" bson:"weight"`
	Category EdgeCategory `json:"category" bson:"category"`
}

// Snapshot is the immutable output of one Build call: the full node and edge
// sets produced atomically from a record sequence. A new dataset replaces the
// snapshot wholesale - there is no incremental merging.
type Snapshot struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Empty reports whether the snapshot contains no nodes.
func (s Snapshot) Empty() bool { return len(s.Nodes) == 0 }

// Node returns the node with the given ID and true, or a zero node and false.
func (s Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodesOfKind returns all nodes of the given kind in snapshot order.
func (s Snapshot) NodesOfKind(kind NodeKind) []Node {
	var out []Node
	for _, n := range s.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// EdgesOfCategory returns all edges of the given category in snapshot order.
func (s Snapshot) EdgesOfCategory(cat EdgeCategory) []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks snapshot integrity and returns nil if valid.
// It verifies that node IDs are unique and that every edge endpoint
// references an existing node. The builder guarantees both by construction,
// so a failure here means the snapshot was corrupted after construction
// (or hand-assembled incorrectly) and must not be fed to a layout engine.
func (s Snapshot) Validate() error {
	ids := make(map[string]struct{}, len(s.Nodes))
	for _, n := range s.Nodes {
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("node %q: %w", n.ID, ErrDuplicateNodeID)
		}
		ids[n.ID] = struct{}{}
	}
	for _, e := range s.Edges {
		if _, ok := ids[e.Source]; !ok {
			return fmt.Errorf("edge %s→%s: source: %w", e.Source, e.Target, ErrDanglingEdge)
		}
		if _, ok := ids[e.Target]; !ok {
			return fmt.Errorf("edge %s→%s: target: %w", e.Source, e.Target, ErrDanglingEdge)
		}
	}
	return nil
}

// MeasurementRecord is one validated tabular observation. Records arrive
// pre-validated from package ingest (or any upstream source honoring the
// same contract): Region is non-empty and the first 7 characters of Date
// form a "YYYY-MM" token.
type MeasurementRecord struct {
	Region          string  `json:"region"`
	Date            string  `json:"date"`
	Depth           float64 `json:"depth"`
	Salinity        float64 `json:"salinity"`
	Temperature     float64 `json:"temperature"`
	PH              float64 `json:"ph"`
	DissolvedOxygen float64 `json:"dissolved_oxygen"`
	FishPopulation  float64 `json:"fish_population"`
	Plankton        float64 `json:"plankton"`
	CoralCoverage   float64 `json:"coral_coverage"`
}

// YearMonth returns the record's "YYYY-MM" token: the first 7 characters of
// Date, truncated blindly per the ingestion contract. Shorter dates are
// returned as-is; upstream validation rejects them before they get here.
func (r MeasurementRecord) YearMonth() string {
	if len(r.Date) < 7 {
		return r.Date
	}
	return r.Date[:7]
}
