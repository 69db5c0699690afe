package render

import (
	"encoding/json"
	"fmt"

	"github.com/oceanviz/reefgraph/pkg/graph"
	"github.com/oceanviz/reefgraph/pkg/layout"
)

// PlacedNode is a node with its settled position and drawing attributes.
type PlacedNode struct {
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	Kind   graph.NodeKind `json:"kind"`
	Group  int            `json:"group"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Radius float64        `json:"radius"`
}

// Layout is the canonical serialization of a settled layout: the graph
// structure with positions baked in, plus the canvas dimensions it was
// computed for. It is the unit of layout caching and the input to every
// sink in this package.
type Layout struct {
	Nodes  []PlacedNode `json:"nodes"`
	Edges  []graph.Edge `json:"edges"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
}

// NewLayout joins a snapshot with a position map. Nodes missing from the
// position map (which cannot happen with positions returned by the engine
// built from the same snapshot) are placed at the origin.
func NewLayout(snap graph.Snapshot, positions map[string]layout.Point, width, height float64) Layout {
	l := Layout{
		Edges:  snap.Edges,
		Width:  width,
		Height: height,
	}
	for _, n := range snap.Nodes {
		p := positions[n.ID]
		l.Nodes = append(l.Nodes, PlacedNode{
			ID:     n.ID,
			Label:  n.Label,
			Kind:   n.Kind,
			Group:  n.Group,
			X:      p.X,
			Y:      p.Y,
			Radius: layout.Radius(n.Kind),
		})
	}
	return l
}

// Snapshot reconstructs the graph structure the layout was computed from,
// dropping the positions. Useful for sinks that run their own layout.
func (l Layout) Snapshot() graph.Snapshot {
	s := graph.Snapshot{Edges: l.Edges}
	for _, n := range l.Nodes {
		s.Nodes = append(s.Nodes, graph.Node{
			ID:    n.ID,
			Kind:  n.Kind,
			Label: n.Label,
			Group: n.Group,
		})
	}
	return s
}

// MarshalLayout converts a layout to JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return data, nil
}

// UnmarshalLayout decodes JSON bytes written by MarshalLayout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	return l, nil
}

// Frame is one tick of a live simulation, streamed to interactive clients.
type Frame struct {
	Tick      int                     `json:"tick"`
	Alpha     float64                 `json:"alpha"`
	Converged bool                    `json:"converged"`
	Positions map[string]layout.Point `json:"positions"`
}
