package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/oceanviz/reefgraph/pkg/graph"
)

// kindShapes maps node kinds to Graphviz shapes so the four dimensions stay
// distinguishable without color.
var kindShapes = map[graph.NodeKind]string{
	graph.KindRegion:     "doublecircle",
	graph.KindParameter:  "ellipse",
	graph.KindBiology:    "ellipse",
	graph.KindTimePeriod: "box",
}

// ToDOT converts a snapshot to Graphviz DOT format. The layout engine's
// positions are intentionally not exported here: DOT consumers run their own
// layout. Use [RenderSVG] on a [Layout] to export force-directed positions.
func ToDOT(s graph.Snapshot) string {
	var buf bytes.Buffer
	buf.WriteString("graph reefgraph {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=filled, fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		fmt.Fprintf(&buf, "  %q [label=%q, shape=%s, fillcolor=%q];\n",
			n.ID, n.Label, kindShapes[n.Kind], groupColors[n.Group])
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		fmt.Fprintf(&buf, "  %q -- %q [penwidth=%.2f, color=%q];\n",
			e.Source, e.Target, strokeWidth(e.Weight), categoryColors[e.Category])
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderDOT rasterizes a DOT graph with Graphviz into the given format
// (graphviz.SVG or graphviz.PNG).
func RenderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
