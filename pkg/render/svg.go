package render

import (
	"bytes"
	"fmt"

	"github.com/oceanviz/reefgraph/pkg/graph"
)

// groupColors maps style groups to fill colors: regions teal, parameters
// blue, biology green, time periods amber.
var groupColors = map[int]string{
	1: "#2a9d8f",
	2: "#457b9d",
	3: "#52b788",
	4: "#e9c46a",
}

// categoryColors maps edge categories to stroke colors.
var categoryColors = map[graph.EdgeCategory]string{
	graph.ParameterLink: "#8d99ae",
	graph.BiologyLink:   "#74c69d",
	graph.TemporalLink:  "#ffb703",
}

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	showLabels bool
	background string
}

// WithLabels renders node labels next to each circle.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.showLabels = true } }

// WithBackground sets a solid background color instead of transparent.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// RenderSVG draws a settled layout as a self-contained SVG document.
// Edges are drawn first so nodes sit on top; stroke width scales with edge
// weight, mapping the builder's weight band onto a visible thickness range.
func RenderSVG(l Layout, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}

	index := make(map[string]PlacedNode, len(l.Nodes))
	for _, n := range l.Nodes {
		index[n.ID] = n
	}

	for _, e := range l.Edges {
		src, okS := index[e.Source]
		dst, okD := index[e.Target]
		if !okS || !okD {
			continue
		}
		fmt.Fprintf(&buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f" stroke-opacity="0.6"/>`+"\n",
			src.X, src.Y, dst.X, dst.Y, categoryColors[e.Category], strokeWidth(e.Weight))
	}

	for _, n := range l.Nodes {
		fmt.Fprintf(&buf, `  <circle id="node-%s" cx="%.2f" cy="%.2f" r="%.1f" fill="%s" stroke="#1d3557" stroke-width="1"/>`+"\n",
			n.ID, n.X, n.Y, n.Radius, groupColors[n.Group])
		if r.showLabels {
			fmt.Fprintf(&buf, `  <text x="%.2f" y="%.2f" font-size="10" fill="#1d3557">%s</text>`+"\n",
				n.X+n.Radius+3, n.Y+3, escapeText(n.Label))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// strokeWidth maps an edge weight in [0.1, 10] onto a 0.5-5 pixel stroke.
func strokeWidth(weight float64) float64 {
	w := 0.5 + weight*0.45
	if w > 5 {
		w = 5
	}
	return w
}

// escapeText replaces the XML special characters that can appear in labels.
func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
