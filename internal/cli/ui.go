package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/oceanviz/reefgraph/pkg/graph"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - regions, primary accents
	colorBlue   = lipgloss.Color("75")  // Light blue - water parameters
	colorGreen  = lipgloss.Color("35")  // Green - biology indicators
	colorYellow = lipgloss.Color("220") // Amber - time periods
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleValue    = lipgloss.NewStyle().Foreground(colorWhite)
	styleSelected = lipgloss.NewStyle().Bold(true).Reverse(true)
)

// kindStyles colors nodes by the dimension they belong to, matching the
// SVG group palette.
var kindStyles = map[graph.NodeKind]lipgloss.Style{
	graph.KindRegion:     lipgloss.NewStyle().Bold(true).Foreground(colorCyan),
	graph.KindParameter:  lipgloss.NewStyle().Foreground(colorBlue),
	graph.KindBiology:    lipgloss.NewStyle().Foreground(colorGreen),
	graph.KindTimePeriod: lipgloss.NewStyle().Foreground(colorYellow),
}

// kindGlyphs gives each node kind a single-cell marker on the canvas.
var kindGlyphs = map[graph.NodeKind]rune{
	graph.KindRegion:     '●',
	graph.KindParameter:  '◆',
	graph.KindBiology:    '▲',
	graph.KindTimePeriod: '■',
}
