package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oceanviz/reefgraph/pkg/graph"
	"github.com/oceanviz/reefgraph/pkg/layout"
)

// frameInterval paces the live simulation inside the TUI.
const frameInterval = 33 * time.Millisecond

// dragStep is the world-space distance one shift+arrow press drags the
// selected node.
const dragStep = 10.0

// panStep is the view-space distance one arrow press pans the canvas.
const panStep = 20.0

// tickMsg drives one simulation step.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// =============================================================================
// GraphModel - Interactive layout exploration
// =============================================================================

// GraphModel is the bubbletea model for the view command. It owns a live
// layout engine: the simulation keeps stepping while the user pans, zooms,
// selects nodes, and drags them around.
type GraphModel struct {
	engine *layout.Engine
	cfg    layout.Config
	order  []string // node ids in snapshot order, for tab cycling
	cursor int      // index into order, -1 when nothing is selected

	width  int // terminal columns available for the canvas
	height int // terminal rows available for the canvas

	err error
}

// NewGraphModel creates the model around a fresh engine for the snapshot.
func NewGraphModel(snap graph.Snapshot, cfg layout.Config) (GraphModel, error) {
	engine, err := layout.New(snap, cfg)
	if err != nil {
		return GraphModel{}, err
	}
	order := make([]string, len(snap.Nodes))
	for i, n := range snap.Nodes {
		order[i] = n.ID
	}
	return GraphModel{
		engine: engine,
		cfg:    cfg,
		order:  order,
		cursor: -1,
		width:  80,
		height: 24,
	}, nil
}

func (m GraphModel) Init() tea.Cmd {
	return tick()
}

func (m GraphModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if !m.engine.Converged() {
			if _, err := m.engine.Step(1); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height - 4 // leave room for title and status bar
		if m.height < 5 {
			m.height = 5
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m GraphModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.engine.ViewTransform()

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up":
		m.engine.SetViewTransform(view.Scale, view.TranslateX, view.TranslateY+panStep)
	case "down":
		m.engine.SetViewTransform(view.Scale, view.TranslateX, view.TranslateY-panStep)
	case "left":
		m.engine.SetViewTransform(view.Scale, view.TranslateX+panStep, view.TranslateY)
	case "right":
		m.engine.SetViewTransform(view.Scale, view.TranslateX-panStep, view.TranslateY)

	case "+", "=":
		m.engine.SetViewTransform(view.Scale*1.2, view.TranslateX, view.TranslateY)
	case "-", "_":
		m.engine.SetViewTransform(view.Scale/1.2, view.TranslateX, view.TranslateY)

	case "tab":
		m.cycleSelection(1)
	case "shift+tab":
		m.cycleSelection(-1)

	case "shift+up":
		m.dragSelected(0, -dragStep)
	case "shift+down":
		m.dragSelected(0, dragStep)
	case "shift+left":
		m.dragSelected(-dragStep, 0)
	case "shift+right":
		m.dragSelected(dragStep, 0)

	case "u", " ":
		if id, ok := m.engine.SelectedNode(); ok {
			// Unpin only errors for unknown ids, which selection rules out.
			_ = m.engine.Unpin(id)
			m.engine.Reheat(0.3)
		}

	case "r":
		m.engine.Reheat(0.5)
	}
	return m, nil
}

// cycleSelection moves the selection cursor through the node order.
func (m *GraphModel) cycleSelection(dir int) {
	if len(m.order) == 0 {
		return
	}
	m.cursor += dir
	if m.cursor >= len(m.order) {
		m.cursor = -1 // wrap through "nothing selected"
	}
	if m.cursor < -1 {
		m.cursor = len(m.order) - 1
	}
	if m.cursor == -1 {
		m.engine.ClearSelection()
		return
	}
	_ = m.engine.Select(m.order[m.cursor])
}

// dragSelected pins the selected node at an offset from its current
// position and reheats so the rest of the layout reacts.
func (m *GraphModel) dragSelected(dx, dy float64) {
	id, ok := m.engine.SelectedNode()
	if !ok {
		return
	}
	positions := m.engine.Positions()
	p := positions[id]
	_ = m.engine.Pin(id, p.X+dx, p.Y+dy)
	m.engine.Reheat(0.3)
}

func (m GraphModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("reefgraph"))
	b.WriteString("  ")
	b.WriteString(styleDim.Render("arrows pan  +/- zoom  tab select  shift+arrows drag  u unpin  r reheat  q quit"))
	b.WriteString("\n")
	b.WriteString(m.renderCanvas())
	b.WriteString(m.statusBar())
	return b.String()
}

// renderCanvas projects node positions through the view transform onto a
// character grid.
func (m GraphModel) renderCanvas() string {
	view := m.engine.ViewTransform()
	snap := m.engine.Snapshot()
	positions := m.engine.Positions()

	cells := make(map[[2]int]graph.Node)
	selectedCell := [2]int{-1, -1}
	selectedID, hasSelection := m.engine.SelectedNode()

	for _, n := range snap.Nodes {
		p, ok := positions[n.ID]
		if !ok {
			continue
		}
		vp := view.Apply(layout.Point{X: p.X, Y: p.Y})
		x := int(vp.X / m.cfg.Width * float64(m.width))
		y := int(vp.Y / m.cfg.Height * float64(m.height))
		if x < 0 || x >= m.width || y < 0 || y >= m.height {
			continue
		}
		cells[[2]int{y, x}] = n
		if hasSelection && n.ID == selectedID {
			selectedCell = [2]int{y, x}
		}
	}

	var b strings.Builder
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			n, ok := cells[[2]int{y, x}]
			if !ok {
				b.WriteRune(' ')
				continue
			}
			glyph := string(kindGlyphs[n.Kind])
			if [2]int{y, x} == selectedCell {
				b.WriteString(styleSelected.Render(glyph))
			} else {
				b.WriteString(kindStyles[n.Kind].Render(glyph))
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

// statusBar summarizes simulation and view state in one line.
func (m GraphModel) statusBar() string {
	view := m.engine.ViewTransform()

	state := "settling"
	if m.engine.Converged() {
		state = "converged"
	}

	selection := "none"
	if id, ok := m.engine.SelectedNode(); ok {
		selection = id
		if pin, err := m.engine.PinState(id); err == nil && pin.Pinned {
			selection += " (pinned)"
		}
	}

	return fmt.Sprintf("%s  %s  %s\n",
		styleValue.Render(fmt.Sprintf("alpha %.3f [%s]", m.engine.Alpha(), state)),
		styleDim.Render(fmt.Sprintf("zoom %.2fx", view.Scale)),
		styleDim.Render("selected: ")+styleValue.Render(selection))
}
