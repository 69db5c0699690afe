package layout

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/oceanviz/reefgraph/pkg/graph"
)

var (
	// ErrUnknownNode is returned by [Engine.Pin], [Engine.Unpin], and
	// [Engine.Select] when the node ID does not exist in the snapshot.
	// This is a caller contract violation, not a recoverable condition.
	ErrUnknownNode = errors.New("unknown node ID")

	// ErrNonPositiveStep is returned by [Engine.Step] when dt <= 0.
	ErrNonPositiveStep = errors.New("step interval must be positive")

	// ErrInvalidSnapshot is returned by [New] when the snapshot violates
	// its construction invariants (dangling edges, duplicate IDs). The
	// builder never produces such snapshots; receiving one is a fatal
	// precondition failure in the caller.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// Point is a 2D position in simulation coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pin records whether a node's position is overridden by the caller.
// The zero value means free: the node moves under force-driven motion.
// A pinned node tracks the pinned coordinates exactly on every tick until
// unpinned, regardless of forces.
type Pin struct {
	Pinned bool
	X, Y   float64
}

// body is the per-node layout state. The engine owns the only copy;
// readers see positions through the snapshot maps returned by Step.
type body struct {
	id     string
	x, y   float64
	vx, vy float64
	radius float64
	pin    Pin
}

// link is an edge resolved to body indices for force evaluation.
type link struct {
	source, target int
	weight         float64
}

// simulation bundles the body state with the per-tick displacement buffers
// that forces accumulate into. It is embedded in Engine and passed to each
// force in turn; forces never integrate, they only accumulate.
type simulation struct {
	cfg    Config
	bodies []body
	links  []link
	dx, dy []float64
}

// Engine is a stateful force-directed layout simulation over one immutable
// graph snapshot. Create one with [New], drive it with [Engine.Step], and
// discard it when a new dataset arrives - snapshots are never merged.
//
// Engine is not safe for concurrent use. Step, Pin, Unpin, Reheat, and
// Select must all be called from the same logical thread of control.
type Engine struct {
	simulation

	snap     graph.Snapshot
	index    map[string]int
	forces   []force
	alpha    float64
	selected int // body index, -1 when nothing is selected
	view     Transform
}

// New constructs an engine from a snapshot, scattering initial positions
// around the canvas center using the config seed.
//
// The snapshot must satisfy its construction invariants; a snapshot with
// dangling edge references yields ErrInvalidSnapshot. An empty snapshot is
// valid and produces an engine that is immediately converged with an empty
// position map.
func New(snap graph.Snapshot, cfg Config) (*Engine, error) {
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	e := &Engine{
		simulation: simulation{cfg: cfg},
		snap:       snap,
		index:      make(map[string]int, len(snap.Nodes)),
		forces: []force{
			linkForce{},
			chargeForce{},
			centerForce{},
			collideForce{},
		},
		alpha:    1,
		selected: -1,
		view:     identityTransform(),
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	cx, cy := cfg.Width/2, cfg.Height/2
	spread := min(cfg.Width, cfg.Height) / 4
	for i, n := range snap.Nodes {
		e.index[n.ID] = i
		e.bodies = append(e.bodies, body{
			id:     n.ID,
			x:      cx + (rng.Float64()-0.5)*spread,
			y:      cy + (rng.Float64()-0.5)*spread,
			radius: Radius(n.Kind) + cfg.CollideMargin,
		})
	}
	for _, edge := range snap.Edges {
		e.links = append(e.links, link{
			source: e.index[edge.Source],
			target: e.index[edge.Target],
			weight: edge.Weight,
		})
	}
	e.dx = make([]float64, len(e.bodies))
	e.dy = make([]float64, len(e.bodies))

	// Nothing to simulate: start out converged.
	if len(e.bodies) == 0 {
		e.alpha = 0
	}

	return e, nil
}

// Step advances the simulation by one tick of duration dt and returns the
// current position map. dt is in tick units; a render loop normally passes 1.
//
// Once alpha has decayed below the configured minimum the engine is
// converged: Step becomes an idempotent no-op returning the settled
// positions unchanged, until a Reheat call raises alpha again.
func (e *Engine) Step(dt float64) (map[string]Point, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: dt=%v", ErrNonPositiveStep, dt)
	}
	if e.Converged() {
		return e.Positions(), nil
	}

	// Accumulate all force contributions before touching any position.
	for i := range e.dx {
		e.dx[i], e.dy[i] = 0, 0
	}
	for _, f := range e.forces {
		f.apply(&e.simulation, e.alpha)
	}

	// Integrate. Pinned nodes track their pin exactly and carry no velocity.
	friction := 1 - e.cfg.VelocityDecay
	for i := range e.bodies {
		b := &e.bodies[i]
		if b.pin.Pinned {
			b.x, b.y = b.pin.X, b.pin.Y
			b.vx, b.vy = 0, 0
			continue
		}
		b.vx = (b.vx + e.dx[i]) * friction
		b.vy = (b.vy + e.dy[i]) * friction
		b.x += b.vx * dt
		b.y += b.vy * dt
	}

	e.alpha *= 1 - e.cfg.AlphaDecay

	return e.Positions(), nil
}

// Settle runs the simulation to convergence and returns the final positions
// along with the number of ticks taken. The decay schedule guarantees
// termination for any AlphaDecay in (0, 1).
func (e *Engine) Settle() (map[string]Point, int) {
	ticks := 0
	for !e.Converged() {
		e.Step(1)
		ticks++
	}
	return e.Positions(), ticks
}

// Positions returns a copy of the current position map. The copy is safe to
// retain; it never aliases engine state.
func (e *Engine) Positions() map[string]Point {
	out := make(map[string]Point, len(e.bodies))
	for i := range e.bodies {
		out[e.bodies[i].id] = Point{X: e.bodies[i].x, Y: e.bodies[i].y}
	}
	return out
}

// Alpha returns the current cooling factor.
func (e *Engine) Alpha() float64 { return e.alpha }

// Converged reports whether alpha has decayed below the configured minimum.
// A converged engine ticks as a no-op until reheated.
func (e *Engine) Converged() bool { return e.alpha < e.cfg.AlphaMin }

// Snapshot returns the immutable graph snapshot the engine was built from.
func (e *Engine) Snapshot() graph.Snapshot { return e.snap }

// Pin overrides the node's position with caller-supplied coordinates,
// suspending force-driven motion for that node until Unpin. During a drag
// this is called on every pointer move, so the node tracks the pointer
// exactly - no smoothing, no clamping to canvas bounds.
func (e *Engine) Pin(id string, x, y float64) error {
	i, ok := e.index[id]
	if !ok {
		return fmt.Errorf("pin %q: %w", id, ErrUnknownNode)
	}
	b := &e.bodies[i]
	b.pin = Pin{Pinned: true, X: x, Y: y}
	b.x, b.y = x, y
	b.vx, b.vy = 0, 0
	return nil
}

// Unpin releases the node back to free simulation from its last pinned
// position.
func (e *Engine) Unpin(id string) error {
	i, ok := e.index[id]
	if !ok {
		return fmt.Errorf("unpin %q: %w", id, ErrUnknownNode)
	}
	e.bodies[i].pin = Pin{}
	return nil
}

// PinState returns the node's current pin. Useful for drawing layers that
// render pinned nodes differently.
func (e *Engine) PinState(id string) (Pin, error) {
	i, ok := e.index[id]
	if !ok {
		return Pin{}, fmt.Errorf("pin state %q: %w", id, ErrUnknownNode)
	}
	return e.bodies[i].pin, nil
}

// Reheat raises alpha to reintroduce motion, typically at drag start so
// neighboring nodes visibly respond. Positions and velocities are preserved.
// This is the only way out of the converged state; cooling then resumes
// naturally via the decay schedule. Values outside (0, 1] are clamped, and
// a target below the current alpha is ignored - Reheat never cools.
func (e *Engine) Reheat(alpha float64) {
	if alpha > 1 {
		alpha = 1
	}
	if alpha > e.alpha {
		e.alpha = alpha
	}
}

// Select marks a node as selected. Selection is a pure read of the clicked
// node: it never mutates pin state, velocity, or alpha.
func (e *Engine) Select(id string) error {
	i, ok := e.index[id]
	if !ok {
		return fmt.Errorf("select %q: %w", id, ErrUnknownNode)
	}
	e.selected = i
	return nil
}

// ClearSelection removes any current selection.
func (e *Engine) ClearSelection() { e.selected = -1 }

// SelectedNode returns the ID of the last explicitly selected node, and
// false when nothing is selected.
func (e *Engine) SelectedNode() (string, bool) {
	if e.selected < 0 {
		return "", false
	}
	return e.bodies[e.selected].id, true
}

// SetViewTransform replaces the render-time pan/zoom transform and returns
// the transform actually stored. Scale is clamped to the configured bounds;
// translation is unbounded. The transform is orthogonal to the physics: it
// never mutates node positions or velocities.
func (e *Engine) SetViewTransform(scale, tx, ty float64) Transform {
	if scale < e.cfg.MinScale {
		scale = e.cfg.MinScale
	}
	if scale > e.cfg.MaxScale {
		scale = e.cfg.MaxScale
	}
	e.view = Transform{Scale: scale, TranslateX: tx, TranslateY: ty}
	return e.view
}

// ViewTransform returns the current render-time transform.
func (e *Engine) ViewTransform() Transform { return e.view }
