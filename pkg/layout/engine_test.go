package layout

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/oceanviz/reefgraph/pkg/graph"
)

func testSnapshot(t *testing.T) graph.Snapshot {
	t.Helper()
	return graph.Build([]graph.MeasurementRecord{
		{Region: "Pacific", Date: "2025-01-15", Salinity: 35, Temperature: 18, PH: 8.1, DissolvedOxygen: 7, Depth: 25, FishPopulation: 450, Plankton: 120, CoralCoverage: 62},
		{Region: "Atlantic", Date: "2025-02-20", Salinity: 34, Temperature: 14, PH: 8.0, DissolvedOxygen: 8, Depth: 40, FishPopulation: 380, Plankton: 200, CoralCoverage: 31},
	})
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(testSnapshot(t), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestNewRejectsInvalidSnapshot(t *testing.T) {
	snap := testSnapshot(t)
	snap.Edges[0].Target = "parameter:ghost"
	if _, err := New(snap, DefaultConfig()); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("New with dangling edge = %v, want ErrInvalidSnapshot", err)
	}
}

func TestEmptySnapshotConvergesImmediately(t *testing.T) {
	e, err := New(graph.Snapshot{}, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !e.Converged() {
		t.Error("empty engine should be converged before any tick")
	}
	pos, err := e.Step(1)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(pos) != 0 {
		t.Errorf("Step on empty engine = %d positions, want 0", len(pos))
	}
}

func TestStepRejectsNonPositiveDt(t *testing.T) {
	e := newTestEngine(t)
	for _, dt := range []float64{0, -1} {
		if _, err := e.Step(dt); !errors.Is(err, ErrNonPositiveStep) {
			t.Errorf("Step(%v) = %v, want ErrNonPositiveStep", dt, err)
		}
	}
}

func TestAlphaMonotoneDecayAndConvergence(t *testing.T) {
	e := newTestEngine(t)
	prev := e.Alpha()
	ticks := 0
	for !e.Converged() {
		if _, err := e.Step(1); err != nil {
			t.Fatalf("Step: %v", err)
		}
		ticks++
		if e.Alpha() > prev {
			t.Fatalf("alpha increased without reheat: %v -> %v", prev, e.Alpha())
		}
		prev = e.Alpha()
		if ticks > 10000 {
			t.Fatal("engine failed to converge within 10000 ticks")
		}
	}

	// Decay schedule: alpha(n) = (1-d)^n, so convergence needs
	// ln(alphaMin)/ln(1-d) ticks.
	cfg := DefaultConfig()
	want := int(math.Ceil(math.Log(cfg.AlphaMin) / math.Log(1-cfg.AlphaDecay)))
	if ticks != want {
		t.Errorf("converged after %d ticks, want %d", ticks, want)
	}
}

func TestConvergedStepIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	settled, _ := e.Settle()

	for i := 0; i < 5; i++ {
		again, err := e.Step(1)
		if err != nil {
			t.Fatalf("Step after convergence: %v", err)
		}
		if !reflect.DeepEqual(settled, again) {
			t.Fatalf("tick %d after convergence moved nodes", i)
		}
	}
}

func TestPinOverridesForces(t *testing.T) {
	e := newTestEngine(t)
	const id = "region:Pacific"

	if err := e.Pin(id, 123, 456); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	pos, err := e.Step(1)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if p := pos[id]; p.X != 123 || p.Y != 456 {
		t.Errorf("pinned node at (%v, %v), want exactly (123, 456)", p.X, p.Y)
	}

	// The pin holds across ticks until released.
	pos, _ = e.Step(1)
	if p := pos[id]; p.X != 123 || p.Y != 456 {
		t.Errorf("pin did not hold on second tick: (%v, %v)", p.X, p.Y)
	}

	if err := e.Unpin(id); err != nil {
		t.Fatalf("Unpin: %v", err)
	}
	st, err := e.PinState(id)
	if err != nil {
		t.Fatalf("PinState: %v", err)
	}
	if st.Pinned {
		t.Error("node still pinned after Unpin")
	}
}

func TestPinUnknownNode(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Pin("region:Nowhere", 0, 0); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Pin unknown = %v, want ErrUnknownNode", err)
	}
	if err := e.Unpin("region:Nowhere"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Unpin unknown = %v, want ErrUnknownNode", err)
	}
}

func TestReheatExitsConverged(t *testing.T) {
	e := newTestEngine(t)
	e.Settle()
	if !e.Converged() {
		t.Fatal("engine should be converged")
	}
	before := e.Positions()

	e.Reheat(0.3)
	if e.Converged() {
		t.Fatal("Reheat did not exit the converged state")
	}
	if e.Alpha() != 0.3 {
		t.Errorf("alpha after Reheat = %v, want 0.3", e.Alpha())
	}

	// Positions are preserved at the moment of reheat; only subsequent
	// ticks move nodes again.
	if !reflect.DeepEqual(before, e.Positions()) {
		t.Error("Reheat itself moved nodes")
	}
	after, err := e.Step(1)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if reflect.DeepEqual(before, after) {
		t.Error("no motion after reheat")
	}
}

func TestReheatNeverCools(t *testing.T) {
	e := newTestEngine(t)
	e.Reheat(0.3)
	if e.Alpha() != 1 {
		t.Errorf("Reheat below current alpha changed it: %v", e.Alpha())
	}
	e.Reheat(7)
	if e.Alpha() > 1 {
		t.Errorf("Reheat above 1 not clamped: %v", e.Alpha())
	}
}

func TestSelectionIsPureRead(t *testing.T) {
	e := newTestEngine(t)
	e.Settle()
	alpha := e.Alpha()
	pos := e.Positions()

	if err := e.Select("region:Pacific"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	id, ok := e.SelectedNode()
	if !ok || id != "region:Pacific" {
		t.Errorf("SelectedNode = %q, %v", id, ok)
	}
	if e.Alpha() != alpha {
		t.Error("Select changed alpha")
	}
	if !reflect.DeepEqual(pos, e.Positions()) {
		t.Error("Select moved nodes")
	}
	st, _ := e.PinState("region:Pacific")
	if st.Pinned {
		t.Error("Select pinned the node")
	}

	if err := e.Select("region:Nowhere"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Select unknown = %v, want ErrUnknownNode", err)
	}
	e.ClearSelection()
	if _, ok := e.SelectedNode(); ok {
		t.Error("selection not cleared")
	}
}

func TestViewTransformIndependentOfPhysics(t *testing.T) {
	e := newTestEngine(t)
	pos := e.Positions()

	got := e.SetViewTransform(2, 10, -5)
	if got != (Transform{Scale: 2, TranslateX: 10, TranslateY: -5}) {
		t.Errorf("SetViewTransform = %+v", got)
	}
	if !reflect.DeepEqual(pos, e.Positions()) {
		t.Error("SetViewTransform moved nodes")
	}

	// Scale clamps to the configured range; translation is unbounded.
	if got := e.SetViewTransform(100, 1e9, -1e9); got.Scale != 4 {
		t.Errorf("scale not clamped to max: %v", got.Scale)
	}
	if got := e.SetViewTransform(0.0001, 0, 0); got.Scale != 0.1 {
		t.Errorf("scale not clamped to min: %v", got.Scale)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	tr := Transform{Scale: 2, TranslateX: 30, TranslateY: -12}
	p := Point{X: 5, Y: 9}
	got := tr.Invert(tr.Apply(p))
	if math.Abs(got.X-p.X) > 1e-12 || math.Abs(got.Y-p.Y) > 1e-12 {
		t.Errorf("Invert(Apply(p)) = %+v, want %+v", got, p)
	}
}

func TestStepReturnsCopies(t *testing.T) {
	e := newTestEngine(t)
	first, err := e.Step(1)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	for id := range first {
		first[id] = Point{X: -1e9, Y: -1e9}
	}
	second, _ := e.Step(1)
	for id, p := range second {
		if p.X == -1e9 {
			t.Fatalf("mutating the returned map affected engine state for %s", id)
		}
	}
}

func TestDeterministicInitialPositions(t *testing.T) {
	snap := testSnapshot(t)
	a, _ := New(snap, DefaultConfig())
	b, _ := New(snap, DefaultConfig())
	if !reflect.DeepEqual(a.Positions(), b.Positions()) {
		t.Error("same seed produced different initial positions")
	}

	cfg := DefaultConfig()
	cfg.Seed = 7
	c, _ := New(snap, cfg)
	if reflect.DeepEqual(a.Positions(), c.Positions()) {
		t.Error("different seeds produced identical initial positions")
	}
}
