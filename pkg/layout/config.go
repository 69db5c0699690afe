package layout

import "github.com/oceanviz/reefgraph/pkg/graph"

// Config holds the simulation tuning constants. All values are layout
// heuristics, not physical quantities; the defaults settle a few hundred
// nodes into a readable arrangement within a couple hundred ticks.
type Config struct {
	// Canvas dimensions. Initial positions scatter around the canvas
	// center, and the centering force pulls the centroid back to it.
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`

	// LinkDistance is the target separation for connected nodes.
	// LinkStiffness scales how strongly an edge's weight translates into
	// restoring force.
	LinkDistance  float64 `toml:"link_distance"`
	LinkStiffness float64 `toml:"link_stiffness"`

	// Charge is the many-body strength; negative repels. Theta is the
	// Barnes-Hut accuracy parameter: larger values trade accuracy for
	// speed. ChargeMinDistance avoids singular forces for coincident nodes.
	Charge            float64 `toml:"charge"`
	Theta             float64 `toml:"theta"`
	ChargeMinDistance float64 `toml:"charge_min_distance"`

	// CenterStrength controls the drift correction toward canvas center.
	CenterStrength float64 `toml:"center_strength"`

	// CollideMargin is added to every node's kind radius when enforcing
	// minimum separation; CollideIterations is the relaxation pass count
	// per tick.
	CollideMargin     float64 `toml:"collide_margin"`
	CollideIterations int     `toml:"collide_iterations"`

	// Cooling schedule. Alpha starts at 1, decays by AlphaDecay per tick,
	// and the simulation is converged once it drops below AlphaMin.
	// VelocityDecay is the per-tick friction applied to velocities.
	AlphaDecay    float64 `toml:"alpha_decay"`
	AlphaMin      float64 `toml:"alpha_min"`
	VelocityDecay float64 `toml:"velocity_decay"`

	// View transform scale bounds. Translation is unbounded.
	MinScale float64 `toml:"min_scale"`
	MaxScale float64 `toml:"max_scale"`

	// Seed for the initial position scatter. A fixed seed makes layouts
	// reproducible run to run; vary it to explore alternatives.
	Seed uint64 `toml:"seed"`
}

// DefaultConfig returns the standard tuning constants.
func DefaultConfig() Config {
	return Config{
		Width:             800,
		Height:            600,
		LinkDistance:      100,
		LinkStiffness:     0.1,
		Charge:            -300,
		Theta:             0.9,
		ChargeMinDistance: 1,
		CenterStrength:    0.05,
		CollideMargin:     2,
		CollideIterations: 2,
		AlphaDecay:        0.0228,
		AlphaMin:          0.001,
		VelocityDecay:     0.4,
		MinScale:          0.1,
		MaxScale:          4,
		Seed:              42,
	}
}

// kindRadii gives the collision radius per node kind. Context nodes are
// drawn larger than attribute nodes, so they claim more space.
var kindRadii = map[graph.NodeKind]float64{
	graph.KindRegion:     12,
	graph.KindParameter:  10,
	graph.KindBiology:    8,
	graph.KindTimePeriod: 6,
}

// Radius returns the collision radius for a node kind, before margin.
// Unknown kinds get the smallest radius.
func Radius(kind graph.NodeKind) float64 {
	if r, ok := kindRadii[kind]; ok {
		return r
	}
	return 6
}
