package layout_test

import (
	"fmt"

	"github.com/oceanviz/reefgraph/pkg/graph"
	"github.com/oceanviz/reefgraph/pkg/layout"
)

// Example runs a small snapshot to convergence and inspects the result.
func Example() {
	snap := graph.Build([]graph.MeasurementRecord{
		{Region: "Pacific", Date: "2025-01-15", Salinity: 35, Temperature: 18, PH: 8.1, DissolvedOxygen: 7, Depth: 25, FishPopulation: 450, Plankton: 120, CoralCoverage: 62},
	})

	engine, err := layout.New(snap, layout.DefaultConfig())
	if err != nil {
		panic(err)
	}

	positions, ticks := engine.Settle()
	fmt.Println("positions:", len(positions))
	fmt.Println("converged:", engine.Converged())
	fmt.Println("bounded ticks:", ticks > 0 && ticks < 1000)
	// Output:
	// positions: 10
	// converged: true
	// bounded ticks: true
}

// ExampleEngine_Pin shows drag interaction: reheat on drag start, pin on
// every pointer move, unpin on release.
func ExampleEngine_Pin() {
	snap := graph.Build([]graph.MeasurementRecord{
		{Region: "Pacific", Date: "2025-01-15", Salinity: 35},
	})
	engine, _ := layout.New(snap, layout.DefaultConfig())
	engine.Settle()

	engine.Reheat(0.3)
	engine.Pin("region:Pacific", 200, 150)
	positions, _ := engine.Step(1)
	p := positions["region:Pacific"]
	fmt.Printf("dragged to (%.0f, %.0f)\n", p.X, p.Y)

	engine.Unpin("region:Pacific")
	// Output:
	// dragged to (200, 150)
}
