package graph_test

import (
	"fmt"

	"github.com/oceanviz/reefgraph/pkg/graph"
)

// ExampleBuild constructs a snapshot from two survey records and reports
// the node breakdown.
func ExampleBuild() {
	records := []graph.MeasurementRecord{
		{Region: "Pacific", Date: "2025-01-15", Salinity: 35, Temperature: 18, PH: 8.1, DissolvedOxygen: 7, Depth: 25, FishPopulation: 450, Plankton: 120, CoralCoverage: 62},
		{Region: "Atlantic", Date: "2025-02-20", Salinity: 34, Temperature: 14, PH: 8.0, DissolvedOxygen: 8, Depth: 40, FishPopulation: 380, Plankton: 200, CoralCoverage: 31},
	}

	s := graph.Build(records)

	fmt.Println("regions:", len(s.NodesOfKind(graph.KindRegion)))
	fmt.Println("parameters:", len(s.NodesOfKind(graph.KindParameter)))
	fmt.Println("biology:", len(s.NodesOfKind(graph.KindBiology)))
	fmt.Println("periods:", len(s.NodesOfKind(graph.KindTimePeriod)))
	fmt.Println("edges:", len(s.Edges))
	// Output:
	// regions: 2
	// parameters: 5
	// biology: 3
	// periods: 2
	// edges: 18
}

// ExampleNodeID shows the canonical ID scheme.
func ExampleNodeID() {
	fmt.Println(graph.NodeID(graph.KindRegion, "Pacific"))
	fmt.Println(graph.NodeID(graph.KindTimePeriod, "2025-01"))
	// Output:
	// region:Pacific
	// period:2025-01
}
