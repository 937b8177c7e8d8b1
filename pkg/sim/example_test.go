package sim_test

import (
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

func ExampleSimulation_Run() {
	doc := graph.Document{
		Nodes: []graph.DocNode{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Links: []graph.DocLink{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}},
	}

	s, err := sim.Initialize(doc, sim.DefaultConfig().Centered(800, 600))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	steps := 0
	for tick := range s.Run() {
		if tick.Done {
			fmt.Println("steps:", steps)
			fmt.Println("settled:", s.Settled())
			break
		}
		steps++
	}
	// Output:
	// steps: 300
	// settled: true
}
