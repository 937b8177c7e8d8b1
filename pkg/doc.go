// Package pkg provides the core libraries for forcegraph, a force-directed
// layout engine for node-link graphs.
//
// # Overview
//
// forcegraph positions the nodes of an undirected graph with a velocity
// Verlet simulation (many-body repulsion, spring links and centering), then
// draws the result through a pan/zoom viewport. The pkg directory is
// organized into four areas:
//
//  1. Model: [graph] (documents, layouts, adjacency) and [errors]
//  2. Layout: [sim] (simulation) and [worker] (off-goroutine runs)
//  3. Interaction: [viewport], [spatial] (hit testing, culling) and [style]
//  4. Orchestration: [pipeline], [render], [cache] and [session]
//
// # Architecture
//
// The typical data flow:
//
//	graph.json (nodes + links)
//	         ↓
//	    [graph] package (validate, build adjacency)
//	         ↓
//	    [sim] package (ticks until alpha < alphaMin)
//	         ↓
//	    [spatial] + [viewport] packages (index, transform, cull)
//	         ↓
//	    [render] package (SVG/PDF/PNG/DOT/JSON output)
//
// # Quick Start
//
// Lay out and render a document:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/forcegraph/pkg/cache"
//	    "github.com/matzehuels/forcegraph/pkg/pipeline"
//	)
//
//	in, _ := pipeline.ReadInputFile("graph.json")
//	runner := pipeline.NewRunner(cache.NewNullCache(), cache.NewDefaultKeyer(), nil)
//	defer runner.Close()
//
//	opts := pipeline.DefaultOptions()
//	opts.Formats = []string{"svg"}
//	result, _ := runner.Execute(context.Background(), in, opts)
//	svg := result.Artifacts["svg"]
//
// Run a simulation by hand:
//
//	s, _ := sim.Initialize(doc, sim.DefaultConfig().Centered(400, 300))
//	for tick := range s.Run() {
//	    fmt.Println(tick.Index, tick.Alpha)
//	}
//
// # Main Packages
//
// [graph] - The JSON node-link document, the positioned layout that wraps it,
// and the validated in-memory graph with resolved edges and adjacency.
//
// [sim] - Alpha-cooled force simulation. Forces are applied in a fixed order
// each tick; a Barnes-Hut quadtree approximates repulsion. Dragging and
// pinning fix a node's position without stopping the simulation.
//
// [worker] - Runs a simulation on its own goroutine and streams positions
// back, for callers that must stay responsive while a layout settles.
//
// [viewport] - The (x, y, k) pan/zoom transform, zooming around a pointer
// and fitting a bounding box into a frame.
//
// [spatial] - Hit testing (bounded grid or exact 2-d tree) and frustum
// culling of nodes and links against the visible world rectangle.
//
// [style] - Colour and radius classifiers: categorical palettes, value
// scales and dynamic radius from degree.
//
// [render] - SVG and text-cell drawing, DOT export and SVG conversion to
// PDF and PNG.
//
// [pipeline] - The load → layout → index → render chain shared by the CLI
// and the HTTP server. Ensures consistent behaviour across entry points.
//
// [cache] - File, Redis, MongoDB and null backends keyed by content hashes
// of the document and options.
//
// [session] - Explorer state (transform, selection, pins) persisted between
// runs in a file or the shared cache.
//
// [generate] - Synthetic clustered graphs and colour palettes for demos and
// benchmarks.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/sim/...      # Specific package
//	go test -run Example       # Examples only
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/graph
// [errors]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/errors
// [sim]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/sim
// [worker]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/worker
// [viewport]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/viewport
// [spatial]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/spatial
// [style]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/style
// [render]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/session
// [generate]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/generate
package pkg
