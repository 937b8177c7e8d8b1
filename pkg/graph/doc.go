// Package graph provides the node-link model laid out by forcegraph and its
// JSON wire format.
//
// # Architecture
//
// The package sits at the boundary between external documents and the
// simulation:
//
//   - [Document], [DocNode], [DocLink]: wire format (JSON files, API bodies, cache)
//   - [Graph], [Node], [Edge]: resolved in-memory model mutated by pkg/sim
//   - [Layout]: a finished, positioned document plus run metadata
//
// [Build] converts a document into a graph and [Graph.Document] converts back.
//
// # Document Format
//
// Documents follow the d3 node-link shape. Ids and clusters may be strings or
// numbers:
//
//	{
//	  "nodes": [{"id": 1, "num": 12, "cluster": 3}, {"id": "b", "pie": {"x": 2, "y": 1}}],
//	  "links": [{"source": 1, "target": "b"}]
//	}
//
// A document whose nodes all carry "x" and "y" is pre-simulated: consumers may
// skip the simulation entirely (see [Document.Positioned]).
//
// # Integrity
//
// Every link must name existing nodes. [Build] fails with a GRAPH_INTEGRITY
// error naming the first offending link and never returns a partial graph.
//
// # Generations
//
// Node positions are owned by whoever is stepping the graph. Every position
// mutation is followed by [Graph.Touch], which bumps [Graph.Generation]. Derived
// snapshots such as pkg/spatial indexes record the generation they were built
// from and refuse to answer once it moves on.
//
// # Concurrency
//
// A Graph is not safe for concurrent mutation. Readers on other goroutines
// should work on a [Graph.Clone].
package graph
