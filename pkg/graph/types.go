package graph

import (
	"math"
	"sync/atomic"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

// =============================================================================
// Node
// =============================================================================

// Node is a simulated graph vertex.
//
// Position and velocity are mutated by the simulation on every tick; the
// remaining fields are fixed once the graph is built.
type Node struct {
	ID    string
	Index int // Position in Graph.Nodes

	X, Y   float64
	VX, VY float64

	// Positioned is set once X and Y hold a real position, either from the
	// input document or from initial placement.
	Positioned bool

	// FX, FY hold the pinned position while Pinned is set. A pinned node is
	// placed at (FX, FY) with zero velocity after every tick.
	FX, FY float64
	Pinned bool

	Value    float64            // Numeric attribute used for radius scaling
	HasValue bool               // Value came from the document (num may be 0)
	Category string             // Categorical attribute used for colour
	Pie      map[string]float64 // Optional category -> weight breakdown
}

// Pin fixes the node at (x, y) until Unpin is called.
func (n *Node) Pin(x, y float64) {
	n.FX, n.FY = x, y
	n.Pinned = true
}

// Unpin releases a pinned node back to the integrator.
func (n *Node) Unpin() {
	n.FX, n.FY = 0, 0
	n.Pinned = false
}

// Finite reports whether the node's position and velocity are finite numbers.
func (n *Node) Finite() bool {
	for _, v := range [...]float64{n.X, n.Y, n.VX, n.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a link with both endpoints resolved.
// Distance and Strength override the simulation defaults when non-nil.
type Edge struct {
	Index    int
	Source   *Node
	Target   *Node
	Distance *float64
	Strength *float64
}

// =============================================================================
// Graph
// =============================================================================

// Graph is the resolved node-link model. Its shape (node and edge identities)
// is fixed after [Build]; only numeric node fields change afterwards.
type Graph struct {
	Nodes []*Node
	Edges []*Edge

	byID       map[string]*Node
	generation atomic.Uint64
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// MustNode returns the node with the given id or a NODE_NOT_FOUND error.
func (g *Graph) MustNode(id string) (*Node, error) {
	n, ok := g.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
	}
	return n, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Generation returns a counter that changes whenever node positions change.
func (g *Graph) Generation() uint64 { return g.generation.Load() }

// Touch records a position mutation. Callers that move nodes must call Touch
// once they are done so derived snapshots notice.
func (g *Graph) Touch() { g.generation.Add(1) }

// Degrees returns the number of edges incident to each node, indexed by
// Node.Index. Self-loops count twice.
func (g *Graph) Degrees() []int {
	deg := make([]int, len(g.Nodes))
	for _, e := range g.Edges {
		deg[e.Source.Index]++
		deg[e.Target.Index]++
	}
	return deg
}

// Bounds returns the bounding box of all node centres.
// ok is false for an empty graph.
func (g *Graph) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	if len(g.Nodes) == 0 {
		return 0, 0, 0, 0, false
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes {
		minX = min(minX, n.X)
		minY = min(minY, n.Y)
		maxX = max(maxX, n.X)
		maxY = max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY, true
}

// Clone returns a deep copy of the graph. The copy shares no pointers with
// the original and starts at the original's generation.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]*Node, len(g.Nodes)),
		Edges: make([]*Edge, len(g.Edges)),
		byID:  make(map[string]*Node, len(g.Nodes)),
	}
	for i, n := range g.Nodes {
		c := *n
		c.Pie = copyPie(n.Pie)
		out.Nodes[i] = &c
		out.byID[c.ID] = &c
	}
	for i, e := range g.Edges {
		c := *e
		c.Distance, c.Strength = clonePtr(e.Distance), clonePtr(e.Strength)
		c.Source = out.Nodes[e.Source.Index]
		c.Target = out.Nodes[e.Target.Index]
		out.Edges[i] = &c
	}
	out.generation.Store(g.Generation())
	return out
}

// CopyPositionsFrom overwrites positions, velocities and pins with those of src.
// Both graphs must have been built from the same document.
func (g *Graph) CopyPositionsFrom(src *Graph) {
	for i, n := range src.Nodes {
		if i >= len(g.Nodes) {
			break
		}
		d := g.Nodes[i]
		d.X, d.Y, d.VX, d.VY = n.X, n.Y, n.VX, n.VY
		d.Positioned = n.Positioned
		d.FX, d.FY, d.Pinned = n.FX, n.FY, n.Pinned
	}
	g.Touch()
}

func copyPie(p map[string]float64) map[string]float64 {
	if p == nil {
		return nil
	}
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
