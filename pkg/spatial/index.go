package spatial

import (
	"math"
	"slices"
	"sort"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// RadiusFunc returns the hit radius of a node in world units.
type RadiusFunc func(n *graph.Node) float64

// Fixed returns a RadiusFunc giving every node radius r.
func Fixed(r float64) RadiusFunc {
	return func(*graph.Node) float64 { return r }
}

// HitTester maps a world point to the node under it. A miss returns nil and
// no error.
type HitTester interface {
	HitTest(x, y float64) (*graph.Node, error)
}

// Index is an immutable snapshot of nodes sorted by x.
type Index struct {
	g          *graph.Graph
	generation uint64

	nodes     []*graph.Node
	xs, ys    []float64
	radii     []float64
	maxRadius float64
}

// Build sorts the graph's nodes by x and records their positions and radii.
// Call it only when positions are stable.
func Build(g *graph.Graph, radius RadiusFunc) *Index {
	ix := &Index{
		g:          g,
		generation: g.Generation(),
		nodes:      slices.Clone(g.Nodes),
	}
	slices.SortStableFunc(ix.nodes, func(a, b *graph.Node) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})

	n := len(ix.nodes)
	ix.xs = make([]float64, n)
	ix.ys = make([]float64, n)
	ix.radii = make([]float64, n)
	for i, node := range ix.nodes {
		ix.xs[i], ix.ys[i] = node.X, node.Y
		r := radius(node)
		ix.radii[i] = r
		ix.maxRadius = max(ix.maxRadius, r)
	}
	return ix
}

// Len returns the number of indexed nodes.
func (ix *Index) Len() int { return len(ix.nodes) }

// Nodes returns the snapshot in ascending x order. Callers must not modify it.
func (ix *Index) Nodes() []*graph.Node { return ix.nodes }

// MaxRadius returns the largest radius in the snapshot.
func (ix *Index) MaxRadius() float64 { return ix.maxRadius }

// Stale reports whether node positions changed since the index was built.
func (ix *Index) Stale() bool { return ix.g.Generation() != ix.generation }

func (ix *Index) check() error {
	if ix.Stale() {
		return errors.New(errors.ErrCodeStaleIndex,
			"index built at generation %d, graph is at %d", ix.generation, ix.g.Generation())
	}
	return nil
}

// QueryRange returns the nodes with xMin <= x <= xMax in ascending x order.
func (ix *Index) QueryRange(xMin, xMax float64) ([]*graph.Node, error) {
	if err := ix.check(); err != nil {
		return nil, err
	}
	if math.IsNaN(xMin) || math.IsNaN(xMax) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "range bounds must be numbers")
	}
	lo, hi := ix.window(xMin, xMax)
	return slices.Clone(ix.nodes[lo:hi]), nil
}

// window returns the half-open index range covering [xMin, xMax].
func (ix *Index) window(xMin, xMax float64) (int, int) {
	if xMin > xMax {
		return 0, 0
	}
	lo := sort.SearchFloat64s(ix.xs, xMin)
	hi := sort.Search(len(ix.xs), func(i int) bool { return ix.xs[i] > xMax })
	return lo, hi
}

// HitTest returns the node under the world point (x, y), or nil when no node
// contains it.
//
// The scan starts at the binary-search position of x and walks outward in
// order of increasing x-distance while that distance is within MaxRadius.
// The first candidate within its own radius wins.
func (ix *Index) HitTest(x, y float64) (*graph.Node, error) {
	if err := ix.check(); err != nil {
		return nil, err
	}
	right := sort.SearchFloat64s(ix.xs, x)
	left := right - 1

	for left >= 0 || right < len(ix.xs) {
		var i int
		switch {
		case left < 0:
			i, right = right, right+1
		case right >= len(ix.xs):
			i, left = left, left-1
		case x-ix.xs[left] <= ix.xs[right]-x:
			i, left = left, left-1
		default:
			i, right = right, right+1
		}

		dx := ix.xs[i] - x
		if math.Abs(dx) > ix.maxRadius {
			// Candidates are visited in increasing |dx|, nothing further can hit.
			return nil, nil
		}
		dy := ix.ys[i] - y
		if dx*dx+dy*dy <= ix.radii[i]*ix.radii[i] {
			return ix.nodes[i], nil
		}
	}
	return nil, nil
}
