package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// ExactIndex is a k-d tree over node centres. Its HitTest returns the node
// nearest to the point among those whose radius contains it.
type ExactIndex struct {
	g          *graph.Graph
	generation uint64

	tree      *kdtree.Tree
	maxRadius float64
}

// BuildExact builds a k-d tree snapshot of the graph's node positions.
func BuildExact(g *graph.Graph, radius RadiusFunc) *ExactIndex {
	pts := make(points, len(g.Nodes))
	var maxR float64
	for i, n := range g.Nodes {
		r := radius(n)
		pts[i] = point{x: n.X, y: n.Y, r: r, node: n}
		maxR = max(maxR, r)
	}
	ix := &ExactIndex{
		g:          g,
		generation: g.Generation(),
		maxRadius:  maxR,
	}
	if len(pts) > 0 {
		ix.tree = kdtree.New(pts, false)
	}
	return ix
}

// Stale reports whether node positions changed since the index was built.
func (ix *ExactIndex) Stale() bool { return ix.g.Generation() != ix.generation }

// HitTest returns the nearest node whose radius contains (x, y), or nil.
func (ix *ExactIndex) HitTest(x, y float64) (*graph.Node, error) {
	if ix.Stale() {
		return nil, errors.New(errors.ErrCodeStaleIndex,
			"index built at generation %d, graph is at %d", ix.generation, ix.g.Generation())
	}
	if ix.tree == nil {
		return nil, nil
	}

	keep := kdtree.NewDistKeeper(ix.maxRadius * ix.maxRadius)
	ix.tree.NearestSet(keep, point{x: x, y: y})

	var best *graph.Node
	bestDist := math.Inf(1)
	for _, c := range keep.Heap {
		p, ok := c.Comparable.(point)
		if !ok || p.node == nil {
			continue
		}
		if c.Dist <= p.r*p.r && c.Dist < bestDist {
			best, bestDist = p.node, c.Dist
		}
	}
	return best, nil
}

// =============================================================================
// kdtree adapters
// =============================================================================

// point is a node centre satisfying kdtree.Comparable. Dimension 0 is x,
// dimension 1 is y.
type point struct {
	x, y float64
	r    float64
	node *graph.Node
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("illegal dimension")
	}
}

func (p point) Dims() int { return 2 }

// Distance returns the squared Euclidean distance.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

// points satisfies kdtree.Interface.
type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{points: p, Dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts points along one dimension for median selection.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.points[i].x < p.points[j].x
	}
	return p.points[i].y < p.points[j].y
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
