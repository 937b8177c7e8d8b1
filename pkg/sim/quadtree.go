package sim

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// maxQuadDepth stops subdivision for (nearly) coincident nodes; deeper
// leaves keep a list instead.
const maxQuadDepth = 48

// quad is a Barnes–Hut quadtree cell. Internal cells aggregate the charge of
// their children at its centre of charge; leaves hold the nodes themselves.
type quad struct {
	x0, y0, size float64

	cx, cy float64 // centre of charge
	count  int

	children [4]*quad
	leaf     []*graph.Node
}

// newQuadtree builds a square quadtree over the given nodes.
func newQuadtree(nodes []*graph.Node) *quad {
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		x0, y0 = min(x0, n.X), min(y0, n.Y)
		x1, y1 = max(x1, n.X), max(y1, n.Y)
	}
	size := max(x1-x0, y1-y0, 1)
	// Pad so nodes on the far edge fall inside.
	size *= 1 + 1e-9

	root := &quad{x0: x0, y0: y0, size: size}
	for _, n := range nodes {
		root.insert(n, 0)
	}
	root.accumulate()
	return root
}

func (q *quad) internal() bool {
	return q.children != [4]*quad{}
}

func (q *quad) insert(n *graph.Node, depth int) {
	if !q.internal() {
		if len(q.leaf) == 0 || depth >= maxQuadDepth {
			q.leaf = append(q.leaf, n)
			return
		}
		// Split: push the existing occupants one level down.
		old := q.leaf
		q.leaf = nil
		for _, o := range old {
			q.child(o).insert(o, depth+1)
		}
	}
	q.child(n).insert(n, depth+1)
}

// child returns (creating on demand) the quadrant containing n.
func (q *quad) child(n *graph.Node) *quad {
	half := q.size / 2
	i := 0
	x0, y0 := q.x0, q.y0
	if n.X >= q.x0+half {
		i |= 1
		x0 += half
	}
	if n.Y >= q.y0+half {
		i |= 2
		y0 += half
	}
	if q.children[i] == nil {
		q.children[i] = &quad{x0: x0, y0: y0, size: half}
	}
	return q.children[i]
}

// accumulate computes the centre of charge bottom-up. All nodes carry the
// same charge, so the centre is the plain centroid.
func (q *quad) accumulate() {
	if !q.internal() {
		for _, n := range q.leaf {
			q.cx += n.X
			q.cy += n.Y
		}
		q.count = len(q.leaf)
	} else {
		for _, c := range q.children {
			if c == nil {
				continue
			}
			c.accumulate()
			q.cx += c.cx * float64(c.count)
			q.cy += c.cy * float64(c.count)
			q.count += c.count
		}
	}
	if q.count > 0 {
		q.cx /= float64(q.count)
		q.cy /= float64(q.count)
	}
}
