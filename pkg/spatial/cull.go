package spatial

import (
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// Visible is the draw set of a culled frame.
type Visible struct {
	Nodes []*graph.Node
	Edges []*graph.Edge
}

// Cull returns the nodes and edges visible in a width x height screen under
// transform t. Nodes are tested against the world rectangle expanded by
// maxRadius, edges against the unexpanded rectangle.
func Cull(nodes []*graph.Node, edges []*graph.Edge, t viewport.Transform, width, height, maxRadius float64) Visible {
	world := t.InvertRect(viewport.Rect{MaxX: width, MaxY: height})
	padded := world.Expand(maxRadius)

	var out Visible
	for _, n := range nodes {
		if padded.Contains(n.X, n.Y) {
			out.Nodes = append(out.Nodes, n)
		}
	}
	out.Edges = cullEdges(edges, world)
	return out
}

// Cull is [Cull] over the index snapshot. Candidate nodes come from an
// x-range query, so the cost is proportional to the visible slice.
func (ix *Index) Cull(edges []*graph.Edge, t viewport.Transform, width, height float64) (Visible, error) {
	if err := ix.check(); err != nil {
		return Visible{}, err
	}
	world := t.InvertRect(viewport.Rect{MaxX: width, MaxY: height})
	padded := world.Expand(ix.maxRadius)

	var out Visible
	lo, hi := ix.window(padded.MinX, padded.MaxX)
	for i := lo; i < hi; i++ {
		if y := ix.ys[i]; y >= padded.MinY && y <= padded.MaxY {
			out.Nodes = append(out.Nodes, ix.nodes[i])
		}
	}
	out.Edges = cullEdges(edges, world)
	return out, nil
}

func cullEdges(edges []*graph.Edge, world viewport.Rect) []*graph.Edge {
	var out []*graph.Edge
	for _, e := range edges {
		s, d := e.Source, e.Target
		if world.Contains(s.X, s.Y) || world.Contains(d.X, d.Y) ||
			SegmentIntersects(world, s.X, s.Y, d.X, d.Y) {
			out = append(out, e)
		}
	}
	return out
}

// SegmentIntersects reports whether the segment (x0,y0)-(x1,y1) touches r,
// using Liang–Barsky parametric clipping.
func SegmentIntersects(r viewport.Rect, x0, y0, x1, y1 float64) bool {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			// Parallel to this edge: inside iff q >= 0.
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return false
			}
			t1 = min(t1, t)
		}
		return true
	}

	return clip(-dx, x0-r.MinX) &&
		clip(dx, r.MaxX-x0) &&
		clip(-dy, y0-r.MinY) &&
		clip(dy, r.MaxY-y0) &&
		t0 <= t1
}
