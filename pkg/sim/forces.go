package sim

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// =============================================================================
// Charge
// =============================================================================

// charge applies inverse-square repulsion to every node's velocity.
func (s *Simulation) charge(alpha float64) {
	nodes := s.g.Nodes
	if len(nodes) < 2 || s.cfg.ChargeStrength == 0 {
		return
	}
	if len(nodes) <= s.cfg.ExactChargeLimit {
		s.chargeExact(alpha)
		return
	}
	root := newQuadtree(nodes)
	theta2 := s.cfg.Theta * s.cfg.Theta
	for _, n := range nodes {
		s.chargeApprox(n, root, alpha, theta2)
	}
}

// chargeExact visits every pair once.
func (s *Simulation) chargeExact(alpha float64) {
	nodes := s.g.Nodes
	strength := s.cfg.ChargeStrength * alpha
	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			dx, dy, l, ok := s.separation(a, b.X, b.Y)
			if !ok {
				continue
			}
			w := strength / l
			a.VX += dx * w
			a.VY += dy * w
			b.VX -= dx * w
			b.VY -= dy * w
		}
	}
}

// chargeApprox treats cells that are small relative to their distance
// (size/distance < theta) as a single aggregated charge.
func (s *Simulation) chargeApprox(n *graph.Node, q *quad, alpha, theta2 float64) {
	if q.count == 0 {
		return
	}
	if q.internal() {
		dx, dy := q.cx-n.X, q.cy-n.Y
		l := dx*dx + dy*dy
		if q.size*q.size/theta2 < l {
			if dx, dy, l, ok := s.separation(n, q.cx, q.cy); ok {
				w := s.cfg.ChargeStrength * float64(q.count) * alpha / l
				n.VX += dx * w
				n.VY += dy * w
			}
			return
		}
		for _, c := range q.children {
			if c != nil {
				s.chargeApprox(n, c, alpha, theta2)
			}
		}
		return
	}
	for _, m := range q.leaf {
		if m == n {
			continue
		}
		if dx, dy, l, ok := s.separation(n, m.X, m.Y); ok {
			w := s.cfg.ChargeStrength * alpha / l
			n.VX += dx * w
			n.VY += dy * w
		}
	}
}

// separation returns the offset from n to (x, y) and the clamped squared
// distance used as the inverse-square denominator. Coincident axes are
// jiggled apart. ok is false beyond DistanceMax.
func (s *Simulation) separation(n *graph.Node, x, y float64) (dx, dy, l float64, ok bool) {
	dx, dy = x-n.X, y-n.Y
	l = dx*dx + dy*dy
	if l >= s.distanceMax2 {
		return 0, 0, 0, false
	}
	if dx == 0 {
		dx = s.rng.jiggle()
		l += dx * dx
	}
	if dy == 0 {
		dy = s.rng.jiggle()
		l += dy * dy
	}
	if min2 := s.cfg.DistanceMin * s.cfg.DistanceMin; l < min2 {
		l = math.Sqrt(min2 * l)
	}
	return dx, dy, l, true
}

// =============================================================================
// Link
// =============================================================================

// link pulls each edge's endpoints toward the target distance using their
// predicted positions. The lower-degree endpoint takes the larger share.
func (s *Simulation) link(alpha float64) {
	for range s.cfg.LinkIterations {
		for _, e := range s.g.Edges {
			src, tgt := e.Source, e.Target
			if src == tgt {
				continue
			}
			x := tgt.X + tgt.VX - src.X - src.VX
			if x == 0 {
				x = s.rng.jiggle()
			}
			y := tgt.Y + tgt.VY - src.Y - src.VY
			if y == 0 {
				y = s.rng.jiggle()
			}
			l := math.Sqrt(x*x + y*y)
			l = (l - s.linkDistance(e)) / l * alpha * s.linkStrength(e)
			x *= l
			y *= l

			b := s.bias[e.Index]
			tgt.VX -= x * b
			tgt.VY -= y * b
			src.VX += x * (1 - b)
			src.VY += y * (1 - b)
		}
	}
}

func (s *Simulation) linkDistance(e *graph.Edge) float64 {
	if e.Distance != nil {
		return *e.Distance
	}
	return s.cfg.LinkDistance
}

func (s *Simulation) linkStrength(e *graph.Edge) float64 {
	if e.Strength != nil {
		return *e.Strength
	}
	return s.cfg.LinkStrength
}

// linkBias returns, per edge, the share of the correction applied to the
// target: deg(source) / (deg(source) + deg(target)).
func linkBias(g *graph.Graph) []float64 {
	deg := g.Degrees()
	bias := make([]float64, len(g.Edges))
	for i, e := range g.Edges {
		s, t := deg[e.Source.Index], deg[e.Target.Index]
		bias[i] = float64(s) / float64(s+t)
	}
	return bias
}

// =============================================================================
// Center
// =============================================================================

// center translates all nodes so the centroid moves toward the centre point.
func (s *Simulation) center() {
	nodes := s.g.Nodes
	if len(nodes) == 0 || s.cfg.CenterStrength == 0 {
		return
	}
	var sx, sy float64
	for _, n := range nodes {
		sx += n.X
		sy += n.Y
	}
	k := float64(len(nodes))
	sx = (sx/k - s.cfg.CenterX) * s.cfg.CenterStrength
	sy = (sy/k - s.cfg.CenterY) * s.cfg.CenterStrength
	for _, n := range nodes {
		n.X -= sx
		n.Y -= sy
	}
}
