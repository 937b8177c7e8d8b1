package sim

import (
	"iter"
	"math"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Phyllotaxis placement for nodes without an initial position.
const (
	initialRadius = 10.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Tick is one element of the batch sequence returned by [Simulation.Run].
//
// Progress ticks are yielded before each step with Progress = Index/Total.
// The final tick has Done set, Progress 1, and carries the finished graph.
type Tick struct {
	Index    int
	Total    int
	Progress float64
	Alpha    float64
	Done     bool
	Graph    *graph.Graph
}

// Simulation advances node positions of a graph under charge, link and
// center forces.
type Simulation struct {
	g   *graph.Graph
	cfg Config

	alpha       float64
	alphaTarget float64
	ticks       int

	bias         []float64
	distanceMax2 float64
	rng          lcg
	used         bool
}

// Initialize builds the graph from doc and prepares a simulation for it.
// It fails with a GRAPH_INTEGRITY error when a link references an unknown
// node, or INVALID_CONFIG when cfg is unusable.
func Initialize(doc graph.Document, cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := graph.Build(doc)
	if err != nil {
		return nil, err
	}
	return New(g, cfg)
}

// New prepares a simulation for an already built graph. Nodes without a
// position are placed on a phyllotaxis spiral around the origin.
func New(g *graph.Graph, cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulation{
		g:           g,
		alpha:       cfg.Alpha,
		alphaTarget: cfg.AlphaTarget,
		bias:        linkBias(g),
		rng:         lcg{s: cfg.Seed},
	}
	s.setConfig(cfg)

	placed := false
	for i, n := range g.Nodes {
		if n.Positioned {
			continue
		}
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		n.X, n.Y = r*math.Cos(a), r*math.Sin(a)
		n.VX, n.VY = 0, 0
		n.Positioned = true
		placed = true
	}
	if placed {
		g.Touch()
	}
	return s, nil
}

func (s *Simulation) setConfig(cfg Config) {
	s.cfg = cfg
	s.distanceMax2 = cfg.distanceMax2()
}

// Graph returns the simulated graph. Its positions change on every step.
func (s *Simulation) Graph() *graph.Graph { return s.g }

// Config returns the active configuration.
func (s *Simulation) Config() Config { return s.cfg }

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// AlphaTarget returns the temperature alpha is moving toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// Ticks returns the number of steps taken so far.
func (s *Simulation) Ticks() int { return s.ticks }

// Settled reports whether alpha has cooled below alphaMin.
func (s *Simulation) Settled() bool { return s.alpha < s.cfg.AlphaMin }

// Iterations returns the number of steps a batch run from the current alpha
// takes. With the defaults this is ceil(ln(0.001)/ln(1-0.0228)) = 300.
func (s *Simulation) Iterations() int {
	return Iterations(s.alpha, s.cfg.AlphaMin, s.cfg.AlphaDecay)
}

// Step advances the simulation by one tick: forces at the current alpha,
// then velocity decay and integration, then alpha decay.
func (s *Simulation) Step() {
	alpha := s.alpha

	s.charge(alpha)
	s.link(alpha)
	s.center()

	keep := 1 - s.cfg.VelocityDecay
	for _, n := range s.g.Nodes {
		if n.Pinned {
			n.X, n.Y = n.FX, n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= keep
		n.VY *= keep
		n.X += n.VX
		n.Y += n.VY
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay
	s.ticks++
	s.g.Touch()
}

// Run returns the batch sequence: one progress tick before each of the
// [Simulation.Iterations] steps and a terminal tick carrying the graph.
//
// Batch runs anneal toward zero, so alphaTarget is reset to 0 first. An empty
// graph yields only the terminal tick. The sequence is single-use: once any
// Run sequence has started, later iterations yield nothing. Breaking out of
// the loop stops the simulation where it is.
func (s *Simulation) Run() iter.Seq[Tick] {
	return func(yield func(Tick) bool) {
		if s.used {
			return
		}
		s.used = true
		s.alphaTarget = 0

		if len(s.g.Nodes) == 0 {
			yield(Tick{Progress: 1, Alpha: s.alpha, Done: true, Graph: s.g})
			return
		}

		n := s.Iterations()
		for i := range n {
			if !yield(Tick{Index: i, Total: n, Progress: float64(i) / float64(n), Alpha: s.alpha}) {
				return
			}
			s.Step()
		}
		// Rounding can leave alpha a hair above the threshold.
		for s.alpha > s.cfg.AlphaMin {
			s.Step()
		}
		yield(Tick{Index: n, Total: n, Progress: 1, Alpha: s.alpha, Done: true, Graph: s.g})
	}
}

// =============================================================================
// Continuous Mode
// =============================================================================

// StartDrag pins the node at its current position and keeps the system warm
// with alphaTarget 0.3 until [Simulation.EndDrag].
func (s *Simulation) StartDrag(id string) error {
	n, err := s.g.MustNode(id)
	if err != nil {
		return err
	}
	n.Pin(n.X, n.Y)
	s.alphaTarget = DragAlphaTarget
	s.g.Touch()
	return nil
}

// Drag moves the pinned node to (x, y).
func (s *Simulation) Drag(id string, x, y float64) error {
	n, err := s.g.MustNode(id)
	if err != nil {
		return err
	}
	n.Pin(x, y)
	n.X, n.Y = x, y
	s.g.Touch()
	return nil
}

// EndDrag releases the node and lets the system cool toward rest.
func (s *Simulation) EndDrag(id string) error {
	n, err := s.g.MustNode(id)
	if err != nil {
		return err
	}
	n.Unpin()
	s.alphaTarget = 0
	s.g.Touch()
	return nil
}

// Pin fixes a node at (x, y) without changing the temperature.
func (s *Simulation) Pin(id string, x, y float64) error {
	n, err := s.g.MustNode(id)
	if err != nil {
		return err
	}
	n.Pin(x, y)
	s.g.Touch()
	return nil
}

// Unpin releases a node pinned with [Simulation.Pin].
func (s *Simulation) Unpin(id string) error {
	n, err := s.g.MustNode(id)
	if err != nil {
		return err
	}
	n.Unpin()
	s.g.Touch()
	return nil
}

// Reheat restores alpha to its configured starting value.
func (s *Simulation) Reheat() { s.alpha = s.cfg.Alpha }

// SetAlphaTarget sets the temperature alpha moves toward on every step.
func (s *Simulation) SetAlphaTarget(target float64) {
	s.alphaTarget = max(target, 0)
}
