package sim

import (
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

func TestIterations(t *testing.T) {
	tests := []struct {
		name                   string
		alpha, alphaMin, decay float64
		want                   int
	}{
		{"defaults", 1, 0.001, 0.0228, 300},
		{"faster decay", 1, 0.001, 0.1, 66},
		{"already cold", 0.0005, 0.001, 0.0228, 0},
		{"partially cooled", 0.01, 0.001, 0.0228, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Iterations(tt.alpha, tt.alphaMin, tt.decay); got != tt.want {
				t.Errorf("Iterations() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunChain(t *testing.T) {
	cfg := DefaultConfig().Centered(800, 600)
	s, err := Initialize(chain("A", "B", "C"), cfg)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := s.Iterations(); got != 300 {
		t.Fatalf("Iterations() = %d, want 300", got)
	}

	var progress []float64
	var final *graph.Graph
	for tick := range s.Run() {
		if tick.Done {
			final = tick.Graph
			if tick.Progress != 1 {
				t.Errorf("terminal progress = %v, want 1", tick.Progress)
			}
			continue
		}
		progress = append(progress, tick.Progress)
	}

	if len(progress) != 300 {
		t.Fatalf("progress ticks = %d, want 300", len(progress))
	}
	for i, p := range progress {
		if want := float64(i) / 300; p != want {
			t.Fatalf("progress[%d] = %v, want %v", i, p, want)
		}
	}
	if final == nil {
		t.Fatal("no terminal tick")
	}
	if s.Alpha() > cfg.AlphaMin {
		t.Errorf("alpha = %v after run, want <= %v", s.Alpha(), cfg.AlphaMin)
	}
	if !s.Settled() {
		t.Error("Settled() = false after run")
	}

	dist := func(id string) float64 {
		n, _ := final.Node(id)
		if !n.Finite() {
			t.Fatalf("node %s not finite: %+v", id, n)
		}
		return math.Hypot(n.X-cfg.CenterX, n.Y-cfg.CenterY)
	}
	a, b, c := dist("A"), dist("B"), dist("C")
	if !(b < a && b < c) {
		t.Errorf("middle node not closest to centre: A=%.3f B=%.3f C=%.3f", a, b, c)
	}
}

func TestRunEmpty(t *testing.T) {
	s, err := Initialize(graph.Document{}, DefaultConfig())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	var ticks []Tick
	for tick := range s.Run() {
		ticks = append(ticks, tick)
	}
	if len(ticks) != 1 || !ticks[0].Done {
		t.Fatalf("ticks = %+v, want a single terminal tick", ticks)
	}
	if ticks[0].Graph.NodeCount() != 0 {
		t.Errorf("terminal graph has %d nodes", ticks[0].Graph.NodeCount())
	}
}

func TestRunSingleUse(t *testing.T) {
	s, err := Initialize(chain("a", "b"), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	seq := s.Run()
	for range seq {
	}

	count := 0
	for range seq {
		count++
	}
	for range s.Run() {
		count++
	}
	if count != 0 {
		t.Errorf("re-run yielded %d ticks, want 0", count)
	}
}

func TestRunBreak(t *testing.T) {
	s, err := Initialize(chain("a", "b"), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for tick := range s.Run() {
		if tick.Index == 10 {
			break
		}
	}
	if s.Ticks() != 10 {
		t.Errorf("Ticks() = %d after break, want 10", s.Ticks())
	}
}

func TestFinitePositions(t *testing.T) {
	tests := []struct {
		name string
		doc  graph.Document
		cfg  func(Config) Config
	}{
		{
			name: "CoincidentNodes",
			doc:  coincident(20),
			cfg:  func(c Config) Config { return c },
		},
		{
			name: "BarnesHut",
			doc:  random(600, 3),
			cfg:  func(c Config) Config { return c },
		},
		{
			name: "BarnesHutCoincident",
			doc:  coincident(50),
			cfg: func(c Config) Config {
				c.ExactChargeLimit = 0
				return c
			},
		},
		{
			name: "DistanceMax",
			doc:  random(80, 5),
			cfg: func(c Config) Config {
				c.DistanceMax = 50
				return c
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Initialize(tt.doc, tt.cfg(DefaultConfig()))
			if err != nil {
				t.Fatalf("Initialize: %v", err)
			}
			for range s.Run() {
			}
			for _, n := range s.Graph().Nodes {
				if !n.Finite() {
					t.Fatalf("node %s not finite: (%v, %v)", n.ID, n.X, n.Y)
				}
			}
			if s.Alpha() > s.Config().AlphaMin {
				t.Errorf("alpha = %v, want <= %v", s.Alpha(), s.Config().AlphaMin)
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	run := func() []float64 {
		s, err := Initialize(random(40, 7), DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		for range s.Run() {
		}
		var out []float64
		for _, n := range s.Graph().Nodes {
			out = append(out, n.X, n.Y)
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("coordinate %d differs between runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestPinnedNodeHolds(t *testing.T) {
	fx, fy := 123.5, -42.25
	doc := chain("a", "b", "c")
	doc.Nodes[1].FX, doc.Nodes[1].FY = &fx, &fy

	s, err := Initialize(doc, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := s.Graph().Node("b")
	for i := range 50 {
		s.Step()
		if b.X != fx || b.Y != fy {
			t.Fatalf("step %d: pinned node at (%v, %v), want (%v, %v)", i, b.X, b.Y, fx, fy)
		}
	}

	if err := s.Unpin("b"); err != nil {
		t.Fatal(err)
	}
	s.Step()
	if b.X == fx && b.Y == fy {
		t.Error("unpinned node did not move")
	}
}

func TestLinkOverrides(t *testing.T) {
	zero, far := 0.0, 200.0
	tests := []struct {
		name     string
		link     graph.DocLink
		distance float64
		strength float64
		moves    bool
	}{
		{"Defaults", graph.DocLink{Source: "a", Target: "b"}, 40, 1, true},
		{"ZeroStrength", graph.DocLink{Source: "a", Target: "b", Strength: &zero}, 40, 0, false},
		{"ZeroDistance", graph.DocLink{Source: "a", Target: "b", Distance: &zero}, 0, 1, true},
		{"LongDistance", graph.DocLink{Source: "a", Target: "b", Distance: &far}, 200, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x0, x1, y := 0.0, 100.0, 0.0
			doc := graph.Document{
				Nodes: []graph.DocNode{{ID: "a", X: &x0, Y: &y}, {ID: "b", X: &x1, Y: &y}},
				Links: []graph.DocLink{tt.link},
			}
			cfg := DefaultConfig()
			cfg.ChargeStrength = 0
			cfg.CenterStrength = 0
			s, err := Initialize(doc, cfg)
			if err != nil {
				t.Fatal(err)
			}
			e := s.Graph().Edges[0]
			if got := s.linkDistance(e); got != tt.distance {
				t.Errorf("linkDistance = %v, want %v", got, tt.distance)
			}
			if got := s.linkStrength(e); got != tt.strength {
				t.Errorf("linkStrength = %v, want %v", got, tt.strength)
			}

			s.Step()
			a, _ := s.Graph().Node("a")
			if moved := a.X != x0; moved != tt.moves {
				t.Errorf("a moved = %v (x = %v), want %v", moved, a.X, tt.moves)
			}
		})
	}
}

func TestDrag(t *testing.T) {
	s, err := Initialize(chain("a", "b", "c"), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for range s.Run() {
	}

	if err := s.StartDrag("a"); err != nil {
		t.Fatal(err)
	}
	if s.AlphaTarget() != DragAlphaTarget {
		t.Errorf("AlphaTarget() = %v, want %v", s.AlphaTarget(), DragAlphaTarget)
	}
	if err := s.Drag("a", 500, 500); err != nil {
		t.Fatal(err)
	}
	for range 100 {
		s.Step()
	}
	a, _ := s.Graph().Node("a")
	if a.X != 500 || a.Y != 500 {
		t.Errorf("dragged node at (%v, %v), want (500, 500)", a.X, a.Y)
	}
	if s.Settled() {
		t.Error("simulation settled while dragging")
	}

	if err := s.EndDrag("a"); err != nil {
		t.Fatal(err)
	}
	if a.Pinned || s.AlphaTarget() != 0 {
		t.Errorf("after EndDrag pinned=%v target=%v", a.Pinned, s.AlphaTarget())
	}
	for range 400 {
		s.Step()
	}
	if !s.Settled() {
		t.Errorf("alpha = %v, expected the system to cool after release", s.Alpha())
	}

	if err := s.StartDrag("missing"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("StartDrag(missing) = %v, want NODE_NOT_FOUND", err)
	}
}

func TestInitializeErrors(t *testing.T) {
	bad := DefaultConfig()
	bad.AlphaDecay = 0

	tests := []struct {
		name string
		doc  graph.Document
		cfg  Config
		code errors.Code
	}{
		{
			name: "UnknownNode",
			doc: graph.Document{
				Nodes: []graph.DocNode{{ID: "a"}},
				Links: []graph.DocLink{{Source: "a", Target: "b"}},
			},
			cfg:  DefaultConfig(),
			code: errors.ErrCodeGraphIntegrity,
		},
		{
			name: "BadConfig",
			doc:  chain("a"),
			cfg:  bad,
			code: errors.ErrCodeInvalidConfig,
		},
		{
			name: "ZeroConfig",
			doc:  chain("a"),
			cfg:  Config{},
			code: errors.ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Initialize(tt.doc, tt.cfg)
			if s != nil {
				t.Error("simulation returned alongside error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"velocity decay above one", func(c *Config) { c.VelocityDecay = 1.5 }, true},
		{"zero distance min", func(c *Config) { c.DistanceMin = 0 }, true},
		{"distance max below min", func(c *Config) { c.DistanceMax = 0.5 }, true},
		{"NaN strength", func(c *Config) { c.ChargeStrength = math.NaN() }, true},
		{"no link iterations", func(c *Config) { c.LinkIterations = 0 }, true},
		{"negative alpha target", func(c *Config) { c.AlphaTarget = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPhyllotaxisPlacement(t *testing.T) {
	x := 7.0
	doc := chain("a", "b", "c")
	doc.Nodes[2].X, doc.Nodes[2].Y = &x, &x

	s, err := Initialize(doc, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	g := s.Graph()
	a, b, c := g.Nodes[0], g.Nodes[1], g.Nodes[2]

	if want := 10 * math.Sqrt(0.5); math.Abs(a.X-want) > 1e-12 || a.Y != 0 {
		t.Errorf("a = (%v, %v), want (%v, 0)", a.X, a.Y, want)
	}
	if r := math.Hypot(b.X, b.Y); math.Abs(r-10*math.Sqrt(1.5)) > 1e-12 {
		t.Errorf("b radius = %v, want %v", r, 10*math.Sqrt(1.5))
	}
	if c.X != x || c.Y != x {
		t.Errorf("positioned node moved to (%v, %v)", c.X, c.Y)
	}
}

func TestBarnesHutMatchesExactAtThetaZero(t *testing.T) {
	doc := random(60, 11)
	cfg := DefaultConfig()

	velocities := func(limit int, theta float64) []float64 {
		c := cfg
		c.ExactChargeLimit = limit
		c.Theta = theta
		s, err := Initialize(doc, c)
		if err != nil {
			t.Fatal(err)
		}
		s.charge(1)
		var out []float64
		for _, n := range s.Graph().Nodes {
			out = append(out, n.VX, n.VY)
		}
		return out
	}

	exact := velocities(1000, 0)
	approx := velocities(0, 0)
	for i := range exact {
		if math.Abs(exact[i]-approx[i]) > 1e-9*max(1, math.Abs(exact[i])) {
			t.Fatalf("velocity %d: exact %v, quadtree %v", i, exact[i], approx[i])
		}
	}

	loose := velocities(0, cfg.Theta)
	var errSum, norm float64
	for i := range exact {
		errSum += math.Abs(exact[i] - loose[i])
		norm += math.Abs(exact[i])
	}
	if errSum/norm > 0.25 {
		t.Errorf("theta %.1f relative error %.3f, want < 0.25", cfg.Theta, errSum/norm)
	}
}

func TestEngineLifecycle(t *testing.T) {
	e := NewEngine(DefaultConfig())
	if e.Step() {
		t.Error("Step() on idle engine = true")
	}

	g, err := graph.Build(chain("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Init(g); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !e.Step() {
		t.Fatal("Step() after Init = false")
	}

	s, err := e.Simulation()
	if err != nil {
		t.Fatal(err)
	}
	alpha := s.Alpha()

	cfg := DefaultConfig()
	cfg.LinkDistance = 80
	if err := e.Update(cfg); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Config().LinkDistance != 80 || s.Alpha() != alpha {
		t.Errorf("Update changed state: distance=%v alpha=%v", s.Config().LinkDistance, s.Alpha())
	}

	bad := cfg
	bad.AlphaMin = 0
	if err := e.Update(bad); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Update(bad) = %v, want INVALID_CONFIG", err)
	}

	e.Teardown()
	if e.Active() || e.Step() {
		t.Error("engine still active after Teardown")
	}
	if _, err := e.Simulation(); !errors.Is(err, errors.ErrCodeCancelled) {
		t.Errorf("Simulation() after Teardown = %v, want CANCELLED", err)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func chain(ids ...string) graph.Document {
	var d graph.Document
	for i, id := range ids {
		d.Nodes = append(d.Nodes, graph.DocNode{ID: graph.ID(id)})
		if i > 0 {
			d.Links = append(d.Links, graph.DocLink{Source: graph.ID(ids[i-1]), Target: graph.ID(id)})
		}
	}
	return d
}

// random returns n positioned nodes with one link each to an earlier node.
func random(n int, seed uint64) graph.Document {
	r := rand.New(rand.NewPCG(seed, seed))
	var d graph.Document
	for i := range n {
		x, y := r.Float64()*1000, r.Float64()*1000
		d.Nodes = append(d.Nodes, graph.DocNode{ID: graph.ID(strconv.Itoa(i)), X: &x, Y: &y})
		if i > 0 {
			d.Links = append(d.Links, graph.DocLink{
				Source: graph.ID(strconv.Itoa(i)),
				Target: graph.ID(strconv.Itoa(r.IntN(i))),
			})
		}
	}
	return d
}

// coincident returns n unlinked nodes stacked on the same point.
func coincident(n int) graph.Document {
	var d graph.Document
	for i := range n {
		x, y := 5.0, 5.0
		d.Nodes = append(d.Nodes, graph.DocNode{ID: graph.ID(strconv.Itoa(i)), X: &x, Y: &y})
	}
	return d
}
