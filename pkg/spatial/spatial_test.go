package spatial

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

func TestBuildSorted(t *testing.T) {
	g := randomGraph(t, 500, 1)
	ix := Build(g, Fixed(3))

	if ix.Len() != 500 {
		t.Fatalf("Len() = %d, want 500", ix.Len())
	}
	nodes := ix.Nodes()
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1].X > nodes[i].X {
			t.Fatalf("nodes[%d].X = %v > nodes[%d].X = %v", i-1, nodes[i-1].X, i, nodes[i].X)
		}
	}
}

func TestQueryRangeMatchesLinearScan(t *testing.T) {
	for seed := range uint64(20) {
		g := randomGraph(t, 200, seed)
		ix := Build(g, Fixed(3))
		r := rand.New(rand.NewPCG(seed, 99))

		for range 25 {
			a, b := r.Float64()*1200-100, r.Float64()*1200-100
			if a > b {
				a, b = b, a
			}
			got, err := ix.QueryRange(a, b)
			if err != nil {
				t.Fatalf("QueryRange: %v", err)
			}

			var want []string
			for _, n := range g.Nodes {
				if a <= n.X && n.X <= b {
					want = append(want, n.ID)
				}
			}
			if !sameIDs(got, want) {
				t.Fatalf("seed %d range [%v, %v]: got %d nodes, want %d", seed, a, b, len(got), len(want))
			}
		}
	}
}

func TestQueryRangeEdges(t *testing.T) {
	g := build(t, [][2]float64{{0, 0}, {10, 0}, {10, 5}, {20, 0}})
	ix := Build(g, Fixed(1))

	tests := []struct {
		name       string
		xMin, xMax float64
		want       int
	}{
		{"inclusive bounds", 10, 10, 2},
		{"everything", -100, 100, 4},
		{"empty window", 11, 19, 0},
		{"inverted", 20, 0, 0},
		{"left of all", -5, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ix.QueryRange(tt.xMin, tt.xMax)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("QueryRange(%v, %v) = %d nodes, want %d", tt.xMin, tt.xMax, len(got), tt.want)
			}
		})
	}
}

func TestHitTestSingleNode(t *testing.T) {
	g := build(t, [][2]float64{{100, 100}})

	for name, h := range hitTesters(g, Fixed(5)) {
		t.Run(name, func(t *testing.T) {
			n, err := h.HitTest(100, 100)
			if err != nil {
				t.Fatal(err)
			}
			if n == nil || n.ID != "0" {
				t.Errorf("HitTest(100, 100) = %v, want node 0", n)
			}

			n, err = h.HitTest(200, 200)
			if err != nil {
				t.Fatal(err)
			}
			if n != nil {
				t.Errorf("HitTest(200, 200) = %v, want no selection", n.ID)
			}

			n, _ = h.HitTest(104, 102)
			if n == nil {
				t.Error("HitTest inside radius missed")
			}
			n, _ = h.HitTest(104, 104)
			if n != nil {
				t.Error("HitTest outside radius hit")
			}
		})
	}
}

func TestHitTestEmpty(t *testing.T) {
	g := build(t, nil)
	for name, h := range hitTesters(g, Fixed(5)) {
		n, err := h.HitTest(0, 0)
		if n != nil || err != nil {
			t.Errorf("%s: HitTest on empty index = %v, %v", name, n, err)
		}
	}
}

func TestHitTestVariableRadius(t *testing.T) {
	// A small node at x=0 and a big one at x=8 whose disc covers the origin.
	g := build(t, [][2]float64{{0, 50}, {8, 0}})
	radius := func(n *graph.Node) float64 {
		if n.ID == "1" {
			return 10
		}
		return 1
	}
	for name, h := range hitTesters(g, radius) {
		n, err := h.HitTest(0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if n == nil || n.ID != "1" {
			t.Errorf("%s: HitTest(0, 0) = %v, want the large node", name, n)
		}
	}
}

func TestHitTestApproximateVersusExact(t *testing.T) {
	// Node a is nearest in x, node b is nearest in Euclidean distance. Both
	// discs contain the point.
	g := build(t, [][2]float64{{0.5, 3}, {2, 0}})
	approx, err := Build(g, Fixed(4)).HitTest(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	exact, err := BuildExact(g, Fixed(4)).HitTest(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if approx.ID != "0" {
		t.Errorf("bounded scan picked %s, want the x-nearest node 0", approx.ID)
	}
	if exact.ID != "1" {
		t.Errorf("exact index picked %s, want the nearest node 1", exact.ID)
	}
}

func TestHitTestRandomAgreesOnHitOrMiss(t *testing.T) {
	g := randomGraph(t, 300, 4)
	ix := Build(g, Fixed(3))
	ex := BuildExact(g, Fixed(3))
	r := rand.New(rand.NewPCG(4, 4))

	for range 2000 {
		x, y := r.Float64()*1000, r.Float64()*1000
		a, err := ix.HitTest(x, y)
		if err != nil {
			t.Fatal(err)
		}
		b, err := ex.HitTest(x, y)
		if err != nil {
			t.Fatal(err)
		}
		if (a == nil) != (b == nil) {
			t.Fatalf("(%v, %v): bounded scan %v, exact %v", x, y, a, b)
		}
	}
}

func TestStaleIndex(t *testing.T) {
	g := build(t, [][2]float64{{1, 1}, {2, 2}})
	ix := Build(g, Fixed(1))
	ex := BuildExact(g, Fixed(1))

	g.Nodes[0].X = 50
	g.Touch()

	if !ix.Stale() || !ex.Stale() {
		t.Fatal("indexes not stale after Touch")
	}
	if _, err := ix.QueryRange(0, 10); !errors.Is(err, errors.ErrCodeStaleIndex) {
		t.Errorf("QueryRange on stale index = %v, want STALE_INDEX", err)
	}
	if _, err := ix.HitTest(1, 1); !errors.Is(err, errors.ErrCodeStaleIndex) {
		t.Errorf("HitTest on stale index = %v, want STALE_INDEX", err)
	}
	if _, err := ex.HitTest(1, 1); !errors.Is(err, errors.ErrCodeStaleIndex) {
		t.Errorf("exact HitTest on stale index = %v, want STALE_INDEX", err)
	}
	if _, err := ix.Cull(nil, viewport.Identity, 10, 10); !errors.Is(err, errors.ErrCodeStaleIndex) {
		t.Errorf("Cull on stale index = %v, want STALE_INDEX", err)
	}

	ix = Build(g, Fixed(1))
	if n, err := ix.HitTest(50, 1); err != nil || n == nil {
		t.Errorf("rebuilt HitTest = %v, %v", n, err)
	}
}

func TestCull(t *testing.T) {
	g, err := graph.Build(graph.Document{
		Nodes: []graph.DocNode{
			pos("far", 1000, 1000),
			pos("in", 50, 50),
			pos("left", -10, 50),
			pos("right", 150, 50),
			pos("edge", 103, 50),
		},
		Links: []graph.DocLink{
			{Source: "left", Target: "right"},
			{Source: "far", Target: "right"},
			{Source: "in", Target: "far"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	check := func(t *testing.T, v Visible) {
		t.Helper()
		ids := idsOf(v.Nodes)
		for _, want := range []string{"in", "edge"} {
			if !slices.Contains(ids, want) {
				t.Errorf("node %s culled, visible = %v", want, ids)
			}
		}
		for _, unwanted := range []string{"far", "left", "right"} {
			if slices.Contains(ids, unwanted) {
				t.Errorf("node %s visible, want culled", unwanted)
			}
		}
		if len(v.Edges) != 2 {
			t.Fatalf("visible edges = %d, want 2", len(v.Edges))
		}
		if v.Edges[0].Index != 0 || v.Edges[1].Index != 2 {
			t.Errorf("visible edges = [%d %d], want [0 2]", v.Edges[0].Index, v.Edges[1].Index)
		}
	}

	t.Run("linear", func(t *testing.T) {
		check(t, Cull(g.Nodes, g.Edges, viewport.Identity, 100, 100, 5))
	})
	t.Run("index", func(t *testing.T) {
		v, err := Build(g, Fixed(5)).Cull(g.Edges, viewport.Identity, 100, 100)
		if err != nil {
			t.Fatal(err)
		}
		check(t, v)
	})
}

func TestCullUnderTransform(t *testing.T) {
	g := randomGraph(t, 400, 9)
	tr := viewport.Transform{X: -300, Y: -150, K: 2}
	ix := Build(g, Fixed(3))

	want := Cull(g.Nodes, g.Edges, tr, 640, 480, 3)
	got, err := ix.Cull(g.Edges, tr, 640, 480)
	if err != nil {
		t.Fatal(err)
	}
	if !sameIDs(got.Nodes, idsOf(want.Nodes)) {
		t.Errorf("index cull = %d nodes, linear cull = %d", len(got.Nodes), len(want.Nodes))
	}
	if len(got.Edges) != len(want.Edges) {
		t.Errorf("index cull = %d edges, linear cull = %d", len(got.Edges), len(want.Edges))
	}
}

func TestSegmentIntersects(t *testing.T) {
	r := viewport.Rect{MaxX: 100, MaxY: 100}
	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		want           bool
	}{
		{"crossing horizontally", -10, 50, 150, 50, true},
		{"crossing diagonally", -50, -50, 150, 150, true},
		{"inside", 10, 10, 20, 20, true},
		{"touching corner", -10, 0, 0, 0, true},
		{"passing above", -10, -5, 150, -5, false},
		{"missing corner", 90, -20, 120, 10, false},
		{"degenerate outside", 200, 200, 200, 200, false},
		{"degenerate inside", 5, 5, 5, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentIntersects(r, tt.x0, tt.y0, tt.x1, tt.y1); got != tt.want {
				t.Errorf("SegmentIntersects = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Helpers
// =============================================================================

func hitTesters(g *graph.Graph, radius RadiusFunc) map[string]HitTester {
	return map[string]HitTester{
		"sorted": Build(g, radius),
		"exact":  BuildExact(g, radius),
	}
}

func pos(id string, x, y float64) graph.DocNode {
	return graph.DocNode{ID: graph.ID(id), X: &x, Y: &y}
}

func build(t *testing.T, points [][2]float64) *graph.Graph {
	t.Helper()
	var doc graph.Document
	for i, p := range points {
		doc.Nodes = append(doc.Nodes, pos(strconv.Itoa(i), p[0], p[1]))
	}
	g, err := graph.Build(doc)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func randomGraph(t *testing.T, n int, seed uint64) *graph.Graph {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed+1))
	points := make([][2]float64, n)
	for i := range points {
		// Quantize x so ties are exercised.
		points[i] = [2]float64{float64(r.IntN(1000)), r.Float64() * 1000}
	}
	g := build(t, points)
	for i := 1; i < n; i++ {
		g.Edges = append(g.Edges, &graph.Edge{Index: i - 1, Source: g.Nodes[i], Target: g.Nodes[r.IntN(i)]})
	}
	return g
}

func idsOf(nodes []*graph.Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func sameIDs(nodes []*graph.Node, want []string) bool {
	got := idsOf(nodes)
	slices.Sort(got)
	want = slices.Clone(want)
	slices.Sort(want)
	return slices.Equal(got, want)
}
