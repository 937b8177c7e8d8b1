package cli

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/sim"
	"github.com/matzehuels/forcegraph/pkg/style"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

func triangle(t *testing.T) *graph.Graph {
	t.Helper()
	at := func(id string, x, y float64) graph.DocNode {
		return graph.DocNode{ID: graph.ID(id), X: &x, Y: &y}
	}
	g, err := graph.Build(graph.Document{
		Nodes: []graph.DocNode{at("a", 0, 0), at("b", 100, 0), at("c", 100, 100)},
		Links: []graph.DocLink{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func newTestExplorer(t *testing.T, simulate bool) *Explorer {
	t.Helper()
	st := style.DefaultConfig()
	st.EnableDrag = true
	st.EnableSimulate = simulate
	e, err := NewExplorer(triangle(t), sim.DefaultConfig().Centered(50, 50), st, viewport.ProfileCanvas, 80, 26)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExplorerFitsLayout(t *testing.T) {
	e := newTestExplorer(t, false)
	vp := e.Viewport()

	for _, n := range e.Graph().Nodes {
		sx, sy := vp.Transform().Apply(n.X, n.Y)
		if sx < 0 || sx > vp.Width || sy < 0 || sy > vp.Height {
			t.Errorf("node %s at screen (%.1f, %.1f) is outside %vx%v", n.ID, sx, sy, vp.Width, vp.Height)
		}
	}
	if vp.Width != 80*cellWidth || vp.Height != 24*cellHeight {
		t.Errorf("viewport = %vx%v", vp.Width, vp.Height)
	}
}

func TestExplorerDragReleases(t *testing.T) {
	e := newTestExplorer(t, true)
	tr := e.Viewport().Transform()

	sx, sy := tr.Apply(0, 0)
	e.press(sx, sy)
	a, _ := e.Graph().Node("a")
	if e.Selected != a {
		t.Fatalf("Selected = %v, want a", e.Selected)
	}
	if !a.Pinned {
		t.Fatal("pressing a node should pin it for the drag")
	}

	tx, ty := tr.Apply(20, 30)
	e.motion(tx, ty)
	for range 5 {
		e.Update(frameMsg(time.Now()))
	}
	if math.Abs(a.X-20) > 1e-9 || math.Abs(a.Y-30) > 1e-9 {
		t.Errorf("dragged node at (%v, %v), want held at (20, 30)", a.X, a.Y)
	}

	e.release()
	if a.Pinned {
		t.Fatal("released node is still pinned")
	}
	s, err := e.engine.Simulation()
	if err != nil {
		t.Fatal(err)
	}
	if s.AlphaTarget() != 0 {
		t.Errorf("AlphaTarget = %v after release, want 0", s.AlphaTarget())
	}

	for range 20 {
		e.Update(frameMsg(time.Now()))
	}
	if a.X == 20 && a.Y == 30 {
		t.Error("released node did not move on later frames")
	}
}

func TestExplorerPinKeys(t *testing.T) {
	e := newTestExplorer(t, true)
	a, _ := e.Graph().Node("a")
	e.Selected = a

	e.Update(key("p"))
	if !a.Pinned {
		t.Fatal("p should pin the selected node")
	}
	x, y := a.X, a.Y
	for range 5 {
		e.Update(frameMsg(time.Now()))
	}
	if a.X != x || a.Y != y {
		t.Errorf("pinned node moved from (%v, %v) to (%v, %v)", x, y, a.X, a.Y)
	}

	e.Update(key("u"))
	if a.Pinned {
		t.Error("u should unpin the selected node")
	}
}

func TestExplorerPressEmptyPans(t *testing.T) {
	e := newTestExplorer(t, false)
	before := e.Viewport().Transform()

	e.press(1, 1)
	if e.Selected != nil {
		t.Fatalf("Selected = %s, want nil", e.Selected.ID)
	}
	e.motion(11, 21)
	e.release()

	after := e.Viewport().Transform()
	if after.X-before.X != 10 || after.Y-before.Y != 20 {
		t.Errorf("pan moved by (%v, %v), want (10, 20)", after.X-before.X, after.Y-before.Y)
	}
}

func TestExplorerKeys(t *testing.T) {
	e := newTestExplorer(t, false)
	k := e.Viewport().Transform().K

	e.Update(key("+"))
	if got := e.Viewport().Transform().K; math.Abs(got-k*zoomStep) > 1e-9 {
		t.Errorf("after + K = %v, want %v", got, k*zoomStep)
	}

	e.Update(tea.MouseMsg{X: 40, Y: 12, Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if got := e.Viewport().Transform().K; math.Abs(got-k) > 1e-9 {
		t.Errorf("after wheel down K = %v, want %v", got, k)
	}

	e.Update(key("r"))
	if got := e.Viewport().Transform().K; got != viewport.ProfileCanvas.InitialScale {
		t.Errorf("after r K = %v, want initial scale", got)
	}

	if _, cmd := e.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestExplorerFrozenDoesNotStep(t *testing.T) {
	e := newTestExplorer(t, false)
	b, _ := e.Graph().Node("b")
	x, y := b.X, b.Y

	for range 10 {
		e.Update(frameMsg(time.Now()))
	}
	if b.X != x || b.Y != y {
		t.Errorf("frozen explorer moved b from (%v, %v) to (%v, %v)", x, y, b.X, b.Y)
	}
}

func TestExplorerView(t *testing.T) {
	e := newTestExplorer(t, false)
	tr := e.Viewport().Transform()
	e.press(tr.Apply(100, 100))
	e.release()

	view := e.View()
	for _, want := range []string{"3 nodes", "selected c", "q: quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
