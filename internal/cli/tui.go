package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/sim"
	"github.com/matzehuels/forcegraph/pkg/spatial"
	"github.com/matzehuels/forcegraph/pkg/style"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// Screen pixels per terminal cell. Cells are about twice as tall as wide.
const (
	cellWidth  = 8.0
	cellHeight = 16.0

	frameInterval = 33 * time.Millisecond
	zoomStep      = 1.25
	panStep       = 4 * cellWidth
	statusLines   = 2
	fitPadding    = 2 * cellWidth
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(colorGray)
	helpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// =============================================================================
// Explorer - Interactive continuous simulation
// =============================================================================

// Explorer is the bubbletea model behind `forcegraph explore`. It steps the
// simulation once per frame while it is warm and draws onto a text canvas.
// All state is owned by the update loop.
type Explorer struct {
	engine *sim.Engine
	g      *graph.Graph
	style  style.Config
	vp     *viewport.Viewport
	canvas *render.TextCanvas
	index  *spatial.Index

	Selected *graph.Node

	dragging string  // id of the node under the pointer
	panning  bool    // dragging empty space
	lastX    float64 // previous pointer position while panning
	lastY    float64

	err error
}

// NewExplorer starts a continuous simulation over g. The viewport is sized in
// screen pixels for a cols by rows terminal.
func NewExplorer(g *graph.Graph, cfg sim.Config, st style.Config, profile viewport.Profile, cols, rows int) (*Explorer, error) {
	engine := sim.NewEngine(cfg)
	if err := engine.Init(g); err != nil {
		return nil, err
	}
	e := &Explorer{
		engine: engine,
		g:      g,
		style:  st,
		vp:     viewport.New(1, 1, profile),
	}
	e.resize(cols, rows)
	e.Fit()
	return e, nil
}

// Viewport exposes the current view for session persistence.
func (e *Explorer) Viewport() *viewport.Viewport { return e.vp }

// Graph returns the simulated graph.
func (e *Explorer) Graph() *graph.Graph { return e.g }

// Close stops the simulation.
func (e *Explorer) Close() { e.engine.Teardown() }

// Fit zooms the view onto the current layout bounds.
func (e *Explorer) Fit() {
	if minX, minY, maxX, maxY, ok := e.g.Bounds(); ok {
		e.vp.Fit(viewport.NewRect(minX, minY, maxX, maxY), fitPadding)
	}
}

func (e *Explorer) resize(cols, rows int) {
	rows = max(rows-statusLines, 1)
	cols = max(cols, 1)
	e.canvas = render.NewTextCanvas(cols, rows)
	e.vp.Resize(float64(cols)*cellWidth, float64(rows)*cellHeight)
}

func (e *Explorer) Init() tea.Cmd {
	return nextFrame()
}

func (e *Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		e.step()
		return e, nextFrame()
	case tea.WindowSizeMsg:
		e.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return e, e.key(msg)
	case tea.MouseMsg:
		e.mouse(msg)
	}
	return e, nil
}

// step advances the simulation while it has energy or a drag keeps it warm.
func (e *Explorer) step() {
	if !e.style.EnableSimulate {
		return
	}
	s, err := e.engine.Simulation()
	if err != nil {
		return
	}
	if s.Settled() && s.AlphaTarget() == 0 {
		return
	}
	e.engine.Step()
}

func (e *Explorer) key(msg tea.KeyMsg) tea.Cmd {
	w, h := e.vp.Width, e.vp.Height
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return tea.Quit
	case "left", "h":
		e.vp.Pan(panStep, 0)
	case "right", "l":
		e.vp.Pan(-panStep, 0)
	case "up", "k":
		e.vp.Pan(0, panStep)
	case "down", "j":
		e.vp.Pan(0, -panStep)
	case "+", "=":
		e.vp.ZoomAt(w/2, h/2, zoomStep)
	case "-", "_":
		e.vp.ZoomAt(w/2, h/2, 1/zoomStep)
	case "r":
		e.vp.Reset()
	case "f":
		e.Fit()
	case " ":
		if s, err := e.engine.Simulation(); err == nil {
			s.Reheat()
		}
	case "p":
		if n := e.Selected; n != nil {
			if s, err := e.engine.Simulation(); err == nil {
				e.err = s.Pin(n.ID, n.X, n.Y)
			}
		}
	case "u":
		if e.Selected != nil {
			e.unpin(e.Selected.ID)
		}
	case "backspace":
		e.Selected = nil
	}
	return nil
}

func (e *Explorer) mouse(msg tea.MouseMsg) {
	sx, sy := e.screen(msg.X, msg.Y)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		e.vp.ZoomAt(sx, sy, zoomStep)
	case msg.Button == tea.MouseButtonWheelDown:
		e.vp.ZoomAt(sx, sy, 1/zoomStep)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		e.press(sx, sy)
	case msg.Action == tea.MouseActionMotion:
		e.motion(sx, sy)
	case msg.Action == tea.MouseActionRelease:
		e.release()
	}
}

// press selects the node under the pointer and starts dragging it, or starts
// panning when the pointer is over empty space.
func (e *Explorer) press(sx, sy float64) {
	n, err := e.HitTest(sx, sy)
	if err != nil {
		e.err = err
		return
	}
	e.Selected = n
	if n == nil {
		e.panning, e.lastX, e.lastY = true, sx, sy
		return
	}
	if !e.style.EnableDrag {
		return
	}
	s, err := e.engine.Simulation()
	if err != nil {
		return
	}
	if s.Settled() {
		s.Reheat()
	}
	if e.err = s.StartDrag(n.ID); e.err == nil {
		e.dragging = n.ID
	}
}

func (e *Explorer) motion(sx, sy float64) {
	switch {
	case e.dragging != "":
		s, err := e.engine.Simulation()
		if err != nil {
			return
		}
		wx, wy := e.vp.ScreenToWorld(sx, sy)
		e.err = s.Drag(e.dragging, wx, wy)
	case e.panning:
		e.vp.Pan(sx-e.lastX, sy-e.lastY)
		e.lastX, e.lastY = sx, sy
	}
}

// release ends a drag. The node is let go and the simulation cools again.
func (e *Explorer) release() {
	e.panning = false
	if e.dragging == "" {
		return
	}
	id := e.dragging
	e.dragging = ""
	s, err := e.engine.Simulation()
	if err != nil {
		return
	}
	e.err = s.EndDrag(id)
}

func (e *Explorer) unpin(id string) {
	s, err := e.engine.Simulation()
	if err != nil {
		return
	}
	if e.err = s.Unpin(id); e.err == nil {
		s.Reheat()
	}
}

// HitTest returns the node under screen point (sx, sy). The index is rebuilt
// whenever the simulation has moved nodes since it was built.
func (e *Explorer) HitTest(sx, sy float64) (*graph.Node, error) {
	wx, wy := e.vp.ScreenToWorld(sx, sy)
	if e.index != nil {
		n, err := e.index.HitTest(wx, wy)
		if !errors.Is(err, errors.ErrCodeStaleIndex) {
			return n, err
		}
	}
	cl := e.style.Classifiers(e.g)
	e.index = spatial.Build(e.g, cl.Radius.Radius)
	return e.index.HitTest(wx, wy)
}

// screen maps a terminal cell to the screen pixel at its centre.
func (e *Explorer) screen(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * cellWidth, (float64(row) + 0.5) * cellHeight
}

func (e *Explorer) View() string {
	f := render.NewFrame(e.g, e.vp.Transform(), e.vp.Width, e.vp.Height, e.style).Select(e.Selected)
	e.canvas.Draw(f)

	var b strings.Builder
	b.WriteString(e.canvas.Render())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(e.status()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("drag: move  wheel/+-: zoom  arrows: pan  f: fit  r: reset  space: reheat  p/u: pin/unpin  q: quit"))
	return b.String()
}

func (e *Explorer) status() string {
	parts := []string{fmt.Sprintf("%d nodes", len(e.g.Nodes)), fmt.Sprintf("zoom %.2f", e.vp.Transform().K)}
	if s, err := e.engine.Simulation(); err == nil {
		if s.Settled() {
			parts = append(parts, "settled")
		} else {
			parts = append(parts, fmt.Sprintf("alpha %.3f", s.Alpha()))
		}
	}
	if n := e.Selected; n != nil {
		sel := fmt.Sprintf("selected %s (%.1f, %.1f)", n.ID, n.X, n.Y)
		if n.Pinned {
			sel += " pinned"
		}
		parts = append(parts, sel)
	}
	if e.err != nil {
		parts = append(parts, errors.UserMessage(e.err))
	}
	return strings.Join(parts, " · ")
}
