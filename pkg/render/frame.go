package render

import (
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/spatial"
	"github.com/matzehuels/forcegraph/pkg/style"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// Frame is everything a renderer needs for one picture.
type Frame struct {
	Nodes       []*graph.Node
	Edges       []*graph.Edge
	Transform   viewport.Transform
	Width       float64
	Height      float64
	Classifiers style.Classifiers
	Style       style.Config

	// Selected is highlighted when non-nil.
	Selected *graph.Node
}

// NewFrame builds a frame over g. When cfg.OnlyRenderOnScreenElement is set
// the node and edge lists are culled to the visible world rectangle.
func NewFrame(g *graph.Graph, t viewport.Transform, width, height float64, cfg style.Config) Frame {
	cl := cfg.Classifiers(g)
	f := Frame{
		Nodes:       g.Nodes,
		Edges:       g.Edges,
		Transform:   t,
		Width:       width,
		Height:      height,
		Classifiers: cl,
		Style:       cfg,
	}
	if cfg.OnlyRenderOnScreenElement {
		v := spatial.Cull(g.Nodes, g.Edges, t, width, height, cl.MaxRadius(g))
		f.Nodes, f.Edges = v.Nodes, v.Edges
	}
	return f
}

// Select returns a copy of f highlighting n.
func (f Frame) Select(n *graph.Node) Frame {
	f.Selected = n
	return f
}

func (f Frame) radius(n *graph.Node) float64 {
	if f.Classifiers.Radius == nil {
		return f.Style.NodeRadius
	}
	return f.Classifiers.Radius.Radius(n)
}

func (f Frame) color(n *graph.Node) string {
	if f.Classifiers.Color == nil {
		return style.UnassignedColor
	}
	return f.Classifiers.Color.Color(n)
}

// sliceColor picks the colour of one pie slice key.
func (f Frame) sliceColor(key string) string {
	if p, ok := f.Classifiers.Color.(style.PaletteClassifier); ok {
		return p.CategoryColor(key)
	}
	return style.NewPaletteClassifier(f.Style.Palette).CategoryColor(key)
}
