package style

import (
	"hash/fnv"
	"strconv"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// ColorClassifier assigns a fill colour to a node.
type ColorClassifier interface {
	Color(n *graph.Node) string
}

// RadiusClassifier assigns a radius in world units to a node.
type RadiusClassifier interface {
	Radius(n *graph.Node) float64
}

// ColorFunc adapts a function to a ColorClassifier.
type ColorFunc func(n *graph.Node) string

func (f ColorFunc) Color(n *graph.Node) string { return f(n) }

// RadiusFunc adapts a function to a RadiusClassifier.
type RadiusFunc func(n *graph.Node) float64

func (f RadiusFunc) Radius(n *graph.Node) float64 { return f(n) }

// =============================================================================
// Colour
// =============================================================================

// UnassignedColor fills nodes without a category.
const UnassignedColor = "#000000"

// PaletteClassifier colours nodes by category.
type PaletteClassifier struct {
	Palette []string
}

// NewPaletteClassifier returns a classifier over palette, or over
// [DefaultPalette] when palette is empty.
func NewPaletteClassifier(palette []string) PaletteClassifier {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return PaletteClassifier{Palette: palette}
}

// Color returns the colour of n's category.
func (p PaletteClassifier) Color(n *graph.Node) string {
	return p.CategoryColor(n.Category)
}

// CategoryColor maps a category to a palette entry. Integer categories index
// the palette modulo its length; other strings are hashed with FNV-1a.
func (p PaletteClassifier) CategoryColor(category string) string {
	if category == "" || len(p.Palette) == 0 {
		return UnassignedColor
	}
	size := len(p.Palette)
	if i, err := strconv.Atoi(category); err == nil {
		return p.Palette[(i%size+size)%size]
	}
	h := fnv.New32a()
	h.Write([]byte(category))
	return p.Palette[h.Sum32()%uint32(size)]
}

// =============================================================================
// Radius
// =============================================================================

// FixedRadius gives every node the same radius.
type FixedRadius float64

func (r FixedRadius) Radius(*graph.Node) float64 { return float64(r) }

// LinearRadius maps node values from the graph's value range linearly onto
// [Min, Max].
type LinearRadius struct {
	Min, Max             float64
	DomainMin, DomainMax float64
}

// NewLinearRadius scans g for its value range.
func NewLinearRadius(g *graph.Graph, minR, maxR float64) LinearRadius {
	l := LinearRadius{Min: minR, Max: maxR}
	for i, n := range g.Nodes {
		if i == 0 {
			l.DomainMin, l.DomainMax = n.Value, n.Value
			continue
		}
		l.DomainMin = min(l.DomainMin, n.Value)
		l.DomainMax = max(l.DomainMax, n.Value)
	}
	return l
}

// Radius scales n.Value. A degenerate domain (all values equal) yields the
// constant midpoint radius instead of dividing by zero. Values outside the
// domain are clamped.
func (l LinearRadius) Radius(n *graph.Node) float64 {
	span := l.DomainMax - l.DomainMin
	if span == 0 {
		return (l.Min + l.Max) / 2
	}
	t := (n.Value - l.DomainMin) / span
	t = max(0, min(1, t))
	return l.Min + t*(l.Max-l.Min)
}
