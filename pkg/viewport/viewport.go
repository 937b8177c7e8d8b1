// Package viewport implements the pan/zoom transform between world
// coordinates (where the simulation places nodes) and screen coordinates.
//
// A [Transform] maps world to screen as p*k + t. [Viewport] adds the screen
// size and clamps k to a scale extent. Only interaction gestures mutate a
// Viewport; it never touches graph data.
package viewport

import (
	"math"
)

// =============================================================================
// Transform
// =============================================================================

// Transform is an affine pan/zoom: screen = world*K + (X, Y).
type Transform struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
	K float64 `json:"k" toml:"k"`
}

// Identity is the transform that leaves coordinates unchanged.
var Identity = Transform{K: 1}

// Apply maps a world point to screen space.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.ApplyX(x), t.ApplyY(y)
}

// Invert maps a screen point back to world space.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return t.InvertX(x), t.InvertY(y)
}

func (t Transform) ApplyX(x float64) float64  { return x*t.K + t.X }
func (t Transform) ApplyY(y float64) float64  { return y*t.K + t.Y }
func (t Transform) InvertX(x float64) float64 { return (x - t.X) / t.K }
func (t Transform) InvertY(y float64) float64 { return (y - t.Y) / t.K }

// Translate returns t moved by (dx, dy) screen pixels.
func (t Transform) Translate(dx, dy float64) Transform {
	t.X += dx
	t.Y += dy
	return t
}

// Scale returns t with its scale multiplied by k around the screen origin.
func (t Transform) Scale(k float64) Transform {
	t.K *= k
	return t
}

// InvertRect maps a screen rectangle to world space.
func (t Transform) InvertRect(r Rect) Rect {
	x0, y0 := t.Invert(r.MinX, r.MinY)
	x1, y1 := t.Invert(r.MaxX, r.MaxY)
	return NewRect(x0, y0, x1, y1)
}

// Valid reports whether the transform is finite and invertible.
func (t Transform) Valid() bool {
	for _, v := range [...]float64{t.X, t.Y, t.K} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return t.K > 0
}

// =============================================================================
// Rect
// =============================================================================

// Rect is an axis-aligned rectangle with inclusive bounds.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewRect returns the rectangle spanned by two corners in any order.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		MinX: math.Min(x0, x1),
		MinY: math.Min(y0, y1),
		MaxX: math.Max(x0, x1),
		MaxY: math.Max(y0, y1),
	}
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Expand grows r by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{r.MinX - d, r.MinY - d, r.MaxX + d, r.MaxY + d}
}

func (r Rect) Width() float64  { return r.MaxX - r.MinX }
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the midpoint of r.
func (r Rect) Center() (float64, float64) {
	return (r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2
}
