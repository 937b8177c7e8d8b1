package viewport

// Viewport is the interactive pan/zoom state of a screen of Width x Height
// pixels. The zero value is not usable; construct with New.
type Viewport struct {
	Width, Height float64

	profile Profile
	t       Transform
}

// New returns a viewport of the given size in its reset state.
func New(width, height float64, profile Profile) *Viewport {
	v := &Viewport{Width: width, Height: height, profile: profile}
	v.Reset()
	return v
}

// Transform returns the current transform.
func (v *Viewport) Transform() Transform { return v.t }

// Profile returns the scale extent.
func (v *Viewport) Profile() Profile { return v.profile }

// Set replaces the transform, clamping its scale.
func (v *Viewport) Set(t Transform) {
	t.K = v.profile.Clamp(t.K)
	v.t = t
}

// Reset centres the world origin in the viewport at the initial scale:
// translate(w/2, h/2) scale(initial).
func (v *Viewport) Reset() {
	v.Set(Transform{X: v.Width / 2, Y: v.Height / 2, K: v.profile.InitialScale})
}

// Resize changes the screen size, keeping the world point at the centre of
// the screen fixed.
func (v *Viewport) Resize(width, height float64) {
	v.t.X += (width - v.Width) / 2
	v.t.Y += (height - v.Height) / 2
	v.Width, v.Height = width, height
}

// Pan moves the view by (dx, dy) screen pixels.
func (v *Viewport) Pan(dx, dy float64) {
	v.t = v.t.Translate(dx, dy)
}

// ZoomAt multiplies the scale by factor while keeping the world point under
// the screen point (sx, sy) fixed. The resulting scale is clamped.
func (v *Viewport) ZoomAt(sx, sy, factor float64) {
	v.ScaleTo(sx, sy, v.t.K*factor)
}

// ScaleTo sets the scale to k (clamped) around the screen point (sx, sy).
func (v *Viewport) ScaleTo(sx, sy, k float64) {
	wx, wy := v.t.Invert(sx, sy)
	k = v.profile.Clamp(k)
	v.t = Transform{X: sx - wx*k, Y: sy - wy*k, K: k}
}

// FocusOn centres the world point (x, y) at scale k.
func (v *Viewport) FocusOn(x, y, k float64) {
	k = v.profile.Clamp(k)
	v.t = Transform{X: v.Width/2 - x*k, Y: v.Height/2 - y*k, K: k}
}

// Fit scales and centres the view so the world rectangle r fills the screen
// minus padding pixels on each side.
func (v *Viewport) Fit(r Rect, padding float64) {
	w, h := max(r.Width(), 1), max(r.Height(), 1)
	k := min((v.Width-2*padding)/w, (v.Height-2*padding)/h)
	if !(k > 0) {
		k = v.profile.InitialScale
	}
	cx, cy := r.Center()
	v.FocusOn(cx, cy, k)
}

// VisibleWorld returns the world-space rectangle currently on screen.
func (v *Viewport) VisibleWorld() Rect {
	return v.t.InvertRect(Rect{0, 0, v.Width, v.Height})
}

// ScreenToWorld maps a screen point to world coordinates.
func (v *Viewport) ScreenToWorld(sx, sy float64) (float64, float64) {
	return v.t.Invert(sx, sy)
}
