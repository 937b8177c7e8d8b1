// Package style decides how nodes and links look: colour and radius
// classification strategies plus the drawing options shared by every
// renderer.
//
// Classification is injected, not hard-coded. Renderers and hit tests ask a
// [ColorClassifier] and a [RadiusClassifier] per node; [Config.Classifiers]
// builds the defaults:
//
//   - colour: [PaletteClassifier], numeric categories index the palette
//     modulo its length, other categories are hashed, no category is black
//   - radius: [FixedRadius] of NodeRadius, or [LinearRadius] scaling the
//     node value into [MinRadius, MaxRadius] when IsDynamicRadius is set
package style

import (
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Defaults for Config.
const (
	DefaultNodeRadius  = 3.0
	DefaultMinRadius   = 2.0
	DefaultMaxRadius   = 12.0
	DefaultLinkWidth   = 1.0
	DefaultLinkColor   = "#aaaaaa"
	DefaultBorderColor = "#ffffff"
	DefaultBackground  = "#ffffff"
)

// Config is the drawing configuration surface.
type Config struct {
	NodeRadius  float64 `toml:"node_radius" json:"node_radius"`
	MinRadius   float64 `toml:"min_radius" json:"min_radius"`
	MaxRadius   float64 `toml:"max_radius" json:"max_radius"`
	LinkWidth   float64 `toml:"link_width" json:"link_width"`
	LinkColor   string  `toml:"link_color" json:"link_color"`
	BorderWidth float64 `toml:"border_width" json:"border_width"`
	BorderColor string  `toml:"border_color" json:"border_color"`
	Background  string  `toml:"background" json:"background"`

	// Palette overrides the default 40-colour palette.
	Palette []string `toml:"palette,omitempty" json:"palette,omitempty"`

	IsSimulated               bool `toml:"is_simulated" json:"is_simulated"`
	IsDynamicRadius           bool `toml:"is_dynamic_radius" json:"is_dynamic_radius"`
	OnlyRenderOnScreenElement bool `toml:"only_render_on_screen_element" json:"only_render_on_screen_element"`
	EnableSimulate            bool `toml:"enable_simulate" json:"enable_simulate"`
	EnableDrag                bool `toml:"enable_drag" json:"enable_drag"`
}

// DefaultConfig returns fixed-radius drawing with every flag off.
func DefaultConfig() Config {
	return Config{
		NodeRadius:  DefaultNodeRadius,
		MinRadius:   DefaultMinRadius,
		MaxRadius:   DefaultMaxRadius,
		LinkWidth:   DefaultLinkWidth,
		LinkColor:   DefaultLinkColor,
		BorderColor: DefaultBorderColor,
		Background:  DefaultBackground,
	}
}

// Validate reports an INVALID_CONFIG error for unusable sizes.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"node_radius", c.NodeRadius},
		{"min_radius", c.MinRadius},
		{"max_radius", c.MaxRadius},
		{"link_width", c.LinkWidth},
		{"border_width", c.BorderWidth},
	} {
		if err := errors.ValidateFinite(f.name, f.v); err != nil {
			return err
		}
		if f.v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must not be negative, got %v", f.name, f.v)
		}
	}
	if c.IsDynamicRadius && c.MinRadius > c.MaxRadius {
		return errors.New(errors.ErrCodeInvalidConfig, "min_radius %v exceeds max_radius %v", c.MinRadius, c.MaxRadius)
	}
	return nil
}

// Classifiers bundles the per-node strategies used by a frame.
type Classifiers struct {
	Color  ColorClassifier
	Radius RadiusClassifier
}

// Classifiers builds the configured strategies for g. Dynamic radius scales
// over the value range of g's nodes.
func (c Config) Classifiers(g *graph.Graph) Classifiers {
	cl := Classifiers{Color: NewPaletteClassifier(c.Palette)}
	if c.IsDynamicRadius {
		cl.Radius = NewLinearRadius(g, c.MinRadius, c.MaxRadius)
	} else {
		cl.Radius = FixedRadius(c.NodeRadius)
	}
	return cl
}

// MaxRadius returns the largest radius any node of g gets.
func (cl Classifiers) MaxRadius(g *graph.Graph) float64 {
	var m float64
	for _, n := range g.Nodes {
		m = max(m, cl.Radius.Radius(n))
	}
	return m
}
