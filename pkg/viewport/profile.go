package viewport

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

// Profile bounds the zoom scale and sets the scale used by Reset.
type Profile struct {
	MinScale     float64 `toml:"min_scale" json:"min_scale"`
	MaxScale     float64 `toml:"max_scale" json:"max_scale"`
	InitialScale float64 `toml:"initial_scale" json:"initial_scale"`
}

// Scale extent profiles.
var (
	// ProfileCanvas suits raster canvases: 1/10 to 8.
	ProfileCanvas = Profile{MinScale: 1.0 / 10, MaxScale: 8, InitialScale: 1}

	// ProfileWide allows zooming far out for very large graphs: 1/100 to 8.
	ProfileWide = Profile{MinScale: 1.0 / 100, MaxScale: 8, InitialScale: 1}
)

// ProfileByName returns a predefined profile ("canvas" or "wide").
func ProfileByName(name string) (Profile, error) {
	switch name {
	case "", "canvas":
		return ProfileCanvas, nil
	case "wide":
		return ProfileWide, nil
	default:
		return Profile{}, errors.New(errors.ErrCodeInvalidConfig, "unknown viewport profile %q (want canvas or wide)", name)
	}
}

// Validate checks that the extent is positive and ordered.
func (p Profile) Validate() error {
	switch {
	case !(p.MinScale > 0) || math.IsInf(p.MaxScale, 0):
		return errors.New(errors.ErrCodeInvalidConfig, "scale extent [%v, %v] must be positive and finite", p.MinScale, p.MaxScale)
	case p.MinScale > p.MaxScale:
		return errors.New(errors.ErrCodeInvalidConfig, "min_scale %v exceeds max_scale %v", p.MinScale, p.MaxScale)
	case !(p.InitialScale > 0):
		return errors.New(errors.ErrCodeInvalidConfig, "initial_scale must be positive, got %v", p.InitialScale)
	}
	return nil
}

// Clamp restricts k to the profile's extent.
func (p Profile) Clamp(k float64) float64 {
	return math.Max(p.MinScale, math.Min(p.MaxScale, k))
}
