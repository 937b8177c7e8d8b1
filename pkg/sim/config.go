package sim

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

// Default simulation parameters.
const (
	DefaultChargeStrength   = -30.0
	DefaultDistanceMin      = 1.0
	DefaultTheta            = 0.9
	DefaultExactChargeLimit = 512

	DefaultLinkDistance   = 40.0
	DefaultLinkStrength   = 1.0
	DefaultLinkIterations = 1

	DefaultCenterStrength = 1.0

	DefaultAlpha         = 1.0
	DefaultAlphaMin      = 0.001
	DefaultAlphaDecay    = 0.0228
	DefaultVelocityDecay = 0.4

	// DragAlphaTarget keeps the system warm while a node is being dragged.
	DragAlphaTarget = 0.3
)

// Config holds force and annealing parameters.
//
// Start from [DefaultConfig] and override what you need; a zero Config is
// rejected by [Config.Validate].
type Config struct {
	// Charge force
	ChargeStrength   float64 `toml:"charge_strength" json:"charge_strength"`
	DistanceMin      float64 `toml:"distance_min" json:"distance_min"`
	DistanceMax      float64 `toml:"distance_max" json:"distance_max"` // 0 means unbounded
	Theta            float64 `toml:"theta" json:"theta"`
	ExactChargeLimit int     `toml:"exact_charge_limit" json:"exact_charge_limit"`

	// Link force
	LinkDistance   float64 `toml:"link_distance" json:"link_distance"`
	LinkStrength   float64 `toml:"link_strength" json:"link_strength"`
	LinkIterations int     `toml:"link_iterations" json:"link_iterations"`

	// Center force
	CenterX        float64 `toml:"center_x" json:"center_x"`
	CenterY        float64 `toml:"center_y" json:"center_y"`
	CenterStrength float64 `toml:"center_strength" json:"center_strength"`

	// Annealing
	Alpha         float64 `toml:"alpha" json:"alpha"`
	AlphaMin      float64 `toml:"alpha_min" json:"alpha_min"`
	AlphaDecay    float64 `toml:"alpha_decay" json:"alpha_decay"`
	AlphaTarget   float64 `toml:"alpha_target" json:"alpha_target"`
	VelocityDecay float64 `toml:"velocity_decay" json:"velocity_decay"`

	// Seed for the jiggle applied to coincident nodes. Runs with the same
	// seed, config and input are bit-for-bit reproducible.
	Seed uint32 `toml:"seed" json:"seed"`
}

// DefaultConfig returns the default parameters centred on the origin.
func DefaultConfig() Config {
	return Config{
		ChargeStrength:   DefaultChargeStrength,
		DistanceMin:      DefaultDistanceMin,
		Theta:            DefaultTheta,
		ExactChargeLimit: DefaultExactChargeLimit,
		LinkDistance:     DefaultLinkDistance,
		LinkStrength:     DefaultLinkStrength,
		LinkIterations:   DefaultLinkIterations,
		CenterStrength:   DefaultCenterStrength,
		Alpha:            DefaultAlpha,
		AlphaMin:         DefaultAlphaMin,
		AlphaDecay:       DefaultAlphaDecay,
		VelocityDecay:    DefaultVelocityDecay,
		Seed:             1,
	}
}

// Centered returns a copy of c with the centre force targeting the middle of
// a width x height viewport.
func (c Config) Centered(width, height float64) Config {
	c.CenterX = width / 2
	c.CenterY = height / 2
	return c
}

// Validate reports an INVALID_CONFIG error for parameters the integrator
// cannot work with.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"charge_strength", c.ChargeStrength},
		{"distance_min", c.DistanceMin},
		{"theta", c.Theta},
		{"link_distance", c.LinkDistance},
		{"link_strength", c.LinkStrength},
		{"center_x", c.CenterX},
		{"center_y", c.CenterY},
		{"center_strength", c.CenterStrength},
		{"alpha", c.Alpha},
		{"alpha_min", c.AlphaMin},
		{"alpha_decay", c.AlphaDecay},
		{"alpha_target", c.AlphaTarget},
		{"velocity_decay", c.VelocityDecay},
	} {
		if err := errors.ValidateFinite(f.name, f.v); err != nil {
			return err
		}
	}

	switch {
	case c.AlphaDecay <= 0 || c.AlphaDecay >= 1:
		return errors.New(errors.ErrCodeInvalidConfig, "alpha_decay must be in (0, 1), got %v", c.AlphaDecay)
	case c.AlphaMin <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "alpha_min must be positive, got %v", c.AlphaMin)
	case c.Alpha < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "alpha must not be negative, got %v", c.Alpha)
	case c.AlphaTarget < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "alpha_target must not be negative, got %v", c.AlphaTarget)
	case c.VelocityDecay < 0 || c.VelocityDecay > 1:
		return errors.New(errors.ErrCodeInvalidConfig, "velocity_decay must be in [0, 1], got %v", c.VelocityDecay)
	case c.DistanceMin <= 0:
		// A zero clamp lets coincident nodes produce infinite repulsion.
		return errors.New(errors.ErrCodeInvalidConfig, "distance_min must be positive, got %v", c.DistanceMin)
	case c.DistanceMax < 0 || math.IsNaN(c.DistanceMax):
		return errors.New(errors.ErrCodeInvalidConfig, "distance_max must not be negative, got %v", c.DistanceMax)
	case c.DistanceMax != 0 && c.DistanceMax <= c.DistanceMin:
		return errors.New(errors.ErrCodeInvalidConfig, "distance_max (%v) must exceed distance_min (%v)", c.DistanceMax, c.DistanceMin)
	case c.Theta < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "theta must not be negative, got %v", c.Theta)
	case c.ExactChargeLimit < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "exact_charge_limit must not be negative, got %d", c.ExactChargeLimit)
	case c.LinkIterations < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "link_iterations must be at least 1, got %d", c.LinkIterations)
	case c.LinkDistance < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "link_distance must not be negative, got %v", c.LinkDistance)
	}
	return nil
}

// Iterations returns the number of ticks needed for alpha to cool from alpha
// to alphaMin with the given decay, ignoring alphaTarget. It returns 0 when
// alpha is already at or below alphaMin.
func Iterations(alpha, alphaMin, alphaDecay float64) int {
	if alpha <= alphaMin {
		return 0
	}
	return int(math.Ceil(math.Log(alphaMin/alpha) / math.Log(1-alphaDecay)))
}

func (c Config) distanceMax2() float64 {
	if c.DistanceMax == 0 {
		return math.Inf(1)
	}
	return c.DistanceMax * c.DistanceMax
}
