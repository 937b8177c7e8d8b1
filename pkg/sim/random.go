package sim

// lcg is a linear congruential generator with the Numerical Recipes
// constants. It drives the jiggle so runs are reproducible from a seed.
type lcg struct {
	s uint32
}

const lcgScale = 1 << 32

// Float64 returns a value in [0, 1).
func (r *lcg) Float64() float64 {
	r.s = r.s*1664525 + 1013904223
	return float64(r.s) / lcgScale
}

// jiggle returns a tiny non-zero offset used to separate coincident nodes.
func (r *lcg) jiggle() float64 {
	return (r.Float64() - 0.5) * 1e-6
}
