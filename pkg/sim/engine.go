package sim

import (
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Engine is a long-lived owner of at most one simulation, for hosts that
// switch graphs and settings over time. The host calls Init, Update and
// Teardown at well-defined transition points instead of rebuilding the
// simulation on every change.
type Engine struct {
	cfg Config
	sim *Simulation
}

// NewEngine returns an idle engine that will use cfg for the next Init.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Init tears down any active simulation and starts one for g.
func (e *Engine) Init(g *graph.Graph) error {
	e.Teardown()
	s, err := New(g, e.cfg)
	if err != nil {
		return err
	}
	e.sim = s
	return nil
}

// Update applies cfg to the active simulation without touching positions or
// temperature, and remembers it for later Init calls.
func (e *Engine) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	if e.sim != nil {
		e.sim.setConfig(cfg)
	}
	return nil
}

// Step advances the active simulation once. It reports false when there is
// nothing to step.
func (e *Engine) Step() bool {
	if e.sim == nil {
		return false
	}
	e.sim.Step()
	return true
}

// Simulation returns the active simulation or a CANCELLED error after
// Teardown.
func (e *Engine) Simulation() (*Simulation, error) {
	if e.sim == nil {
		return nil, errors.New(errors.ErrCodeCancelled, "no active simulation")
	}
	return e.sim, nil
}

// Active reports whether a simulation is running.
func (e *Engine) Active() bool { return e.sim != nil }

// Teardown stops the active simulation. Further Steps are no-ops until the
// next Init.
func (e *Engine) Teardown() {
	e.sim = nil
}
