package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// DefaultFrameInterval steps a live simulation at roughly 60 frames a second.
const DefaultFrameInterval = 16 * time.Millisecond

// Live steps a continuous simulation on its own goroutine. The step loop
// idles while the simulation is settled and no interaction keeps it warm.
type Live struct {
	mu       sync.Mutex
	sim      *sim.Simulation
	interval time.Duration
	onStep   func()

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewLive wraps s. An interval of zero uses [DefaultFrameInterval].
func NewLive(s *sim.Simulation, interval time.Duration) *Live {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Live{
		sim:      s,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// OnStep registers fn to be called after every step, outside the lock.
// It must be set before Start.
func (l *Live) OnStep(fn func()) { l.onStep = fn }

// Start launches the step loop. It ends on [Live.Stop] or when ctx is done.
func (l *Live) Start(ctx context.Context) {
	if l.started.CompareAndSwap(false, true) {
		go l.loop(ctx)
	}
}

func (l *Live) loop(ctx context.Context) {
	defer close(l.done)
	t := time.NewTicker(l.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		case <-t.C:
			if l.step() && l.onStep != nil {
				l.onStep()
			}
		}
	}
}

// step advances once unless the simulation is at rest.
func (l *Live) step() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.warm() {
		return false
	}
	l.sim.Step()
	return true
}

func (l *Live) warm() bool {
	return !l.sim.Settled() || l.sim.AlphaTarget() >= l.sim.Config().AlphaMin
}

// Stop ends the step loop and waits for it. It is safe to call more than
// once, and on a Live that was never started.
func (l *Live) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	if l.started.Load() {
		<-l.done
	}
}

// Active reports whether the loop would step on its next tick.
func (l *Live) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warm()
}

// Snapshot returns a deep copy of the graph at a step boundary.
func (l *Live) Snapshot() *graph.Graph {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Graph().Clone()
}

// Ticks returns the number of steps taken.
func (l *Live) Ticks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Ticks()
}

// Pin fixes a node at (x, y).
func (l *Live) Pin(id string, x, y float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Pin(id, x, y)
}

// Unpin releases a pinned node.
func (l *Live) Unpin(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Unpin(id)
}

// Grab starts dragging a node, warming the simulation.
func (l *Live) Grab(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.StartDrag(id)
}

// Drag moves a grabbed node to (x, y).
func (l *Live) Drag(id string, x, y float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Drag(id, x, y)
}

// Release ends a drag and lets the simulation cool down.
func (l *Live) Release(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.EndDrag(id)
}

// Reheat restarts the cooling schedule from the configured alpha.
func (l *Live) Reheat() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sim.Reheat()
}
