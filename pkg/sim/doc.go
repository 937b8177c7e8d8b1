// Package sim implements the force-directed layout simulation.
//
// A [Simulation] owns the positions of a [graph.Graph] and advances them one
// tick at a time with three forces, applied in this order:
//
//   - charge: pairwise inverse-square repulsion, exact below
//     [Config.ExactChargeLimit] nodes and Barnes–Hut approximated above it
//   - link: springs pulling each edge toward its target distance, biased so
//     the lower-degree endpoint moves more
//   - center: translates every node so the centroid moves toward the centre
//
// Velocities then decay by [Config.VelocityDecay] and positions integrate
// with semi-implicit Euler. Pinned nodes are held at their fixed position.
// Finally alpha, the annealing temperature that scales every force, moves
// toward alphaTarget by alphaDecay.
//
// # Batch Mode
//
// [Simulation.Run] returns a lazy, single-use sequence of [Tick] values. The
// number of steps is fixed up front:
//
//	n = ceil(ln(alphaMin/alpha) / ln(1 - alphaDecay))
//
// which is 300 for the defaults. The last tick carries the finished graph:
//
//	s, err := sim.Initialize(doc, sim.DefaultConfig())
//	for t := range s.Run() {
//	    if t.Done {
//	        return t.Graph
//	    }
//	    bar.Report(t.Progress)
//	}
//
// # Continuous Mode
//
// Interactive hosts call [Simulation.Step] once per frame. Dragging follows
// the usual pattern: [Simulation.StartDrag] pins the node and keeps the
// system warm with alphaTarget 0.3, [Simulation.Drag] moves the pin and
// [Simulation.EndDrag] releases it so the layout re-anneals.
//
// A Simulation is not safe for concurrent use; see pkg/worker for running it
// on a background goroutine.
package sim
