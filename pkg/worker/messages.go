package worker

import (
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// Start is the single request of a batch job. The centre force targets the
// middle of the Width x Height viewport.
type Start struct {
	Document graph.Document
	Width    float64
	Height   float64
	Config   sim.Config
}

// Message is a notification from a running job.
type Message interface {
	RequestID() string
}

// Tick reports progress in [0, 1).
type Tick struct {
	ID       string
	Progress float64
	Alpha    float64
}

// End is the terminal message of a successful job.
type End struct {
	ID    string
	Graph *graph.Graph
	Ticks int
	Alpha float64
}

// Failed is the terminal message of a job that could not run, e.g. on a
// GRAPH_INTEGRITY or INVALID_CONFIG error.
type Failed struct {
	ID  string
	Err error
}

func (m Tick) RequestID() string   { return m.ID }
func (m End) RequestID() string    { return m.ID }
func (m Failed) RequestID() string { return m.ID }

// Terminal reports whether m ends its job.
func Terminal(m Message) bool {
	switch m.(type) {
	case End, Failed:
		return true
	}
	return false
}
