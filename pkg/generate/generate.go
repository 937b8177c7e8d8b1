// Package generate builds synthetic graphs and colour palettes for
// benchmarking and demos.
//
// Graphs have nodes 1..n with num equal to the id. Node x < n gets exactly one
// link: nodes in the upper half link back to a random earlier node and nodes
// in the lower half link forward to a random later one, which keeps the graph
// connected-ish without any hubs. Output is deterministic for a given seed.
package generate

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// DefaultNodes is the graph size used when none is given.
const DefaultNodes = 5000

// maxColors is the number of distinct #RRGGBB values.
const maxColors = 1 << 24

// Options configures [Graph].
type Options struct {
	Nodes    int
	Clusters int // 0 leaves nodes unclustered
	Seed     uint64
}

// Graph returns a random document as described in the package doc.
func Graph(opts Options) (graph.Document, error) {
	n := opts.Nodes
	if n < 0 {
		return graph.Document{}, errors.New(errors.ErrCodeInvalidInput, "node count must not be negative, got %d", n)
	}
	if opts.Clusters < 0 {
		return graph.Document{}, errors.New(errors.ErrCodeInvalidInput, "cluster count must not be negative, got %d", opts.Clusters)
	}
	rng := newRand(opts.Seed)

	doc := graph.Document{
		Nodes: make([]graph.DocNode, n),
		Links: make([]graph.DocLink, 0, max(n-1, 0)),
	}
	for x := 1; x <= n; x++ {
		num := float64(x)
		node := graph.DocNode{ID: id(x), Num: &num}
		if opts.Clusters > 0 {
			node.Cluster = id((x-1)%opts.Clusters + 1)
		}
		doc.Nodes[x-1] = node
	}
	for x := 1; x < n; x++ {
		var target int
		if float64(x) > float64(n)/2 {
			target = 1 + rng.IntN(x-1)
		} else {
			target = x + 1 + rng.IntN(n-x)
		}
		doc.Links = append(doc.Links, graph.DocLink{Source: id(x), Target: id(target)})
	}
	return doc, nil
}

// Palette returns n distinct random colours as upper-case "#RRGGBB".
func Palette(n int, seed uint64) ([]string, error) {
	if n < 0 || n > maxColors {
		return nil, errors.New(errors.ErrCodeInvalidInput, "colour count must be in [0, %d], got %d", maxColors, n)
	}
	rng := newRand(seed)
	seen := make(map[uint32]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		c := rng.Uint32() & (maxColors - 1)
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, fmt.Sprintf("#%06X", c))
	}
	return out, nil
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func id(x int) graph.ID { return graph.ID(strconv.Itoa(x)) }
