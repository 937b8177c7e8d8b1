package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/spatial"
	"github.com/matzehuels/forcegraph/pkg/style"
)

// Index kinds reported to observability hooks.
const (
	IndexApprox = "approx"
	IndexExact  = "exact"
)

// BuildIndex builds a hit tester over g using the radii of cfg. The exact
// index answers every query correctly; the default sorted-x index bounds its
// search window by the largest radius.
func BuildIndex(ctx context.Context, g *graph.Graph, cfg style.Config, exact bool) spatial.HitTester {
	radius := spatial.RadiusFunc(cfg.Classifiers(g).Radius.Radius)
	start := time.Now()

	var ix spatial.HitTester
	kind := IndexApprox
	if exact {
		kind = IndexExact
		ix = spatial.BuildExact(g, radius)
	} else {
		ix = spatial.Build(g, radius)
	}
	observability.Pipeline().OnIndexBuild(ctx, kind, g.NodeCount(), time.Since(start))
	return ix
}
