package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/worker"
)

// =============================================================================
// Layout Generation
// =============================================================================

// LayoutWithCacheInfo simulates doc and reports whether the layout came from
// the cache. Pre-simulated documents are validated and passed through without
// running the simulation.
//
// Each call runs on its own [worker.Client], so concurrent calls never
// supersede one another. A TIMEOUT is retried opts.Retries times.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, doc graph.Document, opts Options) (graph.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	r.applyLogger(&opts)

	if doc.Positioned() {
		l, err := Passthrough(doc, opts.Width, opts.Height)
		return l, false, err
	}
	if opts.Style.IsSimulated && len(doc.Nodes) > 0 {
		return graph.Layout{}, false, errors.New(errors.ErrCodeInvalidInput,
			"graph is marked as simulated but has nodes without positions")
	}

	graphHash, err := HashDocument(doc)
	if err != nil {
		return graph.Layout{}, false, err
	}
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				return cached, true, nil
			}
			opts.Logger.Debug("discarding unreadable cached layout", "key", cacheKey)
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(doc.Nodes))
	start := time.Now()

	var layout graph.Layout
	attempt := 0
	err = cache.RetryWithBackoff(ctx, opts.Retries+1, retryDelay, func() error {
		attempt++
		l, err := r.simulate(ctx, doc, opts)
		if err != nil {
			if errors.Is(err, errors.ErrCodeTimeout) && attempt <= opts.Retries {
				opts.Logger.Warn("layout timed out, retrying", "attempt", attempt, "timeout", opts.Timeout)
				return cache.Retryable(err)
			}
			return err
		}
		layout = l
		return nil
	})
	hooks.OnLayoutComplete(ctx, len(doc.Nodes), time.Since(start), err)
	if err != nil {
		return graph.Layout{}, false, err
	}

	if data, err := graph.MarshalLayout(layout); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL); err != nil {
			opts.Logger.Debug("layout cache write failed", "err", err)
		}
	}
	return layout, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, doc graph.Document, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	return l, err
}

// simulate runs one bounded attempt on a fresh worker.
func (r *Runner) simulate(ctx context.Context, doc graph.Document, opts Options) (graph.Layout, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client := worker.NewClient(opts.Logger)
	defer client.Close()

	job, err := client.Start(ctx, worker.Start{
		Document: doc,
		Width:    opts.Width,
		Height:   opts.Height,
		Config:   opts.Sim,
	})
	if err != nil {
		return graph.Layout{}, err
	}
	end, err := job.Result(ctx, opts.Progress)
	if err != nil {
		return graph.Layout{}, err
	}
	return graph.Layout{
		Width:     opts.Width,
		Height:    opts.Height,
		Ticks:     end.Ticks,
		Alpha:     end.Alpha,
		Converged: end.Alpha <= opts.Sim.AlphaMin,
		Graph:     end.Graph.Document(),
	}, nil
}

// Passthrough wraps a pre-simulated document as a layout after checking
// its integrity.
func Passthrough(doc graph.Document, width, height float64) (graph.Layout, error) {
	g, err := graph.Build(doc)
	if err != nil {
		return graph.Layout{}, err
	}
	return graph.Layout{
		Width:     width,
		Height:    height,
		Converged: true,
		Graph:     g.Document(),
	}, nil
}
