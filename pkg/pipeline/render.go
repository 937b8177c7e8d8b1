package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// =============================================================================
// Rendering
// =============================================================================

// RenderWithCacheInfo draws a frame of layout in every requested format and
// reports whether all artifacts came from the cache. Formats missing from the
// cache are rendered concurrently.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutHash, err := HashLayout(layout)
	if err != nil {
		return nil, false, err
	}
	g, err := graph.Build(layout.Graph)
	if err != nil {
		return nil, false, err
	}
	t := FrameTransform(g, opts)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.FrameKey(layoutHash, opts.FrameKeyOpts(format, t))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := RenderFormats(ctx, layout, g, t, opts, missing)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.FrameKey(layoutHash, opts.FrameKeyOpts(format, t))
		if err := r.Cache.Set(ctx, key, data, cache.FrameTTL); err != nil {
			opts.Logger.Debug("frame cache write failed", "format", format, "err", err)
		}
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// FrameTransform returns the transform a frame of g is drawn with:
// opts.Transform, or a transform fitting g's bounds when opts.Fit is set.
func FrameTransform(g *graph.Graph, opts Options) viewport.Transform {
	if !opts.Fit {
		return opts.Transform
	}
	minX, minY, maxX, maxY, ok := g.Bounds()
	if !ok {
		return opts.Transform
	}
	v := viewport.New(opts.Width, opts.Height, viewport.ProfileWide)
	v.Fit(viewport.NewRect(minX, minY, maxX, maxY), DefaultFitPadding)
	return v.Transform()
}

// RenderFormats draws g under t in each of formats without caching. PNG and
// PDF are converted from the SVG output, so SVG is drawn first whenever one
// of them is requested.
func RenderFormats(ctx context.Context, layout graph.Layout, g *graph.Graph, t viewport.Transform, opts Options, formats []string) (map[string][]byte, error) {
	frame := render.NewFrame(g, t, opts.Width, opts.Height, opts.Style)

	var svg []byte
	needSVG := false
	for _, f := range formats {
		needSVG = needSVG || f == FormatSVG || f == FormatPNG || f == FormatPDF
	}
	if needSVG {
		var err error
		if svg, err = drawSVG(ctx, g, frame, opts); err != nil {
			return nil, err
		}
	}

	var mu sync.Mutex
	out := make(map[string][]byte, len(formats))
	eg, ctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		eg.Go(func() error {
			data, err := renderFormat(ctx, format, svg, layout, g, frame, opts)
			if err != nil {
				code := errors.GetCode(err)
				if code == "" {
					code = errors.ErrCodeInternal
				}
				return errors.Wrap(code, err, "render %s", format)
			}
			mu.Lock()
			out[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func drawSVG(ctx context.Context, g *graph.Graph, f render.Frame, opts Options) ([]byte, error) {
	if !opts.Graphviz {
		return render.SVG(f), nil
	}
	return render.RenderDOT(ctx, render.ToDOT(g, f.Classifiers, f.Style))
}

func renderFormat(ctx context.Context, format string, svg []byte, layout graph.Layout, g *graph.Graph, f render.Frame, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPNG:
		return render.ToPNG(ctx, svg, opts.PNGScale)
	case FormatPDF:
		return render.ToPDF(ctx, svg)
	case FormatDOT:
		return []byte(render.ToDOT(g, f.Classifiers, f.Style)), nil
	case FormatJSON:
		return graph.MarshalLayout(layout)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}
