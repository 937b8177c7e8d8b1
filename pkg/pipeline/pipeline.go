// Package pipeline runs the load → layout → index → render chain shared by
// the CLI and the HTTP API.
//
// # Architecture
//
//  1. Load: read a graph document, raw or pre-simulated, from a file or stdin
//  2. Layout: simulate it on a background worker (skipped for pre-simulated
//     input), cached by document hash and simulation options
//  3. Index: build a spatial index for hit tests and culling
//  4. Render: draw a frame in every requested format concurrently, cached
//     per format and transform
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, doc, pipeline.Options{Formats: []string{"svg", "png"}})
//	svg := res.Artifacts["svg"]
//
// Stages also run on their own:
//
//	layout, hit, err := runner.Layout(ctx, doc, opts)
//	artifacts, hit, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/progress"
	"github.com/matzehuels/forcegraph/pkg/sim"
	"github.com/matzehuels/forcegraph/pkg/spatial"
	"github.com/matzehuels/forcegraph/pkg/style"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 600.0

	// DefaultTimeout bounds one background layout attempt.
	DefaultTimeout = 2 * time.Minute

	// DefaultPNGScale renders PNGs at twice the frame size.
	DefaultPNGScale = 2.0

	// DefaultFitPadding is the screen margin kept by Options.Fit.
	DefaultFitPadding = 20.0

	retryDelay = 250 * time.Millisecond
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatJSON}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It supports JSON for API requests.
type Options struct {
	// Layout options
	Width   float64       `json:"width,omitempty"`
	Height  float64       `json:"height,omitempty"`
	Sim     sim.Config    `json:"sim"`
	Refresh bool          `json:"refresh,omitempty"`
	Timeout time.Duration `json:"-"`
	// Retries is the number of extra attempts after a layout TIMEOUT.
	Retries int `json:"retries,omitempty"`

	// Render options
	Formats   []string           `json:"formats,omitempty"`
	Transform viewport.Transform `json:"transform"`
	Fit       bool               `json:"fit,omitempty"`
	// Graphviz draws the svg format through Graphviz neato instead of the
	// built-in writer.
	Graphviz bool `json:"graphviz,omitempty"`
	Style     style.Config       `json:"style"`
	PNGScale  float64            `json:"png_scale,omitempty"`

	// Index options
	ExactIndex bool `json:"exact_index,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger       `json:"-"`
	Progress progress.Reporter `json:"-"`
}

// DefaultOptions returns options with default simulation and style
// parameters.
func DefaultOptions() Options {
	o := Options{Sim: sim.DefaultConfig(), Style: style.DefaultConfig()}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return o
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the positioned graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the input document.
	GraphHash string

	// Layout is the simulated, serializable layout.
	Layout graph.Layout

	// LayoutHash is the content hash of the layout.
	LayoutHash string

	// Index serves hit tests over Graph.
	Index spatial.HitTester

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Ticks      int
	LayoutTime time.Duration
	IndexTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults fills zero layout fields.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Sim == (sim.Config{}) {
		o.Sim = sim.DefaultConfig()
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets defaults and checks layout options.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateViewport(o.Width, o.Height); err != nil {
		return err
	}
	if o.Retries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "retries must not be negative, got %d", o.Retries)
	}
	return o.Sim.Validate()
}

// SetRenderDefaults fills zero render fields.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Transform.K == 0 {
		o.Transform = viewport.Identity
	}
	if o.Style.LinkColor == "" && o.Style.NodeRadius == 0 {
		o.Style = style.DefaultConfig()
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender sets defaults and checks render options. Formats are
// normalized to lower case without duplicates.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	formats, err := errors.ValidateFormats(o.Formats, ValidFormats)
	if err != nil {
		return err
	}
	o.Formats = formats
	if !o.Transform.Valid() {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid transform %+v", o.Transform)
	}
	if !(o.PNGScale > 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "png scale must be positive, got %v", o.PNGScale)
	}
	return o.Style.Validate()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Width: o.Width, Height: o.Height, Params: o.Sim}
}

// FrameKeyOpts returns cache key options for one rendered format.
func (o *Options) FrameKeyOpts(format string, t viewport.Transform) cache.FrameKeyOpts {
	opts := cache.FrameKeyOpts{
		Format: format,
		X:      t.X,
		Y:      t.Y,
		K:      t.K,
		Width:  o.Width,
		Height: o.Height,
		Cull:   o.Style.OnlyRenderOnScreenElement,
		Style:  o.Style,
	}
	switch format {
	case FormatPNG:
		opts.Style = struct {
			Style style.Config `json:"style"`
			Scale float64      `json:"scale"`
		}{o.Style, o.PNGScale}
	case FormatSVG, FormatPDF:
		opts.Style = struct {
			Style    style.Config `json:"style"`
			Graphviz bool         `json:"graphviz"`
		}{o.Style, o.Graphviz}
	}
	return opts
}
