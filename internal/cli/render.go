package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/progress"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output        string  // output file (single format) or base path
	formats       string  // comma-separated formats
	tx, ty, k     float64 // view transform
	fit           bool    // fit the layout bounds into the frame instead
	cull          bool    // drop off-screen elements
	dynamicRadius bool    // scale radius by node value
	graphviz      bool    // draw svg/png/pdf through graphviz
	pngScale      float64 // pixel density for png
	noCache       bool
}

// renderCommand creates the render command for drawing frames.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  renderFlags
		layout pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json|layout.json]",
		Short: "Render a frame to SVG, PNG, PDF, DOT or JSON",
		Long: `Render a frame to SVG, PNG, PDF, DOT or JSON.

Graph documents are simulated first (or taken from the cache); layout files
from 'layout' are drawn directly. The frame is viewed through the transform
given by --tx, --ty and --k, or fitted to the layout with --fit. Multiple
formats are rendered concurrently.

PNG and PDF are converted from SVG with rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			mergeLayoutFlags(cmd, &opts, layout)
			flags.apply(&opts)
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().Float64Var(&flags.tx, "tx", 0, "horizontal translation in screen pixels")
	cmd.Flags().Float64Var(&flags.ty, "ty", 0, "vertical translation in screen pixels")
	cmd.Flags().Float64Var(&flags.k, "k", 1, "zoom factor")
	cmd.Flags().BoolVar(&flags.fit, "fit", false, "fit the whole layout into the frame")
	cmd.Flags().BoolVar(&flags.cull, "cull", false, "only draw elements inside the frame")
	cmd.Flags().BoolVar(&flags.dynamicRadius, "dynamic-radius", false, "scale node radius by value")
	cmd.Flags().BoolVar(&flags.graphviz, "graphviz", false, "draw through graphviz instead of the native SVG writer")
	cmd.Flags().Float64Var(&flags.pngScale, "png-scale", pipeline.DefaultPNGScale, "pixel density for png output")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &layout)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(pipeline.ValidFormats, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// apply copies render flags onto opts. Style flags only ever switch features on
// so config-enabled features stay enabled.
func (f renderFlags) apply(opts *pipeline.Options) {
	opts.Formats = parseFormats(f.formats)
	opts.Transform = viewport.Transform{X: f.tx, Y: f.ty, K: f.k}
	opts.Fit = f.fit
	opts.Graphviz = f.graphviz
	opts.PNGScale = f.pngScale
	opts.Style.OnlyRenderOnScreenElement = opts.Style.OnlyRenderOnScreenElement || f.cull
	opts.Style.IsDynamicRadius = opts.Style.IsDynamicRadius || f.dynamicRadius
}

// runRender executes the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, flags renderFlags) error {
	in, err := pipeline.ReadInputFile(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	msg := "Rendering..."
	if !in.Simulated() {
		msg = "Simulating..."
	}
	spinner := newSpinnerWithContext(ctx, msg)
	opts.Progress = progress.Throttle(progress.Func(func(f float64) {
		spinner.SetMessage("Simulating... " + progress.Percent(f))
	}), 0.01)
	spinner.Start()

	result, err := runner.Execute(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, input, flags.output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", strings.Join(opts.Formats, ", "))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes each format next to input, or to output. A single
// format with an explicit output writes exactly that file; several formats
// treat output as a base path.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	formats = slices.Clone(formats)
	slices.Sort(formats)

	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := artifactPath(input, output, format, len(formats) == 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func artifactPath(input, output, format string, single bool) string {
	switch {
	case output == "" && format == pipeline.FormatJSON:
		return derivedPath(input, layoutSuffix)
	case output == "":
		return derivedPath(input, "."+format)
	case single:
		return output
	default:
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
	}
}
