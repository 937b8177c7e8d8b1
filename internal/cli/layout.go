package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/progress"
)

// layoutCommand creates the layout command for running batch simulations.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Simulate a graph and write its positioned layout",
		Long: `Simulate a graph and write its positioned layout.

The layout command runs the force simulation to rest on a background worker
and writes a layout.json file holding the positioned document plus a summary
of the run. The layout can be rendered, hit-tested and explored without
simulating again.

Results are cached by graph content and simulation parameters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := c.baseOptions()
			if err != nil {
				return err
			}
			mergeLayoutFlags(cmd, &base, opts)
			return c.runLayout(cmd.Context(), args[0], base, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// addLayoutFlags registers the flags shared by layout, render and explore.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.Width, "width", pipeline.DefaultWidth, "frame width")
	cmd.Flags().Float64Var(&opts.Height, "height", pipeline.DefaultHeight, "frame height")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached layouts")
	cmd.Flags().IntVar(&opts.Retries, "retries", 0, "retry a timed-out simulation this many times")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", pipeline.DefaultTimeout, "simulation timeout")
	cmd.Flags().Float64Var(&opts.Sim.ChargeStrength, "charge", 0, "many-body strength (default from config)")
	cmd.Flags().Float64Var(&opts.Sim.LinkDistance, "link-distance", 0, "link rest length (default from config)")
}

// mergeLayoutFlags copies explicitly set flags over the config-derived base.
func mergeLayoutFlags(cmd *cobra.Command, base *pipeline.Options, flags pipeline.Options) {
	changed := cmd.Flags().Changed
	if changed("width") {
		base.Width = flags.Width
	}
	if changed("height") {
		base.Height = flags.Height
	}
	if changed("timeout") {
		base.Timeout = flags.Timeout
	}
	if changed("retries") {
		base.Retries = flags.Retries
	}
	if changed("charge") {
		base.Sim.ChargeStrength = flags.Sim.ChargeStrength
	}
	if changed("link-distance") {
		base.Sim.LinkDistance = flags.Sim.LinkDistance
	}
	base.Refresh = flags.Refresh
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	in, err := pipeline.ReadInputFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	if in.Layout != nil {
		printWarning("%s is already a layout", input)
		return nil
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Simulating...")
	opts.Progress = progress.Throttle(progress.Func(func(f float64) {
		spinner.SetMessage("Simulating... " + progress.Percent(f))
	}), 0.01)
	spinner.Start()

	timer := newElapsed(c.Logger)
	layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, in.Document, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	timer.done("computed layout", "nodes", len(layout.Graph.Nodes), "ticks", layout.Ticks, "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = derivedPath(input, layoutSuffix)
	}
	if err := graph.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(layout.Graph.Nodes), len(layout.Graph.Links), cacheHit)
	if !layout.Converged {
		printWarning("Simulation stopped at alpha %.4f before settling", layout.Alpha)
	}
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
