package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/session"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// Terminal size assumed until the first resize event arrives.
const (
	defaultCols = 80
	defaultRows = 24
)

// exploreCommand creates the interactive explorer command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		noCache   bool
		noSession bool
		frozen    bool
		noDrag    bool
		opts      pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "explore [graph.json|layout.json]",
		Short: "Explore a graph interactively in the terminal",
		Long: `Explore a graph interactively in the terminal.

Graph documents are simulated to rest first. The explorer then keeps the
simulation running: drag a node to move it, press p to pin the selected
node in place, scroll to zoom, drag empty space or use the arrow keys to
pan, click to select.

The view, the selection and pinned nodes are saved per layout and restored
the next time the same layout is explored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := c.baseOptions()
			if err != nil {
				return err
			}
			mergeLayoutFlags(cmd, &base, opts)
			base.Style.EnableSimulate = !frozen
			base.Style.EnableDrag = !noDrag
			return c.runExplore(cmd.Context(), args[0], base, noCache, noSession)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noSession, "no-session", false, "do not restore or save the session")
	cmd.Flags().BoolVar(&frozen, "frozen", false, "do not simulate while exploring")
	cmd.Flags().BoolVar(&noDrag, "no-drag", false, "disable dragging nodes")
	addLayoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, opts pipeline.Options, noCache, noSession bool) error {
	in, err := pipeline.ReadInputFile(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	layout, err := c.exploreLayout(ctx, runner, in, opts)
	if err != nil {
		return err
	}
	layoutHash, err := pipeline.HashLayout(layout)
	if err != nil {
		return err
	}
	g, err := graph.Build(layout.Graph)
	if err != nil {
		return err
	}

	var (
		store session.Store
		sess  *session.Session
	)
	if !noSession {
		if store, err = c.sessionStore(runner.Cache, noCache); err != nil {
			c.Logger.Warn("sessions disabled", "error", err)
		}
	}
	if store != nil {
		if sess, err = store.Get(ctx, layoutHash); err != nil {
			c.Logger.Warn("load session", "error", err)
		}
	}

	var selected *graph.Node
	if sess != nil {
		selected = sess.Apply(g)
	}

	profile, err := c.settings().ViewportProfile()
	if err != nil {
		return err
	}
	simCfg := opts.Sim.Centered(layout.Width, layout.Height)
	simCfg.Alpha = sim.DragAlphaTarget

	explorer, err := NewExplorer(g, simCfg, opts.Style, profile, defaultCols, defaultRows)
	if err != nil {
		return err
	}
	defer explorer.Close()
	explorer.Selected = selected
	if sess != nil {
		explorer.Viewport().Set(sess.Transform)
	}

	p := tea.NewProgram(explorer, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("explorer: %w", err)
	}

	if store == nil {
		return nil
	}
	if sess == nil {
		sess = session.New(layoutHash, session.DefaultTTL)
	}
	sess.Transform = explorer.Viewport().Transform()
	sess.Selected = ""
	if explorer.Selected != nil {
		sess.Selected = explorer.Selected.ID
	}
	sess.Capture(explorer.Graph())
	sess.Touch(session.DefaultTTL)
	// The program context may be cancelled already; the save must still run.
	if err := store.Set(context.WithoutCancel(ctx), sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	c.Logger.Debug("saved session", "layout", layoutHash, "pins", len(sess.Pins))
	return nil
}

// exploreLayout returns the starting layout: the input itself when it is
// already simulated, otherwise a batch run to rest.
func (c *CLI) exploreLayout(ctx context.Context, runner *pipeline.Runner, in pipeline.Input, opts pipeline.Options) (graph.Layout, error) {
	if in.Layout != nil {
		return *in.Layout, nil
	}
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}

	spinner := newSpinnerWithContext(ctx, "Simulating...")
	spinner.Start()
	layout, err := runner.Layout(ctx, in.Document, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return graph.Layout{}, err
	}
	spinner.Stop()
	return layout, nil
}

// sessionStore keeps sessions in the shared cache, or in files when caching
// is off.
func (c *CLI) sessionStore(ch cache.Cache, noCache bool) (session.Store, error) {
	if _, null := ch.(*cache.NullCache); noCache || null {
		fs, err := session.NewFileStore("")
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
	return session.NewCacheStore(ch, cache.NewDefaultKeyer()), nil
}
