package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/spatial"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// viewFlags is the view transform and frame size shared by hit and cull.
type viewFlags struct {
	tx, ty, k     float64
	width, height float64
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&v.tx, "tx", 0, "horizontal translation in screen pixels")
	cmd.Flags().Float64Var(&v.ty, "ty", 0, "vertical translation in screen pixels")
	cmd.Flags().Float64Var(&v.k, "k", 1, "zoom factor")
	cmd.Flags().Float64Var(&v.width, "width", pipeline.DefaultWidth, "frame width")
	cmd.Flags().Float64Var(&v.height, "height", pipeline.DefaultHeight, "frame height")
}

func (v viewFlags) transform() (viewport.Transform, error) {
	t := viewport.Transform{X: v.tx, Y: v.ty, K: v.k}
	if !t.Valid() {
		return t, errors.New(errors.ErrCodeInvalidInput, "invalid transform %+v", t)
	}
	return t, nil
}

// =============================================================================
// hit
// =============================================================================

// hitCommand creates the hit command for resolving a screen point to a node.
func (c *CLI) hitCommand() *cobra.Command {
	var (
		view  viewFlags
		x, y  float64
		exact bool
	)

	cmd := &cobra.Command{
		Use:   "hit [layout.json]",
		Short: "Find the node under a screen point",
		Long: `Find the node under a screen point.

The point (--x, --y) is given in screen pixels and mapped into the layout
through the view transform. The default index bounds its search by the
largest node radius; --exact uses a 2-d tree and is always correct.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := view.transform()
			if err != nil {
				return err
			}
			n, err := c.runHit(cmd.Context(), args[0], view, t, x, y, exact)
			if err != nil {
				return err
			}
			if n == nil {
				printInfo("no selection")
				return nil
			}
			printSuccess("%s", StyleTitle.Render(n.ID))
			printKeyValue("position", fmt.Sprintf("%.2f, %.2f", n.X, n.Y))
			if n.Category != "" {
				printKeyValue("cluster", n.Category)
			}
			printKeyValue("value", fmt.Sprintf("%g", n.Value))
			if n.Pinned {
				printKeyValue("pinned", "yes")
			}
			return nil
		},
	}

	view.register(cmd)
	cmd.Flags().Float64Var(&x, "x", 0, "screen x")
	cmd.Flags().Float64Var(&y, "y", 0, "screen y")
	cmd.Flags().BoolVar(&exact, "exact", false, "use the exact 2-d tree index")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")

	return cmd
}

// runHit returns the node under screen point (x, y), or nil.
func (c *CLI) runHit(ctx context.Context, path string, view viewFlags, t viewport.Transform, x, y float64, exact bool) (*graph.Node, error) {
	layout, err := loadLayout(path, view.width, view.height)
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(layout.Graph)
	if err != nil {
		return nil, err
	}

	wx, wy := t.Invert(x, y)
	ix := pipeline.BuildIndex(ctx, g, c.settings().Style, exact)
	n, err := ix.HitTest(wx, wy)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("hit test", "screen", [2]float64{x, y}, "world", [2]float64{wx, wy}, "exact", exact)
	return n, nil
}

// =============================================================================
// cull
// =============================================================================

// cullCommand creates the cull command listing what a frame would draw.
func (c *CLI) cullCommand() *cobra.Command {
	var (
		view   viewFlags
		listed bool
	)

	cmd := &cobra.Command{
		Use:   "cull [layout.json]",
		Short: "List the nodes and links visible in a frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := view.transform()
			if err != nil {
				return err
			}
			if err := errors.ValidateViewport(view.width, view.height); err != nil {
				return err
			}
			v, total, err := c.runCull(args[0], view, t)
			if err != nil {
				return err
			}

			printKeyValue("nodes", fmt.Sprintf("%d / %d", len(v.Nodes), total.Nodes))
			printKeyValue("links", fmt.Sprintf("%d / %d", len(v.Edges), total.Edges))
			if listed {
				for _, id := range visibleIDs(v) {
					fmt.Println(id)
				}
			}
			return nil
		},
	}

	view.register(cmd)
	cmd.Flags().BoolVar(&listed, "ids", false, "print the visible node ids")

	return cmd
}

type counts struct{ Nodes, Edges int }

func (c *CLI) runCull(path string, view viewFlags, t viewport.Transform) (spatial.Visible, counts, error) {
	layout, err := loadLayout(path, view.width, view.height)
	if err != nil {
		return spatial.Visible{}, counts{}, err
	}
	g, err := graph.Build(layout.Graph)
	if err != nil {
		return spatial.Visible{}, counts{}, err
	}

	cl := c.settings().Style.Classifiers(g)
	ix := spatial.Build(g, cl.Radius.Radius)
	v, err := ix.Cull(g.Edges, t, view.width, view.height)
	if err != nil {
		return spatial.Visible{}, counts{}, err
	}
	return v, counts{Nodes: len(g.Nodes), Edges: len(g.Edges)}, nil
}

func visibleIDs(v spatial.Visible) []string {
	ids := make([]string, len(v.Nodes))
	for i, n := range v.Nodes {
		ids[i] = n.ID
	}
	slices.Sort(ids)
	return ids
}
