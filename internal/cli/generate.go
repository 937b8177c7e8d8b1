package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/generate"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// generateCommand creates the generate command for synthetic graphs.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output string
		opts   = generate.Options{Nodes: generate.DefaultNodes}
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random graph document",
		Long: `Generate a random graph document.

Nodes are numbered 1..N and carry num equal to their id; every node but the
last gets one link. The same seed always produces the same graph.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			timer := newElapsed(c.Logger)
			doc, err := generate.Graph(opts)
			if err != nil {
				return err
			}
			timer.done("generated graph", "nodes", len(doc.Nodes), "links", len(doc.Links), "seed", opts.Seed)

			if output == "" || output == "-" {
				return graph.WriteDocument(doc, os.Stdout)
			}
			if err := graph.WriteDocumentFile(doc, output); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Generated %d nodes, %d links", len(doc.Nodes), len(doc.Links))
			printFile(output)
			printNewline()
			printNextStep("Lay out", appName+" layout "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVarP(&opts.Nodes, "nodes", "n", opts.Nodes, "number of nodes")
	cmd.Flags().IntVarP(&opts.Clusters, "clusters", "k", 0, "number of clusters (0 for none)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed")

	return cmd
}

// paletteCommand creates the palette command printing distinct colours.
func (c *CLI) paletteCommand() *cobra.Command {
	var (
		colors int
		seed   uint64
		swatch bool
	)

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Print distinct random #RRGGBB colours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			palette, err := generate.Palette(colors, seed)
			if err != nil {
				return err
			}
			for _, hex := range palette {
				if swatch {
					block := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
					fmt.Println(block + " " + hex)
					continue
				}
				fmt.Println(hex)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&colors, "colors", "n", 40, "number of colours")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().BoolVar(&swatch, "swatch", false, "show a colour block next to each value")

	return cmd
}
