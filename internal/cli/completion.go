package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand prints a completion script for one shell. Besides
// subcommands and flags the scripts complete the output formats of
// render --format.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Print a shell completion script",
		Long: `Print a completion script for bash, zsh, fish or powershell.

The script completes forcegraph subcommands (layout, render, explore, serve,
cache, ...) and their flags, including output formats for render --format.

Try it in the current shell:
  source <(forcegraph completion bash)
  forcegraph completion fish | source

Install it for new shells:
  forcegraph completion bash > ~/.local/share/bash-completion/completions/forcegraph
  forcegraph completion zsh  > "${fpath[1]}/_forcegraph"
  forcegraph completion fish > ~/.config/fish/completions/forcegraph.fish
  forcegraph completion powershell >> $PROFILE`,
		Example:               "  forcegraph completion zsh > ~/.zfunc/_forcegraph",
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}
