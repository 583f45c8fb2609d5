package cli

import (
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketview/pkg/pipeline"
	"github.com/matzehuels/bracketview/pkg/render/svg"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for bracketview.

  bash:        source <(bracketview completion bash)
  zsh:         bracketview completion zsh > "${fpath[1]}/_bracketview"
  fish:        bracketview completion fish | source
  powershell:  bracketview completion powershell | Out-String | Invoke-Expression

Completions cover commands, flags and the values of --format, --type and
--theme.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}

// completeRenderFlags registers value completions for the render flags.
func completeRenderFlags(cmd *cobra.Command) {
	cmd.RegisterFlagCompletionFunc("format", completeList(sortedKeys(pipeline.ValidFormats)))
	cmd.RegisterFlagCompletionFunc("type", cobra.FixedCompletions(sortedKeys(pipeline.ValidVizTypes), cobra.ShellCompDirectiveNoFileComp))
	cmd.RegisterFlagCompletionFunc("theme", cobra.FixedCompletions(svg.Themes(), cobra.ShellCompDirectiveNoFileComp))
}

// completeList completes the last element of a comma-separated list.
func completeList(values []string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix = toComplete[:i+1]
		}
		var out []string
		for _, v := range values {
			if !strings.Contains(","+prefix, ","+v+",") {
				out = append(out, prefix+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
