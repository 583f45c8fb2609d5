package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketview/pkg/pipeline"
)

// layoutFlags registers the viewport and card flags on cmd.
func layoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "viewport width (default from config, else 1280)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "viewport height (default from config, else 720)")
	cmd.Flags().Float64Var(&opts.ScrollX, "scroll-x", 0, "horizontal scroll offset")
	cmd.Flags().Float64Var(&opts.ScrollY, "scroll-y", 0, "vertical scroll offset")
	cmd.Flags().Float64Var(&opts.CardWidth, "card-width", 0, "match card width (default from config)")
	cmd.Flags().Float64Var(&opts.CardHeight, "card-height", 0, "match card height (default from config)")
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  fetchFlags
		output string
	)
	opts := c.baseOptions()

	cmd := &cobra.Command{
		Use:   "layout <source>",
		Short: "Compute the board layout and connector lines",
		Long: `Compute the board layout of a bracket and the connector lines between each
match and the match its winner advances to.

The output is the same JSON document as 'render -f json': the structure,
the columns, the connector lines with their SVG path data, the canvas
extent and the viewport they were computed for. Lines are computed for the
given scroll offset.

Results are cached for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], flags, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	flags.register(cmd)
	layoutFlags(cmd, &opts)
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, arg string, flags fetchFlags, opts pipeline.Options, output string) error {
	runner, matches, _, err := c.load(ctx, arg, flags, &opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	layout, hit, err := runner.LayoutWithCacheInfo(ctx, matches, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	data, err := pipeline.MarshalSnapshot(layout)
	if err != nil {
		return err
	}

	if output == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(matches), len(layout.Result.Lines), hit)
	printNewline()
	printNextStep("Render", appName+" render "+arg)
	return nil
}
