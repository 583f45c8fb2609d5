package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/errors"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "check <source>",
		Short: "Report data-quality problems in a match list",
		Long: `Check a match list against the single-elimination rules: unique ids, one
final, next matches that exist, slots 1 or 2 with at most one feeder each,
no cycles, and every match leading to the final.

Exits non-zero when a fatal issue is found (no final, several finals, a
cycle), or on any issue with --strict.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], flags)
		},
	}
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached matches and fetch again")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on any issue, not only fatal ones")
	return cmd
}

func (c *CLI) runCheck(ctx context.Context, arg string, flags fetchFlags) error {
	opts := c.baseOptions()
	strict := flags.strict
	flags.strict = false
	runner, matches, _, err := c.load(ctx, arg, flags, &opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	issues := bracket.Validate(matches)
	prog.done(fmt.Sprintf("Checked %d matches", len(matches)))

	if len(issues) == 0 {
		printSuccess("No issues")
		return nil
	}

	printWarning("%d issues", len(issues))
	printIssues(issues)

	if err := issues.Err(); err != nil {
		return err
	}
	if strict {
		return errors.New(errors.ErrCodeMalformedTopology, "%d issues", len(issues))
	}
	return nil
}
