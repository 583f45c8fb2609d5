package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/pipeline"
)

// fetchFlags are shared by every command that reads a <source>.
type fetchFlags struct {
	noCache bool
	refresh bool
	strict  bool
}

func (f *fetchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached matches and fetch again")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on a missing final, several finals or a cycle")
}

// load opens a runner for arg and fetches its matches.
func (c *CLI) load(ctx context.Context, arg string, flags fetchFlags, opts *pipeline.Options) (*pipeline.Runner, []bracket.Match, bool, error) {
	if err := c.applyConfig(opts); err != nil {
		return nil, nil, false, err
	}
	src, id, err := c.newSource(arg)
	if err != nil {
		return nil, nil, false, err
	}
	runner, err := c.newRunner(ctx, src, flags.noCache)
	if err != nil {
		return nil, nil, false, fmt.Errorf("initialize runner: %w", err)
	}

	opts.ChampionshipID = id
	opts.Refresh = flags.refresh
	opts.Strict = flags.strict
	opts.Logger = c.Logger

	spinner := newSpinner(ctx, fmt.Sprintf("Loading matches from %s...", arg))
	spinner.Start()
	matches, hit, err := runner.FetchWithCacheInfo(ctx, *opts)
	spinner.Stop()
	if err != nil {
		runner.Close()
		return nil, nil, false, fmt.Errorf("fetch %s: %w", arg, err)
	}
	c.Logger.Debug("matches loaded", "source", src.Name(), "matches", len(matches), "cached", hit)
	return runner, matches, hit, nil
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		flags  fetchFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <source>",
		Short: "Resolve a match list into bracket halves and a final",
		Long: `Resolve a match list into the top half, the bottom half and the final.

The final is the first match without a next match. Each half holds every
match that transitively feeds one of the final's two feeders. Columns are
printed left to right: top half by ascending round, the final, then the
bottom half mirrored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd.Context(), args[0], flags, asJSON)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the structure and columns as JSON")
	return cmd
}

func (c *CLI) runResolve(ctx context.Context, arg string, flags fetchFlags, asJSON bool) error {
	opts := c.baseOptions()
	runner, matches, hit, err := c.load(ctx, arg, flags, &opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, issues, err := runner.Resolve(ctx, matches, opts)
	if err != nil {
		return err
	}
	cols := st.Columns()

	if asJSON {
		if cols == nil {
			cols = []bracket.Column{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Structure bracket.Structure `json:"structure"`
			Columns   []bracket.Column  `json:"columns"`
			Issues    bracket.Issues    `json:"issues,omitempty"`
		}{st, cols, issues})
	}

	if st.IsEmpty() {
		printInfo("No bracket yet")
		return nil
	}

	fmt.Println(columnsTable(cols))
	printSuccess("Resolved %d of %d matches", st.Len(), len(matches))
	printStats(len(matches), 0, hit)
	if len(issues) > 0 {
		printWarning("%d data-quality issues", len(issues))
		printNextStep("Details", appName+" check "+arg)
	}
	return nil
}
