package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketview/pkg/bracket"
)

// teamHit is one team matching a search, with the matches it plays in
// input order.
type teamHit struct {
	Team     string
	Distance int
	Matches  []bracket.Match
}

// findTeams fuzzy-matches query against every team named in matches,
// case- and accent-insensitively. Closest names come first; ties keep the
// order teams first appear in.
func findTeams(matches []bracket.Match, query string) []teamHit {
	var teams []string
	playing := make(map[string][]bracket.Match)
	for _, m := range matches {
		for _, side := range []*string{m.SlotA, m.SlotB} {
			if side == nil || *side == "" {
				continue
			}
			if _, seen := playing[*side]; !seen {
				teams = append(teams, *side)
			}
			playing[*side] = append(playing[*side], m)
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, teams)
	sort.Stable(ranks)

	hits := make([]teamHit, len(ranks))
	for i, r := range ranks {
		hits[i] = teamHit{Team: r.Target, Distance: r.Distance, Matches: playing[r.Target]}
	}
	return hits
}

// findCommand creates the find command.
func (c *CLI) findCommand() *cobra.Command {
	var (
		flags fetchFlags
		limit int
	)

	cmd := &cobra.Command{
		Use:   "find <source> <team>",
		Short: "Fuzzy-search the teams of a bracket",
		Long: `Find teams by approximate name and list the matches they play, with the
half of the bracket each match sits in.

Matching ignores case and accents, so "sao paulo" finds "São Paulo".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFind(cmd.Context(), args[0], args[1], flags, limit)
		},
	}
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached matches and fetch again")
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum number of teams to show")
	return cmd
}

func (c *CLI) runFind(ctx context.Context, arg, query string, flags fetchFlags, limit int) error {
	opts := c.baseOptions()
	runner, matches, _, err := c.load(ctx, arg, flags, &opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	hits := findTeams(matches, query)
	if len(hits) == 0 {
		printInfo("No team matches %q", query)
		return nil
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	st := bracket.Resolve(matches)
	for _, h := range hits {
		fmt.Println(StyleTitle.Render(h.Team))
		for _, m := range h.Matches {
			half, ok := st.Half(m.ID)
			where := "not placed"
			if ok {
				where = string(half)
			}
			printKeyValue(fmt.Sprintf("#%d", m.ID), fmt.Sprintf("%s vs %s", m.LabelA(), m.LabelB()))
			printDetail("%s · %s", bracket.RoundLabel(m.Round), where)
		}
	}
	return nil
}
