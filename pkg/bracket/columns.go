package bracket

import (
	"fmt"
	"slices"
)

// Side identifies where a column sits relative to the final.
type Side string

const (
	SideTop    Side = "top"    // left of the final, rounds ascending
	SideFinal  Side = "final"  // the single final column
	SideBottom Side = "bottom" // right of the final, rounds descending
)

// Column is one vertical stack of match cards in display order.
type Column struct {
	Side    Side    `json:"side"`
	Round   int     `json:"round"`
	Label   string  `json:"label"`
	Matches []Match `json:"matches"`
}

// Key returns a stable identifier for the column, e.g. "top-1" or "final".
func (c Column) Key() string {
	if c.Side == SideFinal {
		return string(SideFinal)
	}
	return fmt.Sprintf("%s-%d", c.Side, c.Round)
}

// Columns returns the display columns from left to right: one column per
// round of the top half (ascending), the final, then one column per round of
// the bottom half (descending) so that the bottom half mirrors the top.
//
// Both halves get a column for every round in Rounds, even when that half has
// no match in the round, so that round columns line up across halves.
// An empty structure has no columns.
func (s Structure) Columns() []Column {
	if s.IsEmpty() {
		return nil
	}

	cols := make([]Column, 0, 2*len(s.Rounds)+1)
	for _, r := range s.Rounds {
		cols = append(cols, Column{Side: SideTop, Round: r, Label: RoundLabel(r), Matches: s.Top[r]})
	}

	final := *s.Final
	cols = append(cols, Column{Side: SideFinal, Round: final.Round, Label: "Final", Matches: []Match{final}})

	for _, r := range slices.Backward(s.Rounds) {
		cols = append(cols, Column{Side: SideBottom, Round: r, Label: RoundLabel(r), Matches: s.Bottom[r]})
	}
	return cols
}

// RoundLabel returns the column heading for a round.
func RoundLabel(round int) string {
	if round == PlayInRound {
		return "Play-in"
	}
	return fmt.Sprintf("Round %d", round)
}
