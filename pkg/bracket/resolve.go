package bracket

import (
	"cmp"
	"maps"
	"slices"
)

// Structure is a bracket resolved into two halves converging on a final.
//
// Top and Bottom map a round number to the matches of that half in display
// order. Rounds lists the distinct rounds present in either half, ascending;
// the final's own round is only included if some other match shares it.
// A Structure is immutable once returned by [Resolve].
type Structure struct {
	Top    map[int][]Match `json:"top"`
	Bottom map[int][]Match `json:"bottom"`
	Final  *Match          `json:"final"`
	Rounds []int           `json:"rounds"`
}

// Empty returns the structure used for "no bracket yet".
func Empty() Structure {
	return Structure{
		Top:    map[int][]Match{},
		Bottom: map[int][]Match{},
		Rounds: []int{},
	}
}

// IsEmpty reports whether the structure has no final.
func (s Structure) IsEmpty() bool { return s.Final == nil }

// Len returns the number of matches placed in the structure, final included.
func (s Structure) Len() int {
	n := 0
	for _, ms := range s.Top {
		n += len(ms)
	}
	for _, ms := range s.Bottom {
		n += len(ms)
	}
	if s.Final != nil {
		n++
	}
	return n
}

// Matches returns every placed match in column order.
func (s Structure) Matches() []Match {
	var out []Match
	for _, col := range s.Columns() {
		out = append(out, col.Matches...)
	}
	return out
}

// Half reports which side the match with the given id was placed on.
func (s Structure) Half(id int) (Side, bool) {
	if s.Final != nil && s.Final.ID == id {
		return SideFinal, true
	}
	for _, ms := range s.Top {
		if slices.ContainsFunc(ms, func(m Match) bool { return m.ID == id }) {
			return SideTop, true
		}
	}
	for _, ms := range s.Bottom {
		if slices.ContainsFunc(ms, func(m Match) bool { return m.ID == id }) {
			return SideBottom, true
		}
	}
	return "", false
}

// Resolve derives the bracket structure from a flat match list.
//
// The final is the first match without a next match. Its feeders, ordered by
// slot, become the top and bottom finalists; every match that transitively
// feeds a finalist joins that finalist's half. Matches reaching neither
// finalist are dropped. Within each round, matches are ordered by the match
// they feed and then by slot, which keeps siblings adjacent with slot 1 above
// slot 2.
//
// Resolve never fails: malformed input degrades to a partial or empty
// structure. The input slice is not modified.
func Resolve(matches []Match) Structure {
	if len(matches) == 0 {
		return Empty()
	}
	return resolve(NewIndex(matches))
}

// ResolveStrict is [Resolve] preceded by [Validate]. It returns a
// MALFORMED_TOPOLOGY error if the list has no final, several finals, or a
// cycle; non-fatal issues are tolerated.
func ResolveStrict(matches []Match) (Structure, error) {
	if len(matches) == 0 {
		return Empty(), nil
	}
	if err := Validate(matches).Err(); err != nil {
		return Empty(), err
	}
	return resolve(NewIndex(matches)), nil
}

func resolve(idx *Index) Structure {
	final, ok := idx.Final()
	if !ok {
		return Empty()
	}

	var topIDs, bottomIDs map[int]struct{}
	finalists := idx.FeedersBySlot(final.ID)
	if len(finalists) > 0 {
		topIDs = idx.Ancestors(finalists[0].ID)
	}
	if len(finalists) > 1 {
		bottomIDs = idx.Ancestors(finalists[1].ID)
	}

	s := Empty()
	s.Final = &final

	for _, m := range idx.matches {
		if m.ID == final.ID {
			continue
		}
		if _, ok := topIDs[m.ID]; ok {
			s.Top[m.Round] = append(s.Top[m.Round], m)
		} else if _, ok := bottomIDs[m.ID]; ok {
			s.Bottom[m.Round] = append(s.Bottom[m.Round], m)
		}
	}

	rounds := make(map[int]struct{})
	for _, half := range []map[int][]Match{s.Top, s.Bottom} {
		for round, ms := range half {
			slices.SortStableFunc(ms, compareDisplay)
			rounds[round] = struct{}{}
		}
	}
	if len(rounds) > 0 {
		s.Rounds = slices.Sorted(maps.Keys(rounds))
	}

	return s
}

// compareDisplay orders matches of one round top to bottom: grouped by the
// match they feed, slot 1 before slot 2. Unset values sort as zero.
func compareDisplay(a, b Match) int {
	if c := cmp.Compare(a.Next(), b.Next()); c != 0 {
		return c
	}
	return cmp.Compare(a.Slot(), b.Slot())
}
