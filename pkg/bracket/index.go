package bracket

import "slices"

// Index is a lookup over one match-list snapshot: match by id, and the
// reverse adjacency from a match to the matches that feed it.
//
// It is built once in O(n) and answers [Index.Feeders] in O(1), replacing
// repeated full-list scans during ancestor collection.
type Index struct {
	matches []Match
	byID    map[int]int   // id -> position in matches (last occurrence wins)
	feeders map[int][]int // next id -> positions of feeders, input order
	finals  []int         // positions of matches without a next match
}

// NewIndex indexes matches. The slice is retained, not copied; callers must
// not modify it while the index is in use.
func NewIndex(matches []Match) *Index {
	idx := &Index{
		matches: matches,
		byID:    make(map[int]int, len(matches)),
		feeders: make(map[int][]int),
	}
	for i, m := range matches {
		idx.byID[m.ID] = i
		if m.NextMatchID == nil {
			idx.finals = append(idx.finals, i)
			continue
		}
		idx.feeders[*m.NextMatchID] = append(idx.feeders[*m.NextMatchID], i)
	}
	return idx
}

// Len returns the number of indexed matches, duplicates included.
func (x *Index) Len() int { return len(x.matches) }

// Match returns the match with the given id.
func (x *Index) Match(id int) (Match, bool) {
	i, ok := x.byID[id]
	if !ok {
		return Match{}, false
	}
	return x.matches[i], true
}

// Final returns the first match, in input order, that feeds no other match.
func (x *Index) Final() (Match, bool) {
	if len(x.finals) == 0 {
		return Match{}, false
	}
	return x.matches[x.finals[0]], true
}

// Finals returns every match without a next match, in input order.
func (x *Index) Finals() []Match {
	out := make([]Match, len(x.finals))
	for i, pos := range x.finals {
		out[i] = x.matches[pos]
	}
	return out
}

// Feeders returns the matches whose NextMatchID is id, in input order.
func (x *Index) Feeders(id int) []Match {
	positions := x.feeders[id]
	out := make([]Match, len(positions))
	for i, pos := range positions {
		out[i] = x.matches[pos]
	}
	return out
}

// FeedersBySlot returns the feeders of id stably sorted by slot, with an
// unset slot sorting first.
func (x *Index) FeedersBySlot(id int) []Match {
	out := x.Feeders(id)
	slices.SortStableFunc(out, func(a, b Match) int { return a.Slot() - b.Slot() })
	return out
}

// Ancestors returns the ids of every match that transitively feeds root,
// root itself included.
//
// The walk is an iterative work-list over the reverse adjacency. The seen set
// expands each id at most once, so it terminates on cyclic input too.
func (x *Index) Ancestors(root int) map[int]struct{} {
	ids := map[int]struct{}{root: {}}
	work := []int{root}

	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]

		for _, pos := range x.feeders[cur] {
			id := x.matches[pos].ID
			if _, seen := ids[id]; seen {
				continue
			}
			ids[id] = struct{}{}
			work = append(work, id)
		}
	}
	return ids
}
