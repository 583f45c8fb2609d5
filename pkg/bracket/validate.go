package bracket

import (
	"fmt"
	"strings"

	"github.com/matzehuels/bracketview/pkg/errors"
)

// IssueKind classifies a data-quality problem in a match list.
type IssueKind string

const (
	IssueDuplicateID    IssueKind = "duplicate_id"
	IssueNegativeRound  IssueKind = "negative_round"
	IssueNoFinal        IssueKind = "no_final"
	IssueMultipleFinals IssueKind = "multiple_finals"
	IssueDanglingNext   IssueKind = "dangling_next"
	IssueInvalidSlot    IssueKind = "invalid_slot"
	IssueSlotCollision  IssueKind = "slot_collision"
	IssueTooManyFeeders IssueKind = "too_many_feeders"
	IssueCycle          IssueKind = "cycle"
	IssueDisconnected   IssueKind = "disconnected"
)

// Fatal reports whether the kind makes the bracket impossible to draw as a
// single tree. Other kinds only cost connectors or cards.
func (k IssueKind) Fatal() bool {
	switch k {
	case IssueNoFinal, IssueMultipleFinals, IssueCycle:
		return true
	}
	return false
}

// Issue is one problem found by [Validate].
type Issue struct {
	Kind    IssueKind `json:"kind"`
	MatchID int       `json:"match_id"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s (match %d): %s", i.Kind, i.MatchID, i.Message)
}

// Issues is the result of [Validate].
type Issues []Issue

// Has reports whether any issue has the given kind.
func (is Issues) Has(kind IssueKind) bool {
	for _, i := range is {
		if i.Kind == kind {
			return true
		}
	}
	return false
}

// Fatal returns the subset of issues whose kind is fatal.
func (is Issues) Fatal() Issues {
	var out Issues
	for _, i := range is {
		if i.Kind.Fatal() {
			out = append(out, i)
		}
	}
	return out
}

// Err returns a MALFORMED_TOPOLOGY error describing the fatal issues, or nil
// if there are none.
func (is Issues) Err() error {
	fatal := is.Fatal()
	if len(fatal) == 0 {
		return nil
	}
	msgs := make([]string, len(fatal))
	for i, f := range fatal {
		msgs[i] = f.Message
	}
	return errors.New(errors.ErrCodeMalformedTopology, "malformed bracket: %s", strings.Join(msgs, "; "))
}

// Validate checks a match list against the single-elimination invariants and
// reports every violation it finds. An empty list has no issues.
//
// Validation is independent of [Resolve]: Resolve degrades on the same input
// instead of failing.
func Validate(matches []Match) Issues {
	if len(matches) == 0 {
		return nil
	}

	var issues Issues
	add := func(kind IssueKind, id int, format string, args ...any) {
		issues = append(issues, Issue{Kind: kind, MatchID: id, Message: fmt.Sprintf(format, args...)})
	}

	idx := NewIndex(matches)

	seen := make(map[int]bool, len(matches))
	for _, m := range matches {
		if seen[m.ID] {
			add(IssueDuplicateID, m.ID, "match id %d appears more than once", m.ID)
		}
		seen[m.ID] = true
		if m.Round < 0 {
			add(IssueNegativeRound, m.ID, "match %d has negative round %d", m.ID, m.Round)
		}
	}

	finals := idx.Finals()
	switch {
	case len(finals) == 0:
		add(IssueNoFinal, 0, "no match without a next match")
	case len(finals) > 1:
		for _, f := range finals[1:] {
			add(IssueMultipleFinals, f.ID, "match %d has no next match but %d is the final", f.ID, finals[0].ID)
		}
	}

	for _, m := range matches {
		if m.IsFinal() {
			continue
		}
		if _, ok := idx.Match(m.Next()); !ok {
			add(IssueDanglingNext, m.ID, "match %d feeds unknown match %d", m.ID, m.Next())
		}
		if s := m.Slot(); s != SlotA && s != SlotB {
			add(IssueInvalidSlot, m.ID, "match %d has slot %d in match %d, want %d or %d", m.ID, s, m.Next(), SlotA, SlotB)
		}
	}

	checked := make(map[int]bool)
	for _, m := range matches {
		if m.IsFinal() || checked[m.Next()] {
			continue
		}
		target := m.Next()
		checked[target] = true
		feeders := idx.Feeders(target)
		if len(feeders) > 2 {
			add(IssueTooManyFeeders, target, "match %d has %d feeders, want at most 2", target, len(feeders))
		}
		claimed := make(map[int]int)
		for _, f := range feeders {
			s := f.Slot()
			if s != SlotA && s != SlotB {
				continue
			}
			if prev, ok := claimed[s]; ok {
				add(IssueSlotCollision, f.ID, "matches %d and %d both claim slot %d of match %d", prev, f.ID, s, target)
				continue
			}
			claimed[s] = f.ID
		}
	}

	cyclic := findCycles(idx, matches)
	for _, id := range cyclic.order {
		add(IssueCycle, id, "match %d is part of a next-match cycle", id)
	}

	if len(finals) > 0 {
		reach := idx.Ancestors(finals[0].ID)
		for _, m := range matches {
			if m.IsFinal() || cyclic.members[m.ID] {
				continue
			}
			if _, ok := reach[m.ID]; !ok {
				add(IssueDisconnected, m.ID, "match %d does not lead to final %d", m.ID, finals[0].ID)
			}
		}
	}

	return issues
}

type cycles struct {
	order   []int        // first id of each cycle, in discovery order
	members map[int]bool // every id on any cycle
}

// findCycles follows next-match pointers from every match. Each match has at
// most one outgoing pointer, so a walk either ends at a final, ends at an
// unknown id, or re-enters its own path.
func findCycles(idx *Index, matches []Match) cycles {
	const (
		unvisited = iota
		onPath
		done
	)
	out := cycles{members: make(map[int]bool)}
	state := make(map[int]int, len(matches))

	for _, start := range matches {
		if state[start.ID] != unvisited {
			continue
		}
		var path []int
		cur := start.ID
		for {
			if st := state[cur]; st == onPath {
				loopStart := len(path) - 1
				for path[loopStart] != cur {
					loopStart--
				}
				out.order = append(out.order, cur)
				for _, id := range path[loopStart:] {
					out.members[id] = true
				}
				break
			} else if st == done {
				break
			}
			state[cur] = onPath
			path = append(path, cur)
			m, ok := idx.Match(cur)
			if !ok || m.IsFinal() {
				break
			}
			cur = m.Next()
		}
		for _, id := range path {
			state[id] = done
		}
	}
	return out
}
