package bracket

import "fmt"

// Slot positions a feeder match takes in the match it advances to.
const (
	SlotA = 1 // winner fills the first side of the next match
	SlotB = 2 // winner fills the second side of the next match
)

// PlayInRound is the round number reserved for play-in matches.
const PlayInRound = 0

// UndecidedLabel is shown for a side whose competitor is not yet known.
const UndecidedLabel = "TBD"

// Match is a single bracket match as supplied by the match source.
// Matches are read-only to this package; nil pointers mean "not set".
type Match struct {
	ID    int `json:"id" bson:"id"`
	Round int `json:"round" bson:"round"`

	SlotA *string `json:"slot_a" bson:"slot_a,omitempty"`
	SlotB *string `json:"slot_b" bson:"slot_b,omitempty"`

	// NextMatchID is the match the winner advances to; nil on the final.
	NextMatchID *int `json:"next_match_id" bson:"next_match_id,omitempty"`
	// SlotInNextMatch is SlotA or SlotB; nil only on the final.
	SlotInNextMatch *int `json:"slot_in_next_match" bson:"slot_in_next_match,omitempty"`
}

// IsFinal reports whether the match feeds no other match.
func (m Match) IsFinal() bool { return m.NextMatchID == nil }

// Next returns the id of the match this one feeds, or 0 for the final.
// The zero fallback is also the sort key used for display ordering.
func (m Match) Next() int {
	if m.NextMatchID == nil {
		return 0
	}
	return *m.NextMatchID
}

// Slot returns SlotInNextMatch, or 0 when unset.
func (m Match) Slot() int {
	if m.SlotInNextMatch == nil {
		return 0
	}
	return *m.SlotInNextMatch
}

// LabelA returns the display label of the first side.
func (m Match) LabelA() string { return label(m.SlotA) }

// LabelB returns the display label of the second side.
func (m Match) LabelB() string { return label(m.SlotB) }

// String implements fmt.Stringer for log output.
func (m Match) String() string {
	if m.IsFinal() {
		return fmt.Sprintf("#%d r%d (%s vs %s) final", m.ID, m.Round, m.LabelA(), m.LabelB())
	}
	return fmt.Sprintf("#%d r%d (%s vs %s) -> #%d/%d", m.ID, m.Round, m.LabelA(), m.LabelB(), m.Next(), m.Slot())
}

func label(s *string) string {
	if s == nil || *s == "" {
		return UndecidedLabel
	}
	return *s
}

// Feeds returns a copy of m that advances to next in the given slot.
// It is a convenience for building match lists in code and tests.
func (m Match) Feeds(next, slot int) Match {
	m.NextMatchID = &next
	m.SlotInNextMatch = &slot
	return m
}

// WithLabels returns a copy of m with both side labels set.
// An empty string leaves the corresponding side undecided.
func (m Match) WithLabels(a, b string) Match {
	m.SlotA, m.SlotB = nil, nil
	if a != "" {
		m.SlotA = &a
	}
	if b != "" {
		m.SlotB = &b
	}
	return m
}
