package bracket

import (
	"reflect"
	"testing"
)

func TestColumnsOrder(t *testing.T) {
	s := Resolve(fullBracket(3))
	cols := s.Columns()

	var got []string
	for _, c := range cols {
		got = append(got, c.Key())
	}
	want := []string{"top-1", "top-2", "final", "bottom-2", "bottom-1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Columns() keys = %v, want %v", got, want)
	}

	wantSizes := []int{2, 1, 1, 1, 2}
	for i, c := range cols {
		if len(c.Matches) != wantSizes[i] {
			t.Errorf("column %s has %d matches, want %d", c.Key(), len(c.Matches), wantSizes[i])
		}
	}
	if cols[2].Matches[0].ID != 1 {
		t.Errorf("final column holds %v, want match 1", cols[2].Matches[0])
	}
	if got := len(s.Matches()); got != 7 {
		t.Errorf("len(Matches()) = %d, want 7", got)
	}
}

func TestColumnsEmptySideKeepsRound(t *testing.T) {
	s := Resolve([]Match{
		match(1, 1).Feeds(3, SlotA),
		match(2, 1).Feeds(3, SlotB),
		match(3, 2).Feeds(4, SlotA),
		match(4, 2),
	})
	cols := s.Columns()
	if len(cols) != 5 {
		t.Fatalf("len(Columns()) = %d, want 5", len(cols))
	}
	for _, c := range cols[3:] {
		if c.Side != SideBottom || len(c.Matches) != 0 {
			t.Errorf("column %s = %d matches, want empty bottom column", c.Key(), len(c.Matches))
		}
	}
}

func TestRoundLabel(t *testing.T) {
	tests := []struct {
		round int
		want  string
	}{
		{PlayInRound, "Play-in"},
		{1, "Round 1"},
		{4, "Round 4"},
	}
	for _, tt := range tests {
		if got := RoundLabel(tt.round); got != tt.want {
			t.Errorf("RoundLabel(%d) = %q, want %q", tt.round, got, tt.want)
		}
	}
}

func TestMatchLabels(t *testing.T) {
	m := match(1, 1).WithLabels("Lions", "")
	if m.LabelA() != "Lions" {
		t.Errorf("LabelA() = %q, want Lions", m.LabelA())
	}
	if m.LabelB() != UndecidedLabel {
		t.Errorf("LabelB() = %q, want %q", m.LabelB(), UndecidedLabel)
	}
	if got := m.Feeds(5, SlotB).String(); got != "#1 r1 (Lions vs TBD) -> #5/2" {
		t.Errorf("String() = %q", got)
	}
}
