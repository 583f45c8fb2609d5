package bracket

import (
	"testing"

	"github.com/matzehuels/bracketview/pkg/errors"
)

func TestValidateWellFormed(t *testing.T) {
	for rounds := 1; rounds <= 5; rounds++ {
		if issues := Validate(fullBracket(rounds)); len(issues) != 0 {
			t.Errorf("rounds=%d: Validate() = %v, want no issues", rounds, issues)
		}
	}
	if issues := Validate(nil); issues != nil {
		t.Errorf("Validate(nil) = %v, want nil", issues)
	}
}

func TestValidateIssues(t *testing.T) {
	tests := []struct {
		name    string
		matches []Match
		want    IssueKind
		wantID  int
	}{
		{
			name:    "DuplicateID",
			matches: []Match{match(1, 1).Feeds(2, SlotA), match(1, 1).Feeds(2, SlotB), match(2, 2)},
			want:    IssueDuplicateID,
			wantID:  1,
		},
		{
			name:    "NegativeRound",
			matches: []Match{match(1, -1).Feeds(2, SlotA), match(2, 1)},
			want:    IssueNegativeRound,
			wantID:  1,
		},
		{
			name:    "NoFinal",
			matches: []Match{match(1, 1).Feeds(2, SlotA), match(2, 2).Feeds(1, SlotA)},
			want:    IssueNoFinal,
		},
		{
			name:    "MultipleFinals",
			matches: []Match{match(1, 1), match(2, 1)},
			want:    IssueMultipleFinals,
			wantID:  2,
		},
		{
			name:    "DanglingNext",
			matches: []Match{match(1, 1).Feeds(7, SlotA), match(2, 2)},
			want:    IssueDanglingNext,
			wantID:  1,
		},
		{
			name:    "MissingSlot",
			matches: []Match{{ID: 1, Round: 1, NextMatchID: ptr(2)}, match(2, 2)},
			want:    IssueInvalidSlot,
			wantID:  1,
		},
		{
			name:    "SlotOutOfRange",
			matches: []Match{match(1, 1).Feeds(2, 3), match(2, 2)},
			want:    IssueInvalidSlot,
			wantID:  1,
		},
		{
			name:    "SlotCollision",
			matches: []Match{match(1, 1).Feeds(3, SlotA), match(2, 1).Feeds(3, SlotA), match(3, 2)},
			want:    IssueSlotCollision,
			wantID:  2,
		},
		{
			name: "TooManyFeeders",
			matches: []Match{
				match(1, 1).Feeds(4, SlotA),
				match(2, 1).Feeds(4, SlotB),
				match(3, 1).Feeds(4, SlotB),
				match(4, 2),
			},
			want:   IssueTooManyFeeders,
			wantID: 4,
		},
		{
			name:    "SelfLoop",
			matches: []Match{match(1, 2), match(2, 1).Feeds(2, SlotA)},
			want:    IssueCycle,
			wantID:  2,
		},
		{
			name:    "TwoCycle",
			matches: []Match{match(1, 2), match(2, 1).Feeds(3, SlotA), match(3, 1).Feeds(2, SlotA)},
			want:    IssueCycle,
			wantID:  2,
		},
		{
			name:    "Disconnected",
			matches: []Match{match(1, 2), match(2, 1).Feeds(1, SlotA), match(3, 1).Feeds(9, SlotA)},
			want:    IssueDisconnected,
			wantID:  3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Validate(tt.matches)
			found := false
			for _, i := range issues {
				if i.Kind == tt.want && i.MatchID == tt.wantID {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want %s on match %d", issues, tt.want, tt.wantID)
			}
			if issues.Has(tt.want) != true {
				t.Errorf("Has(%s) = false", tt.want)
			}
		})
	}
}

func TestValidateCycleNotDisconnected(t *testing.T) {
	issues := Validate([]Match{match(1, 2), match(2, 1).Feeds(3, SlotA), match(3, 1).Feeds(2, SlotB)})
	if issues.Has(IssueDisconnected) {
		t.Errorf("Validate() = %v, cycle members should not be reported as disconnected", issues)
	}
	n := 0
	for _, i := range issues {
		if i.Kind == IssueCycle {
			n++
		}
	}
	if n != 1 {
		t.Errorf("cycle issues = %d, want 1", n)
	}
}

func TestIssuesErr(t *testing.T) {
	tests := []struct {
		name    string
		matches []Match
		wantErr bool
	}{
		{"WellFormed", fullBracket(3), false},
		{"NonFatalOnly", []Match{match(1, 1).Feeds(3, SlotA), match(2, 1).Feeds(3, SlotA), match(3, 2)}, false},
		{"NoFinal", []Match{match(1, 1).Feeds(1, SlotA)}, true},
		{"MultipleFinals", []Match{match(1, 1), match(2, 1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.matches).Err()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Err() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeMalformedTopology) {
				t.Errorf("Err() code = %s, want %s", errors.GetCode(err), errors.ErrCodeMalformedTopology)
			}
		})
	}
}
