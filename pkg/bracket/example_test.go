package bracket_test

import (
	"fmt"

	"github.com/matzehuels/bracketview/pkg/bracket"
)

func ExampleResolve() {
	m := func(id, round int) bracket.Match { return bracket.Match{ID: id, Round: round} }
	matches := []bracket.Match{
		m(1, 1).Feeds(5, bracket.SlotA).WithLabels("Lions", "Bears"),
		m(2, 1).Feeds(5, bracket.SlotB).WithLabels("Hawks", "Wolves"),
		m(3, 1).Feeds(6, bracket.SlotA).WithLabels("Sharks", "Eagles"),
		m(4, 1).Feeds(6, bracket.SlotB).WithLabels("Foxes", "Owls"),
		m(5, 2).Feeds(7, bracket.SlotA),
		m(6, 2).Feeds(7, bracket.SlotB),
		m(7, 3),
	}

	s := bracket.Resolve(matches)
	for _, col := range s.Columns() {
		fmt.Printf("%-8s", col.Label)
		for _, match := range col.Matches {
			fmt.Printf(" %s-%s", match.LabelA(), match.LabelB())
		}
		fmt.Println()
	}
	// Output:
	// Round 1  Lions-Bears Hawks-Wolves
	// Round 2  TBD-TBD
	// Final    TBD-TBD
	// Round 2  TBD-TBD
	// Round 1  Sharks-Eagles Foxes-Owls
}

func ExampleValidate() {
	matches := []bracket.Match{
		{ID: 1, Round: 1},
		{ID: 2, Round: 1},
	}
	for _, issue := range bracket.Validate(matches) {
		fmt.Println(issue)
	}
	// Output:
	// multiple_finals (match 2): match 2 has no next match but 1 is the final
}
