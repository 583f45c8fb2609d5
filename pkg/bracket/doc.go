// Package bracket reconstructs single-elimination brackets from flat match
// lists.
//
// # Overview
//
// Tournament backends usually store a bracket as a flat list of matches in
// which every match points at the match its winner advances to
// ([Match.NextMatchID]) and says which side of that match it fills
// ([Match.SlotInNextMatch]). The final is the one match that points nowhere.
// This parent-pointer encoding is convenient to store but useless for drawing:
// a view needs to know which matches sit in which column and in what order.
//
// [Resolve] turns the flat list into a [Structure]: the final, plus two halves
// (top and bottom) that converge on it, each grouped by round and ordered so
// that sibling matches feeding the same downstream match are adjacent, slot 1
// above slot 2. [Structure.Columns] then lays the halves out left to right in
// display order, mirroring the bottom half so both converge on the final in
// the middle:
//
//	Round 1 | Round 2 | Final | Round 2 | Round 1
//	  top       top              bottom    bottom
//
// # Basic Usage
//
//	s := bracket.Resolve(matches)
//	if s.IsEmpty() {
//	    // no bracket yet
//	}
//	for _, col := range s.Columns() {
//	    fmt.Println(col.Label, len(col.Matches))
//	}
//
// # Degradation
//
// Brackets are frequently incomplete while a championship is being set up, so
// [Resolve] never fails. A list without a final yields an empty structure;
// matches that do not lead to the final are dropped; a final with a single
// feeder yields a single half. Use [Validate] to obtain a list of data-quality
// [Issue] values, or [ResolveStrict] to refuse brackets with fatal issues
// (no final, several finals, cycles).
//
// # Complexity
//
// Resolution builds an [Index] with a reverse adjacency list (match id to the
// matches that feed it) once, so collecting the matches behind each finalist
// costs O(n) in total. Traversals are iterative and visit each id at most
// once; they never recurse, so deep brackets cannot exhaust the stack.
//
// # Concurrency
//
// All functions are pure. A [Structure] is never modified after [Resolve]
// returns it and may be shared between goroutines.
package bracket
