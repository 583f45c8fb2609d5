// Package board is a headless host view for bracket layouts.
//
// A [Board] places the columns of a [bracket.Structure] in a horizontal row
// and stacks the cards of each column vertically, using the same box model a
// browser view would (padding, column gap, card size, card spacing, column
// header). Its [Viewport] is a scrollable window onto that content and
// implements [geometry.Container]; its cards implement [geometry.Element].
// This lets the connector synchronizer run against a board exactly as it
// would against a rendered page:
//
//	b := board.New(bracket.Resolve(matches), board.WithViewport(1024, 600))
//	reg := geometry.NewRegistry()
//	b.Mount(reg)
//	sync := geometry.NewSynchronizer(reg)
//	sync.SetMatches(b.Matches())
//	sync.Mount(b.Viewport())
//	b.Viewport().ScrollBy(200, 0) // triggers a pass
package board
