// Package geometry computes connector lines between rendered bracket cards and
// keeps them in sync with the surface they are drawn on.
//
// # Overview
//
// A host view renders one card per match inside a scrollable container. The
// [Synchronizer] reads the bounding boxes of those cards through small
// capability interfaces and produces one orthogonal [ConnectorLine] per
// feeder → next pair, plus the scrollable [Extent] the overlay must cover:
//
//	src ──────┐
//	          │
//	          └────── dst
//
// The package never touches a concrete UI. Hosts provide:
//
//   - [Element]: anything with a bounding box in viewport coordinates (a card)
//   - [Container]: the scrollable viewport, which also reports its scroll
//     offset and content size and notifies observers on resize and scroll
//   - [Lookup]: a read-only id → [Element] mapping, usually a [Registry] the
//     host fills as cards mount
//
// # Layout Pass
//
// [Synchronizer.Pass] recomputes the full line set from current truth. It runs
// on mount, on every [Synchronizer.SetMatches] call, and on every container
// notification. Connectors whose cards are not registered yet (or measure as
// zero-sized) are skipped; a later pass picks them up. A container that has not
// been laid out (zero width or height) leaves the previous lines in place.
// Every completed pass replaces the line set as a whole, so readers never see
// a partial update.
//
// # Coordinates
//
// Line coordinates are relative to the container's content box. Horizontal
// anchors include the container's scroll offset; vertical anchors do not.
//
// # Concurrency
//
// [Registry] and [Synchronizer] are safe for concurrent use. Passes are
// synchronous and serialized; the last completed pass wins.
package geometry
