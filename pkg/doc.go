// Package pkg provides the core libraries for bracketview, a viewer for
// single-elimination tournament brackets.
//
// # Overview
//
// A championship's matches arrive as a flat list where each match names the
// match its winner advances to and the slot it fills there. bracketview turns
// that list into a two-sided board with the final in the middle, and keeps the
// connector lines between cards in step with the board as it is scrolled or
// resized. The pkg directory is organized into four areas:
//
//  1. Domain logic: [bracket], [geometry], [board]
//  2. Visualization: [render], [render/svg], [render/nodelink]
//  3. Orchestration: [pipeline], [source]
//  4. Infrastructure: [cache], [archive], [live], [api], [config], [errors]
//
// # Architecture
//
// The typical data flow:
//
//	Upstream REST API / JSON file
//	         ↓
//	    [source] package (fetch matches)
//	         ↓
//	    [bracket] package (resolve halves, rounds, final)
//	         ↓
//	    [board] package (cards on a scrollable viewport)
//	         ↓
//	    [geometry] package (connector lines between cards)
//	         ↓
//	    SVG/PDF/PNG/JSON/DOT output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/bracketview/pkg/board"
//	    "github.com/matzehuels/bracketview/pkg/bracket"
//	    "github.com/matzehuels/bracketview/pkg/geometry"
//	    "github.com/matzehuels/bracketview/pkg/render/svg"
//	)
//
//	// 1. Resolve the bracket
//	s := bracket.Resolve(matches)
//
//	// 2. Lay out the cards
//	b := board.New(s)
//	reg := geometry.NewRegistry()
//	b.Mount(reg)
//
//	// 3. Compute connectors
//	sync := geometry.NewSynchronizer(reg)
//	sync.Mount(b.Viewport())
//	sync.SetMatches(matches)
//
//	// 4. Render to SVG
//	out := svg.Render(b, sync.Snapshot())
//
// # Main Packages
//
// ## Domain Logic
//
// [bracket] - Match model, topology resolution ([bracket.Resolve]) and
// validation ([bracket.Validate]). Resolution never fails: malformed input
// degrades to a partial or empty structure.
//
// [geometry] - Element registry and the connector synchronizer. Each match
// with a next match gets a three-segment orthogonal path from the right edge
// of its card to the slot anchor on the left edge of the next card.
//
// [board] - Headless stand-in for the rendered page: a scrollable viewport
// holding one card per match, arranged in columns.
//
// ## Visualization
//
// [render/svg] - The board with its connector overlay as SVG, with themes.
//
// [render/nodelink] - The bracket tree as a Graphviz diagram.
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// ## Orchestration
//
// [source] - Match sources: the upstream REST API and local JSON files.
//
// [pipeline] - fetch → resolve → layout → render, with caching. Used by the
// CLI, the API and the live poller.
//
// ## Infrastructure
//
// [cache] - Cache backends (file, Redis, null) and cache key derivation.
//
// [archive] - MongoDB history of computed layout snapshots.
//
// [live] - WebSocket hub and the poller that broadcasts bracket changes.
//
// [api] - HTTP API over the pipeline.
//
// [config] - TOML, .env and environment configuration.
//
// [errors] - Coded errors shared by the CLI and the API.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/bracket/...            # Specific package
//	go test -run Example ./pkg/...       # Examples only
//	MONGO_TEST_URI=mongodb://localhost:27017 go test ./pkg/archive/...
//
// [bracket]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/bracket
// [geometry]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/geometry
// [board]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/board
// [render]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/render
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/render/svg
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/render/nodelink
// [source]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/source
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/cache
// [archive]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/archive
// [live]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/live
// [api]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/api
// [config]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/bracketview/pkg/errors
package pkg
