// Package nodelink renders brackets as node-link diagrams.
//
// # Overview
//
// The board view in package svg draws a bracket the way a scoreboard would.
// This package instead draws the underlying tree with Graphviz: one box per
// match, an arrow from each match to the match its winner advances to, and
// one rank per round. It is mostly useful for checking bracket data.
//
// # Usage
//
//	dot := nodelink.ToDOT(bracket.Resolve(matches), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
