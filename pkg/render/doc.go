// Package render turns laid-out brackets into images.
//
// # Overview
//
//   - [svg]: the bracket board as SVG, cards plus connector overlay
//   - [nodelink]: the bracket tree as a Graphviz diagram
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg). Both sinks use them for non-SVG output.
//
//	out := svg.Render(b, result)
//	pdf, err := render.ToPDF(ctx, out)
//	png, err := render.ToPNG(ctx, out, 2.0) // 2x scale
//
// [svg]: github.com/matzehuels/bracketview/pkg/render/svg
// [nodelink]: github.com/matzehuels/bracketview/pkg/render/nodelink
package render
