package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the round and half to node labels.
	// When false, only the match id and sides are shown.
	Detailed bool
}

// ToDOT converts a resolved bracket to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Matches flow left to right toward the final, one rank per round. Edges go
// from a feeder to the match it advances to and are labelled with the slot.
// Matches dropped by resolution do not appear.
func ToDOT(s bracket.Structure, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph bracket {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.6, fontsize=10];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")

	if s.IsEmpty() {
		buf.WriteString("}\n")
		return buf.String()
	}
	buf.WriteString("\n")

	matches := s.Matches()
	for _, m := range matches {
		side, _ := s.Half(m.ID)
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(m, side, opts.Detailed))}
		if side == bracket.SideFinal {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(m.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, r := range s.Rounds {
		var ids []string
		for _, half := range []map[int][]bracket.Match{s.Top, s.Bottom} {
			for _, m := range half[r] {
				ids = append(ids, nodeID(m.ID))
			}
		}
		if len(ids) > 0 {
			fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(ids, "; "))
		}
	}

	buf.WriteString("\n")
	for _, m := range matches {
		if m.IsFinal() {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [label=\"%d\"];\n", nodeID(m.ID), nodeID(m.Next()), m.Slot())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int) string { return "m" + strconv.Itoa(id) }

func fmtLabel(m bracket.Match, side bracket.Side, detailed bool) string {
	label := fmt.Sprintf("#%d: %s vs %s", m.ID, m.LabelA(), m.LabelB())
	if !detailed {
		return label
	}
	if side == bracket.SideFinal {
		return label + "\nfinal"
	}
	return fmt.Sprintf("%s\n%s, %s", label, strings.ToLower(bracket.RoundLabel(m.Round)), side)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites Graphviz's root element so the drawing scales
// from a zero origin with pixel width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
