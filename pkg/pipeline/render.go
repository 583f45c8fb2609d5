package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/bracketview/pkg/render/nodelink"
	"github.com/matzehuels/bracketview/pkg/render/svg"
)

// RenderLayout generates output artifacts in the requested formats.
// JSON is always the layout snapshot; DOT is always the node-link graph.
// SVG, PNG and PDF follow the visualization type.
func RenderLayout(ctx context.Context, l *Layout, opts Options) (map[string][]byte, error) {
	if opts.IsNodelink() {
		return renderNodelink(ctx, l, opts)
	}
	return renderBoard(ctx, l, opts)
}

func renderBoard(ctx context.Context, l *Layout, opts Options) (map[string][]byte, error) {
	theme, err := svg.ThemeByName(opts.Theme)
	if err != nil {
		return nil, err
	}
	svgOpts := []svg.Option{svg.WithTheme(theme), svg.WithTitle(opts.Title)}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svg.Render(l.Board, l.Result, svgOpts...)
		case FormatPNG:
			data, err = svg.RenderPNG(ctx, l.Board, l.Result, DefaultPNGScale, svgOpts...)
		case FormatPDF:
			data, err = svg.RenderPDF(ctx, l.Board, l.Result, svgOpts...)
		default:
			data, err = renderCommon(l, format, opts)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderNodelink(ctx context.Context, l *Layout, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(l.Structure, nodelink.Options{Detailed: opts.Detailed})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, DefaultPNGScale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		default:
			data, err = renderCommon(l, format, opts)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderCommon(l *Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return MarshalSnapshot(l)
	case FormatDOT:
		return []byte(nodelink.ToDOT(l.Structure, nodelink.Options{Detailed: opts.Detailed})), nil
	default:
		return nil, ValidateFormat(format)
	}
}
