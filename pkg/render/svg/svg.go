// Package svg renders a bracket board as a standalone SVG document.
//
// The document mirrors what a browser host shows: one rounded card per match
// with the two side labels, a heading per column, and the connector lines of
// a [geometry.Result] drawn as an overlay with round caps and joins.
package svg

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/matzehuels/bracketview/pkg/board"
	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/geometry"
	"github.com/matzehuels/bracketview/pkg/render"
)

const (
	lineWidth    = 3
	cardRadius   = 8
	labelSize    = 14
	headerSize   = 13
	promptSize   = 16
	labelPadding = 14
)

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	theme Theme
	title string
}

// WithTheme selects the color theme.
func WithTheme(t Theme) Option { return func(r *renderer) { r.theme = t } }

// WithTitle sets the document title.
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

// Render draws b with the connector lines of res. The canvas covers
// res.Extent, falling back to the board's content size when the extent is
// unset. An empty board renders its prompt.
func Render(b *board.Board, res geometry.Result, opts ...Option) []byte {
	r := renderer{theme: themes[DefaultTheme]}
	for _, opt := range opts {
		opt(&r)
	}

	size := res.Extent
	if size.Width <= 0 || size.Height <= 0 {
		size = b.ContentSize()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		size.Width, size.Height, size.Width, size.Height, html.EscapeString(r.theme.Font))
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	}
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n", size.Width, size.Height, r.theme.Background)

	if b.IsEmpty() {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-size="%d" fill="%s">%s</text>`+"\n",
			size.Width/2, size.Height/2, promptSize, r.theme.Undecided, html.EscapeString(b.Prompt()))
		buf.WriteString("</svg>\n")
		return buf.Bytes()
	}

	r.renderHeaders(&buf, b)
	r.renderLines(&buf, res.Lines)
	for _, c := range b.Cards() {
		r.renderCard(&buf, c)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) renderHeaders(buf *bytes.Buffer, b *board.Board) {
	buf.WriteString(`  <g class="headers">` + "\n")
	for _, col := range b.Columns() {
		h := col.Header
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-size="%d" font-weight="600" fill="%s">%s</text>`+"\n",
			h.X+h.Width/2, h.MidY(), headerSize, r.theme.Header, html.EscapeString(col.Label))
	}
	buf.WriteString("  </g>\n")
}

func (r *renderer) renderLines(buf *bytes.Buffer, lines []geometry.ConnectorLine) {
	fmt.Fprintf(buf, `  <g class="connectors" fill="none" stroke="%s" stroke-width="%d" stroke-linecap="round" stroke-linejoin="round">`+"\n",
		r.theme.Line, lineWidth)
	for _, l := range lines {
		fmt.Fprintf(buf, `    <path id="%s" d="%s"/>`+"\n", l.ID, l.D())
	}
	buf.WriteString("  </g>\n")
}

func (r *renderer) renderCard(buf *bytes.Buffer, c *board.Card) {
	rc := c.Rect
	fmt.Fprintf(buf, `  <g id="match-%d" class="card">`+"\n", c.Match.ID)
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%d" fill="%s" stroke="%s"/>`+"\n",
		rc.X, rc.Y, rc.Width, rc.Height, cardRadius, r.theme.Card, r.theme.CardStroke)
	fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
		rc.X, rc.MidY(), rc.Right(), rc.MidY(), r.theme.Divider)

	r.renderLabel(buf, rc.X+labelPadding, rc.Y+rc.Height/4, c.Match.SlotA)
	r.renderLabel(buf, rc.X+labelPadding, rc.Y+rc.Height*3/4, c.Match.SlotB)
	buf.WriteString("  </g>\n")
}

func (r *renderer) renderLabel(buf *bytes.Buffer, x, y float64, label *string) {
	if label == nil || *label == "" {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" dominant-baseline="middle" font-size="%d" font-style="italic" fill="%s">%s</text>`+"\n",
			x, y, labelSize, r.theme.Undecided, bracket.UndecidedLabel)
		return
	}
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" dominant-baseline="middle" font-size="%d" fill="%s">%s</text>`+"\n",
		x, y, labelSize, r.theme.Text, html.EscapeString(*label))
}

// RenderPNG renders the board as PNG via SVG conversion.
func RenderPNG(ctx context.Context, b *board.Board, res geometry.Result, scale float64, opts ...Option) ([]byte, error) {
	return render.ToPNG(ctx, Render(b, res, opts...), scale)
}

// RenderPDF renders the board as PDF via SVG conversion.
func RenderPDF(ctx context.Context, b *board.Board, res geometry.Result, opts ...Option) ([]byte, error) {
	return render.ToPDF(ctx, Render(b, res, opts...))
}
