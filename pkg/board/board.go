package board

import (
	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/geometry"
)

// EmptyPrompt is shown in place of the board when there is no bracket yet.
const EmptyPrompt = "No bracket yet. Generate the bracket to create its matches."

// Default box model, in pixels.
const (
	DefaultPadding      = 16.0
	DefaultColumnGap    = 48.0
	DefaultCardWidth    = 220.0
	DefaultCardHeight   = 112.0
	DefaultCardSpacing  = 32.0
	DefaultHeaderHeight = 32.0
	DefaultHeaderMargin = 16.0
	DefaultMinHeight    = 400.0

	DefaultViewportWidth  = 1280.0
	DefaultViewportHeight = 720.0
)

// Options holds the box model of a board.
type Options struct {
	Padding      float64
	ColumnGap    float64
	CardWidth    float64
	CardHeight   float64
	CardSpacing  float64
	HeaderHeight float64
	HeaderMargin float64
	MinHeight    float64

	ViewportWidth  float64
	ViewportHeight float64
	// Origin is where the viewport sits on the page.
	Origin geometry.Point
}

// DefaultOptions returns the default box model.
func DefaultOptions() Options {
	return Options{
		Padding:        DefaultPadding,
		ColumnGap:      DefaultColumnGap,
		CardWidth:      DefaultCardWidth,
		CardHeight:     DefaultCardHeight,
		CardSpacing:    DefaultCardSpacing,
		HeaderHeight:   DefaultHeaderHeight,
		HeaderMargin:   DefaultHeaderMargin,
		MinHeight:      DefaultMinHeight,
		ViewportWidth:  DefaultViewportWidth,
		ViewportHeight: DefaultViewportHeight,
	}
}

// Option configures a board.
type Option func(*Options)

// WithViewport sets the initial window size.
func WithViewport(width, height float64) Option {
	return func(o *Options) {
		if width > 0 {
			o.ViewportWidth = width
		}
		if height > 0 {
			o.ViewportHeight = height
		}
	}
}

// WithOrigin places the viewport on the page.
func WithOrigin(x, y float64) Option {
	return func(o *Options) { o.Origin = geometry.Point{X: x, Y: y} }
}

// WithCardSize overrides the card box.
func WithCardSize(width, height float64) Option {
	return func(o *Options) {
		if width > 0 {
			o.CardWidth = width
		}
		if height > 0 {
			o.CardHeight = height
		}
	}
}

// WithOptions replaces the whole box model. Zero fields keep their defaults.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		def := *o
		*o = opts
		fill(&o.Padding, def.Padding)
		fill(&o.ColumnGap, def.ColumnGap)
		fill(&o.CardWidth, def.CardWidth)
		fill(&o.CardHeight, def.CardHeight)
		fill(&o.CardSpacing, def.CardSpacing)
		fill(&o.HeaderHeight, def.HeaderHeight)
		fill(&o.HeaderMargin, def.HeaderMargin)
		fill(&o.MinHeight, def.MinHeight)
		fill(&o.ViewportWidth, def.ViewportWidth)
		fill(&o.ViewportHeight, def.ViewportHeight)
	}
}

func fill(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

// Column is a laid-out display column.
type Column struct {
	bracket.Column
	X      float64       `json:"x"`
	Header geometry.Rect `json:"header"`
	Cards  []*Card       `json:"-"`
}

// Card is a laid-out match card. Its Rect is in content coordinates; its
// [Card.BoundingBox] is in viewport coordinates and follows the scroll
// offset, so a card can be registered as a [geometry.Element].
type Card struct {
	Match  bracket.Match
	Column int
	Rect   geometry.Rect

	vp *Viewport
}

// BoundingBox implements [geometry.Element].
func (c *Card) BoundingBox() geometry.Rect {
	o := c.vp.BoundingBox()
	s := c.vp.ScrollOffset()
	return c.Rect.Translate(o.X-s.X, o.Y-s.Y)
}

// Labels returns the two side labels, with undecided sides as TBD.
func (c *Card) Labels() (a, b string) { return c.Match.LabelA(), c.Match.LabelB() }

// Board is a headless host view: it lays a resolved bracket out as a row of
// columns of cards inside a scrollable [Viewport].
type Board struct {
	structure bracket.Structure
	opts      Options
	columns   []Column
	cards     []*Card
	byID      map[int]*Card
	content   geometry.Extent
	viewport  *Viewport
}

// New lays out s.
//
// Columns follow [bracket.Structure.Columns] left to right, separated by the
// column gap and surrounded by the padding. Each column has a header and a
// stack of cards distributed with equal space around each card, so columns
// with fewer matches center between the matches that feed them. The content
// is at least MinHeight tall.
func New(s bracket.Structure, opts ...Option) *Board {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &Board{
		structure: s,
		opts:      o,
		byID:      make(map[int]*Card),
	}

	cols := s.Columns()
	tallest := 0
	for _, c := range cols {
		tallest = max(tallest, len(c.Matches))
	}

	stack := o.HeaderHeight + o.HeaderMargin
	if tallest > 0 {
		stack += float64(tallest)*o.CardHeight + float64(tallest-1)*o.CardSpacing
	}
	b.content = geometry.Extent{
		Width:  2 * o.Padding,
		Height: max(o.MinHeight, 2*o.Padding+stack),
	}
	if n := len(cols); n > 0 {
		b.content.Width += float64(n)*o.CardWidth + float64(n-1)*o.ColumnGap
	}
	b.viewport = newViewport(o.Origin, o.ViewportWidth, o.ViewportHeight, b.content)

	top := o.Padding + o.HeaderHeight + o.HeaderMargin
	avail := b.content.Height - o.Padding - top

	for i, c := range cols {
		x := o.Padding + float64(i)*(o.CardWidth+o.ColumnGap)
		col := Column{
			Column: c,
			X:      x,
			Header: geometry.Rect{X: x, Y: o.Padding, Width: o.CardWidth, Height: o.HeaderHeight},
		}

		k := float64(len(c.Matches))
		free := max(avail-k*o.CardHeight-max(k-1, 0)*o.CardSpacing, 0)
		var around float64
		if k > 0 {
			around = free / k
		}
		y := top + around/2
		for _, m := range c.Matches {
			card := &Card{
				Match:  m,
				Column: i,
				Rect:   geometry.Rect{X: x, Y: y, Width: o.CardWidth, Height: o.CardHeight},
				vp:     b.viewport,
			}
			col.Cards = append(col.Cards, card)
			b.cards = append(b.cards, card)
			b.byID[m.ID] = card
			y += o.CardHeight + o.CardSpacing + around
		}
		b.columns = append(b.columns, col)
	}
	return b
}

// Structure returns the laid-out structure.
func (b *Board) Structure() bracket.Structure { return b.structure }

// Options returns the box model in use.
func (b *Board) Options() Options { return b.opts }

// Viewport returns the board's scrollable window.
func (b *Board) Viewport() *Viewport { return b.viewport }

// Columns returns the laid-out columns, left to right.
func (b *Board) Columns() []Column { return b.columns }

// Cards returns every card in column order.
func (b *Board) Cards() []*Card { return b.cards }

// Card returns the card of a match.
func (b *Board) Card(id int) (*Card, bool) {
	c, ok := b.byID[id]
	return c, ok
}

// Matches returns the matches on the board in column order. These are the
// matches a synchronizer should draw connectors for.
func (b *Board) Matches() []bracket.Match {
	out := make([]bracket.Match, len(b.cards))
	for i, c := range b.cards {
		out[i] = c.Match
	}
	return out
}

// ContentSize returns the size of the laid-out content.
func (b *Board) ContentSize() geometry.Extent { return b.content }

// IsEmpty reports whether there is nothing to show.
func (b *Board) IsEmpty() bool { return b.structure.IsEmpty() }

// Prompt returns the empty-state message, or "" when there is a bracket.
func (b *Board) Prompt() string {
	if b.IsEmpty() {
		return EmptyPrompt
	}
	return ""
}

// Mount registers every card with reg.
func (b *Board) Mount(reg *geometry.Registry) {
	for _, c := range b.cards {
		reg.Register(c.Match.ID, c)
	}
}

// Unmount removes the board's cards from reg. Cards registered by someone
// else under the same id are left alone.
func (b *Board) Unmount(reg *geometry.Registry) {
	for _, c := range b.cards {
		if e, ok := reg.Element(c.Match.ID); ok && e == geometry.Element(c) {
			reg.Unregister(c.Match.ID)
		}
	}
}

// Reveal scrolls the viewport so the card of id is centered where possible.
func (b *Board) Reveal(id int) bool {
	c, ok := b.byID[id]
	if !ok {
		return false
	}
	w, h := b.viewport.Size()
	b.viewport.ScrollTo(c.Rect.X+c.Rect.Width/2-w/2, c.Rect.MidY()-h/2)
	return true
}
