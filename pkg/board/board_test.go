package board

import (
	"testing"

	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/geometry"
)

// eightTeams returns a three-round bracket: matches 1-4 in round 1, 5-6 in
// round 2, 7 the final.
func eightTeams() []bracket.Match {
	m := func(id, round int) bracket.Match { return bracket.Match{ID: id, Round: round} }
	return []bracket.Match{
		m(1, 1).Feeds(5, bracket.SlotA).WithLabels("Lions", "Bears"),
		m(2, 1).Feeds(5, bracket.SlotB).WithLabels("Hawks", ""),
		m(3, 1).Feeds(6, bracket.SlotA),
		m(4, 1).Feeds(6, bracket.SlotB),
		m(5, 2).Feeds(7, bracket.SlotA),
		m(6, 2).Feeds(7, bracket.SlotB),
		m(7, 3),
	}
}

func TestNewLayout(t *testing.T) {
	b := New(bracket.Resolve(eightTeams()))

	cols := b.Columns()
	if len(cols) != 5 {
		t.Fatalf("len(Columns()) = %d, want 5", len(cols))
	}
	for i, c := range cols {
		want := DefaultPadding + float64(i)*(DefaultCardWidth+DefaultColumnGap)
		if c.X != want {
			t.Errorf("column %d X = %v, want %v", i, c.X, want)
		}
	}

	wantWidth := 2*DefaultPadding + 5*DefaultCardWidth + 4*DefaultColumnGap
	if got := b.ContentSize(); got.Width != wantWidth || got.Height != DefaultMinHeight {
		t.Errorf("ContentSize() = %v, want {%v %v}", got, wantWidth, DefaultMinHeight)
	}
	if len(b.Cards()) != 7 {
		t.Errorf("len(Cards()) = %d, want 7", len(b.Cards()))
	}
}

func TestNewCardsDoNotOverlap(t *testing.T) {
	b := New(bracket.Resolve(eightTeams()))
	cards := b.Cards()
	for i := range cards {
		for j := i + 1; j < len(cards); j++ {
			if cards[i].Rect.Intersects(cards[j].Rect) {
				t.Errorf("cards %d and %d overlap", cards[i].Match.ID, cards[j].Match.ID)
			}
		}
		if cards[i].Rect.Bottom() > b.ContentSize().Height-DefaultPadding {
			t.Errorf("card %d extends below the content", cards[i].Match.ID)
		}
	}
}

func TestNewCentersSingleCards(t *testing.T) {
	b := New(bracket.Resolve(eightTeams()))
	final, _ := b.Card(7)
	semi, _ := b.Card(5)
	if final.Rect.MidY() != semi.Rect.MidY() {
		t.Errorf("final mid %v, semi-final mid %v, want equal", final.Rect.MidY(), semi.Rect.MidY())
	}

	first, _ := b.Card(1)
	second, _ := b.Card(2)
	if mid := (first.Rect.MidY() + second.Rect.MidY()) / 2; mid != semi.Rect.MidY() {
		t.Errorf("semi-final mid %v, want between its feeders at %v", semi.Rect.MidY(), mid)
	}
}

func TestEmptyBoard(t *testing.T) {
	b := New(bracket.Resolve(nil))
	if !b.IsEmpty() || b.Prompt() != EmptyPrompt {
		t.Errorf("Prompt() = %q, want %q", b.Prompt(), EmptyPrompt)
	}
	if len(b.Cards()) != 0 {
		t.Errorf("len(Cards()) = %d, want 0", len(b.Cards()))
	}
	if got := b.ContentSize(); got.Height != DefaultMinHeight {
		t.Errorf("ContentSize().Height = %v, want %v", got.Height, DefaultMinHeight)
	}

	if New(bracket.Resolve(eightTeams())).Prompt() != "" {
		t.Error("Prompt() non-empty for a bracket")
	}
}

func TestCardLabels(t *testing.T) {
	b := New(bracket.Resolve(eightTeams()))
	c, _ := b.Card(2)
	a, bb := c.Labels()
	if a != "Hawks" || bb != bracket.UndecidedLabel {
		t.Errorf("Labels() = %q, %q; want Hawks, %s", a, bb, bracket.UndecidedLabel)
	}
}

func TestCardBoundingBoxFollowsScroll(t *testing.T) {
	b := New(bracket.Resolve(eightTeams()), WithViewport(400, 300), WithOrigin(10, 20))
	c, _ := b.Card(1)

	got := c.BoundingBox()
	if got.X != c.Rect.X+10 || got.Y != c.Rect.Y+20 {
		t.Errorf("BoundingBox() = %v, want rect offset by origin", got)
	}

	b.Viewport().ScrollTo(100, 50)
	got = c.BoundingBox()
	if got.X != c.Rect.X+10-100 || got.Y != c.Rect.Y+20-50 {
		t.Errorf("BoundingBox() after scroll = %v", got)
	}
}

func TestViewportClampsAndNotifies(t *testing.T) {
	b := New(bracket.Resolve(eightTeams()), WithViewport(400, 300))
	vp := b.Viewport()

	calls := 0
	cancel := vp.Observe(func() { calls++ })

	vp.ScrollTo(-50, -50)
	if calls != 0 {
		t.Errorf("calls = %d after no-op scroll, want 0", calls)
	}

	vp.ScrollTo(1e6, 1e6)
	limit := vp.MaxScroll()
	if got := vp.ScrollOffset(); got != limit {
		t.Errorf("ScrollOffset() = %v, want clamped %v", got, limit)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	vp.Resize(5000, 5000)
	if got := vp.ScrollOffset(); got != (geometry.Point{}) {
		t.Errorf("ScrollOffset() after growing = %v, want origin", got)
	}
	if got := vp.ScrollSize(); got.Width != 5000 || got.Height != 5000 {
		t.Errorf("ScrollSize() = %v, want window size when content is smaller", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}

	cancel()
	vp.ScrollBy(10, 10)
	if calls != 2 {
		t.Errorf("calls = %d after cancel, want 2", calls)
	}
}

func TestMountUnmount(t *testing.T) {
	b := New(bracket.Resolve(eightTeams()))
	reg := geometry.NewRegistry()
	b.Mount(reg)
	if reg.Len() != 7 {
		t.Fatalf("Len() = %d, want 7", reg.Len())
	}

	other := New(bracket.Resolve(eightTeams()))
	c, _ := other.Card(3)
	reg.Register(3, c)

	b.Unmount(reg)
	if reg.Len() != 1 {
		t.Errorf("Len() after Unmount = %d, want 1", reg.Len())
	}
}

func TestReveal(t *testing.T) {
	b := New(bracket.Resolve(eightTeams()), WithViewport(300, 200))
	if !b.Reveal(6) {
		t.Fatal("Reveal(6) = false")
	}
	c, _ := b.Card(6)
	box := c.BoundingBox()
	if !box.Intersects(b.Viewport().BoundingBox()) {
		t.Errorf("card %v not visible in %v", box, b.Viewport().BoundingBox())
	}
	if b.Reveal(99) {
		t.Error("Reveal(99) = true")
	}
}

func TestSynchronizerOnBoard(t *testing.T) {
	b := New(bracket.Resolve(eightTeams()), WithViewport(600, 400))
	reg := geometry.NewRegistry()
	b.Mount(reg)

	sync := geometry.NewSynchronizer(reg)
	sync.SetMatches(b.Matches())
	sync.Mount(b.Viewport())
	defer sync.Unmount()

	res := sync.Snapshot()
	if len(res.Lines) != 6 {
		t.Fatalf("len(Lines) = %d, want 6", len(res.Lines))
	}
	if res.Extent != b.ContentSize() {
		t.Errorf("Extent = %v, want %v", res.Extent, b.ContentSize())
	}

	// Top half flows left to right into the final, bottom half right to left.
	top, _ := res.Line("line-5-to-7")
	if top.Start().X >= top.End().X {
		t.Errorf("top connector runs %v -> %v, want left to right", top.Start(), top.End())
	}
	bottom, _ := res.Line("line-6-to-7")
	if bottom.Start().X <= bottom.End().X {
		t.Errorf("bottom connector runs %v -> %v, want right to left", bottom.Start(), bottom.End())
	}

	final, _ := b.Card(7)
	if top.End().X != final.Rect.Left() || bottom.End().X != final.Rect.Right() {
		t.Errorf("connectors end at %v and %v, want final edges %v and %v",
			top.End().X, bottom.End().X, final.Rect.Left(), final.Rect.Right())
	}
	if top.End().Y >= bottom.End().Y {
		t.Errorf("slot 1 anchor %v not above slot 2 anchor %v", top.End().Y, bottom.End().Y)
	}

	// Horizontal anchors are scroll-adjusted, so content coordinates hold.
	b.Viewport().ScrollBy(120, 0)
	scrolled, _ := sync.Snapshot().Line("line-5-to-7")
	if scrolled.Start().X != top.Start().X {
		t.Errorf("start X after horizontal scroll = %v, want %v", scrolled.Start().X, top.Start().X)
	}
}
