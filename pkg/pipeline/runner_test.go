package pipeline

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/cache"
	"github.com/matzehuels/bracketview/pkg/errors"
	"github.com/matzehuels/bracketview/pkg/source"
)

func ptr[T any](v T) *T { return &v }

// fourTeams is two semi-finals (1, 2) feeding final 3.
func fourTeams() []bracket.Match {
	return []bracket.Match{
		{ID: 3, Round: 2},
		{ID: 1, Round: 1, SlotA: ptr("Lions"), SlotB: ptr("Tigers"), NextMatchID: ptr(3), SlotInNextMatch: ptr(1)},
		{ID: 2, Round: 1, SlotA: ptr("Bears"), NextMatchID: ptr(3), SlotInNextMatch: ptr(2)},
	}
}

// countingSource looks remote to the runner so its matches are cached.
type countingSource struct {
	matches []bracket.Match
	calls   atomic.Int32
}

func (s *countingSource) Name() string { return "http" }

func (s *countingSource) Matches(context.Context, int) ([]bracket.Match, error) {
	s.calls.Add(1)
	return s.matches, nil
}

func newFileCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return c
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, source.Static(fourTeams()), nil)
	res, err := r.Execute(context.Background(), Options{Formats: []string{"svg", "json", "dot"}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Stats.MatchCount != 3 || res.Stats.Placed != 3 {
		t.Errorf("Stats = %+v, want 3 matches placed", res.Stats)
	}
	if res.Stats.LineCount != 2 {
		t.Errorf("LineCount = %d, want 2", res.Stats.LineCount)
	}
	for _, id := range []string{"line-1-to-3", "line-2-to-3"} {
		if _, ok := res.Layout.Result.Line(id); !ok {
			t.Errorf("missing connector %s", id)
		}
	}
	if res.MatchesHash == "" {
		t.Error("MatchesHash should be set")
	}

	svg := string(res.Artifacts["svg"])
	if !strings.HasPrefix(svg, "<svg") || !strings.Contains(svg, "Lions") {
		t.Errorf("svg artifact looks wrong: %.80s", svg)
	}
	if !strings.Contains(string(res.Artifacts["dot"]), "digraph bracket") {
		t.Error("dot artifact should be a digraph")
	}

	snap, err := UnmarshalSnapshot(res.Artifacts["json"])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(snap.Lines) != 2 || len(snap.Columns) != 3 {
		t.Errorf("snapshot has %d lines and %d columns, want 2 and 3", len(snap.Lines), len(snap.Columns))
	}
	if snap.Structure.Final == nil || snap.Structure.Final.ID != 3 {
		t.Errorf("snapshot final = %v, want match 3", snap.Structure.Final)
	}
}

func TestExecuteEmpty(t *testing.T) {
	r := NewRunner(nil, nil, source.Static{}, nil)
	res, err := r.Execute(context.Background(), Options{Formats: []string{"json"}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Layout.Structure.IsEmpty() {
		t.Error("empty match list should resolve to an empty structure")
	}
	snap, _ := UnmarshalSnapshot(res.Artifacts["json"])
	if snap.Prompt == "" {
		t.Error("empty snapshot should carry the prompt")
	}
	if snap.Lines == nil || len(snap.Lines) != 0 {
		t.Errorf("Lines = %v, want empty", snap.Lines)
	}
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{matches: fourTeams()}
	r := NewRunner(newFileCache(t), nil, src, nil)
	opts := Options{ChampionshipID: 7, Formats: []string{"svg"}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run CacheInfo = %+v, want all misses", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	want := CacheInfo{FetchHit: true, LayoutHit: true, RenderHit: true}
	if second.CacheInfo != want {
		t.Errorf("second run CacheInfo = %+v, want %+v", second.CacheInfo, want)
	}
	if src.calls.Load() != 1 {
		t.Errorf("source called %d times, want 1", src.calls.Load())
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs from rendered svg")
	}

	opts.Refresh = true
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if src.calls.Load() != 2 {
		t.Errorf("refresh should bypass the match cache, source called %d times", src.calls.Load())
	}
}

func TestFetchLocalSourceNotCached(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newFileCache(t), nil, source.Static(fourTeams()), nil)
	for range 2 {
		_, hit, err := r.FetchWithCacheInfo(ctx, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if hit {
			t.Error("static source should not be served from cache")
		}
	}
}

func TestFetchWithoutSource(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	if _, err := r.Fetch(context.Background(), Options{}); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("Fetch() without source = %v, want INTERNAL_ERROR", err)
	}
}

func TestResolveStrict(t *testing.T) {
	// Two finals.
	matches := []bracket.Match{{ID: 1, Round: 1}, {ID: 2, Round: 1}}
	r := NewRunner(nil, nil, nil, nil)

	s, issues, err := r.Resolve(context.Background(), matches, Options{})
	if err != nil {
		t.Fatalf("lenient Resolve() error = %v", err)
	}
	if s.Final == nil || s.Final.ID != 1 {
		t.Errorf("lenient Resolve() final = %v, want match 1", s.Final)
	}
	if !issues.Has(bracket.IssueMultipleFinals) {
		t.Errorf("issues = %v, want multiple_finals", issues)
	}

	_, _, err = r.Resolve(context.Background(), matches, Options{Strict: true})
	if !errors.Is(err, errors.ErrCodeMalformedTopology) {
		t.Errorf("strict Resolve() = %v, want MALFORMED_TOPOLOGY", err)
	}

	if _, err := r.Layout(context.Background(), matches, Options{Strict: true}); err == nil {
		t.Error("strict Layout() should fail")
	}
}

func TestLayoutScroll(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	// A narrow viewport so the board can scroll horizontally.
	base := Options{Width: 300, Height: 300}
	scrolled := base
	scrolled.ScrollX = 100

	a, err := r.Layout(context.Background(), fourTeams(), base)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Layout(context.Background(), fourTeams(), scrolled)
	if err != nil {
		t.Fatal(err)
	}

	la, _ := a.Result.Line("line-1-to-3")
	lb, _ := b.Result.Line("line-1-to-3")
	if la.D() != lb.D() {
		t.Errorf("horizontal scroll should not move connectors in content space:\n%s\n%s", la.D(), lb.D())
	}
	if got := b.Snapshot().Viewport.ScrollX; got != 100 {
		t.Errorf("snapshot ScrollX = %v, want 100", got)
	}
}

func TestLayoutFromSnapshot(t *testing.T) {
	opts := Options{}
	s := bracket.Resolve(fourTeams())
	l := ComputeLayout(s, fourTeams(), opts)

	data, err := MarshalSnapshot(l)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	back := LayoutFromSnapshot(snap, opts)

	if len(back.Board.Cards()) != 3 {
		t.Errorf("rebuilt board has %d cards, want 3", len(back.Board.Cards()))
	}
	if len(back.Result.Lines) != len(l.Result.Lines) {
		t.Errorf("rebuilt layout has %d lines, want %d", len(back.Result.Lines), len(l.Result.Lines))
	}
}

func TestHashMatches(t *testing.T) {
	if HashMatches(fourTeams()) != HashMatches(fourTeams()) {
		t.Error("HashMatches should be deterministic")
	}
	changed := fourTeams()
	changed[2].SlotB = ptr("Wolves")
	if HashMatches(fourTeams()) == HashMatches(changed) {
		t.Error("a changed label should change the hash")
	}
}
