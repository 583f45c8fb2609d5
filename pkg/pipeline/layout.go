package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/bracketview/pkg/board"
	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/geometry"
)

// Layout is a resolved bracket laid out on a board with its connector lines.
type Layout struct {
	Structure bracket.Structure
	Issues    bracket.Issues
	Board     *board.Board
	Result    geometry.Result
}

// Viewport records the window a layout was computed for.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	ScrollX float64 `json:"scroll_x"`
	ScrollY float64 `json:"scroll_y"`
}

// Snapshot is the serializable form of a [Layout]: the JSON artifact, the
// cached layout and the archived record.
type Snapshot struct {
	Structure bracket.Structure        `json:"structure"`
	Columns   []bracket.Column         `json:"columns"`
	Issues    bracket.Issues           `json:"issues,omitempty"`
	Lines     []geometry.ConnectorLine `json:"lines"`
	Extent    geometry.Extent          `json:"extent"`
	Viewport  Viewport                 `json:"viewport"`
	Prompt    string                   `json:"prompt,omitempty"`
}

// Snapshot returns the serializable form of l.
func (l *Layout) Snapshot() Snapshot {
	vp := l.Board.Viewport()
	w, h := vp.Size()
	scroll := vp.ScrollOffset()

	lines := l.Result.Lines
	if lines == nil {
		lines = []geometry.ConnectorLine{}
	}
	cols := l.Structure.Columns()
	if cols == nil {
		cols = []bracket.Column{}
	}
	return Snapshot{
		Structure: l.Structure,
		Columns:   cols,
		Issues:    l.Issues,
		Lines:     lines,
		Extent:    l.Result.Extent,
		Viewport:  Viewport{Width: w, Height: h, ScrollX: scroll.X, ScrollY: scroll.Y},
		Prompt:    l.Board.Prompt(),
	}
}

// MarshalSnapshot returns the indented JSON of l's snapshot.
func MarshalSnapshot(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l.Snapshot(), "", "  ")
}

// UnmarshalSnapshot decodes a snapshot produced by [MarshalSnapshot].
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	err := json.Unmarshal(data, &s)
	return s, err
}

// ComputeLayout lays out s on a board and runs connector passes for the
// viewport and scroll offset in opts.
//
// The board plays the host view: its cards are registered in a fresh
// registry, a synchronizer is mounted on its viewport, and the viewport is
// scrolled into place, which triggers the final pass. Connectors are drawn
// for every match in matches whose two cards are on the board.
func ComputeLayout(s bracket.Structure, matches []bracket.Match, opts Options) *Layout {
	opts.SetLayoutDefaults()

	b := board.New(s, opts.BoardOptions()...)
	reg := geometry.NewRegistry()
	b.Mount(reg)
	defer b.Unmount(reg)

	if matches == nil {
		matches = []bracket.Match{}
	}
	syncer := geometry.NewSynchronizer(reg, geometry.WithLogger(opts.Logger))
	syncer.SetMatches(matches)
	syncer.Mount(b.Viewport())
	b.Viewport().ScrollTo(opts.ScrollX, opts.ScrollY)
	syncer.Unmount()

	return &Layout{Structure: s, Board: b, Result: syncer.Snapshot()}
}

// LayoutFromSnapshot rebuilds a layout from a snapshot without running a
// pass. The board is re-created from the snapshot's structure and scrolled
// to the recorded offset.
func LayoutFromSnapshot(snap Snapshot, opts Options) *Layout {
	opts.SetLayoutDefaults()
	b := board.New(snap.Structure, opts.BoardOptions()...)
	b.Viewport().ScrollTo(snap.Viewport.ScrollX, snap.Viewport.ScrollY)
	return &Layout{
		Structure: snap.Structure,
		Issues:    snap.Issues,
		Board:     b,
		Result:    geometry.Result{Lines: snap.Lines, Extent: snap.Extent},
	}
}
