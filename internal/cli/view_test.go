package cli

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/config"
	"github.com/matzehuels/bracketview/pkg/errors"
	"github.com/matzehuels/bracketview/pkg/pipeline"
)

func newTestModel(t *testing.T, matches []bracket.Match, width, height float64) *boardModel {
	t.Helper()
	m := newBoardModel("cup", bracket.Resolve(matches), matches, pipeline.Options{Width: width, Height: height})
	t.Cleanup(m.close)
	return m
}

func press(m *boardModel, key string) {
	var msg tea.KeyMsg
	switch key {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m.Update(msg)
}

func TestBoardModelInitialLines(t *testing.T) {
	m := newTestModel(t, cupMatches(), 0, 0)
	if got := len(m.result.Lines); got != 3 {
		t.Errorf("initial pass drew %d lines, want 3", got)
	}
	if !strings.Contains(m.View(), "3 lines") {
		t.Errorf("View() does not report the line count:\n%s", m.View())
	}
}

func TestBoardModelScrollRecomputes(t *testing.T) {
	m := newTestModel(t, cupMatches(), 300, 200)
	before := m.result.Lines[0].Path[0]

	press(m, "right")
	if got := m.board.Viewport().ScrollOffset().X; got != scrollStep {
		t.Fatalf("scroll x after right = %v, want %v", got, scrollStep)
	}
	if got := m.result.Lines[0].Path[0]; got != before {
		t.Errorf("horizontal scroll moved line start from %v to %v", before, got)
	}

	press(m, "down")
	if got := m.board.Viewport().ScrollOffset().Y; got != scrollStep {
		t.Fatalf("scroll y after down = %v, want %v", got, scrollStep)
	}
	if got := m.result.Lines[0].Path[0]; got.Y != before.Y-scrollStep || got.X != before.X {
		t.Errorf("line start after vertical scroll = %v, want %v shifted up by %v", got, before, scrollStep)
	}

	press(m, "g")
	if got := m.board.Viewport().ScrollOffset(); got.X != 0 || got.Y != 0 {
		t.Errorf("scroll after home = %v, want 0,0", got)
	}
}

func TestBoardModelFocusCycles(t *testing.T) {
	m := newTestModel(t, cupMatches(), 300, 200)
	n := len(m.board.Cards())
	for range n {
		press(m, "tab")
	}
	if m.focus != 0 {
		t.Errorf("focus after %d tabs = %d, want 0", n, m.focus)
	}
}

func TestBoardModelEmpty(t *testing.T) {
	m := newTestModel(t, nil, 0, 0)
	if !strings.Contains(m.View(), m.board.Prompt()) {
		t.Errorf("empty View() does not show the prompt:\n%s", m.View())
	}
	press(m, "right")
	press(m, "f")
}

func TestBoardModelQuit(t *testing.T) {
	m := newTestModel(t, cupMatches(), 0, 0)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
}

func TestBoardModelWindowResize(t *testing.T) {
	m := newTestModel(t, cupMatches(), 300, 200)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	w, h := m.board.Viewport().Size()
	if w != 100*cellWidth || h != (40-viewChrome)*cellHeight {
		t.Errorf("viewport after resize = %vx%v, want %vx%v", w, h, 100*cellWidth, (40-viewChrome)*cellHeight)
	}
	if got := len(m.result.Lines); got != 3 {
		t.Errorf("lines after resize = %d, want 3", got)
	}
}

func TestBoardModelSearch(t *testing.T) {
	m := newTestModel(t, cupMatches(), 300, 200)

	press(m, "/")
	if !m.searching {
		t.Fatal("/ should start a search")
	}
	press(m, "palm")
	if !strings.Contains(m.View(), "/palm") {
		t.Errorf("View() does not echo the query:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.searching {
		t.Error("enter should end the search")
	}
	if got := m.board.Cards()[m.focus].Match.ID; got != 2 {
		t.Errorf("focused match after search = %d, want 2", got)
	}
	if !strings.Contains(m.status, "Palmeiras") {
		t.Errorf("status = %q, want it to name Palmeiras", m.status)
	}
}

func TestBoardModelSearchNoMatch(t *testing.T) {
	m := newTestModel(t, cupMatches(), 300, 200)
	press(m, "/")
	press(m, "flamengo")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.focus != 0 {
		t.Errorf("focus moved to %d on a failed search", m.focus)
	}
	if !strings.Contains(m.status, "no team matches") {
		t.Errorf("status = %q, want a no-match message", m.status)
	}
}

func TestRunViewRejectsNonFiniteScroll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cup.json")
	data := `[{"id": 1, "round": 2}, {"id": 2, "round": 1, "next_match_id": 1, "slot_in_next_match": 1}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	cfg := config.Default()
	c.cfg = &cfg

	err := c.runView(context.Background(), path, fetchFlags{noCache: true}, pipeline.Options{ScrollX: math.NaN()})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("runView() error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}
