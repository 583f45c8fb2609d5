package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketview/pkg/board"
	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/geometry"
	"github.com/matzehuels/bracketview/pkg/pipeline"
)

const scrollStep = 80.0

// Board pixels per terminal cell, used to size the viewport from the
// window.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

// viewChrome is the number of terminal rows taken by the title, help and
// status lines.
const viewChrome = 7

var (
	viewCardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	viewFocusStyle   = viewCardStyle.BorderForeground(colorCyan)
	viewHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	viewColumnMargin = lipgloss.NewStyle().MarginRight(2)
)

// boardModel is the bubbletea model of the view command. It keeps a board
// mounted with a live synchronizer, so every scroll runs a connector pass
// exactly as a browser host would.
type boardModel struct {
	title  string
	board  *board.Board
	reg    *geometry.Registry
	syncer *geometry.Synchronizer
	result geometry.Result
	unsub  func()
	focus  int // index into board.Cards()

	searching bool
	query     string
	status    string
}

func newBoardModel(title string, s bracket.Structure, matches []bracket.Match, opts pipeline.Options) *boardModel {
	opts.SetLayoutDefaults()
	b := board.New(s, opts.BoardOptions()...)
	reg := geometry.NewRegistry()
	b.Mount(reg)

	syncer := geometry.NewSynchronizer(reg, geometry.WithLogger(opts.Logger))
	syncer.SetMatches(matches)
	syncer.Mount(b.Viewport())

	m := &boardModel{title: title, board: b, reg: reg, syncer: syncer, result: syncer.Snapshot()}
	m.unsub = syncer.Subscribe(func(r geometry.Result) { m.result = r })
	return m
}

func (m *boardModel) close() {
	m.unsub()
	m.syncer.Unmount()
	m.board.Unmount(m.reg)
}

func (m *boardModel) Init() tea.Cmd { return nil }

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	vp := m.board.Viewport()
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rows := max(msg.Height-viewChrome, 1)
		vp.Resize(float64(msg.Width)*cellWidth, float64(rows)*cellHeight)
	case tea.KeyMsg:
		if m.searching {
			m.updateSearch(msg)
			break
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			vp.ScrollBy(-scrollStep, 0)
		case "right", "l":
			vp.ScrollBy(scrollStep, 0)
		case "up", "k":
			vp.ScrollBy(0, -scrollStep)
		case "down", "j":
			vp.ScrollBy(0, scrollStep)
		case "home", "g":
			vp.ScrollTo(0, 0)
		case "tab", "n":
			m.moveFocus(1)
		case "shift+tab", "p":
			m.moveFocus(-1)
		case "f":
			if final := m.board.Structure().Final; final != nil {
				m.board.Reveal(final.ID)
			}
		case "/":
			m.searching, m.query, m.status = true, "", ""
		}
	}
	return m, nil
}

func (m *boardModel) updateSearch(key tea.KeyMsg) {
	switch key.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.searching = false
	case tea.KeyEnter:
		m.searching = false
		m.search(m.query)
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.query += " "
	case tea.KeyRunes:
		m.query += string(key.Runes)
	}
}

// search focuses the first card, in column order, played by the team
// closest to query.
func (m *boardModel) search(query string) {
	hits := findTeams(m.board.Matches(), query)
	if len(hits) == 0 {
		m.status = fmt.Sprintf("no team matches %q", query)
		return
	}
	team := hits[0].Team
	for i, c := range m.board.Cards() {
		a, b := c.Labels()
		if a == team || b == team {
			m.focus = i
			m.board.Reveal(c.Match.ID)
			m.status = fmt.Sprintf("%s in match #%d", team, c.Match.ID)
			return
		}
	}
}

func (m *boardModel) moveFocus(delta int) {
	cards := m.board.Cards()
	if len(cards) == 0 {
		return
	}
	m.focus = (m.focus + delta + len(cards)) % len(cards)
	m.board.Reveal(cards[m.focus].Match.ID)
}

// visible reports whether a card's box intersects the viewport window.
func (m *boardModel) visible(c *board.Card) bool {
	return c.BoundingBox().Intersects(m.board.Viewport().BoundingBox())
}

func (m *boardModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	switch {
	case m.searching:
		b.WriteString(StyleHighlight.Render("/" + m.query))
	case m.status != "":
		b.WriteString(StyleDim.Render(m.status))
	default:
		b.WriteString(StyleDim.Render("←/→/↑/↓ scroll  tab next match  / find team  f final  g home  q quit"))
	}
	b.WriteString("\n\n")

	if m.board.IsEmpty() {
		b.WriteString(StyleDim.Render(m.board.Prompt()))
		b.WriteString("\n")
		return b.String()
	}

	cards := m.board.Cards()
	var focused *board.Card
	if m.focus < len(cards) {
		focused = cards[m.focus]
	}

	var cols []string
	for _, col := range m.board.Columns() {
		var stack []string
		for _, c := range col.Cards {
			if !m.visible(c) {
				continue
			}
			a, bb := c.Labels()
			style := viewCardStyle
			if c == focused {
				style = viewFocusStyle
			}
			stack = append(stack, style.Render(fmt.Sprintf("#%d\n%s\n%s", c.Match.ID, a, bb)))
		}
		if len(stack) == 0 {
			continue
		}
		header := viewHeaderStyle.Render(col.Label)
		cols = append(cols, viewColumnMargin.Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{header}, stack...)...)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n\n")

	scroll := m.board.Viewport().ScrollOffset()
	maxScroll := m.board.Viewport().MaxScroll()
	printed := fmt.Sprintf("scroll %.0f,%.0f of %.0f,%.0f · %d lines", scroll.X, scroll.Y, maxScroll.X, maxScroll.Y, len(m.result.Lines))
	b.WriteString(StyleDim.Render(printed))
	b.WriteString("\n")

	if focused != nil && !focused.Match.IsFinal() {
		id := geometry.LineID(focused.Match.ID, focused.Match.Next())
		if line, ok := m.result.Line(id); ok {
			b.WriteString(StyleDim.Render(fmt.Sprintf("%s %s", id, line.D())))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	var flags fetchFlags
	opts := c.baseOptions()

	cmd := &cobra.Command{
		Use:   "view <source>",
		Short: "Browse a bracket interactively in the terminal",
		Long: `Browse a bracket in the terminal.

The board viewport follows the terminal size and is scrolled with the
arrow keys; connector lines are recomputed after every scroll or resize.
Press / to find a team by approximate name and jump to its first match.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], flags, opts)
		},
	}
	flags.register(cmd)
	layoutFlags(cmd, &opts)
	return cmd
}

func (c *CLI) runView(ctx context.Context, arg string, flags fetchFlags, opts pipeline.Options) error {
	runner, matches, _, err := c.load(ctx, arg, flags, &opts)
	if err != nil {
		return err
	}
	defer runner.Close()
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}

	st, issues, err := runner.Resolve(ctx, matches, opts)
	if err != nil {
		return err
	}
	if len(issues) > 0 {
		c.Logger.Warn("bracket has issues", "count", len(issues), "hint", appName+" check "+arg)
	}
	opts.Logger = nil

	model := newBoardModel(arg, st, matches, opts)
	defer model.close()
	model.board.Viewport().ScrollTo(opts.ScrollX, opts.ScrollY)

	_, err = tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}
