package svg

import (
	"slices"

	"github.com/matzehuels/bracketview/pkg/errors"
)

// Theme holds the colors and font of a rendered board.
type Theme struct {
	Name       string
	Background string
	Card       string
	CardStroke string
	Divider    string
	Text       string
	Undecided  string // text color of TBD labels
	Header     string
	Line       string
	Font       string
}

var themes = map[string]Theme{
	"light": {
		Name:       "light",
		Background: "#f9fafb",
		Card:       "#ffffff",
		CardStroke: "#d1d5db",
		Divider:    "#e5e7eb",
		Text:       "#111827",
		Undecided:  "#9ca3af",
		Header:     "#374151",
		Line:       "#6b7280",
		Font:       "system-ui, -apple-system, Segoe UI, sans-serif",
	},
	"dark": {
		Name:       "dark",
		Background: "#111827",
		Card:       "#1f2937",
		CardStroke: "#4b5563",
		Divider:    "#374151",
		Text:       "#f9fafb",
		Undecided:  "#6b7280",
		Header:     "#d1d5db",
		Line:       "#9ca3af",
		Font:       "system-ui, -apple-system, Segoe UI, sans-serif",
	},
}

// DefaultTheme is used when no theme is given.
const DefaultTheme = "light"

// Themes returns the available theme names, sorted.
func Themes() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// ThemeByName looks up a theme. The empty name selects [DefaultTheme].
func ThemeByName(name string) (Theme, error) {
	if name == "" {
		name = DefaultTheme
	}
	t, ok := themes[name]
	if !ok {
		return Theme{}, errors.New(errors.ErrCodeInvalidTheme, "unknown theme %q (available: %v)", name, Themes())
	}
	return t, nil
}
