package cache

import "fmt"

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// MatchesKey is the key of a fetched match list.
	MatchesKey(source string, championshipID int) string

	// LayoutKey is the key of a layout computed from a match list.
	LayoutKey(matchesHash string, opts LayoutKeyOpts) string

	// ArtifactKey is the key of an artifact rendered from a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the layout inputs besides the matches.
type LayoutKeyOpts struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	ScrollX    float64 `json:"scroll_x"`
	ScrollY    float64 `json:"scroll_y"`
	CardWidth  float64 `json:"card_width"`
	CardHeight float64 `json:"card_height"`
	Strict     bool    `json:"strict"`
}

// ArtifactKeyOpts are the render inputs besides the layout.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Theme    string `json:"theme"`
	Title    string `json:"title"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer produces keys of the form "matches:<source>:<id>",
// "layout:<hash>" and "artifact:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) MatchesKey(source string, championshipID int) string {
	return fmt.Sprintf("matches:%s:%d", source, championshipID)
}

func (DefaultKeyer) LayoutKey(matchesHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", matchesHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
