// Package pipeline provides the bracket pipeline shared by the CLI, the API
// and the live poller.
//
// This package implements the complete fetch → resolve → layout → render
// pipeline. By centralizing it, every entry point resolves, lays out and
// caches brackets the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Fetch: Load the match list from a [source.Source]
//  2. Resolve: Derive the two halves and the final ([bracket.Resolve])
//  3. Layout: Place cards on a [board.Board] and run a connector pass
//     ([geometry.Synchronizer]) for the requested viewport and scroll
//  4. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	src, _ := source.NewHTTP("http://localhost:8080/api")
//	runner := pipeline.NewRunner(cache, nil, src, logger)
//	opts := pipeline.Options{
//	    ChampionshipID: 7,
//	    Formats:        []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	matches, err := runner.Fetch(ctx, opts)
//	layout, err := runner.Layout(ctx, matches, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bracketview/pkg/board"
	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/cache"
	"github.com/matzehuels/bracketview/pkg/errors"
	"github.com/matzehuels/bracketview/pkg/render/svg"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Poller
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = board.DefaultViewportWidth

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = board.DefaultViewportHeight

	// DefaultPNGScale is the resolution multiplier for PNG output.
	DefaultPNGScale = 2.0
)

// Visualization types.
const (
	VizTypeBoard    = "board"    // cards and connectors, as the bracket page shows them
	VizTypeNodelink = "nodelink" // Graphviz tree of matches
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeBoard

// DefaultTheme is the default board theme.
const DefaultTheme = svg.DefaultTheme

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeBoard:    true,
	VizTypeNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the bracket pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	ChampionshipID int  `json:"championship_id,omitempty"`
	Refresh        bool `json:"refresh,omitempty"`

	// Resolve options
	Strict bool `json:"strict,omitempty"` // fail on cycles, missing or multiple finals

	// Layout options
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	ScrollX    float64 `json:"scroll_x,omitempty"`
	ScrollY    float64 `json:"scroll_y,omitempty"`
	CardWidth  float64 `json:"card_width,omitempty"`
	CardHeight float64 `json:"card_height,omitempty"`

	// Render options
	VizType  string   `json:"viz_type,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Theme    string   `json:"theme,omitempty"`
	Title    string   `json:"title,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // round and half in nodelink labels

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Matches is the fetched match list.
	Matches []bracket.Match

	// MatchesHash is the content hash of the match list.
	MatchesHash string

	// Layout is the resolved structure, board and connector lines.
	Layout *Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	MatchCount int
	Placed     int // matches on the board, final included
	LineCount  int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FetchHit  bool // Whether the match list came from cache
	LayoutHit bool // Whether the connector lines came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(sortedKeys(ValidFormats), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid viz_type: %q (must be one of: board, nodelink)", vizType)
	}
	return nil
}

// ValidateTheme checks that a board theme exists.
func ValidateTheme(theme string) error {
	_, err := svg.ThemeByName(theme)
	return err
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks fields used to fetch matches. Zero means "no
// championship" and is left to the source, which may ignore it.
func (o *Options) ValidateForFetch() error {
	if o.ChampionshipID < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "championship id must not be negative, got %d", o.ChampionshipID)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"width", o.Width},
		{"height", o.Height},
		{"scroll_x", o.ScrollX},
		{"scroll_y", o.ScrollY},
		{"card_width", o.CardWidth},
		{"card_height", o.CardHeight},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be a finite number, got %g", f.name, f.v)
		}
	}
	switch {
	case o.Width < 0 || o.Height < 0:
		return errors.New(errors.ErrCodeInvalidInput, "viewport size must not be negative, got %gx%g", o.Width, o.Height)
	case o.ScrollX < 0 || o.ScrollY < 0:
		return errors.New(errors.ErrCodeInvalidInput, "scroll offset must not be negative, got %g,%g", o.ScrollX, o.ScrollY)
	case o.CardWidth < 0 || o.CardHeight < 0:
		return errors.New(errors.ErrCodeInvalidInput, "card size must not be negative, got %gx%g", o.CardWidth, o.CardHeight)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateTheme(o.Theme)
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// BoardOptions returns the board options for the layout stage.
func (o *Options) BoardOptions() []board.Option {
	return []board.Option{
		board.WithViewport(o.Width, o.Height),
		board.WithCardSize(o.CardWidth, o.CardHeight),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:      o.Width,
		Height:     o.Height,
		ScrollX:    o.ScrollX,
		ScrollY:    o.ScrollY,
		CardWidth:  o.CardWidth,
		CardHeight: o.CardHeight,
		Strict:     o.Strict,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   o.VizType + ":" + format,
		Theme:    o.Theme,
		Title:    o.Title,
		Detailed: o.Detailed,
	}
}
