package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/cache"
	"github.com/matzehuels/bracketview/pkg/errors"
	"github.com/matzehuels/bracketview/pkg/observability"
	"github.com/matzehuels/bracketview/pkg/source"
)

// localSources are read on every fetch; caching them would only hide edits.
var localSources = map[string]bool{"file": true, "static": true}

// Runner encapsulates pipeline execution with caching.
// The CLI, the API and the live poller all use it.
//
// The Runner is stateless except for the cache, the source and the logger;
// it doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Source source.Source
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and source.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If src is nil, only the stages after Fetch can be used.
func NewRunner(c cache.Cache, keyer cache.Keyer, src source.Source, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Source: src,
		Logger: logger,
	}
}

// Execute runs the complete fetch → resolve → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	matches, fetchHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Matches = matches
	result.MatchesHash = HashMatches(matches)
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.MatchCount = len(matches)
	result.CacheInfo.FetchHit = fetchHit

	r.Logger.Info("fetched matches",
		"championship", opts.ChampionshipID,
		"matches", len(matches),
		"duration", result.Stats.FetchTime)

	// Stages 2 and 3: Resolve and Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.LayoutWithCacheInfo(ctx, matches, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Placed = layout.Structure.Len()
	result.Stats.LineCount = len(layout.Result.Lines)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"placed", result.Stats.Placed,
		"lines", result.Stats.LineCount,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo loads the match list with caching and returns cache hit info.
// Matches from local sources are never cached.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) ([]bracket.Match, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForFetch(); err != nil {
		return nil, false, err
	}
	if r.Source == nil {
		return nil, false, errors.New(errors.ErrCodeInternal, "runner has no match source")
	}

	cacheable := !localSources[r.Source.Name()]
	cacheKey := r.Keyer.MatchesKey(r.Source.Name(), opts.ChampionshipID)

	// Try cache first (unless refresh requested)
	if cacheable && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if matches, err := source.DecodeBytes(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "matches")
				return matches, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "matches")
	}

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, opts.ChampionshipID)
	start := time.Now()
	matches, err := r.Source.Matches(ctx, opts.ChampionshipID)
	hooks.OnFetchComplete(ctx, opts.ChampionshipID, len(matches), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		if data, err := source.Encode(matches); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLMatches); err == nil {
				observability.Cache().OnCacheSet(ctx, "matches", len(data))
			}
		}
	}
	return matches, false, nil
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) ([]bracket.Match, error) {
	matches, _, err := r.FetchWithCacheInfo(ctx, opts)
	return matches, err
}

// Resolve derives the bracket structure. In strict mode a malformed list
// fails with MALFORMED_TOPOLOGY; otherwise it degrades and the issues are
// returned for reporting.
func (r *Runner) Resolve(ctx context.Context, matches []bracket.Match, opts Options) (bracket.Structure, bracket.Issues, error) {
	r.applyLogger(&opts)
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	hooks := observability.Pipeline()
	hooks.OnResolveStart(ctx, len(matches))
	start := time.Now()

	issues := bracket.Validate(matches)
	if opts.Strict {
		if err := issues.Err(); err != nil {
			hooks.OnResolveComplete(ctx, 0, time.Since(start))
			return bracket.Empty(), issues, err
		}
	}
	s := bracket.Resolve(matches)

	hooks.OnResolveComplete(ctx, s.Len(), time.Since(start))
	if len(issues) > 0 {
		opts.Logger.Warn("bracket has data-quality issues", "issues", len(issues), "fatal", len(issues.Fatal()))
	}
	if dropped := len(matches) - s.Len(); dropped > 0 {
		opts.Logger.Debug("matches not placed", "dropped", dropped)
	}
	return s, issues, nil
}

// LayoutWithCacheInfo resolves and lays out matches with caching and
// returns cache hit info. A cached layout keeps its connector lines; only
// the board is rebuilt.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, matches []bracket.Match, opts Options) (*Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.LayoutKey(HashMatches(matches), opts.LayoutKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if snap, err := UnmarshalSnapshot(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return LayoutFromSnapshot(snap, opts), true, nil
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	s, issues, err := r.Resolve(ctx, matches, opts)
	if err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, s.Len())
	start := time.Now()
	layout := ComputeLayout(s, matches, opts)
	layout.Issues = issues
	hooks.OnLayoutComplete(ctx, len(layout.Result.Lines), time.Since(start), nil)

	// Cache the result
	if data, err := MarshalSnapshot(layout); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return layout, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, matches []bracket.Match, opts Options) (*Layout, error) {
	layout, _, err := r.LayoutWithCacheInfo(ctx, matches, opts)
	return layout, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout *Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from layout data
	layoutData, err := MarshalSnapshot(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := RenderLayout(ctx, layout, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout *Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// HashMatches returns the content hash of a match list. Equal lists in the
// same order hash equal. The poller compares it between fetches.
func HashMatches(matches []bracket.Match) string {
	h, err := cache.HashJSON(matches)
	if err != nil {
		return ""
	}
	return h
}
