// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pipeline execution, geometry passes, cache
// operations, and upstream API calls.
//
// # Architecture
//
// Each event category has a hook interface with a no-op default. Hooks are
// registered by main, not by libraries, so library packages never import a
// metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetGeometryHooks(&myGeometryHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnResolveStart(ctx, len(matches))
//	s := bracket.Resolve(matches)
//	observability.Pipeline().OnResolveComplete(ctx, s.Len(), time.Since(start))
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the bracket pipeline.
type PipelineHooks interface {
	// Fetch events
	OnFetchStart(ctx context.Context, championshipID int)
	OnFetchComplete(ctx context.Context, championshipID int, matchCount int, duration time.Duration, err error)

	// Resolve events
	OnResolveStart(ctx context.Context, matchCount int)
	OnResolveComplete(ctx context.Context, placed int, duration time.Duration)

	// Layout events
	OnLayoutStart(ctx context.Context, cardCount int)
	OnLayoutComplete(ctx context.Context, lineCount int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Geometry Hooks
// =============================================================================

// GeometryHooks receives events from connector layout passes. Passes run
// synchronously inside resize and scroll notifications, so implementations
// must not block.
type GeometryHooks interface {
	// OnPass records a completed pass.
	OnPass(lines, skipped int, duration time.Duration)

	// OnPassSkipped records a pass that produced no update.
	OnPassSkipped(reason string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFetchStart(context.Context, int)                                {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, int, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnResolveStart(context.Context, int)                              {}
func (NoopPipelineHooks) OnResolveComplete(context.Context, int, time.Duration)            {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)      {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopGeometryHooks is a no-op implementation of GeometryHooks.
type NoopGeometryHooks struct{}

func (NoopGeometryHooks) OnPass(int, int, time.Duration) {}
func (NoopGeometryHooks) OnPassSkipped(string)           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds one registered hook set. Reads are lock-free since hooks are
// consulted on every geometry pass.
type slot[T any] struct {
	p   atomic.Pointer[T]
	def T
}

func (s *slot[T]) get() T {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.def
}

func (s *slot[T]) set(h T) { s.p.Store(&h) }

func (s *slot[T]) reset() { s.p.Store(nil) }

var (
	pipelineHooks = slot[PipelineHooks]{def: NoopPipelineHooks{}}
	geometryHooks = slot[GeometryHooks]{def: NoopGeometryHooks{}}
	cacheHooks    = slot[CacheHooks]{def: NoopCacheHooks{}}
	httpHooks     = slot[HTTPHooks]{def: NoopHTTPHooks{}}
)

// SetPipelineHooks registers pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineHooks.set(h)
	}
}

// SetGeometryHooks registers geometry hooks. A nil h is ignored.
func SetGeometryHooks(h GeometryHooks) {
	if h != nil {
		geometryHooks.set(h)
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.set(h)
	}
}

// SetHTTPHooks registers upstream HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.set(h)
	}
}

func Pipeline() PipelineHooks { return pipelineHooks.get() }
func Geometry() GeometryHooks { return geometryHooks.get() }
func Cache() CacheHooks       { return cacheHooks.get() }
func HTTP() HTTPHooks         { return httpHooks.get() }

// Reset restores the no-op hooks.
func Reset() {
	pipelineHooks.reset()
	geometryHooks.reset()
	cacheHooks.reset()
	httpHooks.reset()
}
