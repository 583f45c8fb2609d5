package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// logger. The CLI registers it for --verbose runs.
type LogHooks struct {
	Logger *log.Logger
}

var (
	_ PipelineHooks = LogHooks{}
	_ GeometryHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ HTTPHooks     = LogHooks{}
)

// UseLogger registers [LogHooks] for every event category.
func UseLogger(l *log.Logger) {
	h := LogHooks{Logger: l.WithPrefix("trace")}
	SetPipelineHooks(h)
	SetGeometryHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h LogHooks) OnFetchStart(_ context.Context, id int) {
	h.Logger.Debug("fetch start", "championship", id)
}

func (h LogHooks) OnFetchComplete(_ context.Context, id, n int, d time.Duration, err error) {
	h.Logger.Debug("fetch done", "championship", id, "matches", n, "took", d, "err", err)
}

func (h LogHooks) OnResolveStart(_ context.Context, n int) {
	h.Logger.Debug("resolve start", "matches", n)
}

func (h LogHooks) OnResolveComplete(_ context.Context, placed int, d time.Duration) {
	h.Logger.Debug("resolve done", "placed", placed, "took", d)
}

func (h LogHooks) OnLayoutStart(_ context.Context, cards int) {
	h.Logger.Debug("layout start", "cards", cards)
}

func (h LogHooks) OnLayoutComplete(_ context.Context, lines int, d time.Duration, err error) {
	h.Logger.Debug("layout done", "lines", lines, "took", d, "err", err)
}

func (h LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render done", "formats", formats, "took", d, "err", err)
}

func (h LogHooks) OnPass(lines, skipped int, d time.Duration) {
	h.Logger.Debug("connector pass", "lines", lines, "skipped", skipped, "took", d)
}

func (h LogHooks) OnPassSkipped(reason string) {
	h.Logger.Debug("connector pass skipped", "reason", reason)
}

func (h LogHooks) OnCacheHit(_ context.Context, kind string) {
	h.Logger.Debug("cache hit", "kind", kind)
}

func (h LogHooks) OnCacheMiss(_ context.Context, kind string) {
	h.Logger.Debug("cache miss", "kind", kind)
}

func (h LogHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.Logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("upstream request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("upstream response", "method", method, "path", path, "status", status, "took", d)
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("upstream error", "method", method, "host", host, "path", path, "err", err)
}
