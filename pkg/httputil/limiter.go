package httputil

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/bracketview/pkg/observability"
)

// Limiter throttles outgoing requests with a token bucket. A nil *Limiter
// never blocks.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter allows perSecond requests on average with bursts of up to
// burst requests. perSecond <= 0 returns nil, meaning unlimited.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	return &Limiter{lim: rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.lim.Wait(ctx)
}

// Transport is an [http.RoundTripper] that waits on a [Limiter] before each
// request and reports requests to the registered [observability.HTTPHooks].
type Transport struct {
	Base    http.RoundTripper // nil means http.DefaultTransport
	Limiter *Limiter
}

// RoundTrip implements [http.RoundTripper].
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	hooks := observability.HTTP()
	method, host, path := req.Method, req.URL.Host, req.URL.Path

	if err := t.Limiter.Wait(ctx); err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return nil, err
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// NewClient returns an HTTP client with the given timeout whose requests go
// through a [Transport] using lim.
func NewClient(timeout time.Duration, lim *Limiter) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &Transport{Limiter: lim},
	}
}
