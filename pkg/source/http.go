package source

import (
	"cmp"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/buildinfo"
	"github.com/matzehuels/bracketview/pkg/errors"
	"github.com/matzehuels/bracketview/pkg/httputil"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
)

// HTTP fetches matches from the upstream REST API at
// GET {base}/partidas/campeonato/{id}.
type HTTP struct {
	base     string
	token    string
	client   *http.Client
	attempts int
	backoff  time.Duration
	logger   *log.Logger
}

// HTTPOption configures an [HTTP] source.
type HTTPOption func(*HTTP)

// WithToken sends "Authorization: Bearer token" on every request.
func WithToken(token string) HTTPOption { return func(h *HTTP) { h.token = token } }

// WithClient replaces the HTTP client. The default client has a
// [DefaultTimeout] and no rate limit.
func WithClient(c *http.Client) HTTPOption { return func(h *HTTP) { h.client = c } }

// WithLimiter rate-limits requests. It replaces the client's transport, so
// it should follow [WithClient].
func WithLimiter(l *httputil.Limiter) HTTPOption {
	return func(h *HTTP) {
		c := *h.client
		if t, ok := c.Transport.(*httputil.Transport); ok {
			c.Transport = &httputil.Transport{Base: t.Base, Limiter: l}
		} else {
			c.Transport = &httputil.Transport{Base: c.Transport, Limiter: l}
		}
		h.client = &c
	}
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, backoff time.Duration) HTTPOption {
	return func(h *HTTP) { h.attempts, h.backoff = attempts, backoff }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *log.Logger) HTTPOption { return func(h *HTTP) { h.logger = l } }

// NewHTTP creates a source for the API rooted at baseURL, e.g.
// "http://localhost:8080/api".
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	h := &HTTP{
		base:     strings.TrimRight(baseURL, "/"),
		client:   httputil.NewClient(DefaultTimeout, nil),
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *HTTP) Name() string { return "http" }

// Matches implements [Source]. A 404 or 204 response means the bracket has
// not been generated yet and yields an empty list. Network failures, 5xx and
// 429 responses are retried.
func (h *HTTP) Matches(ctx context.Context, championshipID int) ([]bracket.Match, error) {
	if err := errors.ValidateChampionshipID(championshipID); err != nil {
		return nil, err
	}
	u := h.base + "/partidas/campeonato/" + strconv.Itoa(championshipID)

	var matches []bracket.Match
	err := httputil.Retry(ctx, h.attempts, h.backoff, func() error {
		var err error
		matches, err = h.fetch(ctx, u)
		if err != nil && httputil.IsRetryable(err) {
			h.logger.Debug("retrying upstream request", "url", u, "err", err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	h.logger.Debug("fetched matches", "championship", championshipID, "matches", len(matches))
	return matches, nil
}

func (h *HTTP) fetch(ctx context.Context, u string) ([]bracket.Match, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err, u)
	}
	defer resp.Body.Close()

	switch code := resp.StatusCode; {
	case code == http.StatusNotFound || code == http.StatusNoContent:
		return []bracket.Match{}, nil
	case code >= 200 && code < 300:
		matches, err := Decode(resp.Body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "upstream response from %s", u)
		}
		return matches, nil
	default:
		return nil, statusError(resp)
	}
}

func transportError(ctx context.Context, err error, u string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var ue *url.Error
	if stderrors.As(err, &ue) && ue.Timeout() {
		return httputil.Retryable(errors.Wrap(errors.ErrCodeTimeout, err, "upstream request to %s timed out", u))
	}
	return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "upstream request to %s failed", u))
}

// statusError maps a non-2xx response to a coded error, using the API's
// "message" or "error" field when present.
func statusError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	msg := cmp.Or(body.Message, body.Error, fmt.Sprintf("status %d", resp.StatusCode))

	code := errors.CodeForStatus(resp.StatusCode)
	err := errors.New(code, "upstream: %s", msg)
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: err, After: retryAfter(resp.Header.Get("Retry-After"))}
	case errors.Temporary(err):
		return httputil.Retryable(err)
	default:
		return err
	}
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
