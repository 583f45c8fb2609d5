// Package httputil provides HTTP plumbing for the upstream match API client.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff when it fails with a
// [RetryableError]. Clients wrap transient failures with [Retryable]:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses (honouring Retry-After via RetryableError.After)
//
// Any other error ends the loop immediately.
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx)
//	})
//
// # Rate limiting
//
// [Limiter] is a token bucket (golang.org/x/time/rate) shared by every
// request a client makes. [Transport] applies it per request and reports
// requests, responses and failures to [observability.HTTP]:
//
//	client := httputil.NewClient(10*time.Second, httputil.NewLimiter(5, 1))
//
// A nil Limiter does not throttle.
package httputil
