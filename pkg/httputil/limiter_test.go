package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/bracketview/pkg/observability"
)

func TestNilLimiter(t *testing.T) {
	if l := NewLimiter(0, 1); l != nil {
		t.Fatal("NewLimiter(0) should be nil")
	}
	var l *Limiter
	if err := l.Wait(context.Background()); err != nil {
		t.Errorf("nil Wait() = %v", err)
	}
}

func TestLimiterWaitCancelled(t *testing.T) {
	l := NewLimiter(0.001, 1)
	ctx, cancel := context.WithCancel(context.Background())
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first Wait() = %v", err)
	}
	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Error("Wait() on cancelled context should fail")
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	requests  int
	responses []int
}

func (h *recordingHooks) OnRequest(context.Context, string, string, string) {
	h.mu.Lock()
	h.requests++
	h.mu.Unlock()
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, code int, _ time.Duration) {
	h.mu.Lock()
	h.responses = append(h.responses, code)
	h.mu.Unlock()
}

func TestTransportReportsHooks(t *testing.T) {
	defer observability.Reset()
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	client := NewClient(time.Second, NewLimiter(100, 10))
	resp, err := client.Get(srv.URL + "/x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	if hooks.requests != 1 {
		t.Errorf("requests = %d, want 1", hooks.requests)
	}
	if len(hooks.responses) != 1 || hooks.responses[0] != http.StatusTeapot {
		t.Errorf("responses = %v, want [418]", hooks.responses)
	}
}
