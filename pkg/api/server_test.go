package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bracketview/pkg/archive"
	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/errors"
	"github.com/matzehuels/bracketview/pkg/live"
	"github.com/matzehuels/bracketview/pkg/pipeline"
	"github.com/matzehuels/bracketview/pkg/source"
)

func ptr[T any](v T) *T { return &v }

func fourTeams() []bracket.Match {
	return []bracket.Match{
		{ID: 3, Round: 2},
		{ID: 1, Round: 1, SlotA: ptr("Lions"), SlotB: ptr("Tigers"), NextMatchID: ptr(3), SlotInNextMatch: ptr(1)},
		{ID: 2, Round: 1, SlotA: ptr("Bears"), NextMatchID: ptr(3), SlotInNextMatch: ptr(2)},
	}
}

type failingSource struct{ err error }

func (s failingSource) Name() string { return "http" }
func (s failingSource) Matches(context.Context, int) ([]bracket.Match, error) {
	return nil, s.err
}

type slowSource struct {
	calls atomic.Int32
}

func (s *slowSource) Name() string { return "http" }
func (s *slowSource) Matches(context.Context, int) ([]bracket.Match, error) {
	s.calls.Add(1)
	time.Sleep(50 * time.Millisecond)
	return fourTeams(), nil
}

type fakeHistory struct{ records []archive.Record }

func (h fakeHistory) List(_ context.Context, _, limit int) ([]archive.Record, error) {
	return h.records[:min(limit, len(h.records))], nil
}

func newTestServer(t *testing.T, src source.Source, opts ...Option) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, src, nil)
	srv := httptest.NewServer(New(runner, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decodeError(t *testing.T, body []byte) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, source.Static(nil))
	resp, body := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
	assert.Contains(t, string(body), `"version":"dev"`)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newTestServer(t, source.Static(nil))
	id := "7f8c2b9e-2a4f-4a63-9d3c-52a9d3e7b8a1"
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get("X-Request-ID"))
}

func TestGetMatches(t *testing.T) {
	srv := newTestServer(t, source.Static(fourTeams()))
	resp, body := get(t, srv, "/api/championships/7/matches")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []bracket.Match
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Len(t, got, 3)
}

func TestGetBracket(t *testing.T) {
	srv := newTestServer(t, source.Static(fourTeams()))
	resp, body := get(t, srv, "/api/championships/7/bracket")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got bracketResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.NotNil(t, got.Structure.Final)
	assert.Equal(t, 3, got.Structure.Final.ID)
	assert.Len(t, got.Columns, 3)
	assert.Empty(t, got.Issues)
}

func TestGetBracketEmpty(t *testing.T) {
	srv := newTestServer(t, source.Static(nil))
	resp, body := get(t, srv, "/api/championships/7/bracket")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"columns":[]`)
	assert.Contains(t, string(body), `"final":null`)
}

func TestGetLayout(t *testing.T) {
	srv := newTestServer(t, source.Static(fourTeams()))
	resp, body := get(t, srv, "/api/championships/7/layout?width=800&height=600&scroll_x=10")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap, err := pipeline.UnmarshalSnapshot(body)
	require.NoError(t, err)
	assert.Len(t, snap.Lines, 2)
	assert.Equal(t, 800.0, snap.Viewport.Width)
	assert.Equal(t, 10.0, snap.Viewport.ScrollX)
}

func TestGetArtifact(t *testing.T) {
	srv := newTestServer(t, source.Static(fourTeams()))

	resp, body := get(t, srv, "/api/championships/7/bracket.svg?title=Cup")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "<svg")

	resp, _ = get(t, srv, "/api/championships/7/bracket.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	resp, body = get(t, srv, "/api/championships/7/bracket.gif")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errors.ErrCodeInvalidFormat, decodeError(t, body).Code)
}

func TestPostLayout(t *testing.T) {
	srv := newTestServer(t, nil)

	body := `{"matches":{"message":"ok","totalPartidas":3,"partidas":[
		{"id":3,"fase":2},
		{"id":1,"fase":1,"timeA":"Lions","timeB":"Tigers","proximaPartidaId":3,"posicaoNaProximaPartida":1},
		{"id":2,"fase":1,"timeA":"Bears","proximaPartidaId":3,"posicaoNaProximaPartida":2}
	]},"width":640,"height":480}`
	resp, err := http.Post(srv.URL+"/api/layout", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap pipeline.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 640.0, snap.Viewport.Width)
	assert.Len(t, snap.Lines, 2)
}

func TestPostLayoutBadBody(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Post(srv.URL+"/api/layout", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		src    source.Source
		path   string
		status int
		code   errors.Code
	}{
		{"bad id", source.Static(nil), "/api/championships/abc/bracket", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"zero id", source.Static(nil), "/api/championships/0/bracket", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"negative width", source.Static(nil), "/api/championships/1/layout?width=-1", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad number", source.Static(nil), "/api/championships/1/layout?scroll_y=down", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"NaN scroll", source.Static(fourTeams()), "/api/championships/1/layout?scroll_x=NaN", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"infinite width", source.Static(fourTeams()), "/api/championships/1/layout?width=Inf", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"NaN card width", source.Static(fourTeams()), "/api/championships/1/layout?card_width=NaN", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"upstream down", failingSource{errors.New(errors.ErrCodeNetwork, "connection refused")}, "/api/championships/1/bracket", http.StatusBadGateway, errors.ErrCodeNetwork},
		{"upstream slow", failingSource{errors.New(errors.ErrCodeTimeout, "deadline")}, "/api/championships/1/bracket", http.StatusGatewayTimeout, errors.ErrCodeTimeout},
		{"strict", source.Static(fourTeams()[1:]), "/api/championships/1/bracket?strict", http.StatusUnprocessableEntity, errors.ErrCodeMalformedTopology},
		{"no history", source.Static(nil), "/api/championships/1/history", http.StatusNotImplemented, errors.ErrCodeUnsupported},
		{"no hub", source.Static(nil), "/api/championships/1/live", http.StatusNotImplemented, errors.ErrCodeUnsupported},
		{"unknown route", source.Static(nil), "/api/nope", http.StatusNotFound, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.src)
			resp, body := get(t, srv, tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, body).Code)
		})
	}
}

func TestStatusForUnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor("SOMETHING_ELSE"))
}

func TestConcurrentFetchesShared(t *testing.T) {
	src := &slowSource{}
	srv := newTestServer(t, src)

	done := make(chan struct{})
	for range 5 {
		go func() {
			defer func() { done <- struct{}{} }()
			resp, err := http.Get(srv.URL + "/api/championships/9/matches")
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	for range 5 {
		<-done
	}
	assert.Less(t, int(src.calls.Load()), 5)
}

func TestHistory(t *testing.T) {
	h := fakeHistory{records: []archive.Record{
		{ID: "b", ChampionshipID: 1, MatchesHash: "h2", CreatedAt: time.Now()},
		{ID: "a", ChampionshipID: 1, MatchesHash: "h1", CreatedAt: time.Now().Add(-time.Minute)},
	}}
	srv := newTestServer(t, source.Static(nil), WithHistory(h))

	resp, body := get(t, srv, "/api/championships/1/history?limit=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got []archive.Record
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "h2", got[0].MatchesHash)

	resp, _ = get(t, srv, "/api/championships/1/history?limit=zero")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLiveSendsInitialLayout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := live.NewHub()
	go hub.Run(ctx)

	srv := newTestServer(t, source.Static(fourTeams()), WithHub(hub))
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/championships/5/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type    string            `json:"type"`
		Room    int               `json:"room"`
		Payload pipeline.Snapshot `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, live.MessageBracketUpdated, msg.Type)
	assert.Equal(t, 5, msg.Room)
	assert.Len(t, msg.Payload.Lines, 2)

	assert.Eventually(t, func() bool { return hub.Clients(5) == 1 }, time.Second, 10*time.Millisecond)
}
