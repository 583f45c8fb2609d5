package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bracketview/pkg/archive"
	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/buildinfo"
	"github.com/matzehuels/bracketview/pkg/errors"
	"github.com/matzehuels/bracketview/pkg/live"
	"github.com/matzehuels/bracketview/pkg/pipeline"
	"github.com/matzehuels/bracketview/pkg/source"
)

const (
	maxBodyBytes       = 1 << 20
	defaultHistorySize = 20
	maxHistorySize     = 200
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (s *Server) getMatches(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	matches, hit, err := s.fetch(r.Context(), opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	setCacheHeader(w, hit)
	if matches == nil {
		matches = []bracket.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

type bracketResponse struct {
	Structure bracket.Structure `json:"structure"`
	Columns   []bracket.Column  `json:"columns"`
	Issues    bracket.Issues    `json:"issues,omitempty"`
}

func (s *Server) getBracket(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	matches, hit, err := s.fetch(r.Context(), opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	st, issues, err := s.runner.Resolve(r.Context(), matches, opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	cols := st.Columns()
	if cols == nil {
		cols = []bracket.Column{}
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, bracketResponse{Structure: st, Columns: cols, Issues: issues})
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	layout, hit, err := s.layout(r, opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, layout.Snapshot())
}

func (s *Server) getArtifact(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	q := r.URL.Query()
	if v := q.Get("viz"); v != "" {
		opts.VizType = v
	}
	if v := q.Get("theme"); v != "" {
		opts.Theme = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	opts.Detailed = opts.Detailed || q.Has("detailed")
	opts.Formats = []string{format}
	if err := opts.ValidateForRender(); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	layout, _, err := s.layout(r, opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), layout, opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[format])
}

type layoutRequest struct {
	Matches json.RawMessage `json:"matches"`
	pipeline.Options
}

// postLayout lays out a match list supplied in the body instead of fetched
// upstream. "matches" may be a bare array or an upstream envelope.
func (s *Server) postLayout(w http.ResponseWriter, r *http.Request) {
	req := layoutRequest{Options: s.defaults}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	matches, err := source.DecodeBytes(req.Matches)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	opts := req.Options
	opts.Logger = nil
	layout, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), matches, opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, layout.Snapshot())
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, r, s.logger, errors.New(errors.ErrCodeUnsupported, "layout archive is not configured"))
		return
	}
	id, err := championshipID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	limit := defaultHistorySize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, r, s.logger, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistorySize)
	}
	records, err := s.history.List(r.Context(), id, limit)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if records == nil {
		records = []archive.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// getLive joins the client to the championship's room. The current layout
// is sent first when it can be computed; the poller sends later changes.
func (s *Server) getLive(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, r, s.logger, errors.New(errors.ErrCodeUnsupported, "live updates are not enabled"))
		return
	}
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var initial *live.Message
	if layout, _, err := s.layout(r, opts); err == nil {
		initial = &live.Message{Type: live.MessageBracketUpdated, Payload: layout.Snapshot()}
	} else {
		s.logger.Warn("no initial layout for live client", "championship", opts.ChampionshipID, "err", err)
	}

	if err := s.hub.Serve(w, r, opts.ChampionshipID, initial); err != nil {
		s.logger.Debug("websocket upgrade failed", "err", err)
	}
}

// layout fetches and lays out the championship named in the request.
func (s *Server) layout(r *http.Request, opts pipeline.Options) (*pipeline.Layout, bool, error) {
	matches, _, err := s.fetch(r.Context(), opts)
	if err != nil {
		return nil, false, err
	}
	return s.runner.LayoutWithCacheInfo(r.Context(), matches, opts)
}

// options builds pipeline options from the server defaults, the {id} path
// parameter and the query string.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	opts.Logger = nil

	id, err := championshipID(r)
	if err != nil {
		return opts, err
	}
	opts.ChampionshipID = id

	q := r.URL.Query()
	floats := []struct {
		name string
		dst  *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"scroll_x", &opts.ScrollX},
		{"scroll_y", &opts.ScrollY},
		{"card_width", &opts.CardWidth},
		{"card_height", &opts.CardHeight},
	}
	for _, f := range floats {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a number, got %q", f.name, v)
		}
		*f.dst = n
	}
	opts.Strict = opts.Strict || q.Has("strict")
	opts.Refresh = q.Has("refresh")

	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}
	return opts, nil
}

func championshipID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "championship id must be an integer, got %q", raw)
	}
	if err := errors.ValidateChampionshipID(id); err != nil {
		return 0, err
	}
	return id, nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
}
