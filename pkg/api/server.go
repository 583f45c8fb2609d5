package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/bracketview/pkg/archive"
	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/live"
	"github.com/matzehuels/bracketview/pkg/pipeline"
)

// History is the read side of the layout archive.
type History interface {
	List(ctx context.Context, championshipID, limit int) ([]archive.Record, error)
}

// Server holds the API's dependencies. Build its handler with [Server.Handler].
type Server struct {
	runner   *pipeline.Runner
	hub      *live.Hub
	history  History
	logger   *log.Logger
	origins  []string
	defaults pipeline.Options

	fetches singleflight.Group
}

// Option configures a [Server].
type Option func(*Server)

// WithHub enables the live websocket route.
func WithHub(h *live.Hub) Option { return func(s *Server) { s.hub = h } }

// WithHistory enables the history route.
func WithHistory(h History) Option { return func(s *Server) { s.history = h } }

// WithLogger sets the request logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAllowedOrigins sets the CORS origins. The default allows all.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithDefaults sets the pipeline options requests start from, such as the
// default viewport and card size.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) { s.defaults = opts }
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		logger:  log.New(io.Discard),
		origins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-Cache"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.postLayout)

		r.Route("/championships/{id}", func(r chi.Router) {
			r.Get("/matches", s.getMatches)
			r.Get("/bracket", s.getBracket)
			r.Get("/bracket.{format}", s.getArtifact)
			r.Get("/layout", s.getLayout)
			r.Get("/history", s.getHistory)
			r.Get("/live", s.getLive)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, s.logger, notFound("no route %s %s", r.Method, r.URL.Path))
	})
	return r
}

// ListenAndServe serves the handler on addr until ctx is done, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// fetch loads one championship's matches, sharing the call with concurrent
// requests for the same championship.
func (s *Server) fetch(ctx context.Context, opts pipeline.Options) ([]bracket.Match, bool, error) {
	key := fmt.Sprintf("%d:%t", opts.ChampionshipID, opts.Refresh)
	type result struct {
		matches []bracket.Match
		hit     bool
	}
	v, err, _ := s.fetches.Do(key, func() (any, error) {
		m, hit, err := s.runner.FetchWithCacheInfo(context.WithoutCancel(ctx), opts)
		return result{m, hit}, err
	})
	if err != nil {
		return nil, false, err
	}
	res := v.(result)
	return res.matches, res.hit, nil
}
