package cli

import (
	"context"
	"net/http"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bracketview/pkg/api"
	"github.com/matzehuels/bracketview/pkg/archive"
	"github.com/matzehuels/bracketview/pkg/config"
	"github.com/matzehuels/bracketview/pkg/httputil"
	"github.com/matzehuels/bracketview/pkg/live"
	"github.com/matzehuels/bracketview/pkg/pipeline"
	"github.com/matzehuels/bracketview/pkg/source"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		noLive  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve brackets over HTTP with live updates",
		Long: `Serve the bracket API.

Brackets are fetched from the configured tournament API. Websocket clients
of /api/championships/{id}/live receive the layout whenever the match list
changes; the server polls each watched championship at the configured
interval. With [archive] mongo_uri set, every changed layout is archived and
listed under /api/championships/{id}/history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache, noLive)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8090)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noLive, "no-live", false, "disable websocket updates and polling")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache, noLive bool) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	src, err := source.NewHTTP(cfg.Upstream.BaseURL,
		source.WithToken(cfg.Upstream.Token),
		source.WithClient(httputil.NewClient(cfg.Upstream.Timeout.Duration, nil)),
		source.WithLimiter(httputil.NewLimiter(cfg.Upstream.Rate, cfg.Upstream.Burst)),
		source.WithLogger(c.Logger.WithPrefix("upstream")),
	)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, src, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	defaults := pipeline.Options{
		Width:      cfg.Board.Width,
		Height:     cfg.Board.Height,
		CardWidth:  cfg.Board.CardWidth,
		CardHeight: cfg.Board.CardHeight,
	}
	apiOpts := []api.Option{
		api.WithLogger(c.Logger.WithPrefix("api")),
		api.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		api.WithDefaults(defaults),
	}

	var store *archive.Store
	if cfg.Archive.MongoURI != "" {
		store, err = archive.Open(ctx, cfg.Archive.MongoURI, cfg.Archive.Database)
		if err != nil {
			return err
		}
		defer store.Close(context.WithoutCancel(ctx))
		apiOpts = append(apiOpts, api.WithHistory(store))
		c.Logger.Info("archiving layouts", "database", cfg.Archive.Database)
	}

	g, ctx := errgroup.WithContext(ctx)

	if !noLive {
		hub := live.NewHub(
			live.WithHubLogger(c.Logger.WithPrefix("live")),
			live.WithCheckOrigin(originChecker(cfg.Server.AllowedOrigins)),
		)
		pollerOpts := []live.PollerOption{
			live.WithInterval(cfg.Server.PollInterval.Duration),
			live.WithPollerLogger(c.Logger.WithPrefix("poller")),
		}
		if store != nil {
			pollerOpts = append(pollerOpts, live.WithArchive(store))
		}
		poller := live.NewPoller(runner, hub, defaults, pollerOpts...)
		apiOpts = append(apiOpts, api.WithHub(hub))

		g.Go(func() error { hub.Run(ctx); return nil })
		g.Go(func() error { poller.Run(ctx); return nil })
	}

	server := api.New(runner, apiOpts...)
	g.Go(func() error { return server.ListenAndServe(ctx, addr) })

	printInfo("Serving on %s", addr)
	printDetail("upstream %s · cache %s · poll %s", cfg.Upstream.BaseURL, cacheBackend(cfg, noCache), cfg.Server.PollInterval.Duration)
	return g.Wait()
}

// originChecker accepts websocket upgrades from the CORS origins. A "*"
// entry or a request without an Origin header is always accepted.
func originChecker(allowed []string) func(*http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

func cacheBackend(cfg *config.Config, noCache bool) string {
	if noCache {
		return config.CacheNone
	}
	return cfg.Cache.Backend
}
