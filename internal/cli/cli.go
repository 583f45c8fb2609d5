package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketview/pkg/buildinfo"
	"github.com/matzehuels/bracketview/pkg/cache"
	"github.com/matzehuels/bracketview/pkg/config"
	"github.com/matzehuels/bracketview/pkg/httputil"
	"github.com/matzehuels/bracketview/pkg/observability"
	"github.com/matzehuels/bracketview/pkg/pipeline"
	"github.com/matzehuels/bracketview/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "bracketview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level pipeline, cache,
// connector and upstream events are traced as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.UseLogger(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "bracketview lays out single-elimination tournament brackets",
		Long: `bracketview fetches a championship's match list, resolves it into two halves
converging on a final, and lays the bracket out with connector lines between
each match and the match its winner advances to.

A command's <source> is either a championship id, fetched from the configured
tournament API, or the path to a JSON file of matches.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/bracketview/config.toml)")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.findCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner reading from src.
func (c *CLI) newRunner(ctx context.Context, src source.Source, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	return pipeline.NewRunner(ch, keyer, src, c.Logger), nil
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, appName+":")
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cache.DefaultDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Sources
// =============================================================================

// newSource interprets a command's <source> argument: an integer is a
// championship id served by the configured upstream API, anything else is a
// match file. The returned id is 0 for files.
func (c *CLI) newSource(arg string) (source.Source, int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		f, err := source.NewFile(arg)
		return f, 0, err
	}

	cfg, err := c.config()
	if err != nil {
		return nil, 0, err
	}
	h, err := source.NewHTTP(cfg.Upstream.BaseURL,
		source.WithToken(cfg.Upstream.Token),
		source.WithClient(httputil.NewClient(cfg.Upstream.Timeout.Duration, nil)),
		source.WithLimiter(httputil.NewLimiter(cfg.Upstream.Rate, cfg.Upstream.Burst)),
		source.WithLogger(c.Logger),
	)
	return h, id, err
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns the options commands bind their flags to. Layout
// sizes start at zero so that [CLI.applyConfig] can tell which ones a flag
// set.
func (c *CLI) baseOptions() pipeline.Options {
	opts := pipeline.Options{}
	opts.SetRenderDefaults()
	return opts
}

// applyConfig fills layout sizes left unset by flags from the [board]
// config section. Sizes still unset get the pipeline defaults later.
func (c *CLI) applyConfig(opts *pipeline.Options) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	fill := func(dst *float64, v float64) {
		if *dst == 0 {
			*dst = v
		}
	}
	fill(&opts.Width, cfg.Board.Width)
	fill(&opts.Height, cfg.Board.Height)
	fill(&opts.CardWidth, cfg.Board.CardWidth)
	fill(&opts.CardHeight, cfg.Board.CardHeight)
	return nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
