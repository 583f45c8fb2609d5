package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketview/pkg/cache"
	"github.com/matzehuels/bracketview/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the match, layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry of the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			return clearCache(cmd.Context(), cfg)
		},
	}
}

func clearCache(ctx context.Context, cfg *config.Config) error {
	ch, err := newCache(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer ch.Close()

	var count int
	switch ch := ch.(type) {
	case *cache.FileCache:
		count, err = ch.Clear()
		if err == nil {
			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", ch.Dir())
		}
	case *cache.RedisCache:
		count, err = ch.Clear(ctx)
		if err == nil {
			printSuccess("Cleared %d cached entries", count)
			printDetail("Redis: %s", cfg.Cache.RedisURL)
		}
	default:
		printInfo("Caching is disabled")
	}
	return err
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory or Redis URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fmt.Println(cacheLocation(cfg))
			return nil
		},
	}
}

// cacheLocation describes where the configured backend keeps entries.
func cacheLocation(cfg *config.Config) string {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return cfg.Cache.RedisURL
	case config.CacheNone:
		return "(disabled)"
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return "(unavailable)"
	}
	return dir
}
