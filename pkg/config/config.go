// Package config loads bracketview settings.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults ([Default])
//  2. A TOML file (config.toml in the user config directory, or --config)
//  3. A .env file in the working directory
//  4. BRACKETVIEW_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// Example config.toml:
//
//	[upstream]
//	base_url = "http://localhost:8080/api"
//	timeout = "10s"
//	rate = 5
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8090"
//	allowed_origins = ["http://localhost:5173"]
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	bverrors "github.com/matzehuels/bracketview/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "BRACKETVIEW_"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Duration is a time.Duration written as a string such as "10s" in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Config is the full configuration.
type Config struct {
	Upstream Upstream `toml:"upstream"`
	Cache    Cache    `toml:"cache"`
	Archive  Archive  `toml:"archive"`
	Server   Server   `toml:"server"`
	Board    Board    `toml:"board"`
}

// Upstream configures the tournament REST API client.
type Upstream struct {
	BaseURL string   `toml:"base_url"`
	Token   string   `toml:"token"`
	Timeout Duration `toml:"timeout"`
	Rate    float64  `toml:"rate"` // requests per second, 0 = unlimited
	Burst   int      `toml:"burst"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// Archive configures the MongoDB layout archive. An empty URI disables it.
type Archive struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	PollInterval   Duration `toml:"poll_interval"`
}

// Board holds the default viewport and card size.
type Board struct {
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	CardWidth  float64 `toml:"card_width"`
	CardHeight float64 `toml:"card_height"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Upstream: Upstream{
			BaseURL: "http://localhost:8080/api",
			Timeout: Duration{10 * time.Second},
			Burst:   1,
		},
		Cache: Cache{Backend: CacheFile},
		Archive: Archive{
			Database: "bracketview",
		},
		Server: Server{
			Addr:           ":8090",
			AllowedOrigins: []string{"*"},
			PollInterval:   Duration{15 * time.Second},
		},
		Board: Board{Width: 1280, Height: 720},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bracketview", "config.toml"), nil
}

// Load builds the configuration from path, ./.env and the environment.
// An empty path reads [DefaultPath] if it exists; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	return load(path, ".env", os.LookupEnv)
}

func load(path, envFile string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case errors.Is(err, fs.ErrNotExist):
			return nil, bverrors.Wrap(bverrors.ErrCodeFileNotFound, err, "config file %s", path)
		case err != nil:
			return nil, bverrors.Wrap(bverrors.ErrCodeInvalidInput, err, "config file %s", path)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return nil, bverrors.New(bverrors.ErrCodeInvalidInput, "config file %s: unknown key %q", path, undecoded[0].String())
			}
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, bverrors.Wrap(bverrors.ErrCodeInvalidInput, err, "env file %s", envFile)
		}
		if m != nil {
			dotenv = m
		}
	}
	get := func(name string) (string, bool) {
		key := EnvPrefix + name
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(get); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(get func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}
	var errs []error
	float := func(name string, dst *float64) {
		if v, ok := get(name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, bverrors.Wrap(bverrors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, name))
				return
			}
			*dst = f
		}
	}
	dur := func(name string, dst *Duration) {
		if v, ok := get(name); ok {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = append(errs, bverrors.Wrap(bverrors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, name))
			}
		}
	}

	str("UPSTREAM_URL", &c.Upstream.BaseURL)
	str("UPSTREAM_TOKEN", &c.Upstream.Token)
	dur("UPSTREAM_TIMEOUT", &c.Upstream.Timeout)
	float("UPSTREAM_RATE", &c.Upstream.Rate)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("CACHE_PREFIX", &c.Cache.Prefix)
	str("REDIS_URL", &c.Cache.RedisURL)
	str("MONGO_URI", &c.Archive.MongoURI)
	str("MONGO_DATABASE", &c.Archive.Database)
	str("ADDR", &c.Server.Addr)
	dur("POLL_INTERVAL", &c.Server.PollInterval)
	float("BOARD_WIDTH", &c.Board.Width)
	float("BOARD_HEIGHT", &c.Board.Height)
	if v, ok := get("ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the configuration for values no component accepts.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return bverrors.New(bverrors.ErrCodeInvalidInput, "cache backend redis needs redis_url")
		}
	default:
		return bverrors.New(bverrors.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Upstream.BaseURL != "" {
		if err := bverrors.ValidateURL(c.Upstream.BaseURL); err != nil {
			return err
		}
	}
	if c.Upstream.Rate < 0 {
		return bverrors.New(bverrors.ErrCodeInvalidInput, "upstream rate must not be negative")
	}
	if c.Upstream.Timeout.Duration <= 0 {
		return bverrors.New(bverrors.ErrCodeInvalidInput, "upstream timeout must be positive")
	}
	if c.Server.PollInterval.Duration <= 0 {
		return bverrors.New(bverrors.ErrCodeInvalidInput, "poll interval must be positive")
	}
	if c.Board.Width < 0 || c.Board.Height < 0 || c.Board.CardWidth < 0 || c.Board.CardHeight < 0 {
		return bverrors.New(bverrors.ErrCodeInvalidInput, "board sizes must not be negative")
	}
	return nil
}
