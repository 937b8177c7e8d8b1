// Package config loads forcegraph settings.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults ([Default])
//  2. The TOML file at $XDG_CONFIG_HOME/forcegraph/config.toml or --config
//  3. A .env file in the working directory and FORCEGRAPH_* variables
//  4. Command-line flags, applied by the CLI
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/sim"
	"github.com/matzehuels/forcegraph/pkg/style"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

const appName = "forcegraph"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config holds forcegraph configuration.
type Config struct {
	Viewport ViewportConfig `toml:"viewport"`
	Layout   LayoutConfig   `toml:"layout"`
	Sim      sim.Config     `toml:"sim"`
	Style    style.Config   `toml:"style"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

// ViewportConfig sets the frame size and zoom extent.
type ViewportConfig struct {
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	Profile string  `toml:"profile"` // "canvas" or "wide"
}

// LayoutConfig bounds background simulations.
type LayoutConfig struct {
	Timeout string `toml:"timeout"`
	Retries int    `toml:"retries"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"` // "file", "redis", "mongo" or "none"
	Dir     string      `toml:"dir"`     // file backend; empty uses the user cache dir
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures `forcegraph serve`.
type ServerConfig struct {
	Addr   string `toml:"addr"`
	JobTTL string `toml:"job_ttl"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{Width: 800, Height: 600, Profile: "canvas"},
		Layout:   LayoutConfig{Timeout: "2m", Retries: 1},
		Sim:      sim.DefaultConfig(),
		Style:    style.DefaultConfig(),
		Cache: CacheConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: appName + ":"},
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: appName, Collection: "cache"},
		},
		Server: ServerConfig{Addr: ":8080", JobTTL: "1h"},
	}
}

// Dir returns the forcegraph config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path (DefaultPath when empty) over the
// defaults, then applies .env and environment overrides. A missing file is
// not an error; a malformed one is.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case !os.IsNotExist(err):
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}

	// A missing .env file is fine; variables may come from the environment.
	_ = godotenv.Load()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Save writes the config to path (DefaultPath when empty).
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist and
// reports whether it did.
func EnsureExists(path string) (bool, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	return true, Save(Default(), path)
}

// =============================================================================
// Environment
// =============================================================================

// ApplyEnv overrides fields from FORCEGRAPH_* environment variables.
func (c *Config) ApplyEnv() error {
	for _, s := range []struct {
		key string
		dst *string
	}{
		{"FORCEGRAPH_CACHE_BACKEND", &c.Cache.Backend},
		{"FORCEGRAPH_CACHE_DIR", &c.Cache.Dir},
		{"FORCEGRAPH_REDIS_ADDR", &c.Cache.Redis.Addr},
		{"FORCEGRAPH_REDIS_PASSWORD", &c.Cache.Redis.Password},
		{"FORCEGRAPH_MONGO_URI", &c.Cache.Mongo.URI},
		{"FORCEGRAPH_MONGO_DATABASE", &c.Cache.Mongo.Database},
		{"FORCEGRAPH_SERVER_ADDR", &c.Server.Addr},
		{"FORCEGRAPH_LAYOUT_TIMEOUT", &c.Layout.Timeout},
		{"FORCEGRAPH_VIEWPORT_PROFILE", &c.Viewport.Profile},
	} {
		if v, ok := os.LookupEnv(s.key); ok {
			*s.dst = v
		}
	}

	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"FORCEGRAPH_WIDTH", &c.Viewport.Width},
		{"FORCEGRAPH_HEIGHT", &c.Viewport.Height},
	} {
		if v, ok := os.LookupEnv(f.key); ok {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", f.key)
			}
			*f.dst = n
		}
	}

	for _, i := range []struct {
		key string
		dst *int
	}{
		{"FORCEGRAPH_REDIS_DB", &c.Cache.Redis.DB},
		{"FORCEGRAPH_LAYOUT_RETRIES", &c.Layout.Retries},
	} {
		if v, ok := os.LookupEnv(i.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", i.key)
			}
			*i.dst = n
		}
	}
	return nil
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks every section.
func (c *Config) Validate() error {
	if err := errors.ValidateViewport(c.Viewport.Width, c.Viewport.Height); err != nil {
		return err
	}
	if _, err := c.ViewportProfile(); err != nil {
		return err
	}
	if _, err := c.LayoutTimeout(); err != nil {
		return err
	}
	if _, err := c.JobTTL(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendMongo, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if err := c.Sim.Validate(); err != nil {
		return err
	}
	return c.Style.Validate()
}

// ViewportProfile resolves the named zoom profile.
func (c *Config) ViewportProfile() (viewport.Profile, error) {
	return viewport.ProfileByName(c.Viewport.Profile)
}

// LayoutTimeout parses Layout.Timeout.
func (c *Config) LayoutTimeout() (time.Duration, error) {
	return parseDuration("layout.timeout", c.Layout.Timeout)
}

// JobTTL parses Server.JobTTL.
func (c *Config) JobTTL() (time.Duration, error) {
	return parseDuration("server.job_ttl", c.Server.JobTTL)
}

func parseDuration(name, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", name)
	}
	if d <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %s", name, s)
	}
	return d, nil
}

// String renders the config as TOML.
func (c *Config) String() string {
	b, err := toml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("# encode config: %v\n", err)
	}
	return string(b)
}
