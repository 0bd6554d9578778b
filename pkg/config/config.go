// Package config loads simpleindex settings.
//
// Settings are layered, later sources winning:
//
//  1. built-in defaults ([Default])
//  2. the TOML file at [Path] (or an explicit path)
//  3. a .env file in the working directory
//  4. SIMPLEINDEX_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// Example config.toml:
//
//	index_url = "https://pypi.org/simple/"
//	accept = "json-v1"
//	timeout = "15s"
//
//	[cache]
//	backend = "redis"
//	ttl = "1h"
//	redis_addr = "localhost:6379"
//
//	[server]
//	listen = ":8080"
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/simpleindex/pkg/cache"
	"github.com/matzehuels/simpleindex/pkg/errors"
	"github.com/matzehuels/simpleindex/pkg/simple"
)

const appName = "simpleindex"

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "SIMPLEINDEX_"

// Config holds all settings.
type Config struct {
	IndexURL string   `toml:"index_url"`
	Accept   string   `toml:"accept"` // an AcceptPolicy name
	Timeout  Duration `toml:"timeout"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the response cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"` // file, memory, redis, mongo, none
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	MemoryEntries int      `toml:"memory_entries"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
}

// ServerConfig configures the proxy server.
type ServerConfig struct {
	Listen  string `toml:"listen"`
	BaseURL string `toml:"base_url"` // public URL of the proxy, used in rendered links
}

// Duration is a time.Duration that reads "90s"-style strings from TOML.
type Duration struct {
	time.Duration
}

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
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		IndexURL: "https://pypi.org/simple/",
		Accept:   simple.AcceptSupported.String(),
		Timeout:  Duration{10 * time.Second},
		Cache: CacheConfig{
			Backend:       cache.BackendFile,
			Dir:           defaultCacheDir(),
			TTL:           Duration{10 * time.Minute},
			MemoryEntries: cache.DefaultMemoryEntries,
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: cache.DefaultMongoDatabase,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8080",
		},
	}
}

// Path returns the default config file location using the XDG standard
// (~/.config/simpleindex/config.toml).
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// defaultCacheDir returns ~/.cache/simpleindex, honoring XDG_CACHE_HOME.
func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}

// Load builds the configuration. An empty path means [Path]; a missing file
// at the default path is not an error, a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
			}
		}
	}

	// .env is optional.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from SIMPLEINDEX_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *Duration) error {
		if v, ok := lookup(EnvPrefix + name); ok {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, name)
			}
		}
		return nil
	}
	num := func(name string, dst *int) error {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, name)
			}
			*dst = n
		}
		return nil
	}

	str("INDEX_URL", &c.IndexURL)
	str("ACCEPT", &c.Accept)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPassword)
	str("MONGO_URI", &c.Cache.MongoURI)
	str("MONGO_DATABASE", &c.Cache.MongoDatabase)
	str("LISTEN", &c.Server.Listen)
	str("BASE_URL", &c.Server.BaseURL)

	for _, err := range []error{
		dur("TIMEOUT", &c.Timeout),
		dur("CACHE_TTL", &c.Cache.TTL),
		num("MEMORY_ENTRIES", &c.Cache.MemoryEntries),
		num("REDIS_DB", &c.Cache.RedisDB),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := errors.ValidateIndexURL(c.IndexURL); err != nil {
		return err
	}
	if _, err := c.AcceptPolicy(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "accept")
	}
	switch strings.ToLower(c.Cache.Backend) {
	case cache.BackendFile, cache.BackendMemory, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Timeout.Duration < 0 || c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "durations must not be negative")
	}
	if c.Server.BaseURL != "" {
		if err := errors.ValidateIndexURL(c.Server.BaseURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "server base_url")
		}
	}
	return nil
}

// AcceptPolicy parses the Accept setting.
func (c *Config) AcceptPolicy() (simple.AcceptPolicy, error) {
	return simple.ParseAcceptPolicy(c.Accept)
}

// CacheOptions converts the cache settings for [cache.Open].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		MemoryEntries: c.Cache.MemoryEntries,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   appName + ":",
		},
		Mongo: cache.MongoConfig{
			URI:      c.Cache.MongoURI,
			Database: c.Cache.MongoDatabase,
		},
	}
}

const secretMask = "********"

// redactURI hides the password of a connection URI. A URI that does not
// parse but carries user info is masked entirely.
func redactURI(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		if strings.Contains(raw, "@") {
			return secretMask
		}
		return raw
	}
	return u.Redacted()
}

// String renders the configuration as TOML with secrets masked.
func (c *Config) String() string {
	masked := *c
	if masked.Cache.RedisPassword != "" {
		masked.Cache.RedisPassword = secretMask
	}
	masked.Cache.MongoURI = redactURI(masked.Cache.MongoURI)
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(masked); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
