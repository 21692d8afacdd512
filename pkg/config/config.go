// Package config loads deptree settings.
//
// Sources, lowest precedence first:
//
//  1. built-in defaults ([Default])
//  2. a TOML file (deptree.toml in the working directory unless --config is given)
//  3. a .env file, loaded into the process environment without overriding it
//  4. DEPTREE_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/repo"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "deptree.toml"

// Environment variables that override the file.
const (
	EnvOrg        = "DEPTREE_ORG"
	EnvOutDir     = "DEPTREE_OUT_DIR"
	EnvCacheDir   = "DEPTREE_CACHE_DIR"
	EnvRedisURL   = "DEPTREE_REDIS_URL"
	EnvMongoURI   = "DEPTREE_MONGO_URI"
	EnvServerAddr = "DEPTREE_ADDR"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds every setting.
type Config struct {
	Org     string       `toml:"org"`
	OutDir  string       `toml:"out_dir"`
	Columns repo.Columns `toml:"columns"`
	Cache   CacheConfig  `toml:"cache"`
	Store   StoreConfig  `toml:"store"`
	Server  ServerConfig `toml:"server"`

	// Path is the file the config was read from, empty when none was found.
	Path string `toml:"-"`
	// Unknown lists keys in the file that no setting consumed.
	Unknown []string `toml:"-"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
}

// StoreConfig configures the run history.
type StoreConfig struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Org:     "edx",
		OutDir:  ".",
		Columns: repo.DefaultColumns(),
		Cache: CacheConfig{
			Backend: CacheFile,
			Prefix:  "deptree:",
			TTL:     Duration{24 * time.Hour},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads path (or DefaultFile when path is empty and the file exists),
// then the given .env files, then environment overrides. An explicit path
// that does not exist is an error; a missing default file is not.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	} else if explicit {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	c.Path = path
	for _, k := range md.Undecoded() {
		c.Unknown = append(c.Unknown, k.String())
	}
	c.Columns = c.Columns.WithDefaults()
	return nil
}

// loadEnvFiles loads .env files that exist. With no arguments it tries
// ".env" in the working directory.
func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "load %s", strings.Join(present, ", "))
	}
	return nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Org, EnvOrg)
	set(&c.OutDir, EnvOutDir)
	set(&c.Cache.Dir, EnvCacheDir)
	set(&c.Store.MongoURI, EnvMongoURI)
	set(&c.Server.Addr, EnvServerAddr)

	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = CacheRedis
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache backend redis requires redis_url or %s", EnvRedisURL)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	return nil
}
