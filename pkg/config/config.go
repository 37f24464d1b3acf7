// Package config loads user settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/cartastrutturata/config.toml (or
// ~/.config/cartastrutturata/config.toml). A missing file is not an error:
// [Load] returns [Default] instead. Command-line flags override every value.
//
//	author = "Mario Rossi"
//	action_label = "Nome Azione"
//
//	[cache]
//	backend = "redis"
//	ttl = "168h"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cartastrutturata/pkg/cache"
	"github.com/matzehuels/cartastrutturata/pkg/errors"
	"github.com/matzehuels/cartastrutturata/pkg/paper"
	"github.com/matzehuels/cartastrutturata/pkg/pipeline"
)

const (
	appName  = "cartastrutturata"
	fileName = "config.toml"
)

// Config is the content of the configuration file.
type Config struct {
	Author      string `toml:"author,omitempty"`
	ActionLabel string `toml:"action_label,omitempty"`
	Strict      bool   `toml:"strict"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	TTL           Duration `toml:"ttl"`
	Dir           string   `toml:"dir,omitempty"`
	RedisAddr     string   `toml:"redis_addr,omitempty"`
	RedisPassword string   `toml:"redis_password,omitempty"`
	MongoURI      string   `toml:"mongo_uri,omitempty"`
	MongoDatabase string   `toml:"mongo_database,omitempty"`
}

// ServerConfig configures `cartastrutturata serve`.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	MaxUploadBytes int64    `toml:"max_upload_bytes"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
}

// Duration is a time.Duration written as a Go duration string ("90s", "168h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
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

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		ActionLabel: paper.DefaultActionLabel,
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     Duration{pipeline.DefaultTTL},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: pipeline.DefaultMaxCodeBytes,
			ReadTimeout:    Duration{30 * time.Second},
			WriteTimeout:   Duration{60 * time.Second},
		},
	}
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath returns the path of the configuration file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads path on top of [Default]. Keys the file sets replace the
// defaults; keys it omits keep them. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidInput,
			"config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that TOML decoding cannot.
func (c Config) Validate() error {
	if !slices.Contains(cache.Backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput,
			"cache.backend %q: must be one of %s", c.Cache.Backend, strings.Join(cache.Backends, ", "))
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl cannot be negative")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.max_upload_bytes must be positive")
	}
	return nil
}

// Save writes c to path, creating its directory.
func Save(path string, c Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// CacheOptions converts the cache section for [cache.Open]. An empty
// directory is filled with defaultDir.
func (c CacheConfig) CacheOptions(defaultDir string) cache.Config {
	dir := c.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Config{
		Backend:       c.Backend,
		Dir:           dir,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	}
}
