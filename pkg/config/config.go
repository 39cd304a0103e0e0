// Package config loads gifshuffle settings from a TOML or YAML file.
//
// The file is chosen by, in order: an explicit path (the --config flag),
// the GIFSHUFFLE_CONFIG environment variable, or
// $XDG_CONFIG_HOME/gifshuffle/config.toml. Only the last may be absent; a
// missing default file yields [Default]. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML. Unknown keys are an error.
//
//	[shuffle]
//	swap_ratio = 0.5
//	swap_distance = 3
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//	prefix = "gifshuffle:"
//
//	[server]
//	addr = ":8080"
//	max_body_bytes = 33554432
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/gifshuffle/pkg/cache"
	"github.com/matzehuels/gifshuffle/pkg/errors"
	"github.com/matzehuels/gifshuffle/pkg/shuffle"
)

const (
	appName = "gifshuffle"

	// EnvConfig names the environment variable holding a config path.
	EnvConfig = "GIFSHUFFLE_CONFIG"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full file configuration.
type Config struct {
	Shuffle ShuffleConfig `toml:"shuffle" yaml:"shuffle"`
	Cache   CacheConfig   `toml:"cache" yaml:"cache"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
}

// ShuffleConfig holds transform defaults. Unset fields leave the built-in
// default in place; command-line flags override all of them.
type ShuffleConfig struct {
	Seed         *uint64  `toml:"seed" yaml:"seed"`
	Speed        *float64 `toml:"speed" yaml:"speed"`
	Loop         *uint32  `toml:"loop" yaml:"loop"`
	SwapRatio    *float64 `toml:"swap_ratio" yaml:"swap_ratio"`
	SwapDistance int      `toml:"swap_distance" yaml:"swap_distance"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend string      `toml:"backend" yaml:"backend"`
	Dir     string      `toml:"dir" yaml:"dir"`
	TTL     Duration    `toml:"ttl" yaml:"ttl"`
	Redis   RedisConfig `toml:"redis" yaml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`
	Prefix   string `toml:"prefix" yaml:"prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr" yaml:"addr"`
	MaxBodyBytes int64    `toml:"max_body_bytes" yaml:"max_body_bytes"`
	MemoryLimit  int      `toml:"memory_limit" yaml:"memory_limit"`
	Workers      int      `toml:"workers" yaml:"workers"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
}

// Duration is a time.Duration written as a string such as "90s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{cache.TTLTransform},
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: appName + ":",
			},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 32 << 20,
			MemoryLimit:  256 << 20,
			Workers:      4,
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/gifshuffle/config.toml, falling
// back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the configuration from path, or from the environment or
// default location when path is empty, and validates it.
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		explicit = false
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		if explicit {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.decode(path, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// decode merges data into c, picking the format from the file extension.
func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !stderrors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		md, err := toml.Decode(string(data), c)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
		return nil
	}
}

// Validate checks value ranges and the cache backend name.
func (c *Config) Validate() error {
	if r := c.Shuffle.SwapRatio; r != nil {
		if err := errors.ValidateRatio(*r); err != nil {
			return err
		}
	}
	if err := errors.ValidateDistance(c.Shuffle.SwapDistance); err != nil {
		return err
	}
	if s := c.Shuffle.Speed; s != nil {
		if err := errors.ValidateSpeed(*s); err != nil {
			return err
		}
	}
	if l := c.Shuffle.Loop; l != nil {
		if err := errors.ValidateLoop(int64(*l)); err != nil {
			return err
		}
	}

	switch c.Cache.Backend {
	case BackendFile:
		if c.Cache.Dir != "" {
			if err := errors.ValidatePath(c.Cache.Dir); err != nil {
				return err
			}
		}
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis.addr is required for the redis backend")
		}
	case BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"cache.backend %q: must be %s, %s or %s", c.Cache.Backend, BackendFile, BackendRedis, BackendNone)
	}

	if c.Server.MaxBodyBytes < 0 || c.Server.MemoryLimit < 0 || c.Server.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server limits must not be negative")
	}
	return nil
}

// ShuffleDefaults returns the shuffle configuration the file describes.
// seed is used unless the file pins one.
func (c *Config) ShuffleDefaults(seed uint64) shuffle.Config {
	cfg := shuffle.DefaultConfig(seed)
	if c.Shuffle.Seed != nil {
		cfg.Seed = *c.Shuffle.Seed
	}
	if c.Shuffle.SwapRatio != nil {
		cfg.SwapRatio = *c.Shuffle.SwapRatio
	}
	cfg.SwapDistance = c.Shuffle.SwapDistance
	cfg.Speed = c.Shuffle.Speed
	cfg.Loop = c.Shuffle.Loop
	return cfg
}
