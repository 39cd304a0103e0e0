package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/gifshuffle/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("Backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error: %v", err)
	}
	sc := cfg.ShuffleDefaults(7)
	if sc.Seed != 7 || sc.SwapRatio != 1 || sc.Speed != nil || sc.Loop != nil {
		t.Errorf("ShuffleDefaults = %+v", sc)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[shuffle]
seed = 99
swap_ratio = 0.5
swap_distance = 3
speed = 2.5
loop = 4

[cache]
backend = "redis"
ttl = "24h"

[cache.redis]
addr = "redis:6379"
db = 2
prefix = "gs:"

[server]
addr = ":9000"
read_timeout = "5s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.Redis.Addr != "redis:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h", cfg.Cache.TTL.Duration)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	// Unset keys keep their defaults.
	if cfg.Server.MaxBodyBytes != Default().Server.MaxBodyBytes {
		t.Errorf("MaxBodyBytes = %d, want default", cfg.Server.MaxBodyBytes)
	}

	sc := cfg.ShuffleDefaults(1)
	if sc.Seed != 99 || sc.SwapRatio != 0.5 || sc.SwapDistance != 3 {
		t.Errorf("ShuffleDefaults = %+v", sc)
	}
	if sc.Speed == nil || *sc.Speed != 2.5 || sc.Loop == nil || *sc.Loop != 4 {
		t.Errorf("overrides = %v, %v", sc.Speed, sc.Loop)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
shuffle:
  swap_ratio: 0.25
cache:
  backend: none
  ttl: 90m
server:
  workers: 8
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Cache.Backend != BackendNone || cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Server.Workers)
	}
	if got := cfg.ShuffleDefaults(0).SwapRatio; got != 0.25 {
		t.Errorf("SwapRatio = %v, want 0.25", got)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	path := writeFile(t, "config.yml", "")
	if _, err := Load(path); err != nil {
		t.Errorf("Load(empty yaml) error: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    errors.Code
	}{
		{"unknown toml key", "c.toml", "[shuffle]\nspeeed = 1\n", errors.ErrCodeInvalidInput},
		{"unknown yaml key", "c.yaml", "cache:\n  backnd: file\n", errors.ErrCodeInvalidInput},
		{"bad toml", "c.toml", "[shuffle\n", errors.ErrCodeInvalidInput},
		{"bad duration", "c.toml", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidInput},
		{"bad backend", "c.toml", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidInput},
		{"ratio out of range", "c.toml", "[shuffle]\nswap_ratio = 1.5\n", errors.ErrCodeInvalidInput},
		{"negative distance", "c.toml", "[shuffle]\nswap_distance = -2\n", errors.ErrCodeInvalidInput},
		{"redis without addr", "c.toml", "[cache]\nbackend = \"redis\"\n[cache.redis]\naddr = \"\"\n", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("Backend = %q, want default", cfg.Cache.Backend)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := writeFile(t, "env.toml", "[server]\naddr = \":7000\"\n")
	t.Setenv(EnvConfig, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q, want :7000", cfg.Server.Addr)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", appName, "config.toml"); path != want {
		t.Errorf("DefaultPath = %q, want %q", path, want)
	}
}
