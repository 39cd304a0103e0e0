package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/gifshuffle/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("cacheDir() = %q, should be under home %q", dir, home)
	}

	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := "/tmp/custom-cache"
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestDescribeCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	tests := []struct {
		name string
		cfg  config.CacheConfig
		want string
	}{
		{"file default", config.CacheConfig{Backend: config.BackendFile}, filepath.Join("/tmp/xdg-cache", appName)},
		{"file dir", config.CacheConfig{Backend: config.BackendFile, Dir: "/var/cache/gs"}, "/var/cache/gs"},
		{"none", config.CacheConfig{Backend: config.BackendNone}, "disabled"},
		{
			"redis",
			config.CacheConfig{Backend: config.BackendRedis, Redis: config.RedisConfig{Addr: "r:6379", DB: 1, Prefix: "gs:"}},
			`redis://r:6379/1 (prefix "gs:")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := describeCache(tt.cfg)
			if err != nil {
				t.Fatalf("describeCache error: %v", err)
			}
			if got != tt.want {
				t.Errorf("describeCache = %q, want %q", got, tt.want)
			}
		})
	}
}
