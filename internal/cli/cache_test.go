package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gifshuffle/pkg/cache"
)

func TestCachePathCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cfg := writeConfig(t, "[cache]\ndir = \""+dir+"\"\n")

	out, err := runCLI(t, "cache", "path", "--config", cfg)
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cfg := writeConfig(t, "[cache]\ndir = \""+dir+"\"\n")

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := runCLI(t, "cache", "clear", "--config", cfg); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, ok, _ := fc.Get(ctx, k); ok {
			t.Errorf("key %q survived clear", k)
		}
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir removed: %v", err)
	}
}

func TestCacheClearDisabled(t *testing.T) {
	cfg := writeConfig(t, "[cache]\nbackend = \"none\"\n")
	if _, err := runCLI(t, "cache", "clear", "--config", cfg); err != nil {
		t.Errorf("cache clear with disabled cache error: %v", err)
	}
}
