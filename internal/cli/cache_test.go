package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/subarch/pkg/cache"
)

func TestCachePath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	t.Setenv("SUBARCH_CACHE", "")
	t.Setenv("SUBARCH_CACHE_URL", "")

	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(out), filepath.Join(xdg, appName); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}

	out, err = run(t, "--cache-url", "/srv/subarch", "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != "/srv/subarch" {
		t.Errorf("cache path with --cache-url = %q", got)
	}

	if _, err := run(t, "--cache", "redis", "cache", "path"); err == nil {
		t.Error("redis cache has no path, want error")
	}
}

func TestCacheClear(t *testing.T) {
	t.Setenv("SUBARCH_CACHE", "")
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b"} {
		if err := fc.Set(ctx, key, []byte(key), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := run(t, "--cache-url", dir, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"a", "b"} {
		if _, hit, _ := fc.Get(ctx, key); hit {
			t.Errorf("key %q survived cache clear", key)
		}
	}
}

func TestCacheConfigEnv(t *testing.T) {
	t.Setenv("SUBARCH_CACHE", "badger")
	t.Setenv("SUBARCH_CACHE_URL", "/var/cache/x")

	c := New(os.Stderr, LogInfo)
	cfg := c.cacheConfig()
	if cfg.Backend != "badger" || cfg.URL != "/var/cache/x" {
		t.Errorf("env config = %+v", cfg)
	}

	c.cacheBackend = "file"
	if cfg := c.cacheConfig(); cfg.Backend != "file" || cfg.URL != "/var/cache/x" {
		t.Errorf("flag override = %+v", cfg)
	}

	c.noCache = true
	if cfg := c.cacheConfig(); cfg.Backend != cache.BackendNone {
		t.Errorf("--no-cache = %+v", cfg)
	}
}

func TestRunnerUsesCachePrefix(t *testing.T) {
	t.Setenv("SUBARCH_CACHE", "")
	t.Setenv("SUBARCH_CACHE_URL", "")
	t.Setenv("SUBARCH_CACHE_PREFIX", "from-env:")

	c := New(os.Stderr, LogInfo)
	c.cacheURL = t.TempDir()
	if cfg := c.cacheConfig(); cfg.Prefix != "from-env:" {
		t.Errorf("env prefix = %q", cfg.Prefix)
	}

	c.cachePrefix = "staging:"
	runner, err := c.newRunner(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer runner.Close()

	opts := cache.LibraryKeyOpts{Version: 1}
	want := "staging:" + cache.NewDefaultKeyer().LibraryKey("abc", opts)
	if got := runner.Keyer.LibraryKey("abc", opts); got != want {
		t.Errorf("runner LibraryKey = %s, want %s", got, want)
	}
}
