package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendNone, BackendFile, BackendBadger, BackendRedis, BackendMongo}

// Config selects and configures a backend.
type Config struct {
	// Backend is one of [Backends]. Empty means file.
	Backend string

	// URL is the Redis address or MongoDB URI. For the file and badger
	// backends it overrides the directory.
	URL string

	// Dir is the directory of the file and badger backends. Empty means
	// [DefaultDir].
	Dir string

	// Database and Collection name the MongoDB collection.
	Database   string
	Collection string

	// Prefix namespaces every key, so several deployments can share one
	// Redis or MongoDB. See [Config.Keyer].
	Prefix string
}

// ConfigFromEnv reads SUBARCH_CACHE, SUBARCH_CACHE_URL and
// SUBARCH_CACHE_PREFIX.
func ConfigFromEnv() Config {
	return Config{
		Backend: os.Getenv("SUBARCH_CACHE"),
		URL:     os.Getenv("SUBARCH_CACHE_URL"),
		Prefix:  os.Getenv("SUBARCH_CACHE_PREFIX"),
	}
}

// Keyer returns the key scheme for cfg: a [ScopedKeyer] when Prefix is set,
// [DefaultKeyer] otherwise.
func (cfg Config) Keyer() Keyer {
	if cfg.Prefix == "" {
		return NewDefaultKeyer()
	}
	return NewScopedKeyer(nil, cfg.Prefix)
}

// Open creates the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	backend := strings.ToLower(cfg.Backend)
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendFile, BackendBadger:
		dir, err := cfg.dir(backend)
		if err != nil {
			return nil, err
		}
		if backend == BackendFile {
			c, err := NewFileCache(dir)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
		c, err := NewBadgerCache(dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		addr := cfg.URL
		if addr == "" {
			addr = "localhost:6379"
		}
		c, err := NewRedisCache(ctx, addr)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		uri := cfg.URL
		if uri == "" {
			uri = "mongodb://localhost:27017"
		}
		c, err := NewMongoCache(ctx, uri, cfg.Database, cfg.Collection)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, cfg.Backend, strings.Join(Backends, ", "))
	}
}

// Path returns the directory of a local (file or badger) backend.
func (cfg Config) Path() (string, error) {
	backend := strings.ToLower(cfg.Backend)
	switch backend {
	case "":
		backend = BackendFile
	case BackendFile, BackendBadger:
	default:
		return "", fmt.Errorf("the %s cache has no local directory", backend)
	}
	return cfg.dir(backend)
}

func (cfg Config) dir(backend string) (string, error) {
	switch {
	case cfg.URL != "":
		return cfg.URL, nil
	case cfg.Dir != "":
		return cfg.Dir, nil
	}
	root, err := DefaultDir()
	if err != nil {
		return "", err
	}
	if backend == BackendBadger {
		return filepath.Join(root, "badger"), nil
	}
	return root, nil
}

// DefaultDir returns $XDG_CACHE_HOME/subarch, or ~/.cache/subarch.
func DefaultDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "subarch"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "subarch"), nil
}
