package pipeline

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/subarch/pkg/arch"
	"github.com/matzehuels/subarch/pkg/cache"
	"github.com/matzehuels/subarch/pkg/device"
	"github.com/matzehuels/subarch/pkg/integrations"
	"github.com/matzehuels/subarch/pkg/observability"
	"github.com/matzehuels/subarch/pkg/subarch"
)

// Runner loads and renders orders through a cache.
//
// A Runner holds no per-call state; one instance can serve concurrent
// callers as long as its cache is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// BuildOptions are passed to every [subarch.Build].
	BuildOptions []subarch.Option

	// Fetcher downloads backend documents for URL device references.
	// Nil uses a client backed by Cache.
	Fetcher *integrations.Client
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Load returns the order selected by opts, from the cache when possible.
func (r *Runner) Load(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)
	start := time.Now()

	if opts.Library != "" {
		o, err := subarch.FromLibrary(opts.Library)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded library", "path", opts.Library, "qubits", o.Size())
		return &Result{
			Order:    o,
			Name:     filepath.Base(opts.Library),
			ArchHash: ArchHash(o.Arch()),
			Stats:    Stats{LoadTime: time.Since(start)},
		}, nil
	}

	d, err := r.resolve(ctx, opts)
	if err != nil {
		return nil, err
	}
	g, err := d.Graph()
	if err != nil {
		return nil, err
	}
	res := &Result{Device: d, Name: d.Name, ArchHash: ArchHash(g)}
	key := r.Keyer.LibraryKey(res.ArchHash, cache.LibraryKeyOpts{Version: subarch.LibraryVersion})
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err != nil {
			logger.Warn("cache read failed", "device", d.Name, "err", err)
		} else if hit {
			o, err := subarch.Unmarshal(data)
			if err == nil {
				hooks.OnCacheHit(ctx, "library")
				logger.Debug("library cache hit", "device", d.Name)
				res.Order = o
				res.CacheHit = true
				res.Stats.LoadTime = time.Since(start)
				return res, nil
			}
			logger.Warn("discarding unreadable cached library", "device", d.Name, "err", err)
		}
		hooks.OnCacheMiss(ctx, "library")
	}

	buildStart := time.Now()
	buildOpts := append([]subarch.Option{subarch.WithLogger(logger)}, r.BuildOptions...)
	o, err := subarch.Build(ctx, g, buildOpts...)
	if err != nil {
		return nil, err
	}
	res.Order = o
	res.Stats.BuildTime = time.Since(buildStart)

	if data, err := o.Marshal(d.Name); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.LibraryTTL); err != nil {
			logger.Warn("cache write failed", "device", d.Name, "err", err)
		} else {
			hooks.OnCacheSet(ctx, "library", len(data))
		}
	}
	res.Stats.LoadTime = time.Since(start)
	return res, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// resolve maps a device reference to a device. URLs are fetched as vendor
// backend documents through the runner's cache.
func (r *Runner) resolve(ctx context.Context, opts Options) (*device.Device, error) {
	if !integrations.IsURL(opts.Device) {
		return device.Resolve(opts.Device)
	}
	client := r.Fetcher
	if client == nil {
		client = integrations.NewClient(r.Cache, cache.ArtifactTTL, nil)
	}
	return client.FetchDevice(ctx, opts.Device, opts.Refresh)
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// ArchHash returns the content hash of g's canonical coupling map. Physical
// labels are part of the hash; device names are not.
func ArchHash(g *arch.Graph) string {
	data, _ := json.Marshal(struct {
		Qubits   []int       `json:"qubits"`
		Coupling []arch.Pair `json:"coupling"`
	}{g.Labels(), g.CouplingMap()})
	return cache.Hash(data)
}
