package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/matzehuels/subarch/pkg/cache"
	"github.com/matzehuels/subarch/pkg/errors"
	"github.com/matzehuels/subarch/pkg/observability"
	"github.com/matzehuels/subarch/pkg/poset"
	"github.com/matzehuels/subarch/pkg/render/nodelink"
)

// Render produces an artifact of a loaded order. DOT and SVG output is
// cached; PDF and PNG are converted from the (cached) SVG on every call.
// The boolean reports a cache hit.
func (r *Runner) Render(ctx context.Context, res *Result, opts RenderOptions) ([]byte, bool, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	cacheFormat := opts.Format
	if cacheFormat == FormatPDF || cacheFormat == FormatPNG {
		cacheFormat = FormatSVG
	}
	key := r.Keyer.ArtifactKey(res.ArchHash, cache.ArtifactKeyOpts{
		Kind:   opts.Kind + artifactVariant(opts),
		Format: cacheFormat,
		Qubits: opts.Qubits,
	})
	hooks := observability.Cache()

	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, "artifact")
		start := time.Now()
		if data, err = renderUncached(res, opts, cacheFormat); err != nil {
			return nil, false, err
		}
		r.Logger.Debug("rendered artifact", "artifact", opts.String(), "bytes", len(data), "duration", time.Since(start))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
			hooks.OnCacheSet(ctx, "artifact", len(data))
		}
	} else {
		hooks.OnCacheHit(ctx, "artifact")
	}

	out, err := convert(data, opts)
	if err != nil {
		return nil, false, err
	}
	return out, hit, nil
}

// RenderArtifact produces an artifact without caching.
func RenderArtifact(res *Result, opts RenderOptions) ([]byte, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	base := opts.Format
	if base == FormatPDF || base == FormatPNG {
		base = FormatSVG
	}
	data, err := renderUncached(res, opts, base)
	if err != nil {
		return nil, err
	}
	return convert(data, opts)
}

// artifactVariant distinguishes option combinations that the cache key
// does not carry as separate fields.
func artifactVariant(opts RenderOptions) string {
	v := ""
	if opts.Class != "" {
		v += ":class=" + opts.Class
	}
	if opts.Desirable {
		v += ":desirable"
	}
	if opts.Detailed {
		v += ":detailed"
	}
	if opts.MaxSize > 0 {
		v += ":max=" + strconv.Itoa(opts.MaxSize)
	}
	return v
}

func renderUncached(res *Result, opts RenderOptions, format string) ([]byte, error) {
	dot, err := DOT(res, opts)
	if err != nil {
		return nil, err
	}
	if format == FormatDOT {
		return []byte(dot), nil
	}
	svg, err := nodelink.RenderSVG(dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", opts)
	}
	return svg, nil
}

func convert(data []byte, opts RenderOptions) ([]byte, error) {
	switch opts.Format {
	case FormatPDF:
		return renderPDF(data)
	case FormatPNG:
		return renderPNG(data, opts.Scale)
	}
	return data, nil
}

// DOT returns the Graphviz source of the requested artifact.
func DOT(res *Result, opts RenderOptions) (string, error) {
	o := res.Order
	switch opts.Kind {
	case KindOrder:
		if opts.Qubits != 0 {
			if err := errors.ValidateQubits(opts.Qubits, o.Size()); err != nil {
				return "", err
			}
		}
		return nodelink.OrderDOT(o, nodelink.OrderOptions{
			Qubits:    opts.Qubits,
			Desirable: opts.Desirable,
			Detailed:  opts.Detailed,
			MaxSize:   opts.MaxSize,
		}), nil
	case KindDevice:
		highlight, err := deviceHighlight(res, opts)
		if err != nil {
			return "", err
		}
		return nodelink.DeviceDOT(o.Arch(), nodelink.DeviceOptions{Name: res.Name, Highlight: highlight}), nil
	}
	return "", ValidateKind(opts.Kind)
}

func deviceHighlight(res *Result, opts RenderOptions) ([]int, error) {
	o := res.Order
	if opts.Class != "" {
		c, err := poset.ParseClass(opts.Class)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "class")
		}
		qubits, ok := o.Embedding(c)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "no class %s on %s", c, res.Name)
		}
		return qubits, nil
	}
	if opts.Qubits == 0 {
		return nil, nil
	}
	classes, err := o.OptimalClasses(opts.Qubits)
	if err != nil {
		return nil, err
	}
	qubits, _ := o.Embedding(classes[0])
	return qubits, nil
}
