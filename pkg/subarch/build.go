package subarch

import (
	"context"
	"time"

	"github.com/matzehuels/subarch/pkg/arch"
	"github.com/matzehuels/subarch/pkg/errors"
	"github.com/matzehuels/subarch/pkg/poset"
)

// Build phases, as reported to hooks and logs.
const (
	PhaseEnumerate = "enumerate"
	PhaseOrder     = "order"
	PhaseComplete  = "complete"
	PhaseDesirable = "desirable"
)

// ctxCheckInterval is how many combinations are visited between context checks.
const ctxCheckInterval = 4096

// FromGraph builds the order of an explicit device graph.
func FromGraph(ctx context.Context, g *arch.Graph, opts ...Option) (*Order, error) {
	return Build(ctx, g, opts...)
}

// FromCouplingMap builds the order of the device described by a coupling
// map. The device has max index + 1 qubits; both directions of a coupling
// may be listed.
func FromCouplingMap(ctx context.Context, pairs []arch.Pair, opts ...Option) (*Order, error) {
	g, err := arch.FromCouplingMap(pairs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid coupling map")
	}
	return Build(ctx, g, opts...)
}

// Build computes the subarchitecture order of g. The graph is cloned, so the
// caller may keep modifying its copy.
//
// Build fails with ErrCodeInternal for an empty graph and with
// ErrCodeInvalidDevice for a disconnected one. Cancelling ctx aborts the
// build with ErrCodeTimeout.
func Build(ctx context.Context, g *arch.Graph, opts ...Option) (*Order, error) {
	if g == nil || g.NodeCount() == 0 {
		return nil, errors.Wrap(errors.ErrCodeInternal, arch.ErrEmptyGraph, "cannot build order")
	}
	if !g.Connected() {
		return nil, errors.New(errors.ErrCodeInvalidDevice, "device coupling graph is disconnected")
	}

	b := &builder{
		cfg: newConfig(opts),
		o:   &Order{arch: g.Clone()},
	}
	start := time.Now()

	phases := []struct {
		name string
		run  func(context.Context) (int, error)
	}{
		{PhaseEnumerate, b.enumerate},
		{PhaseOrder, b.buildOrder},
		{PhaseComplete, b.complete},
		{PhaseDesirable, b.computeDesirable},
	}
	for _, p := range phases {
		if err := b.phase(ctx, p.name, p.run); err != nil {
			return nil, err
		}
	}

	b.o.finish()
	stats := b.o.Stats()
	b.cfg.logger.Info("built subarchitecture order",
		"qubits", stats.Qubits,
		"classes", stats.TotalClasses,
		"edges", stats.OrderEdges,
		"duration", time.Since(start).Round(time.Millisecond))
	return b.o, nil
}

type builder struct {
	cfg   config
	o     *Order
	dists [][][][]int // dists[n][i] is the distance matrix of sgs[n][i], filled lazily
}

func (b *builder) phase(ctx context.Context, name string, run func(context.Context) (int, error)) error {
	n := b.o.Size()
	b.cfg.hooks.OnPhaseStart(ctx, name, n)
	b.cfg.logger.Debug("phase started", "phase", name, "qubits", n)

	start := time.Now()
	count, err := run(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil && ctx.Err() != nil {
		err = errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "build aborted during %s", name)
	}
	elapsed := time.Since(start)

	b.cfg.hooks.OnPhaseComplete(ctx, name, count, elapsed, err)
	if err != nil {
		return err
	}
	b.cfg.logger.Debug("phase complete", "phase", name, "count", count, "duration", elapsed.Round(time.Microsecond))
	return nil
}

// =============================================================================
// Enumeration
// =============================================================================

// enumerate fills sgs[n] with one representative per isomorphism class of
// connected induced subgraphs of size n. Node subsets are visited in
// lexicographic order; the first subset of each class becomes its
// representative.
func (b *builder) enumerate(ctx context.Context) (int, error) {
	g := b.o.arch
	n := g.NodeCount()
	sgs := make([][]*arch.Graph, n+1)
	total := 0
	visited := 0

	for k := 1; k <= n; k++ {
		buckets := make(map[arch.Fingerprint][]int)
		err := combinations(n, k, func(nodes []int) error {
			visited++
			if visited%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if !g.SubsetConnected(nodes) {
				return nil
			}
			sg := g.Induced(nodes)
			fp := sg.Fingerprint()
			for _, idx := range buckets[fp] {
				if b.cfg.matcher.Isomorphic(sgs[k][idx], sg) {
					return nil
				}
			}
			buckets[fp] = append(buckets[fp], len(sgs[k]))
			sgs[k] = append(sgs[k], sg)
			return nil
		})
		if err != nil {
			return total, err
		}
		total += len(sgs[k])
		b.cfg.logger.Debug("enumerated size", "size", k, "classes", len(sgs[k]))
	}

	if len(sgs[1]) != 1 {
		return total, errors.New(errors.ErrCodeInternal, "size-1 level holds %d classes, want 1", len(sgs[1]))
	}
	if len(sgs[n]) != 1 {
		return total, errors.New(errors.ErrCodeInternal, "top level holds %d classes, want 1", len(sgs[n]))
	}
	b.o.sgs = sgs
	b.dists = make([][][][]int, n+1)
	for k := range sgs {
		b.dists[k] = make([][][]int, len(sgs[k]))
	}
	return total, nil
}

// combinations calls fn with every k-subset of 0..n-1 in lexicographic
// order. The slice passed to fn is reused between calls.
func combinations(n, k int, fn func([]int) error) error {
	if k > n || k <= 0 {
		return nil
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		if err := fn(idx); err != nil {
			return err
		}
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return nil
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// =============================================================================
// Subsumption order
// =============================================================================

// buildOrder relates every class of size n to the classes of size n+1 whose
// representative contains an induced copy of it, keeping the first witness.
func (b *builder) buildOrder(ctx context.Context) (int, error) {
	o := b.o
	o.order = make(poset.Relation)
	o.desirable = make(poset.Relation)
	o.isos = make(map[poset.Class]map[poset.Class]arch.Mapping)
	for _, c := range o.AllClasses() {
		o.order.Init(c)
		o.desirable.Init(c)
		o.isos[c] = make(map[poset.Class]arch.Mapping)
	}

	edges := 0
	for n := 1; n < o.Size(); n++ {
		if err := ctx.Err(); err != nil {
			return edges, err
		}
		for i, small := range o.sgs[n] {
			c := poset.Class{Size: n, Index: i}
			for j, large := range o.sgs[n+1] {
				iso, ok := b.cfg.matcher.Embed(small, large)
				if !ok {
					continue
				}
				d := poset.Class{Size: n + 1, Index: j}
				if err := o.order.Add(c, d); err != nil {
					return edges, errors.Wrap(errors.ErrCodeInternal, err, "recording %s -> %s", c, d)
				}
				o.isos[c][d] = iso
				edges++
			}
		}
	}
	return edges, nil
}

// =============================================================================
// Isomorphism completion
// =============================================================================

// complete composes witnesses upward so that every class has a mapping into
// every class above it. Sizes are processed from N-1 down, so the mappings
// of the classes one size up are already complete. When several paths reach
// the same class the first composition, in class order, is kept.
func (b *builder) complete(ctx context.Context) (int, error) {
	o := b.o
	added := 0
	for n := o.Size() - 1; n >= 1; n-- {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		for _, c := range o.Classes(n) {
			for _, p := range o.order[c].Sorted() {
				first := o.isos[c][p]
				for _, q := range sortedTargets(o.isos[p]) {
					if _, ok := o.isos[c][q]; ok {
						continue
					}
					o.isos[c][q] = first.Compose(o.isos[p][q])
					added++
				}
			}
		}
	}
	return added, nil
}

func sortedTargets(m map[poset.Class]arch.Mapping) []poset.Class {
	out := make([]poset.Class, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	return poset.NewSet(out...).Sorted()
}

// =============================================================================
// Desirability
// =============================================================================

// computeDesirable keeps, for each class, the larger classes that shorten at
// least one distance under the stored mapping, reduced to those not directly
// above a smaller kept candidate. Classes with no improvement are desirable
// with respect to themselves; the top class always is.
func (b *builder) computeDesirable(ctx context.Context) (int, error) {
	o := b.o
	top := o.Top()
	o.desirable[top].Add(top)
	count := 1

	for n := o.Size() - 1; n >= 1; n-- {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		for _, c := range o.Classes(n) {
			var cands []poset.Class
			for _, q := range sortedTargets(o.isos[c]) {
				if pathOrderLess(b.distances(c), b.distances(q), o.isos[c][q]) {
					cands = append(cands, q)
				}
			}
			des := paretoReduce(cands, o.order)
			if len(des) == 0 {
				des = []poset.Class{c}
			}
			for _, d := range des {
				o.desirable[c].Add(d)
			}
			count += len(des)
		}
	}
	return count, nil
}

func (b *builder) distances(c poset.Class) [][]int {
	if d := b.dists[c.Size][c.Index]; d != nil {
		return d
	}
	d := b.o.sgs[c.Size][c.Index].DistanceMatrix()
	b.dists[c.Size][c.Index] = d
	return d
}

// paretoReduce drops every candidate that lies directly above a smaller
// candidate. cands must be sorted ascending.
func paretoReduce(cands []poset.Class, order poset.Relation) []poset.Class {
	var out []poset.Class
	for j, c := range cands {
		dominated := false
		for _, d := range cands[:j] {
			if order[d].Has(c) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, c)
		}
	}
	return out
}
