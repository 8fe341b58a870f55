package subarch

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/subarch/pkg/arch"
	"github.com/matzehuels/subarch/pkg/observability"
	"github.com/matzehuels/subarch/pkg/poset"
)

// Order is the precomputed subarchitecture order of one device.
//
// The zero value is not usable. Orders are created by [Build] or restored by
// [FromLibrary] and never change afterwards.
type Order struct {
	arch      *arch.Graph
	sgs       [][]*arch.Graph // sgs[n][i] is the representative of class (n, i); sgs[0] is empty
	order     poset.Relation  // direct subsumption, size n -> n+1
	isos      map[poset.Class]map[poset.Class]arch.Mapping
	desirable poset.Relation

	// Derived once the tables are complete.
	trans poset.Relation // strictly above
	refl  poset.Relation // at or above
	below poset.Relation // strictly below
}

// Stats summarises the size of an order.
type Stats struct {
	Qubits       int   `json:"qubits"`
	Classes      []int `json:"classes"` // Classes[n] is the number of classes of size n
	TotalClasses int   `json:"total_classes"`
	OrderEdges   int   `json:"order_edges"`
	Isomorphisms int   `json:"isomorphisms"`
	Desirable    int   `json:"desirable"`
}

// Option configures [Build].
type Option func(*config)

type config struct {
	logger  *log.Logger
	matcher arch.Matcher
	hooks   observability.BuildHooks
}

// WithLogger sets the logger that receives per-phase progress.
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMatcher replaces the default VF2 isomorphism matcher.
func WithMatcher(m arch.Matcher) Option {
	return func(c *config) { c.matcher = m }
}

// WithHooks overrides the globally registered build hooks.
func WithHooks(h observability.BuildHooks) Option {
	return func(c *config) { c.hooks = h }
}

func newConfig(opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.matcher == nil {
		c.matcher = arch.VF2()
	}
	if c.hooks == nil {
		c.hooks = observability.Build()
	}
	return c
}

// Arch returns the device graph. It must not be modified.
func (o *Order) Arch() *arch.Graph { return o.arch }

// Size returns the number of qubits N of the device.
func (o *Order) Size() int { return o.arch.NodeCount() }

// Top returns the class of the whole device, (N, 0).
func (o *Order) Top() poset.Class { return poset.Class{Size: o.Size(), Index: 0} }

// Subgraphs returns the class representatives with n qubits, in class-index
// order. Returns nil for sizes outside 1..N.
func (o *Order) Subgraphs(n int) []*arch.Graph {
	if n < 1 || n >= len(o.sgs) {
		return nil
	}
	return o.sgs[n]
}

// Subgraph returns the representative of c, or false if c is not a class.
func (o *Order) Subgraph(c poset.Class) (*arch.Graph, bool) {
	if c.Size < 1 || c.Size >= len(o.sgs) || c.Index < 0 || c.Index >= len(o.sgs[c.Size]) {
		return nil, false
	}
	return o.sgs[c.Size][c.Index], true
}

// Classes returns the classes of size n in index order.
func (o *Order) Classes(n int) []poset.Class {
	sgs := o.Subgraphs(n)
	out := make([]poset.Class, len(sgs))
	for i := range sgs {
		out[i] = poset.Class{Size: n, Index: i}
	}
	return out
}

// AllClasses returns every class, smallest first.
func (o *Order) AllClasses() []poset.Class {
	var out []poset.Class
	for n := 1; n < len(o.sgs); n++ {
		out = append(out, o.Classes(n)...)
	}
	return out
}

// Order returns a copy of the direct subsumption relation.
func (o *Order) Order() poset.Relation { return o.order.Clone() }

// Above returns the classes strictly above c in the transitive order.
func (o *Order) Above(c poset.Class) (poset.Set, error) {
	s, err := o.trans.Get(c)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// Desirable returns the desirable supersets of c. A class that is locally
// optimal is desirable with respect to itself.
func (o *Order) Desirable(c poset.Class) (poset.Set, error) {
	s, err := o.desirable.Get(c)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// Isomorphism returns the witnessing mapping from the representative of
// from into the representative of to, if to is known to subsume from.
func (o *Order) Isomorphism(from, to poset.Class) (arch.Mapping, bool) {
	m, ok := o.isos[from][to]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// Embedding returns the physical qubits of c's representative on the device.
func (o *Order) Embedding(c poset.Class) ([]int, bool) {
	g, ok := o.Subgraph(c)
	if !ok {
		return nil, false
	}
	return g.Labels(), true
}

// Stats reports class and relation counts.
func (o *Order) Stats() Stats {
	s := Stats{
		Qubits:     o.Size(),
		Classes:    make([]int, len(o.sgs)),
		OrderEdges: o.order.EdgeCount(),
		Desirable:  o.desirable.EdgeCount(),
	}
	for n, sgs := range o.sgs {
		s.Classes[n] = len(sgs)
		s.TotalClasses += len(sgs)
	}
	for _, m := range o.isos {
		s.Isomorphisms += len(m)
	}
	return s
}

// finish derives the closures queries read from. It is called once the four
// tables are final, either after building or after loading.
func (o *Order) finish() {
	o.trans = o.order.TransitiveClosure()
	o.refl = o.trans.ReflexiveClosure()
	o.below = o.trans.Inverse()
}

// Validate checks the structural invariants of the order:
//
//   - every representative of size n is connected and has n vertices
//   - representatives of the same size are pairwise non-isomorphic
//   - the top size holds exactly one class
//   - the direct order only connects consecutive sizes
//   - every stored mapping is an induced embedding between related classes
//   - every class has at least one desirable entry
func (o *Order) Validate() error {
	return o.validate(arch.VF2())
}

func (o *Order) validate(m arch.Matcher) error {
	n := o.Size()
	if len(o.sgs) != n+1 {
		return fmt.Errorf("subgraph table has %d sizes, want %d", len(o.sgs), n+1)
	}
	if len(o.sgs[0]) != 0 {
		return fmt.Errorf("size 0 holds %d classes", len(o.sgs[0]))
	}
	if len(o.sgs[n]) != 1 {
		return fmt.Errorf("top size %d holds %d classes, want 1", n, len(o.sgs[n]))
	}
	if err := o.validateSubgraphs(m); err != nil {
		return err
	}

	for _, c := range o.AllClasses() {
		if _, ok := o.order[c]; !ok {
			return fmt.Errorf("order: %w: %s", poset.ErrUnknownClass, c)
		}
		if _, ok := o.desirable[c]; !ok {
			return fmt.Errorf("desirable: %w: %s", poset.ErrUnknownClass, c)
		}
	}
	if len(o.order) != len(o.desirable) {
		return fmt.Errorf("order has %d classes, desirable has %d", len(o.order), len(o.desirable))
	}
	if err := o.order.ValidateLayered(); err != nil {
		return fmt.Errorf("order: %w", err)
	}

	trans := o.order.TransitiveClosure()
	for from, targets := range o.isos {
		for to, iso := range targets {
			if !trans[from].Has(to) {
				return fmt.Errorf("isomorphism %s -> %s not backed by the order", from, to)
			}
			if err := checkEmbedding(o.sgs[from.Size][from.Index], o.sgs[to.Size][to.Index], iso); err != nil {
				return fmt.Errorf("isomorphism %s -> %s: %w", from, to, err)
			}
		}
	}
	for from, targets := range o.order {
		for to := range targets {
			if _, ok := o.isos[from][to]; !ok {
				return fmt.Errorf("order edge %s -> %s has no witness", from, to)
			}
		}
	}

	for c, des := range o.desirable {
		if des.Len() == 0 {
			return fmt.Errorf("class %s has no desirable entry", c)
		}
		for d := range des {
			if d == c {
				continue
			}
			if _, ok := o.isos[c][d]; !ok {
				return fmt.Errorf("desirable %s -> %s has no witness", c, d)
			}
		}
	}
	if top := o.desirable[o.Top()]; top.Len() != 1 || !top.Has(o.Top()) {
		return fmt.Errorf("top class must be desirable only w.r.t. itself")
	}
	return nil
}

func (o *Order) validateSubgraphs(m arch.Matcher) error {
	for n := 1; n < len(o.sgs); n++ {
		buckets := make(map[arch.Fingerprint][]*arch.Graph)
		for i, g := range o.sgs[n] {
			if g.NodeCount() != n {
				return fmt.Errorf("class %d.%d has %d vertices", n, i, g.NodeCount())
			}
			if !g.Connected() {
				return fmt.Errorf("class %d.%d is disconnected", n, i)
			}
			fp := g.Fingerprint()
			for _, other := range buckets[fp] {
				if m.Isomorphic(g, other) {
					return fmt.Errorf("class %d.%d duplicates an earlier class", n, i)
				}
			}
			buckets[fp] = append(buckets[fp], g)
		}
	}
	return nil
}

// checkEmbedding verifies that iso maps small injectively into large while
// preserving adjacency and non-adjacency.
func checkEmbedding(small, large *arch.Graph, iso arch.Mapping) error {
	if len(iso) != small.NodeCount() {
		return fmt.Errorf("mapping has %d entries for %d vertices", len(iso), small.NodeCount())
	}
	seen := make([]bool, large.NodeCount())
	for v, w := range iso {
		if w < 0 || w >= large.NodeCount() || seen[w] {
			return fmt.Errorf("mapping is not injective at vertex %d", v)
		}
		seen[w] = true
		for u := range v {
			if small.HasEdge(u, v) != large.HasEdge(iso[u], w) {
				return fmt.Errorf("mapping breaks adjacency of (%d, %d)", u, v)
			}
		}
	}
	return nil
}
