package arch

// Mapping is a vertex bijection from a smaller graph into a larger one:
// vertex v of the source is sent to vertex m[v] of the target.
type Mapping []int

// Compose returns the mapping that applies m first and then next,
// i.e. v -> next[m[v]].
func (m Mapping) Compose(next Mapping) Mapping {
	out := make(Mapping, len(m))
	for v, w := range m {
		out[v] = next[w]
	}
	return out
}

// Clone returns a copy of m.
func (m Mapping) Clone() Mapping {
	return append(Mapping(nil), m...)
}

// Matcher answers isomorphism questions for the order builder.
type Matcher interface {
	// Isomorphic reports whether g and h are isomorphic.
	Isomorphic(g, h *Graph) bool

	// Embed searches for an induced copy of small inside large and returns
	// the first witness found. The witness maps small's vertices to large's:
	// adjacency and non-adjacency are both preserved.
	Embed(small, large *Graph) (Mapping, bool)
}

// VF2 returns the default backtracking matcher.
func VF2() Matcher { return vf2{} }

type vf2 struct{}

func (vf2) Isomorphic(g, h *Graph) bool {
	if g.NodeCount() != h.NodeCount() || g.EdgeCount() != h.EdgeCount() {
		return false
	}
	if g.Fingerprint() != h.Fingerprint() {
		return false
	}
	_, ok := newMatchState(g, h, true).run()
	return ok
}

func (vf2) Embed(small, large *Graph) (Mapping, bool) {
	if small.NodeCount() > large.NodeCount() || small.EdgeCount() > large.EdgeCount() {
		return nil, false
	}
	return newMatchState(small, large, false).run()
}

// matchState grows a partial mapping from pattern vertices to target vertices
// following a BFS order of the pattern.
type matchState struct {
	pattern, target *Graph
	exact           bool

	order  []int // pattern vertices in matching order
	parent []int // already-ordered neighbour of order[i], or -1
	core   []int // pattern -> target, -1 when unmapped
	used   []bool
}

func newMatchState(pattern, target *Graph, exact bool) *matchState {
	s := &matchState{
		pattern: pattern,
		target:  target,
		exact:   exact,
		core:    make([]int, pattern.NodeCount()),
		used:    make([]bool, target.NodeCount()),
	}
	for i := range s.core {
		s.core[i] = -1
	}
	s.order, s.parent = bfsOrder(pattern)
	return s
}

// bfsOrder lists the vertices of g component by component, starting each
// component at its highest-degree vertex, and records for every vertex a
// neighbour that precedes it.
func bfsOrder(g *Graph) (order, parent []int) {
	n := g.NodeCount()
	seen := make([]bool, n)
	order = make([]int, 0, n)
	parent = make([]int, 0, n)

	for len(order) < n {
		start := -1
		for v := range n {
			if !seen[v] && (start < 0 || g.Degree(v) > g.Degree(start)) {
				start = v
			}
		}
		seen[start] = true
		order = append(order, start)
		parent = append(parent, -1)

		for head := len(order) - 1; head < len(order); head++ {
			v := order[head]
			for _, w := range g.Neighbors(v) {
				if !seen[w] {
					seen[w] = true
					order = append(order, w)
					parent = append(parent, v)
				}
			}
		}
	}
	return order, parent
}

func (s *matchState) run() (Mapping, bool) {
	if !s.search(0) {
		return nil, false
	}
	return Mapping(s.core).Clone(), true
}

func (s *matchState) search(depth int) bool {
	if depth == len(s.order) {
		return true
	}
	u := s.order[depth]

	if p := s.parent[depth]; p >= 0 {
		for _, v := range s.target.Neighbors(s.core[p]) {
			if s.try(depth, u, v) {
				return true
			}
		}
		return false
	}
	for v := range s.target.NodeCount() {
		if s.try(depth, u, v) {
			return true
		}
	}
	return false
}

func (s *matchState) try(depth, u, v int) bool {
	if s.used[v] || !s.feasible(depth, u, v) {
		return false
	}
	s.core[u] = v
	s.used[v] = true
	if s.search(depth + 1) {
		return true
	}
	s.core[u] = -1
	s.used[v] = false
	return false
}

// feasible checks that mapping u to v keeps every adjacency and non-adjacency
// with the vertices mapped so far.
func (s *matchState) feasible(depth, u, v int) bool {
	du, dv := s.pattern.Degree(u), s.target.Degree(v)
	if s.exact && du != dv || du > dv {
		return false
	}
	for _, w := range s.order[:depth] {
		if s.pattern.HasEdge(u, w) != s.target.HasEdge(v, s.core[w]) {
			return false
		}
	}
	return true
}
