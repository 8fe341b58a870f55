package arch

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrEmptyGraph is returned when a graph would have zero vertices.
	ErrEmptyGraph = errors.New("graph has no vertices")

	// ErrVertexOutOfRange is returned by [Graph.AddEdge] when an endpoint
	// is not a vertex of the graph.
	ErrVertexOutOfRange = errors.New("vertex out of range")

	// ErrNegativeQubit is returned by [FromCouplingMap] for negative indices.
	ErrNegativeQubit = errors.New("negative qubit index")

	// ErrDuplicateLabel is returned by [FromEdges] when two vertices share
	// a physical-qubit label.
	ErrDuplicateLabel = errors.New("duplicate qubit label")
)

// Pair is one coupling-map entry: two physical qubits that can interact.
// Direction is irrelevant; (a, b) and (b, a) describe the same coupling.
type Pair [2]int

// Edge is an undirected edge between local vertices with U < V.
type Edge struct {
	U int `json:"u" bson:"u"`
	V int `json:"v" bson:"v"`
}

// Graph is a simple undirected graph on vertices 0..n-1.
//
// The zero value is an empty graph. Use [New], [FromCouplingMap] or
// [FromEdges] to create a usable instance.
type Graph struct {
	adj    [][]int // sorted neighbour lists
	matrix []bool  // n*n adjacency matrix
	labels []int   // physical qubit of each vertex
	edges  int
}

// New creates a graph with n isolated vertices labelled 0..n-1.
func New(n int) *Graph {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i
	}
	return newLabeled(labels)
}

func newLabeled(labels []int) *Graph {
	n := len(labels)
	return &Graph{
		adj:    make([][]int, n),
		matrix: make([]bool, n*n),
		labels: labels,
	}
}

// FromCouplingMap builds the device graph described by a coupling map.
// The vertex count is one plus the largest qubit index; qubits that never
// appear are isolated vertices. Self loops add their qubit but no edge.
// Returns ErrEmptyGraph for an empty map and ErrNegativeQubit for
// negative indices.
func FromCouplingMap(pairs []Pair) (*Graph, error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyGraph
	}
	maxQubit := -1
	for _, p := range pairs {
		if p[0] < 0 || p[1] < 0 {
			return nil, fmt.Errorf("%w: (%d, %d)", ErrNegativeQubit, p[0], p[1])
		}
		maxQubit = max(maxQubit, p[0], p[1])
	}

	g := New(maxQubit + 1)
	for _, p := range pairs {
		if p[0] == p[1] {
			continue
		}
		if err := g.AddEdge(p[0], p[1]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// FromEdges rebuilds a graph from its labels and local edges, as produced by
// [Graph.Labels] and [Graph.Edges]. It is the inverse used when restoring
// stored libraries.
func FromEdges(labels []int, edges []Edge) (*Graph, error) {
	if len(labels) == 0 {
		return nil, ErrEmptyGraph
	}
	seen := make(map[int]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateLabel, l)
		}
		seen[l] = true
	}
	g := newLabeled(slices.Clone(labels))
	for _, e := range edges {
		if err := g.AddEdge(e.U, e.V); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddEdge adds the undirected edge {u, v}. Adding an existing edge is a no-op.
// Returns ErrVertexOutOfRange if either endpoint is not a vertex and an
// error for self loops, which a simple graph cannot hold.
func (g *Graph) AddEdge(u, v int) error {
	n := g.NodeCount()
	if u < 0 || u >= n || v < 0 || v >= n {
		return fmt.Errorf("%w: {%d, %d} in graph of %d vertices", ErrVertexOutOfRange, u, v, n)
	}
	if u == v {
		return fmt.Errorf("self loop on vertex %d", u)
	}
	if g.matrix[u*n+v] {
		return nil
	}
	g.matrix[u*n+v] = true
	g.matrix[v*n+u] = true
	g.adj[u] = insertSorted(g.adj[u], v)
	g.adj[v] = insertSorted(g.adj[v], u)
	g.edges++
	return nil
}

func insertSorted(s []int, x int) []int {
	i, _ := slices.BinarySearch(s, x)
	return slices.Insert(s, i, x)
}

// NodeCount returns the number of vertices.
func (g *Graph) NodeCount() int { return len(g.labels) }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int { return g.edges }

// HasEdge reports whether u and v are adjacent. Out-of-range vertices are
// never adjacent.
func (g *Graph) HasEdge(u, v int) bool {
	n := g.NodeCount()
	if u < 0 || u >= n || v < 0 || v >= n {
		return false
	}
	return g.matrix[u*n+v]
}

// Neighbors returns the sorted neighbours of v. The slice must not be modified.
func (g *Graph) Neighbors(v int) []int { return g.adj[v] }

// Degree returns the number of neighbours of v.
func (g *Graph) Degree(v int) int { return len(g.adj[v]) }

// Label returns the physical qubit that vertex v stands for.
func (g *Graph) Label(v int) int { return g.labels[v] }

// Labels returns a copy of the physical-qubit labels indexed by vertex.
func (g *Graph) Labels() []int { return slices.Clone(g.labels) }

// Edges returns all edges with U < V, sorted lexicographically.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for u, nbrs := range g.adj {
		for _, v := range nbrs {
			if u < v {
				out = append(out, Edge{U: u, V: v})
			}
		}
	}
	return out
}

// CouplingMap returns the edges translated to physical-qubit labels.
func (g *Graph) CouplingMap() []Pair {
	edges := g.Edges()
	out := make([]Pair, len(edges))
	for i, e := range edges {
		out[i] = Pair{g.labels[e.U], g.labels[e.V]}
	}
	return out
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		adj:    make([][]int, len(g.adj)),
		matrix: slices.Clone(g.matrix),
		labels: slices.Clone(g.labels),
		edges:  g.edges,
	}
	for i, nbrs := range g.adj {
		c.adj[i] = slices.Clone(nbrs)
	}
	return c
}

// Induced returns the subgraph induced by the given vertices. Vertex i of the
// result corresponds to vertices[i] of g and keeps its physical-qubit label.
// Duplicate or out-of-range vertices cause a panic, as they indicate a bug in
// the caller's enumeration.
func (g *Graph) Induced(vertices []int) *Graph {
	labels := make([]int, len(vertices))
	pos := make(map[int]int, len(vertices))
	for i, v := range vertices {
		if _, dup := pos[v]; dup {
			panic(fmt.Sprintf("arch: duplicate vertex %d in induced subgraph", v))
		}
		pos[v] = i
		labels[i] = g.labels[v]
	}

	sub := newLabeled(labels)
	for i, v := range vertices {
		for _, w := range g.adj[v] {
			if j, ok := pos[w]; ok && i < j {
				_ = sub.AddEdge(i, j)
			}
		}
	}
	return sub
}

// Fingerprint is an isomorphism invariant: isomorphic graphs always have equal
// fingerprints, so unequal fingerprints rule isomorphism out cheaply.
type Fingerprint struct {
	Nodes   int
	Edges   int
	Degrees string // sorted degree sequence
}

// Fingerprint computes the invariant of g.
func (g *Graph) Fingerprint() Fingerprint {
	degrees := make([]int, g.NodeCount())
	for v := range degrees {
		degrees[v] = g.Degree(v)
	}
	slices.Sort(degrees)
	var b strings.Builder
	for i, d := range degrees {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(d))
	}
	return Fingerprint{Nodes: g.NodeCount(), Edges: g.edges, Degrees: b.String()}
}

// Equal reports whether g and h have identical labels and edges.
// This is structural identity, not isomorphism.
func (g *Graph) Equal(h *Graph) bool {
	return slices.Equal(g.labels, h.labels) && slices.Equal(g.matrix, h.matrix)
}

// String renders the graph as its physical-qubit coupling map,
// e.g. "{0 1 2: 0-1 1-2}".
func (g *Graph) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, l := range g.labels {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(l))
	}
	b.WriteByte(':')
	for _, p := range g.CouplingMap() {
		fmt.Fprintf(&b, " %d-%d", p[0], p[1])
	}
	b.WriteByte('}')
	return b.String()
}
