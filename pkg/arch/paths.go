package arch

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// gonum returns g as a gonum undirected graph with node IDs equal to the
// local vertex indices. Edges carry unit weight.
func (g *Graph) gonum() *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for v := range g.adj {
		ug.AddNode(simple.Node(v))
	}
	for u, nbrs := range g.adj {
		for _, v := range nbrs {
			if u < v {
				ug.SetEdge(ug.NewEdge(simple.Node(u), simple.Node(v)))
			}
		}
	}
	return ug
}

// Components returns the connected components of g. Each component is
// sorted, and components are ordered by their smallest vertex.
func (g *Graph) Components() [][]int {
	cc := topo.ConnectedComponents(g.gonum())
	out := make([][]int, 0, len(cc))
	for _, nodes := range cc {
		out = append(out, nodeIDs(nodes))
	}
	slices.SortFunc(out, func(a, b []int) int { return a[0] - b[0] })
	return out
}

// Connected reports whether g has exactly one connected component.
// The empty graph is not connected.
func (g *Graph) Connected() bool {
	if g.NodeCount() == 0 {
		return false
	}
	return len(topo.ConnectedComponents(g.gonum())) == 1
}

// Distances returns the unweighted shortest-path distance from src to every
// vertex. Unreachable vertices get -1.
func (g *Graph) Distances(src int) []int {
	sp := path.DijkstraFrom(simple.Node(src), g.gonum())
	dist := make([]int, g.NodeCount())
	for v := range dist {
		dist[v] = hops(sp.WeightTo(int64(v)))
	}
	dist[src] = 0
	return dist
}

// DistanceMatrix returns all-pairs unweighted shortest-path distances.
// Unreachable pairs get -1.
func (g *Graph) DistanceMatrix() [][]int {
	n := g.NodeCount()
	all := path.DijkstraAllPaths(g.gonum())
	out := make([][]int, n)
	for u := range out {
		out[u] = make([]int, n)
		for v := range out[u] {
			if u == v {
				continue
			}
			out[u][v] = hops(all.Weight(int64(u), int64(v)))
		}
	}
	return out
}

// SubsetConnected reports whether the subgraph induced by vertices is
// connected, without materialising it. It walks the adjacency matrix
// directly and is meant for enumeration loops that reject most subsets.
// vertices must be distinct and in range.
func (g *Graph) SubsetConnected(vertices []int) bool {
	if len(vertices) == 0 {
		return false
	}
	n := g.NodeCount()
	in := make([]bool, n)
	for _, v := range vertices {
		in[v] = true
	}
	stack := make([]int, 1, len(vertices))
	stack[0] = vertices[0]
	in[vertices[0]] = false
	reached := 1
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		row := g.matrix[v*n : (v+1)*n]
		for _, w := range vertices {
			if in[w] && row[w] {
				in[w] = false
				reached++
				stack = append(stack, w)
			}
		}
	}
	return reached == len(vertices)
}

func hops(w float64) int {
	if math.IsInf(w, 1) {
		return -1
	}
	return int(w)
}

func nodeIDs(nodes []graph.Node) []int {
	ids := make([]int, len(nodes))
	for i, n := range nodes {
		ids[i] = int(n.ID())
	}
	slices.Sort(ids)
	return ids
}
