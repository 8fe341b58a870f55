// Package arch provides the undirected coupling graph used to describe
// quantum hardware and the graph algorithms the subarchitecture order needs.
//
// # Overview
//
// A [Graph] is a simple undirected graph on local vertices 0..n-1. Every
// vertex carries the physical-qubit label it represents on the device, so an
// induced subgraph extracted with [Graph.Induced] is relabelled to 0..k-1 for
// fast array indexing while still knowing which qubits it came from.
//
// # Building Graphs
//
// Build a graph from a coupling map, a list of qubit pairs between which a
// two-qubit gate can be applied:
//
//	g, err := arch.FromCouplingMap([]arch.Pair{{0, 1}, {1, 2}, {1, 0}})
//
// Both directions of a pair collapse into one undirected edge, and the node
// count is one plus the largest index seen. Graphs can also be built
// incrementally with [New] and [Graph.AddEdge].
//
// Graphs are treated as immutable once handed to other packages. The
// subarchitecture order clones its input before deriving anything from it.
//
// # Algorithms
//
// The package exposes exactly the operations the order builder needs:
//
//   - [Graph.Induced]: induced subgraph extraction
//   - [Graph.Connected] and [Graph.Components]: connectivity (gonum topo)
//   - [Graph.Distances] and [Graph.DistanceMatrix]: unweighted shortest paths (gonum path)
//   - [Graph.SubsetConnected]: allocation-light connectivity of a vertex subset,
//     used by the enumeration loop before an induced subgraph is built
//   - [Matcher]: full-graph isomorphism and induced-subgraph embedding
//
// The default [Matcher] returned by [VF2] is a VF2-style backtracking search
// that grows the mapping along a BFS order of the pattern graph, so every new
// vertex is only tried against neighbours of an already mapped image.
// Alternative implementations can be plugged into the order builder without
// touching the rest of the pipeline.
//
// # Concurrency
//
// Read-only methods are safe for concurrent use. [Graph.AddEdge] is not and
// must only be called while building a graph.
package arch
