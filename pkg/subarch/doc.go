// Package subarch computes which connected subsets of a quantum device's
// qubits are best suited to host circuits of a given width.
//
// # Overview
//
// A device with N qubits has exponentially many connected subsets, most of
// them isomorphic duplicates or strictly worse connected than another subset
// of the same shape. An [Order] is computed once per device and captures:
//
//   - the isomorphism classes of connected induced subgraphs, by size
//   - the subsumption order: class (n,i) sits below (n+1,j) when the larger
//     representative contains an induced copy of the smaller one
//   - one witnessing vertex mapping for every pair in the transitive order
//   - the desirable supersets of each class: the Pareto-minimal larger
//     classes that shorten at least one pairwise distance under the mapping
//
// # Construction
//
// [Build] runs the four phases in sequence (enumerate, order, complete,
// desirable). Convenience constructors cover the usual inputs:
//
//	o, err := subarch.FromCouplingMap(ctx, []arch.Pair{{0, 1}, {1, 2}})
//	o, err := subarch.FromDevice(ctx, "ibm_guadalupe_16")
//	o, err := subarch.FromLibrary("guadalupe.json")
//
// Enumeration is combinatorial in N and only practical up to a few tens of
// qubits. The context passed to [Build] is checked while enumerating so the
// caller can bound the runtime.
//
// # Queries
//
// [Order.OptimalCandidates] returns the minimal classes that sit at or above
// every desirable candidate for k qubits. [Order.Covering] returns a set of
// at most size classes (best effort) such that every candidate is below one of
// them. Both are pure reads of precomputed closures.
//
// # Persistence
//
// [Order.StoreLibrary] writes a versioned JSON [Library] holding the device,
// the subgraph table, the order, the isomorphisms and the desirable relation.
// [FromLibrary] restores it exactly and validates it before returning.
//
// # Concurrency
//
// An Order is immutable once returned and safe for concurrent queries.
package subarch
