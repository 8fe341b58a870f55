// Package poset provides the size-layered partial order that relates
// subarchitecture classes.
//
// # Overview
//
// Every isomorphism class of subarchitectures is identified by a [Class]: its
// size (number of qubits) and its index among the classes of that size. The
// size plays the role of a row in a layered graph, and the direct subsumption
// relation only ever connects consecutive rows: a class of size n is related
// to classes of size n+1 that contain an isomorphic copy of it.
//
// A [Relation] maps each class to the [Set] of classes above it. Relations are
// explicitly initialised with [Relation.Init] so that a lookup of a class that
// was never registered is reported as [ErrUnknownClass] instead of silently
// yielding an empty set.
//
// # Closures
//
// Queries need the transitive and reflexive closures of the direct order and
// its inverse:
//
//	trans := order.TransitiveClosure()   // strictly above, any distance
//	refl  := trans.ReflexiveClosure()    // at or above
//	below := trans.Inverse()             // strictly below
//
// [Relation.TransitiveClosure] resolves the largest classes first, so the
// closure of every class above is already complete when a class is processed.
// This is valid for any relation whose edges point from smaller to larger
// classes, which [Relation.Validate] checks.
//
// # Concurrency
//
// Relations and sets are plain maps and are not safe for concurrent
// modification. Once built they may be read from any number of goroutines.
package poset
