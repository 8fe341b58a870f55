// Package pkg holds the libraries behind subarch.
//
// # Overview
//
// subarch finds good places to run a k-qubit circuit on a larger quantum
// device. It enumerates every connected sub-topology of the device's
// coupling graph up to isomorphism, orders them by embedding, and marks
// larger subarchitectures that strictly shorten qubit distances as
// desirable. The packages are organised in layers:
//
//  1. [arch] - coupling graphs, induced subgraphs and the VF2 matcher
//  2. [poset] - classes and layered relations with their closures
//  3. [subarch] - the subarchitecture order, its queries and library files
//  4. [device] - device files, vendor backend documents and the bundled catalog
//  5. [pipeline] - cached loading and rendering, shared by the CLI and server
//
// Supporting packages: [cache] (file, badger, redis and mongo backends),
// [integrations] (fetching backend documents over HTTP), [render] and
// [render/nodelink] (Graphviz output), [observability] (hooks) and
// [errors] (coded errors).
//
// # Data flow
//
//	device name / TOML file / backend JSON / URL
//	         ↓
//	    [device] package (coupling map → arch.Graph)
//	         ↓
//	    [subarch] package (enumerate → order → complete → desirable)
//	         ↓
//	    OptimalCandidates(k), Covering(k, size), library files, diagrams
//
// # Quick Start
//
//	o, err := subarch.FromDevice(ctx, "ibm_guadalupe_16")
//	if err != nil {
//	    return err
//	}
//	candidates, err := o.OptimalCandidates(5)
package pkg
