// Package nodelink renders subarchitecture orders and device coupling graphs
// as node-link diagrams with Graphviz.
//
// # Order diagrams
//
// [OrderDOT] draws the Hasse diagram of the subsumption order: one rank per
// size, smallest at the top, an arrow from each class to the classes that
// directly contain it. With [OrderOptions.Qubits] set, the desirable
// candidates for that width are filled and the optimal classes outlined.
//
// # Device diagrams
//
// [DeviceDOT] draws the coupling graph of a device with the qubits of one
// subarchitecture filled, as when showing where a candidate sits on the chip.
// Device diagrams use the neato layout engine.
//
// # Rendering
//
//	dot := nodelink.DeviceDOT(g, nodelink.DeviceOptions{Highlight: qubits})
//	svg, err := nodelink.RenderSVG(dot)
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG go through [render.ToPDF] and [render.ToPNG].
package nodelink
