// Package render turns subarchitecture orders and devices into pictures.
//
// The [nodelink] subpackage produces Graphviz DOT and SVG for two views:
// the Hasse diagram of a subsumption order, and a device coupling graph with
// a chosen subarchitecture highlighted. [ToPDF] and [ToPNG] convert any SVG
// with the external rsvg-convert tool.
//
//	dot := nodelink.OrderDOT(order, nodelink.OrderOptions{Qubits: 4})
//	svg, err := nodelink.RenderSVG(dot)
//	png, err := render.ToPNG(svg, 2.0)
//
// [nodelink]: github.com/matzehuels/subarch/pkg/render/nodelink
package render
