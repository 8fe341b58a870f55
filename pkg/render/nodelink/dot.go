package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/subarch/pkg/arch"
	"github.com/matzehuels/subarch/pkg/poset"
	"github.com/matzehuels/subarch/pkg/render"
	"github.com/matzehuels/subarch/pkg/subarch"
)

const (
	fillCandidate = "#9ecae1"
	fillHighlight = "#fdae6b"
	colorOptimal  = "#e6550d"
)

// OrderOptions configures [OrderDOT].
type OrderOptions struct {
	// Qubits highlights the desirable candidates and optimal classes for
	// circuits of this width. Zero highlights nothing.
	Qubits int

	// Desirable draws dashed edges from each class to its desirable
	// supersets.
	Desirable bool

	// Detailed adds the physical qubits of each representative to its label.
	Detailed bool

	// MaxSize limits the diagram to classes of at most this size. Zero
	// means all sizes.
	MaxSize int
}

// OrderDOT converts the subsumption order of o to Graphviz DOT.
func OrderDOT(o *subarch.Order, opts OrderOptions) string {
	maxSize := o.Size()
	if opts.MaxSize > 0 && opts.MaxSize < maxSize {
		maxSize = opts.MaxSize
	}

	candidates := poset.NewSet()
	optimal := poset.NewSet()
	if opts.Qubits > 0 {
		if cs, err := o.Candidates(opts.Qubits); err == nil {
			candidates = poset.NewSet(cs...)
		}
		if cs, err := o.OptimalClasses(opts.Qubits); err == nil {
			optimal = poset.NewSet(cs...)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")

	for n := 1; n <= maxSize; n++ {
		buf.WriteString("\n  { rank=same;")
		for _, c := range o.Classes(n) {
			fmt.Fprintf(&buf, " %q;", c.String())
		}
		buf.WriteString(" }\n")
		for _, c := range o.Classes(n) {
			g, _ := o.Subgraph(c)
			attrs := []string{fmt.Sprintf("label=%q", classLabel(c, g, opts.Detailed))}
			if candidates.Has(c) {
				attrs = append(attrs, "fillcolor=\""+fillCandidate+"\"")
			}
			if optimal.Has(c) {
				attrs = append(attrs, "color=\""+colorOptimal+"\"", "penwidth=3")
			}
			fmt.Fprintf(&buf, "  %q [%s];\n", c.String(), strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("\n")
	order := o.Order()
	for _, c := range order.Keys() {
		if c.Size >= maxSize {
			continue
		}
		for _, d := range order[c].Sorted() {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.String(), d.String())
		}
	}

	if opts.Desirable {
		for _, c := range o.AllClasses() {
			des, _ := o.Desirable(c)
			for _, d := range des.Sorted() {
				if d == c || d.Size > maxSize {
					continue
				}
				fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=\"%s\", constraint=false];\n", c.String(), d.String(), colorOptimal)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func classLabel(c poset.Class, g *arch.Graph, detailed bool) string {
	if !detailed || g == nil {
		return c.String()
	}
	qubits := make([]string, 0, g.NodeCount())
	for _, q := range g.Labels() {
		qubits = append(qubits, strconv.Itoa(q))
	}
	return c.String() + "\n" + strings.Join(qubits, " ")
}

// DeviceOptions configures [DeviceDOT].
type DeviceOptions struct {
	// Name is drawn as the diagram title.
	Name string

	// Highlight lists physical qubits to fill.
	Highlight []int
}

// DeviceDOT converts a device coupling graph to Graphviz DOT. Vertices are
// labelled with their physical qubit; couplings between highlighted qubits
// are drawn bold.
func DeviceDOT(g *arch.Graph, opts DeviceOptions) string {
	hl := make(map[int]bool, len(opts.Highlight))
	for _, q := range opts.Highlight {
		hl[q] = true
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Name != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Name)
	}
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14, width=0.4, fixedsize=true];\n\n")

	order := g.Labels()
	slices.Sort(order)
	for _, q := range order {
		if hl[q] {
			fmt.Fprintf(&buf, "  q%d [label=\"%d\", fillcolor=\"%s\"];\n", q, q, fillHighlight)
			continue
		}
		fmt.Fprintf(&buf, "  q%d [label=\"%d\"];\n", q, q)
	}

	buf.WriteString("\n")
	for _, p := range g.CouplingMap() {
		a, b := min(p[0], p[1]), max(p[0], p[1])
		if hl[a] && hl[b] {
			fmt.Fprintf(&buf, "  q%d -- q%d [penwidth=3];\n", a, b)
			continue
		}
		fmt.Fprintf(&buf, "  q%d -- q%d;\n", a, b)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container instead of using Graphviz's point dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source to PDF via SVG.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT source to PNG via SVG at the given scale.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
