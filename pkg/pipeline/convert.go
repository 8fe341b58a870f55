package pipeline

import "github.com/matzehuels/subarch/pkg/render"

// Conversion hooks, replaced in tests where rsvg-convert is unavailable.
var (
	renderPDF = render.ToPDF
	renderPNG = render.ToPNG
)
