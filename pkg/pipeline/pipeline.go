// Package pipeline loads subarchitecture orders with caching and renders
// them.
//
// The CLI and the HTTP server both go through a [Runner], so a device's
// order is enumerated once per cache and reused by every command and request.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Load(ctx, pipeline.Options{Device: "ibm_guadalupe_16"})
//	if err != nil {
//	    return err
//	}
//	cands, err := res.Order.OptimalCandidates(9)
//
// Render an artifact of a loaded order:
//
//	svg, hit, err := runner.Render(ctx, res, pipeline.RenderOptions{
//	    Kind:   pipeline.KindOrder,
//	    Format: pipeline.FormatSVG,
//	    Qubits: 4,
//	})
package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/subarch/pkg/device"
	"github.com/matzehuels/subarch/pkg/errors"
	"github.com/matzehuels/subarch/pkg/subarch"
)

// =============================================================================
// Options
// =============================================================================

// Options selects the order to load.
type Options struct {
	// Device is a bundled device name, a device file (TOML or backend
	// JSON) or an http(s) URL of a backend JSON document.
	Device string `json:"device,omitempty"`

	// Library is a library file written by [subarch.Order.StoreLibrary].
	// It takes precedence over Device and bypasses the cache.
	Library string `json:"library,omitempty"`

	// Refresh rebuilds the order even when it is cached.
	Refresh bool `json:"refresh,omitempty"`

	// Logger overrides the runner's logger for this call.
	Logger *log.Logger `json:"-"`
}

// Validate checks that exactly one source is given.
func (o Options) Validate() error {
	switch {
	case o.Device == "" && o.Library == "":
		return errors.New(errors.ErrCodeInvalidInput, "a device or a library is required")
	case o.Library != "":
		return errors.ValidatePath(o.Library)
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result is a loaded order with provenance.
type Result struct {
	// Order is the subarchitecture order, ready for queries.
	Order *subarch.Order

	// Device is the resolved device; nil when loaded from a library file.
	Device *device.Device

	// Name is the device name, or the library file name.
	Name string

	// ArchHash is the content hash of the device's canonical coupling map.
	ArchHash string

	// CacheHit reports whether the order came from the cache.
	CacheHit bool

	// Stats holds timings.
	Stats Stats
}

// Stats contains load timings.
type Stats struct {
	LoadTime  time.Duration
	BuildTime time.Duration
}

// =============================================================================
// Rendering options
// =============================================================================

// Artifact kinds.
const (
	KindOrder  = "order"
	KindDevice = "device"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPDF: true,
	FormatPNG: true,
}

// ValidKinds is the set of supported artifact kinds.
var ValidKinds = map[string]bool{
	KindOrder:  true,
	KindDevice: true,
}

// RenderOptions configures [Runner.Render].
type RenderOptions struct {
	Kind   string `json:"kind"`
	Format string `json:"format"`

	// Qubits highlights candidates for this width (order) or places the
	// first optimal candidate on the chip (device).
	Qubits int `json:"qubits,omitempty"`

	// Class highlights a specific class on the device, as "size.index".
	// It takes precedence over Qubits for device artifacts.
	Class string `json:"class,omitempty"`

	// Desirable draws desirable edges in order diagrams.
	Desirable bool `json:"desirable,omitempty"`

	// Detailed lists each representative's qubits in order diagrams.
	Detailed bool `json:"detailed,omitempty"`

	// MaxSize limits order diagrams to small classes.
	MaxSize int `json:"max_size,omitempty"`

	// Scale is the PNG resolution multiplier.
	Scale float64 `json:"scale,omitempty"`
}

// SetDefaults fills empty fields.
func (o *RenderOptions) SetDefaults() {
	if o.Kind == "" {
		o.Kind = KindOrder
	}
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.Scale == 0 {
		o.Scale = 2.0
	}
}

// Validate checks kind and format.
func (o RenderOptions) Validate() error {
	if err := ValidateKind(o.Kind); err != nil {
		return err
	}
	return ValidateFormat(o.Format)
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: dot, svg, pdf, png)", format)
	}
	return nil
}

// ValidateKind checks that an artifact kind is supported.
func ValidateKind(kind string) error {
	if !ValidKinds[kind] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid kind: %q (must be one of: order, device)", kind)
	}
	return nil
}

func (o RenderOptions) String() string {
	return fmt.Sprintf("%s/%s", o.Kind, o.Format)
}
