package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/subarch/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	sourceOpts
	output    string   // output file, or base path for several formats; "-" writes to stdout
	kinds     []string // artifact kinds: "order", "device"
	formats   []string // output formats: "dot", "svg", "pdf", "png"
	qubits    int      // highlight candidates for this width
	class     string   // highlight a specific class on the device
	desirable bool     // draw desirable edges
	detailed  bool     // list qubits in order nodes
	maxSize   int      // only draw classes up to this size
	scale     float64  // PNG scale
}

// renderCommand creates the render command for Graphviz diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var kindsStr, formatsStr string
	opts := renderOpts{scale: 2.0}

	cmd := &cobra.Command{
		Use:   "render <device>",
		Short: "Render the subarchitecture order or a device as a diagram",
		Long: `Render the Hasse diagram of the subarchitecture order (--type order) or the
device coupling graph with a subarchitecture placed on it (--type device).

With -k the optimal k-qubit candidates are highlighted; --class places a
specific class on the device instead.`,
		Example: `  subarch render ibmq_london_5 -k 3
  subarch render ibm_guadalupe_16 -t device -k 5 -f svg,png -o guadalupe
  subarch render rigetti_8 -f dot -o -`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDevices,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := opts.deviceArg(args)
			if err != nil {
				return err
			}
			opts.kinds = splitList(kindsStr, pipeline.KindOrder)
			opts.formats = splitList(formatsStr, pipeline.FormatSVG)
			for _, k := range opts.kinds {
				if err := pipeline.ValidateKind(k); err != nil {
					return err
				}
			}
			for _, f := range opts.formats {
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), ref, &opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single type/format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&kindsStr, "type", "t", "", "diagram type(s): order (default), device (comma-separated)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png (comma-separated)")
	cmd.Flags().IntVarP(&opts.qubits, "qubits", "k", 0, "highlight the optimal candidates for this many qubits")
	cmd.Flags().StringVar(&opts.class, "class", "", "class to place on the device, as size.index")
	cmd.Flags().BoolVar(&opts.desirable, "desirable", false, "draw desirable edges (order)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "list each class's qubits (order)")
	cmd.Flags().IntVar(&opts.maxSize, "max-size", 0, "only draw classes up to this size (order)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG resolution multiplier")

	return cmd
}

// splitList parses a comma-separated flag, falling back to def.
func splitList(s, def string) []string {
	if s == "" {
		return []string{def}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// basePath derives the base output path. Without -o it is the device or
// library name; a known format extension on -o is stripped.
func basePath(output, name string) string {
	if output == "" {
		return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath names the file for one kind/format combination.
func outputPath(base, kind, format string, multiKind bool) string {
	if multiKind {
		return fmt.Sprintf("%s_%s.%s", base, kind, format)
	}
	return base + "." + format
}

func (c *CLI) runRender(ctx context.Context, w io.Writer, ref string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	toStdout := opts.output == "-"
	if toStdout && len(opts.kinds)*len(opts.formats) != 1 {
		return fmt.Errorf("-o - needs exactly one type and one format")
	}

	res, runner, err := c.loadOrder(ctx, ref, &opts.sourceOpts, toStdout)
	if err != nil {
		return err
	}
	defer runner.Close()

	base := basePath(opts.output, res.Name)
	single := len(opts.kinds) == 1 && len(opts.formats) == 1 && opts.output != "" && !toStdout
	for _, kind := range opts.kinds {
		for _, format := range opts.formats {
			data, hit, err := runner.Render(ctx, res, pipeline.RenderOptions{
				Kind:      kind,
				Format:    format,
				Qubits:    opts.qubits,
				Class:     opts.class,
				Desirable: opts.desirable,
				Detailed:  opts.detailed,
				MaxSize:   opts.maxSize,
				Scale:     opts.scale,
			})
			if err != nil {
				return fmt.Errorf("%s/%s: %w", kind, format, err)
			}
			if toStdout {
				_, err := w.Write(data)
				return err
			}

			path := outputPath(base, kind, format, len(opts.kinds) > 1)
			if single {
				path = opts.output
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			logger.Debug("wrote artifact", "path", path, "bytes", len(data), "cached", hit)
			printFile(path)
		}
	}
	return nil
}
