package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/subarch/pkg/errors"
	"github.com/matzehuels/subarch/pkg/pipeline"
)

// sourceOpts selects the order a command works on.
type sourceOpts struct {
	library string // library file; replaces the device argument
	refresh bool   // rebuild even when cached
}

func (o *sourceOpts) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.library, "library", "l", "", "load a library file instead of a device")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "rebuild even when the order is cached")
}

// deviceArg returns the device reference, which may be omitted when a
// library file is given.
func (o *sourceOpts) deviceArg(args []string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case o.library != "":
		return "", nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "a device (name, file or URL) or --library is required")
}

// loadOrder loads the selected order behind a spinner.
func (c *CLI) loadOrder(ctx context.Context, ref string, src *sourceOpts, quiet bool) (*pipeline.Result, *pipeline.Runner, error) {
	label := ref
	if src.library != "" {
		label = src.library
	}
	var spinner *Spinner
	if !quiet {
		spinner = newSpinner(ctx, "Building subarchitecture order for "+label+"...")
		spinner.Start()
	}
	res, runner, err := c.load(ctx, ref, src.library, src.refresh)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return nil, nil, err
	}
	return res, runner, nil
}

// buildOpts holds the flags of the build command.
type buildOpts struct {
	sourceOpts
	output string
	json   bool
}

func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build <device>",
		Short: "Compute a device's subarchitecture order",
		Long: `Compute the subarchitecture order of a device and store it in the cache.

The device is a bundled name (see "subarch devices"), a TOML device file,
a backend configuration JSON file, or an http(s) URL of one. With -o the
order is also written as a library file that later commands accept through
--library.`,
		Example: `  subarch build ibm_guadalupe_16
  subarch build ./devices/my_chip.toml -o my_chip.json`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDevices,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := opts.deviceArg(args)
			if err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), cmd.OutOrStdout(), ref, &opts)
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the order to a library file")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print statistics as JSON")
	return cmd
}

func (c *CLI) runBuild(ctx context.Context, w io.Writer, ref string, opts *buildOpts) error {
	prog := newProgress(loggerFromContext(ctx))
	res, runner, err := c.loadOrder(ctx, ref, &opts.sourceOpts, opts.json)
	if err != nil {
		return err
	}
	defer runner.Close()

	if opts.output != "" {
		if err := writeLibrary(res, opts.output); err != nil {
			return err
		}
	}

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Device   string `json:"device"`
			ArchHash string `json:"arch_hash"`
			Cached   bool   `json:"cached"`
			Stats    any    `json:"stats"`
		}{res.Name, res.ArchHash, res.CacheHit, res.Order.Stats()})
	}

	prog.done("Loaded order for " + res.Name)
	st := res.Order.Stats()
	printSuccess("Subarchitecture order for %s", StyleHighlight.Render(res.Name))
	printStats(res)
	printKeyValue("classes", classCounts(st.Classes))
	printKeyValue("desirable", fmt.Sprint(st.Desirable))
	printKeyValue("hash", res.ArchHash[:12])
	if !res.CacheHit && res.Stats.BuildTime > 0 {
		printKeyValue("build time", res.Stats.BuildTime.String())
	}
	if opts.output != "" {
		printFile(opts.output)
	}
	if ref != "" {
		printNextStep("Next", fmt.Sprintf("%s candidates %s -k %d", appName, ref, max(1, st.Qubits/2)))
	}
	return nil
}

func writeLibrary(res *pipeline.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := res.Order.WriteLibrary(f, res.Name); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
