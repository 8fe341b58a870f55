package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/subarch/pkg/arch"
	"github.com/matzehuels/subarch/pkg/errors"
	"github.com/matzehuels/subarch/pkg/pipeline"
	"github.com/matzehuels/subarch/pkg/poset"
)

// queryOpts holds the flags shared by candidates and covering.
type queryOpts struct {
	sourceOpts
	qubits int
	size   int
	json   bool
}

// queryResult is the --json output of a query.
type queryResult struct {
	Device  string        `json:"device"`
	Qubits  int           `json:"qubits"`
	Size    int           `json:"size,omitempty"`
	Classes []classResult `json:"classes"`
}

type classResult struct {
	Class    string      `json:"class"`
	Qubits   []int       `json:"qubits"`
	Coupling []arch.Pair `json:"coupling"`
}

func (c *CLI) candidatesCommand() *cobra.Command {
	var opts queryOpts

	cmd := &cobra.Command{
		Use:   "candidates <device>",
		Short: "List the optimal k-qubit subarchitectures",
		Long: `List the subarchitectures a k-qubit circuit should be mapped to.

A circuit that fits some k-qubit subarchitecture also fits every larger one
above it; the candidates are the smallest subarchitectures that every good
choice for k qubits sits above.`,
		Example: `  subarch candidates ibm_guadalupe_16 -k 5
  subarch candidates --library guadalupe.json -k 8 --json`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDevices,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := opts.deviceArg(args)
			if err != nil {
				return err
			}
			return c.runQuery(cmd.Context(), cmd.OutOrStdout(), ref, &opts, false)
		},
	}
	opts.bind(cmd)
	cmd.Flags().IntVarP(&opts.qubits, "qubits", "k", 0, "number of circuit qubits (required)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("qubits")
	return cmd
}

func (c *CLI) coveringCommand() *cobra.Command {
	var opts queryOpts

	cmd := &cobra.Command{
		Use:   "covering <device>",
		Short: "Find a small set of subarchitectures covering the candidates",
		Long: `Find at most --size subarchitectures such that every desirable k-qubit
candidate sits below one of them. The bound is best effort: when no
reduction is possible the result may be larger.`,
		Example:           `  subarch covering ibm_guadalupe_16 -k 4 --size 3`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDevices,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := opts.deviceArg(args)
			if err != nil {
				return err
			}
			return c.runQuery(cmd.Context(), cmd.OutOrStdout(), ref, &opts, true)
		},
	}
	opts.bind(cmd)
	cmd.Flags().IntVarP(&opts.qubits, "qubits", "k", 0, "number of circuit qubits (required)")
	cmd.Flags().IntVarP(&opts.size, "size", "s", 1, "target number of subarchitectures")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("qubits")
	return cmd
}

func (c *CLI) runQuery(ctx context.Context, w io.Writer, ref string, opts *queryOpts, covering bool) error {
	if opts.qubits <= 0 {
		return errors.New(errors.ErrCodeOutOfRange, "--qubits must be positive, got %d", opts.qubits)
	}
	res, runner, err := c.loadOrder(ctx, ref, &opts.sourceOpts, opts.json)
	if err != nil {
		return err
	}
	defer runner.Close()

	classes, err := query(res, opts, covering)
	if err != nil {
		return err
	}
	graphs := make([]*arch.Graph, len(classes))
	for i, cl := range classes {
		graphs[i], _ = res.Order.Subgraph(cl)
	}

	if opts.json {
		out := queryResult{Device: res.Name, Qubits: opts.qubits, Classes: make([]classResult, len(classes))}
		if covering {
			out.Size = opts.size
		}
		for i, cl := range classes {
			out.Classes[i] = classResult{Class: cl.String(), Qubits: graphs[i].Labels(), Coupling: graphs[i].CouplingMap()}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	title := fmt.Sprintf("Optimal %d-qubit subarchitectures of %s", opts.qubits, res.Name)
	if covering {
		title = fmt.Sprintf("Covering of the %d-qubit candidates of %s (target %d)", opts.qubits, res.Name, opts.size)
	}
	fmt.Fprintln(w, StyleTitle.Render(title))
	printStats(res)
	fmt.Fprintln(w, classTable(classes, graphs))
	if covering && len(classes) > opts.size {
		printWarning("no covering of size %d found; returning %d", opts.size, len(classes))
	}
	return nil
}

func query(res *pipeline.Result, opts *queryOpts, covering bool) ([]poset.Class, error) {
	if covering {
		return res.Order.CoveringClasses(opts.qubits, opts.size)
	}
	return res.Order.OptimalClasses(opts.qubits)
}
