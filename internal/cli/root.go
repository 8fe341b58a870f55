package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/subarch/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "subarch finds the best subarchitectures of a quantum device",
		Long: `subarch computes the subarchitecture order of a quantum computer's coupling
graph: every connected sub-topology up to isomorphism, which ones embed in
which, and which larger ones shorten qubit distances. From it, it answers
which k-qubit subarchitectures are optimal for a k-qubit circuit and which
small set of them covers every good candidate.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.cacheBackend, "cache", "", "cache backend: file (default), badger, redis, mongo, none [$SUBARCH_CACHE]")
	pf.StringVar(&c.cacheURL, "cache-url", "", "cache location: directory, redis address or mongo URI [$SUBARCH_CACHE_URL]")
	pf.StringVar(&c.cachePrefix, "cache-prefix", "", "namespace for cache keys in a shared backend [$SUBARCH_CACHE_PREFIX]")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.candidatesCommand())
	root.AddCommand(c.coveringCommand())
	root.AddCommand(c.devicesCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
