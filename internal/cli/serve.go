package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/subarch/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve subarchitecture queries over HTTP",
		Long: `Serve the bundled devices over a JSON API:

  GET /devices
  GET /devices/{name}
  GET /devices/{name}/candidates?qubits=k
  GET /devices/{name}/covering?qubits=k&size=s
  GET /devices/{name}/order.dot

Orders are built on first use and kept in memory; the cache flags select
where built orders persist between restarts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = listenAddr()
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()
			return server.New(runner, loggerFromContext(cmd.Context())).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address [$SUBARCH_ADDR] (default "+defaultAddr+")")
	return cmd
}

func listenAddr() string {
	if a := os.Getenv(envAddr); a != "" {
		return a
	}
	return defaultAddr
}
