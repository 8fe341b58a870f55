package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/subarch/pkg/device"
)

func (c *CLI) devicesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List the bundled devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printDevices(cmd.OutOrStdout(), device.All(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print devices as JSON")
	return cmd
}

func printDevices(w io.Writer, devices []*device.Device, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	}

	rows := make([][]string, len(devices))
	for i, d := range devices {
		rows[i] = []string{d.Name, d.Vendor, strconv.Itoa(d.Qubits), strconv.Itoa(len(d.Coupling)), d.Description}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Device", "Vendor", "Qubits", "Couplings", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleHighlight
			case col == 2 || col == 3:
				return StyleValue
			}
			return StyleDim
		})
	fmt.Fprintln(w, t.Render())
	return nil
}

func deviceNames() []string {
	return device.Names()
}
