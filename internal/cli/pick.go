package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/subarch/pkg/device"
)

// =============================================================================
// DeviceListModel - Interactive device selection
// =============================================================================

// DeviceListModel is the bubbletea model for interactive device selection.
type DeviceListModel struct {
	Devices  []*device.Device
	Cursor   int
	Selected *device.Device
	Height   int
	Offset   int
}

// NewDeviceListModel creates a device list model.
func NewDeviceListModel(devices []*device.Device) DeviceListModel {
	return DeviceListModel{Devices: devices, Height: 15}
}

func (m DeviceListModel) Init() tea.Cmd {
	return nil
}

func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Devices)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Devices) > 0 {
				m.Selected = m.Devices[m.Cursor]
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m DeviceListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Device"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Devices))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		d := m.Devices[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, d.Name, d.Vendor, strconv.Itoa(d.Qubits)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Device", "Vendor", "Qubits").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Devices))))
	return b.String()
}

// =============================================================================
// pick command
// =============================================================================

func (c *CLI) pickCommand() *cobra.Command {
	var qubits int

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a bundled device interactively and build its order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := pickDevice()
			if err != nil || d == nil {
				return err
			}
			if qubits > 0 {
				return c.runQuery(cmd.Context(), cmd.OutOrStdout(), d.Name, &queryOpts{qubits: qubits}, false)
			}
			return c.runBuild(cmd.Context(), cmd.OutOrStdout(), d.Name, &buildOpts{})
		},
	}
	cmd.Flags().IntVarP(&qubits, "qubits", "k", 0, "list optimal candidates for this many qubits after picking")
	return cmd
}

// pickDevice runs the picker. It returns nil when the user quits.
func pickDevice() (*device.Device, error) {
	p := tea.NewProgram(NewDeviceListModel(device.All()), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(DeviceListModel)
	if !ok || m.Selected == nil {
		printInfo("No device selected")
		return nil, nil
	}
	return m.Selected, nil
}
