package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/osintlab/osint-platform/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the live dashboard",
	Long:  "Renders the threat dashboard in the terminal, refreshing every 30 seconds.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := requireSession(cmd)
		if err != nil {
			return err
		}

		program := tea.NewProgram(tui.NewModel(c), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("dashboard terminated: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
