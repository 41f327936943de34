package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive chat",
	Long: `Launch the interactive terminal chat for docqa.

The conversation lives only in this session. Each answer shows the retrieved
sources with their distances in a side pane.

Controls:
  Enter    - Ask
  Ctrl+N   - New conversation
  Tab      - Switch between the question and the sources
  Ctrl+E   - Show/hide sources
  Esc      - Back / Cancel
  Ctrl+C   - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	s, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}

	ports := tui.NewPorts(s.Answer, s.Document)
	ports.Settings = settingsService

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
