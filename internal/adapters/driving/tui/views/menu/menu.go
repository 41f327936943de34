// Package menu provides the home screen for the TUI: navigation plus a
// collection overview.
package menu

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Item represents a single menu option.
type Item struct {
	Label string
	View  messages.ViewType
	Quit  bool // If true, selecting this item quits the app
}

// View represents the home view.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService

	items    []Item
	selected int
	stats    *domain.Stats
	statsErr error
	width    int
	height   int
	ready    bool
}

// NewView creates a new home view. documentService may be nil, in which case
// no overview is shown.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:          s,
		documentService: documentService,
		items: []Item{
			{Label: "Chat", View: messages.ViewChat},
			{Label: "Documents", View: messages.ViewDocuments},
			{Label: "Settings", View: messages.ViewSettings},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init loads the collection overview.
func (v *View) Init() tea.Cmd {
	return v.loadStats()
}

func (v *View) loadStats() tea.Cmd {
	if v.documentService == nil {
		return nil
	}
	return func() tea.Msg {
		stats, err := v.documentService.Stats(context.Background())
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case messages.StatsLoaded:
		v.stats = msg.Stats
		v.statsErr = msg.Err
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
			return v, nil

		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
			return v, nil

		case "enter":
			item := v.items[v.selected]
			if item.Quit {
				return v, tea.Quit
			}
			return v, func() tea.Msg {
				return messages.ViewChanged{View: item.View}
			}

		case "r":
			return v, v.loadStats()

		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("docqa"))
	b.WriteString("\n\n")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("Grounded answers from your documents")
	b.WriteString(subtitle)
	b.WriteString("\n\n")

	for i, item := range v.items {
		cursor := "  "
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

		if i == v.selected {
			cursor = "> "
			style = lipgloss.NewStyle().
				Foreground(lipgloss.Color("86")).
				Bold(true)
		}

		b.WriteString(cursor + style.Render(item.Label))
		b.WriteString("\n")
	}

	if overview := v.renderStats(); overview != "" {
		b.WriteString("\n")
		b.WriteString(overview)
	}

	b.WriteString("\n")
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("[j/k] Navigate  [Enter] Select  [r] Refresh  [q] Quit")
	b.WriteString(footer)

	return b.String()
}

// renderStats renders the collection overview.
func (v *View) renderStats() string {
	if v.statsErr != nil {
		return v.styles.Error.Render("Overview unavailable: "+v.statsErr.Error()) + "\n"
	}
	if v.stats == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Collection"))
	b.WriteString("\n")
	b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  Documents: %d   Chunks: %d   Top K: %d",
		v.stats.Documents, v.stats.Chunks, v.stats.TopK)))
	b.WriteString("\n")

	if len(v.stats.Recent) == 0 {
		b.WriteString(v.styles.Muted.Render("  No documents uploaded yet."))
		b.WriteString("\n")
		return b.String()
	}

	for _, name := range v.stats.Recent {
		b.WriteString(v.styles.Muted.Render("  - " + name))
		b.WriteString("\n")
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Stats returns the last loaded overview, or nil.
func (v *View) Stats() *domain.Stats {
	return v.stats
}
