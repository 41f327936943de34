// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ExcerptRunes is the maximum chunk text shown for the selected match.
const ExcerptRunes = 2000

// EvidenceList displays the chunks retrieved for the last answer.
type EvidenceList struct {
	matches  []domain.Match
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewEvidenceList creates a new evidence list component.
func NewEvidenceList(s *styles.Styles) *EvidenceList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &EvidenceList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (e *EvidenceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (e *EvidenceList) Update(msg tea.Msg) (*EvidenceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			e.MoveUp()
		case "down", "j":
			e.MoveDown()
		}
	}
	return e, nil
}

// View renders the matches and the excerpt of the selected one.
func (e *EvidenceList) View() string {
	if len(e.matches) == 0 {
		return e.styles.Muted.Render("No sources retrieved")
	}

	lines := make([]string, 0, len(e.matches)+4)
	lines = append(lines, e.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(e.matches))), "")

	for i := range e.matches {
		lines = append(lines, e.renderMatch(i, &e.matches[i]))
	}

	if m := e.SelectedMatch(); m != nil {
		lines = append(lines, "")
		lines = append(lines, e.renderExcerpt(m.Text)...)
	}

	return strings.Join(lines, "\n")
}

// renderMatch formats one match as "[n] source | chunk N   distance".
func (e *EvidenceList) renderMatch(index int, m *domain.Match) string {
	indicator := "  "
	if index == e.selected {
		indicator = "> "
	}

	label := fmt.Sprintf("[%d] %s", index+1, m.Metadata.Label())
	maxLabelLen := e.width - 16
	if maxLabelLen < 10 {
		maxLabelLen = 10
	}
	label = truncate(label, maxLabelLen)
	distance := fmt.Sprintf("%.4f", m.Distance)

	if index == e.selected {
		return e.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxLabelLen, label, distance))
	}
	return e.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxLabelLen, label)) +
		e.styles.Muted.Render(distance)
}

// renderExcerpt wraps the selected chunk text into the remaining height.
func (e *EvidenceList) renderExcerpt(text string) []string {
	available := e.height - len(e.matches) - 4
	if available < 1 {
		available = 1
	}
	lineWidth := e.width - 4
	if lineWidth < 20 {
		lineWidth = 20
	}

	var out []string
	for _, raw := range strings.Split(Excerpt(text, ExcerptRunes), "\n") {
		for _, line := range wrap(raw, lineWidth) {
			if len(out) == available {
				return out
			}
			out = append(out, e.styles.Muted.Render("    "+line))
		}
	}
	return out
}

// Excerpt returns at most limit runes of text, marking a cut with "...".
func Excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func wrap(line string, width int) []string {
	runes := []rune(line)
	if len(runes) <= width {
		return []string{line}
	}
	out := make([]string, 0, len(runes)/width+1)
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// SetMatches replaces the displayed matches.
func (e *EvidenceList) SetMatches(matches []domain.Match) {
	e.matches = matches
	e.selected = 0
}

// Matches returns the displayed matches.
func (e *EvidenceList) Matches() []domain.Match {
	return e.matches
}

// Selected returns the index of the selected match.
func (e *EvidenceList) Selected() int {
	return e.selected
}

// SelectedMatch returns the selected match, or nil if none.
func (e *EvidenceList) SelectedMatch() *domain.Match {
	if e.selected < 0 || e.selected >= len(e.matches) {
		return nil
	}
	return &e.matches[e.selected]
}

// MoveUp moves selection up.
func (e *EvidenceList) MoveUp() {
	if e.selected > 0 {
		e.selected--
	}
}

// MoveDown moves selection down.
func (e *EvidenceList) MoveDown() {
	if e.selected < len(e.matches)-1 {
		e.selected++
	}
}

// SetDimensions sets the component dimensions.
func (e *EvidenceList) SetDimensions(width, height int) {
	e.width = width
	e.height = height
}

// Count returns the number of matches.
func (e *EvidenceList) Count() int {
	return len(e.matches)
}

// IsEmpty returns whether the list is empty.
func (e *EvidenceList) IsEmpty() bool {
	return len(e.matches) == 0
}
