// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateAnswered State = "answered"
	StateUnknown  State = "unknown"
	StateError    State = "error"
	StateEvidence State = "evidence"
)

// sessionIDLen is how much of the session ID is shown.
const sessionIDLen = 8

// Bar displays application status and keybinding hints.
type Bar struct {
	styles        *styles.Styles
	keymap        *keymap.KeyMap
	state         State
	message       string
	evidenceCount int
	sessionID     string
	width         int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is mostly passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	padding := s.width - leftLen - rightLen
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the left side of the status bar.
func (s *Bar) renderLeft() string {
	var left string
	switch s.state {
	case StateThinking:
		left = s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			left = s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		} else {
			left = s.styles.Error.Render("Error")
		}
	case StateAnswered, StateEvidence:
		left = s.styles.Success.Render(fmt.Sprintf("Answered from %d sources", s.evidenceCount))
	case StateUnknown:
		if s.message != "" {
			left = s.styles.Warning.Render(fmt.Sprintf("Unknown (%s)", s.message))
		} else {
			left = s.styles.Warning.Render("Unknown")
		}
	case StateReady:
		if s.message != "" {
			left = s.styles.Normal.Render(s.message)
		} else {
			left = s.styles.Muted.Render("Ready")
		}
	default:
		left = s.styles.Muted.Render("Ready")
	}

	if s.sessionID != "" {
		id := s.sessionID
		if len(id) > sessionIDLen {
			id = id[:sessionIDLen]
		}
		left += s.styles.Muted.Render("  session " + id)
	}
	return left
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding

	if s.state == StateEvidence {
		bindings = s.keymap.EvidenceHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetEvidenceCount sets the number of retrieved chunks behind the last answer.
func (s *Bar) SetEvidenceCount(count int) {
	s.evidenceCount = count
}

// EvidenceCount returns the evidence count.
func (s *Bar) EvidenceCount() int {
	return s.evidenceCount
}

// SetSessionID sets the conversation session shown on the left.
func (s *Bar) SetSessionID(id string) {
	s.sessionID = id
}

// SessionID returns the session ID.
func (s *Bar) SessionID() string {
	return s.sessionID
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state. The session ID is kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.evidenceCount = 0
}
