// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// View represents the chat view with transcript, question input, evidence pane, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	evidence  *list.EvidenceList
	statusbar *status.Bar

	answerService driving.AnswerService
	ctx           context.Context
	conv          *domain.ConversationState

	width        int
	height       int
	ready        bool
	err          error
	focusInput   bool // true = typing a question, false = navigating the evidence pane
	showEvidence bool
	pending      string // question awaiting an answer
	lastRecord   *domain.AnswerRecord
}

// NewView creates a new chat view with a fresh conversation.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerService driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		evidence:      list.NewEvidenceList(s),
		statusbar:     status.NewBar(s, km),
		answerService: answerService,
		ctx:           context.Background(),
		conv:          domain.NewConversationState(uuid.NewString()),
		width:         80,
		height:        24,
		focusInput:    true,
		showEvidence:  true,
	}
	v.statusbar.SetSessionID(v.conv.ID())
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(keyStr, v.keymap.NewConversation):
		return v, v.NewConversation()
	case keymap.Matches(keyStr, v.keymap.ToggleEvidence):
		v.showEvidence = !v.showEvidence
		if !v.showEvidence {
			v.focusQuestion()
		}
		return v, nil
	case keymap.Matches(keyStr, v.keymap.ToggleFocus):
		v.toggleFocus()
		return v, nil
	}

	if v.focusInput {
		if keymap.Matches(keyStr, v.keymap.Ask) {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	v.evidence, _ = v.evidence.Update(msg)
	return v, nil
}

// toggleFocus moves focus between the question input and the evidence pane.
func (v *View) toggleFocus() {
	if v.focusInput {
		if v.evidence.IsEmpty() || !v.showEvidence {
			return
		}
		v.focusInput = false
		v.input.Blur()
		v.statusbar.SetState(status.StateEvidence)
		return
	}
	v.focusQuestion()
}

func (v *View) focusQuestion() {
	v.focusInput = true
	v.input.Focus()
	if v.statusbar.State() == status.StateEvidence {
		v.statusbar.SetState(status.StateAnswered)
	}
}

// submit sends the typed question to the answer service.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.pending != "" {
		return nil
	}

	v.pending = question
	v.err = nil
	v.input.Reset()
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")

	return v.performAsk(v.conv, question)
}

// performAsk asks the question within conv and reports the record.
func (v *View) performAsk(conv *domain.ConversationState, question string) tea.Cmd {
	sessionID := conv.ID()
	return func() tea.Msg {
		if v.answerService == nil {
			return messages.AnswerReceived{SessionID: sessionID, Question: question, Err: ErrNoAnswerService}
		}
		record, err := v.answerService.Answer(v.ctx, conv, question)
		return messages.AnswerReceived{SessionID: sessionID, Question: question, Record: record, Err: err}
	}
}

// handleAnswer applies an answer to the view. Answers for a previous session are dropped.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if msg.SessionID != v.conv.ID() {
		return
	}
	v.pending = ""

	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		// conversation is untouched on error; give the question back for a retry
		v.input.SetValue(msg.Question)
		return
	}

	v.err = nil
	v.lastRecord = msg.Record
	v.evidence.SetMatches(msg.Record.Evidence)
	v.statusbar.SetEvidenceCount(len(msg.Record.Evidence))
	if msg.Record.State == domain.AnswerAnswered {
		v.statusbar.SetState(status.StateAnswered)
		v.statusbar.SetMessage("")
	} else {
		v.statusbar.SetState(status.StateUnknown)
		v.statusbar.SetMessage(string(msg.Record.Reason))
	}
}

// NewConversation clears the transcript and starts a new session.
func (v *View) NewConversation() tea.Cmd {
	v.conv = domain.NewConversationState(uuid.NewString())
	v.pending = ""
	v.lastRecord = nil
	v.err = nil
	v.evidence.SetMatches(nil)
	v.input.Reset()
	v.focusQuestion()
	v.statusbar.Clear()
	v.statusbar.SetSessionID(v.conv.ID())
	v.statusbar.SetMessage("New conversation")

	sessionID := v.conv.ID()
	return func() tea.Msg {
		return messages.ConversationReset{SessionID: sessionID}
	}
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("docqa"), "")

	evidenceHeight := 0
	if v.showEvidence && !v.evidence.IsEmpty() {
		evidenceHeight = v.height / 2
	}
	transcriptHeight := v.height - evidenceHeight - 9
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	sections = append(sections, v.renderTranscript(transcriptHeight), "")

	sections = append(sections, v.input.View())

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	}

	if evidenceHeight > 0 {
		v.evidence.SetDimensions(v.width, evidenceHeight)
		sections = append(sections, "", v.evidence.View())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTranscript renders the most recent turns that fit in height lines.
func (v *View) renderTranscript(height int) string {
	turns := v.conv.Turns()
	if len(turns) == 0 && v.pending == "" {
		return v.styles.Muted.Render("Ask a question about the uploaded documents.")
	}

	lines := make([]string, 0, len(turns)*3)
	for _, turn := range turns {
		lines = append(lines, v.renderTurn(turn)...)
	}
	if v.pending != "" {
		lines = append(lines, v.renderTurn(domain.ConversationTurn{Role: domain.RoleUser, Text: v.pending})...)
		lines = append(lines, v.styles.Muted.Render("  ..."))
	}

	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderTurn(turn domain.ConversationTurn) []string {
	label := "You"
	if turn.Role == domain.RoleAssistant {
		label = "Assistant"
	}

	body := v.styles.Normal
	if turn.Role == domain.RoleAssistant && turn.Text == domain.FallbackAnswer {
		body = v.styles.Fallback
	}

	out := []string{v.styles.Speaker.Render(label)}
	for _, line := range strings.Split(turn.Text, "\n") {
		style := body
		if turn.Role == domain.RoleAssistant && strings.HasPrefix(line, domain.MarkerEvidence) {
			style = v.styles.Citation
		}
		out = append(out, style.Render("  "+line))
	}
	return out
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.evidence.SetDimensions(width, height/2)
	v.statusbar.SetWidth(width)
}

// Reset focuses the question input without touching the conversation.
func (v *View) Reset() {
	v.err = nil
	v.focusQuestion()
}

// Conversation returns the current conversation.
func (v *View) Conversation() *domain.ConversationState {
	return v.conv
}

// SessionID returns the current conversation's session ID.
func (v *View) SessionID() string {
	return v.conv.ID()
}

// LastRecord returns the most recent answer record, or nil.
func (v *View) LastRecord() *domain.AnswerRecord {
	return v.lastRecord
}

// Question returns the text in the question input.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the text in the question input.
func (v *View) SetQuestion(question string) {
	v.input.SetValue(question)
}

// Pending returns the question awaiting an answer, or "".
func (v *View) Pending() string {
	return v.pending
}

// Evidence returns the evidence pane.
func (v *View) Evidence() *list.EvidenceList {
	return v.evidence
}

// EvidenceVisible returns whether the evidence pane is shown.
func (v *View) EvidenceVisible() bool {
	return v.showEvidence
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// StatusState returns the status bar state.
func (v *View) StatusState() status.State {
	return v.statusbar.State()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
