// Package settings provides the settings view for the TUI.
package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionEmbedding
	SectionLLM
)

// Key constants for key handling.
const (
	keyDown  = "down"
	keyEnter = "enter"
	keyTab   = "tab"
)

// overviewItems is the number of editable rows on the overview.
const overviewItems = 2

// errNoSettingsService is reported when the view has no service to call.
var errNoSettingsService = fmt.Errorf("settings service not available")

// View is the settings view. It edits providers and shows the rest of the
// effective configuration read-only; other keys are set with `docqa settings set`.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	settings *domain.Settings
	err      error
	checked  *messages.ProvidersChecked
	checking bool

	section      Section
	selected     int
	focusedField int // 1 when the API key input has focus

	apiKeyInput textinput.Model

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	apiKeyInput := textinput.New()
	apiKeyInput.Placeholder = "Enter API key (leave empty to keep the current one)"
	apiKeyInput.EchoMode = textinput.EchoPassword
	apiKeyInput.CharLimit = 256

	return &View{
		styles:          s,
		settingsService: settingsService,
		section:         SectionOverview,
		apiKeyInput:     apiKeyInput,
	}
}

// Init loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: errNoSettingsService}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// checkProviders pings both configured providers.
func (v *View) checkProviders() tea.Cmd {
	v.checking = true
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.ProvidersChecked{EmbeddingErr: errNoSettingsService, LLMErr: errNoSettingsService}
		}
		return messages.ProvidersChecked{
			EmbeddingErr: v.settingsService.ValidateEmbeddingConfig(),
			LLMErr:       v.settingsService.ValidateLLMConfig(),
		}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.checked = nil
		v.backToOverview()
		return v, v.loadSettings()

	case messages.ProvidersChecked:
		v.checking = false
		v.checked = &msg
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses based on current section.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
		v.backToOverview()
		return v, nil
	}

	switch v.section {
	case SectionOverview:
		return v.handleOverviewKeys(msg)
	case SectionEmbedding:
		return v.handleProviderKeys(msg, domain.AllEmbeddingProviders(), v.setEmbeddingProvider)
	case SectionLLM:
		return v.handleProviderKeys(msg, domain.AllLLMProviders(), v.setLLMProvider)
	}

	return v, nil
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < overviewItems-1 {
			v.selected++
		}
	case "c":
		if !v.checking {
			return v, v.checkProviders()
		}
	case keyEnter:
		if v.settings == nil {
			return v, nil
		}
		switch v.selected {
		case 0:
			v.section = SectionEmbedding
			v.selected = indexOf(domain.AllEmbeddingProviders(), v.settings.Embedding.Provider)
		case 1:
			v.section = SectionLLM
			v.selected = indexOf(domain.AllLLMProviders(), v.settings.LLM.Provider)
		}
	}
	return v, nil
}

// handleProviderKeys drives a provider list with an optional API key field.
func (v *View) handleProviderKeys(
	msg tea.KeyMsg,
	providers []domain.AIProvider,
	save func(domain.AIProvider, string) tea.Cmd,
) (*View, tea.Cmd) {
	if v.focusedField == 1 {
		switch msg.String() {
		case keyTab, "shift+tab":
			v.focusedField = 0
			v.apiKeyInput.Blur()
			return v, nil
		case keyEnter:
			return v, save(providers[v.selected], strings.TrimSpace(v.apiKeyInput.Value()))
		default:
			var cmd tea.Cmd
			v.apiKeyInput, cmd = v.apiKeyInput.Update(msg)
			return v, cmd
		}
	}

	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(providers)-1 {
			v.selected++
		}
	case keyTab, keyEnter:
		provider := providers[v.selected]
		if provider.RequiresAPIKey() {
			v.focusedField = 1
			return v, v.apiKeyInput.Focus()
		}
		if msg.String() == keyEnter {
			return v, save(provider, "")
		}
	}
	return v, nil
}

func (v *View) setEmbeddingProvider(provider domain.AIProvider, apiKey string) tea.Cmd {
	return v.saveProvider(provider, apiKey, func(svc driving.SettingsService) error {
		return svc.SetEmbeddingProvider(provider, "")
	})
}

func (v *View) setLLMProvider(provider domain.AIProvider, apiKey string) tea.Cmd {
	return v.saveProvider(provider, apiKey, func(svc driving.SettingsService) error {
		return svc.SetLLMProvider(provider, "")
	})
}

// saveProvider stores the API key, when given, then switches the provider
// to its default model.
func (v *View) saveProvider(provider domain.AIProvider, apiKey string, set func(driving.SettingsService) error) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: errNoSettingsService}
		}
		if apiKey != "" {
			if err := svc.SetAPIKey(provider, apiKey); err != nil {
				return messages.SettingsSaved{Err: err}
			}
		}
		return messages.SettingsSaved{Err: set(svc)}
	}
}

func (v *View) backToOverview() {
	v.section = SectionOverview
	v.selected = 0
	v.focusedField = 0
	v.apiKeyInput.SetValue("")
	v.apiKeyInput.Blur()
}

func indexOf(providers []domain.AIProvider, current domain.AIProvider) int {
	for i, p := range providers {
		if p == current {
			return i
		}
	}
	return 0
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		if v.err == nil {
			b.WriteString(v.styles.Muted.Render("Loading settings..."))
		}
		return b.String()
	}

	switch v.section {
	case SectionOverview:
		b.WriteString(v.renderOverview())
	case SectionEmbedding:
		b.WriteString(v.renderProviderSelect("Select Embedding Provider",
			domain.AllEmbeddingProviders(), v.settings.Embedding.Provider, domain.DefaultEmbeddingModels()))
	case SectionLLM:
		b.WriteString(v.renderProviderSelect("Select LLM Provider",
			domain.AllLLMProviders(), v.settings.LLM.Provider, domain.DefaultLLMModels()))
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderOverview() string {
	var b strings.Builder
	s := v.settings

	providers := []struct {
		label      string
		value      string
		configured bool
	}{
		{
			label:      "Embedding Provider",
			value:      fmt.Sprintf("%s (%s)", s.Embedding.Provider.Description(), s.Embedding.Model),
			configured: s.Embedding.IsConfigured(),
		},
		{
			label:      "LLM Provider",
			value:      fmt.Sprintf("%s (%s)", s.LLM.Provider.Description(), s.LLM.Model),
			configured: s.LLM.IsConfigured(),
		},
	}

	for i, item := range providers {
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}
		line := fmt.Sprintf("%s%s: %s", indicator, item.label, item.value)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		if item.configured {
			b.WriteString(" " + v.styles.Success.Render("[configured]"))
		} else {
			b.WriteString(" " + v.styles.Warning.Render("[needs API key]"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	info := []string{
		fmt.Sprintf("Top K: %d   Chunk size: %d   Overlap: %d",
			s.Retrieval.TopK, s.Retrieval.ChunkSize, s.Retrieval.ChunkOverlap),
		fmt.Sprintf("Index: %s   Collection: %s   Distance: %s",
			s.Index.Backend, s.Index.Collection, s.Index.Distance),
		fmt.Sprintf("Uploads: %s", s.Storage.UploadsDir),
		fmt.Sprintf("Verify evidence: %t", s.Grounding.VerifyEvidence),
	}
	for _, line := range info {
		b.WriteString(v.styles.Muted.Render("  " + line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if err := s.Validate(); err != nil {
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Warning: %s", err.Error())))
	} else {
		b.WriteString(v.styles.Success.Render("Configuration is valid"))
	}
	b.WriteString("\n")

	switch {
	case v.checking:
		b.WriteString(v.styles.Muted.Render("Checking providers..."))
		b.WriteString("\n")
	case v.checked != nil:
		b.WriteString(v.renderCheck("Embedding", v.checked.EmbeddingErr))
		b.WriteString(v.renderCheck("LLM", v.checked.LLMErr))
	}

	return b.String()
}

func (v *View) renderCheck(label string, err error) string {
	if err != nil {
		return v.styles.Error.Render(fmt.Sprintf("%s: %s", label, err.Error())) + "\n"
	}
	return v.styles.Success.Render(fmt.Sprintf("%s: reachable", label)) + "\n"
}

func (v *View) renderProviderSelect(
	title string,
	providers []domain.AIProvider,
	current domain.AIProvider,
	defaults map[domain.AIProvider]string,
) string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render(title))
	b.WriteString("\n\n")

	for i, provider := range providers {
		highlighted := i == v.selected && v.focusedField == 0
		indicator := "  "
		if highlighted {
			indicator = "> "
		}

		marker := ""
		if provider == current {
			marker = v.styles.Success.Render(" (current)")
		}

		line := indicator + provider.Description()
		if highlighted {
			b.WriteString(v.styles.Selected.Render(line) + marker)
		} else {
			b.WriteString(v.styles.Normal.Render(line) + marker)
		}
		b.WriteString("\n")

		if model, ok := defaults[provider]; ok {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("    Model: %s", model)))
			b.WriteString("\n")
		}
	}

	if providers[v.selected].RequiresAPIKey() {
		b.WriteString("\n")
		b.WriteString(v.styles.Normal.Render("API Key:"))
		b.WriteString("\n")
		b.WriteString(v.apiKeyInput.View())
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderHelp() string {
	switch v.section {
	case SectionOverview:
		return v.styles.Help.Render("[j/k] navigate  [enter] edit  [c] check providers  [esc] back")
	case SectionEmbedding, SectionLLM:
		if v.focusedField == 1 {
			return v.styles.Help.Render("[tab] back to list  [enter] save  [esc] back")
		}
		return v.styles.Help.Render("[j/k] navigate  [tab] API key  [enter] select  [esc] back")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset resets the view to initial state.
func (v *View) Reset() {
	v.backToOverview()
	v.err = nil
	v.checked = nil
	v.checking = false
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Settings returns the loaded settings, or nil.
func (v *View) Settings() *domain.Settings {
	return v.settings
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
