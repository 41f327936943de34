// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AnswerReceived carries the answer record back to the model.
// SessionID is the conversation the question was asked in.
type AnswerReceived struct {
	SessionID string
	Question  string
	Record    *domain.AnswerRecord
	Err       error
}

// ConversationReset is sent when the user starts a new conversation.
type ConversationReset struct {
	SessionID string
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the home screen with collection stats.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer view.
	ViewChat
	// ViewDocuments lists uploaded documents.
	ViewDocuments
	// ViewDocContent shows a document preview.
	ViewDocContent
	// ViewSettings shows the effective configuration.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewDocuments:
		return "documents"
	case ViewDocContent:
		return "doc_content"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// StatsLoaded carries the collection overview.
type StatsLoaded struct {
	Stats *domain.Stats
	Err   error
}

// DocumentsLoaded carries the uploaded filenames and their chunk counts.
type DocumentsLoaded struct {
	Documents []string
	Chunks    map[string]int
	Err       error
}

// DocumentSelected signals a document was chosen for preview.
type DocumentSelected struct {
	Filename string
}

// DocumentPreviewLoaded carries the leading bytes of a document.
type DocumentPreviewLoaded struct {
	Filename string
	Content  string
	Err      error
}

// DocumentDeleted signals a document and its chunks were removed.
type DocumentDeleted struct {
	Filename string
	Existed  bool
	Err      error
}

// DocumentReindexed signals a document was re-ingested.
type DocumentReindexed struct {
	Filename string
	Chunks   int
	Err      error
}

// SettingsLoaded carries the effective settings.
type SettingsLoaded struct {
	Settings *domain.Settings
	Err      error
}

// SettingsSaved signals a settings change was written.
type SettingsSaved struct {
	Err error
}

// ProvidersChecked carries the result of pinging the configured providers.
type ProvidersChecked struct {
	EmbeddingErr error
	LLMErr       error
}
