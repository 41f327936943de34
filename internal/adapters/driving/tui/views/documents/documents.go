// Package documents provides the uploaded documents view for the TUI.
package documents

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ActionOption represents a document action.
type ActionOption int

const (
	ActionPreview ActionOption = iota
	ActionReindex
	ActionDelete
	ActionCancel
)

// errNoDocumentService is reported when the view has no service to call.
var errNoDocumentService = fmt.Errorf("document service not available")

// View is the documents list view.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService

	documents    []string
	chunks       map[string]int
	selected     int
	width        int
	height       int
	ready        bool
	err          error
	notice       string
	loading      bool
	showingMenu  bool
	menuSelected ActionOption
	scrollOffset int
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		documents:       []string{},
		chunks:          map[string]int{},
	}
}

// Init loads the document list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.showingMenu = false
	return v.loadDocuments()
}

// loadDocuments returns a command that lists documents with their chunk counts.
func (v *View) loadDocuments() tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentsLoaded{Err: errNoDocumentService}
		}

		ctx := context.Background()
		docs, err := v.documentService.List(ctx)
		if err != nil {
			return messages.DocumentsLoaded{Err: err}
		}
		chunks := make(map[string]int, len(docs))
		if stats, err := v.documentService.Stats(ctx); err == nil && stats != nil {
			for _, s := range stats.Indexed {
				chunks[s.Source] = s.ChunkCount
			}
		}
		return messages.DocumentsLoaded{Documents: docs, Chunks: chunks}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.showingMenu {
			return v.handleMenuKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.documents = msg.Documents
		v.chunks = msg.Chunks
		if v.chunks == nil {
			v.chunks = map[string]int{}
		}
		if v.selected >= len(v.documents) {
			v.selected = max(len(v.documents)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		if msg.Existed {
			v.notice = fmt.Sprintf("Deleted %s", msg.Filename)
		} else {
			v.notice = fmt.Sprintf("%s was already gone", msg.Filename)
		}
		return v, v.loadDocuments()

	case messages.DocumentReindexed:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = fmt.Sprintf("Reindexed %s: %d chunks", msg.Filename, msg.Chunks)
		return v, v.loadDocuments()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses in list mode.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if len(v.documents) > 0 {
			v.showingMenu = true
			v.menuSelected = ActionPreview
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "r":
		v.loading = true
		v.notice = ""
		return v, v.loadDocuments()
	}

	return v, nil
}

// handleMenuKeyMsg handles key presses in action menu mode.
func (v *View) handleMenuKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.menuSelected > ActionPreview {
			v.menuSelected--
		}
	case "down", "j":
		if v.menuSelected < ActionCancel {
			v.menuSelected++
		}
	case "enter":
		return v.handleMenuSelect()
	case "esc":
		v.showingMenu = false
	}

	return v, nil
}

// handleMenuSelect runs the selected action against the highlighted document.
func (v *View) handleMenuSelect() (*View, tea.Cmd) {
	v.showingMenu = false
	if v.selected >= len(v.documents) {
		return v, nil
	}

	filename := v.documents[v.selected]
	v.err = nil
	v.notice = ""

	switch v.menuSelected {
	case ActionPreview:
		return v, func() tea.Msg {
			return messages.DocumentSelected{Filename: filename}
		}
	case ActionReindex:
		return v, v.reindexDocument(filename)
	case ActionDelete:
		return v, v.deleteDocument(filename)
	case ActionCancel:
	}

	return v, nil
}

// reindexDocument returns a command that re-ingests the document from disk.
func (v *View) reindexDocument(filename string) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentReindexed{Filename: filename, Err: errNoDocumentService}
		}
		chunks, err := v.documentService.Reindex(context.Background(), filename)
		return messages.DocumentReindexed{Filename: filename, Chunks: chunks, Err: err}
	}
}

// deleteDocument returns a command that purges the document's chunks and file.
func (v *View) deleteDocument(filename string) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentDeleted{Filename: filename, Err: errNoDocumentService}
		}
		existed, err := v.documentService.Delete(context.Background(), filename)
		return messages.DocumentDeleted{Filename: filename, Existed: existed, Err: err}
	}
}

// adjustScroll adjusts the scroll offset to keep the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	// Reserve lines for title, notice, help, and padding
	available := v.height - 8
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}
	if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	if len(v.documents) == 0 {
		b.WriteString(v.styles.Muted.Render("No documents uploaded. Use `docqa upload <file>` to add one."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.showingMenu {
		b.WriteString(v.renderActionMenu())
		return b.String()
	}

	visibleItems := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.documents) && i < v.scrollOffset+visibleItems; i++ {
		b.WriteString(v.renderDocument(i, v.documents[i]))
		b.WriteString("\n")
	}

	if len(v.documents) > visibleItems {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleItems, len(v.documents)),
			len(v.documents))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderDocument renders a single document line with its chunk count.
func (v *View) renderDocument(index int, filename string) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	maxNameLen := v.width - 20
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	name := filename
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	chunks := "not indexed"
	if n, ok := v.chunks[filename]; ok {
		chunks = fmt.Sprintf("%d chunks", n)
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxNameLen, name, chunks))
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxNameLen, name)) +
		v.styles.Muted.Render(chunks)
}

// renderActionMenu renders the action menu overlay.
func (v *View) renderActionMenu() string {
	var b strings.Builder

	if v.selected < len(v.documents) {
		b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Actions for: %s", v.documents[v.selected])))
		b.WriteString("\n\n")
	}

	options := []struct {
		action ActionOption
		label  string
	}{
		{ActionPreview, "Preview"},
		{ActionReindex, "Reindex"},
		{ActionDelete, "Delete (file and chunks)"},
		{ActionCancel, "Cancel"},
	}

	for _, opt := range options {
		if v.menuSelected == opt.action {
			b.WriteString(v.styles.Selected.Render("> " + opt.label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + opt.label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] actions  [r] reload  [esc] back")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the current list of documents.
func (v *View) Documents() []string {
	return v.documents
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected filename, or "".
func (v *View) SelectedDocument() string {
	if v.selected < len(v.documents) {
		return v.documents[v.selected]
	}
	return ""
}

// IsShowingMenu returns true if the action menu is visible.
func (v *View) IsShowingMenu() bool {
	return v.showingMenu
}

// Notice returns the last success message.
func (v *View) Notice() string {
	return v.notice
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
