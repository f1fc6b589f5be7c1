// Package documents provides the documents list view component for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// View is the documents list view.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	documents    []*domain.Manifest
	selected     int
	width        int
	height       int
	ready        bool
	err          error
	loading      bool
	showDetails  bool
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
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the document list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.showDetails = false
	return v.loadDocuments()
}

// loadDocuments returns a command that lists stored manifests.
func (v *View) loadDocuments() tea.Cmd {
	svc, ctx := v.documentService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		docs, err := svc.List(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.documents = msg.Documents
		if v.selected >= len(v.documents) {
			v.selected = max(len(v.documents)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.showDetails {
		if msg.String() == "esc" || msg.String() == "enter" {
			v.showDetails = false
		}
		return v, nil
	}

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
			v.showDetails = true
		}
	case "r":
		v.loading = true
		return v, v.loadDocuments()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

// adjustScroll keeps the selected item visible.
func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

// visibleItemCount returns the number of items that can be displayed.
func (v *View) visibleItemCount() int {
	// Reserve lines for title, scroll indicator and help
	return max(v.height-8, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents yet. Ingest a PDF to get started."))
	case v.showDetails:
		b.WriteString(v.renderDetails(v.documents[v.selected]))
	default:
		b.WriteString(v.renderList())
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderList() string {
	var b strings.Builder
	visible := v.visibleItemCount()
	for i := v.scrollOffset; i < len(v.documents) && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.renderDocument(i, v.documents[i]))
		b.WriteString("\n")
	}

	if len(v.documents) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visible, len(v.documents)),
			len(v.documents))))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderDocument renders a single document line.
func (v *View) renderDocument(index int, doc *domain.Manifest) string {
	name := displayName(doc)
	maxNameLen := max(v.width/2-4, 10)
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	pages := fmt.Sprintf("%3d pages", doc.NumPages)
	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", maxNameLen, name, pages)) +
			"  " + v.styles.Indexed(doc.Indexed)
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-*s  ", maxNameLen, name)) +
		v.styles.Muted.Render(pages) + "  " + v.styles.Indexed(doc.Indexed)
}

// renderDetails renders the full manifest of one document.
func (v *View) renderDetails(doc *domain.Manifest) string {
	indexedAt := "never"
	if doc.IndexedAt != nil {
		indexedAt = humanize.Time(*doc.IndexedAt)
	}

	rows := []struct{ label, value string }{
		{"Document", doc.DocID},
		{"File", doc.Filename},
		{"Pages", humanize.Comma(int64(doc.NumPages))},
		{"Status", v.styles.Indexed(doc.Indexed)},
		{"Added", humanize.Time(doc.CreatedAt)},
		{"Indexed", indexedAt},
		{"Embedder", doc.Embedder},
		{"Index", doc.IndexBackend},
		{"SHA-256", doc.SHA256},
	}

	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(displayName(doc)))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%-10s", r.label)))
		b.WriteString(v.styles.Normal.Render(r.value))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	if v.showDetails {
		return v.styles.Help.Render("[enter/esc] back to list")
	}
	return v.styles.Help.Render("[↑/↓] navigate  [enter] details  [r] reload  [esc] back")
}

func displayName(doc *domain.Manifest) string {
	if doc.Filename == "" {
		return doc.DocID
	}
	return filepath.Base(doc.Filename)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the current list of documents.
func (v *View) Documents() []*domain.Manifest {
	return v.documents
}

// Names maps document IDs to display names.
func (v *View) Names() map[string]string {
	names := make(map[string]string, len(v.documents))
	for _, doc := range v.documents {
		names[doc.DocID] = displayName(doc)
	}
	return names
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.Manifest {
	if v.selected < len(v.documents) {
		return v.documents[v.selected]
	}
	return nil
}

// IsShowingDetails returns true if the details panel is visible.
func (v *View) IsShowingDetails() bool {
	return v.showDetails
}

// Loading reports whether a reload is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
