// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// linesPerItem is how many rows one evidence entry occupies.
const linesPerItem = 2

// EvidenceList displays the pages an answer was built from.
type EvidenceList struct {
	evidence []domain.Evidence
	names    map[string]string
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewEvidenceList creates an empty evidence list.
func NewEvidenceList(s *styles.Styles) *EvidenceList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &EvidenceList{
		styles: s,
		names:  map[string]string{},
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *EvidenceList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation keys.
func (l *EvidenceList) Update(msg tea.Msg) (*EvidenceList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *EvidenceList) View() string {
	if len(l.evidence) == 0 {
		return l.styles.Muted.Render("No evidence pages")
	}

	lines := make([]string, 0, len(l.evidence)*linesPerItem+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Evidence (%d)", len(l.evidence))), "")

	visible := max((l.height-2)/linesPerItem, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.evidence))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i, l.evidence[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *EvidenceList) renderItem(i int, ev domain.Evidence) string {
	label := fmt.Sprintf("%d. %s  page %d", i+1, l.documentLabel(ev.DocID), ev.Page)
	score := fmt.Sprintf("%.4f", ev.RoundedScore())

	var head string
	if i == l.selected {
		head = l.styles.Selected.Render("> "+label) + "  " + l.styles.Score(ev.RoundedScore()).Render(score)
	} else {
		head = l.styles.Normal.Render("  "+label) + "  " + l.styles.Score(ev.RoundedScore()).Render(score)
	}

	path := ev.ImagePath
	if limit := l.width - 6; limit > 10 && len(path) > limit {
		path = "..." + path[len(path)-limit+3:]
	}
	return head + "\n" + l.styles.Muted.Render("    "+path)
}

// documentLabel prefers the uploaded file name over the bare ID.
func (l *EvidenceList) documentLabel(docID string) string {
	if name, ok := l.names[docID]; ok && name != "" {
		return filepath.Base(name)
	}
	return docID
}

// SetEvidence replaces the list contents and resets the selection.
func (l *EvidenceList) SetEvidence(evidence []domain.Evidence) {
	l.evidence = evidence
	l.selected = 0
}

// SetDocumentNames maps document IDs to display names.
func (l *EvidenceList) SetDocumentNames(names map[string]string) {
	if names == nil {
		names = map[string]string{}
	}
	l.names = names
}

// Evidence returns the current entries.
func (l *EvidenceList) Evidence() []domain.Evidence {
	return l.evidence
}

// Selected returns the selected index.
func (l *EvidenceList) Selected() int {
	return l.selected
}

// SelectedEvidence returns the selected entry, or nil when empty.
func (l *EvidenceList) SelectedEvidence() *domain.Evidence {
	if l.selected < 0 || l.selected >= len(l.evidence) {
		return nil
	}
	return &l.evidence[l.selected]
}

// MoveUp moves the selection up.
func (l *EvidenceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the selection down.
func (l *EvidenceList) MoveDown() {
	if l.selected < len(l.evidence)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *EvidenceList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of entries.
func (l *EvidenceList) Count() int {
	return len(l.evidence)
}
