// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// QuestionAsked is sent when a question is submitted.
type QuestionAsked struct {
	Question string
	TopK     int
}

// AnswerReceived carries the orchestrator's answer back to the model.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input with answer and evidence.
	ViewAsk
	// ViewDocuments lists stored documents.
	ViewDocuments
	// ViewStatus shows index and model statistics.
	ViewStatus
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewDocuments:
		return "documents"
	case ViewStatus:
		return "status"
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

// DocumentsLoaded carries the stored manifests.
type DocumentsLoaded struct {
	Documents []*domain.Manifest
	Err       error
}

// StatsLoaded carries an index and runtime snapshot.
type StatsLoaded struct {
	Stats *domain.Stats
	Err   error
}
