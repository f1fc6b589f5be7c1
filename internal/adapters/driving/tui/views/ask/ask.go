// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// View represents the ask view with question input, answer, evidence and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	list      *list.EvidenceList
	statusbar *status.Bar

	answerService driving.AnswerService
	ctx           context.Context

	question string
	answer   *domain.Answer
	topK     int

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true while typing, false while browsing evidence
	thinking   bool
}

// NewView creates a new ask view.
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
		list:          list.NewEvidenceList(s),
		statusbar:     status.NewBar(s, km),
		answerService: answerService,
		ctx:           context.Background(),
		topK:          domain.DefaultTopK,
		width:         80,
		height:        24,
		focusInput:    true,
	}
	v.statusbar.SetTopK(v.topK)
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

// Update handles messages for the ask view.
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
		v.thinking = false
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	// Keys are swallowed while a request is in flight.
	if v.thinking {
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(keyStr, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(keyStr, v.keymap.NewQuestion):
		v.focusInput = true
		v.input.Reset()
		v.statusbar.Clear()
		return v, v.input.Focus()
	case keymap.Matches(keyStr, v.keymap.MoreEvidence):
		return v, v.changeTopK(1)
	case keymap.Matches(keyStr, v.keymap.LessEvidence):
		return v, v.changeTopK(-1)
	}
	return v, nil
}

// changeTopK adjusts the retrieval depth and re-asks the last question.
func (v *View) changeTopK(delta int) tea.Cmd {
	k := v.topK + delta
	if k < 1 || k > domain.MaxTopK {
		return nil
	}
	v.SetTopK(k)
	if v.question == "" {
		return nil
	}
	v.thinking = true
	v.statusbar.SetState(status.StateThinking)
	return v.ask(v.question, k)
}

func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" {
		return nil
	}
	v.question = question
	v.thinking = true
	v.err = nil
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateThinking)
	return v.ask(question, v.topK)
}

// ask runs the answer service off the UI goroutine.
func (v *View) ask(question string, topK int) tea.Cmd {
	svc, ctx := v.answerService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		answer, err := svc.Answer(ctx, question, topK)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if msg.Question != v.question {
		return
	}
	v.thinking = false

	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	v.err = nil
	v.answer = msg.Answer
	var evidence []domain.Evidence
	if msg.Answer != nil {
		evidence = msg.Answer.Evidence
	}
	v.list.SetEvidence(evidence)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetEvidenceCount(len(evidence))
	v.statusbar.SetMessage("")
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("pagelens"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil && !v.focusInput {
		sections = append(sections,
			v.styles.Muted.Render("Q: "+v.question),
			v.styles.Answer.Width(max(v.width-4, 20)).Render(v.answer.Text),
			"",
			v.list.View(),
		)
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, max(height/2-4, 4))
	v.statusbar.SetWidth(width)
}

// SetDocumentNames labels evidence rows with file names.
func (v *View) SetDocumentNames(names map[string]string) {
	v.list.SetDocumentNames(names)
}

// SetTopK sets how many pages are retrieved per question.
func (v *View) SetTopK(k int) {
	v.topK = k
	v.statusbar.SetTopK(k)
}

// TopK returns how many pages are retrieved per question.
func (v *View) TopK() int {
	return v.topK
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the last submitted question.
func (v *View) Question() string {
	return v.question
}

// Answer returns the last answer, if any.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Evidence returns the evidence pages of the last answer.
func (v *View) Evidence() []domain.Evidence {
	return v.list.Evidence()
}

// SelectedIndex returns the index of the selected evidence page.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Thinking reports whether a question is in flight.
func (v *View) Thinking() bool {
	return v.thinking
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty question input.
func (v *View) Reset() {
	v.focusInput = true
	v.thinking = false
	v.input.Reset()
	v.input.Focus()
	v.question = ""
	v.answer = nil
	v.list.SetEvidence(nil)
	v.err = nil
	v.statusbar.Clear()
}
