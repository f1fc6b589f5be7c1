// Package stats provides the index and model status view for the TUI.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// ErrNoStatsService indicates that no stats service was provided.
var ErrNoStatsService = errors.New("stats service not available")

// View shows a snapshot of the index, models and process.
type View struct {
	styles       *styles.Styles
	statsService driving.StatsService
	ctx          context.Context

	stats   *domain.Stats
	loading bool
	err     error
	width   int
	height  int
}

// NewView creates a new status view.
func NewView(s *styles.Styles, statsService driving.StatsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:       s,
		statsService: statsService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads a fresh snapshot.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	svc, ctx := v.statsService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.StatsLoaded{Err: ErrNoStatsService}
		}
		s, err := svc.Stats(ctx)
		return messages.StatsLoaded{Stats: s, Err: err}
	}
}

// Update handles messages for the status view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.StatsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.stats = msg.Stats
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			v.loading = true
			return v, v.load()
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
	}
	return v, nil
}

// View renders the status view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Status"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.stats == nil:
		b.WriteString(v.styles.Muted.Render("No data"))
	default:
		b.WriteString(v.renderStats(v.stats))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] refresh  [esc] back"))
	return b.String()
}

func (v *View) renderStats(s *domain.Stats) string {
	sections := []struct {
		title string
		rows  [][2]string
	}{
		{"Index", [][2]string{
			{"Documents", humanize.Comma(int64(s.Documents))},
			{"Pages", humanize.Comma(int64(s.Pages))},
			{"Dimensions", dimensions(s.Dimensions)},
			{"Backend", fmt.Sprintf("%s (%s)", s.IndexBackend, s.IndexType)},
		}},
		{"Models", [][2]string{
			{"Embedder", s.Embedder},
			{"Answerer", s.Answerer},
			{"Device", s.Device},
		}},
		{"Process", [][2]string{
			{"CPUs", fmt.Sprintf("%d", s.CPUs)},
			{"Memory", humanize.IBytes(s.MemoryBytes)},
			{"Heap", humanize.IBytes(s.HeapBytes)},
		}},
		{"Limits", [][2]string{
			{"Upload", humanize.IBytes(uint64(max(s.Limits.MaxUploadBytes, 0)))},
			{"Pages", humanize.Comma(int64(s.Limits.MaxPages))},
			{"DPI", fmt.Sprintf("%d (effective %d)", s.Limits.MaxDPI, s.Limits.EffectiveDPI())},
		}},
	}

	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Subtitle.Render(sec.title))
		b.WriteString("\n")
		for _, row := range sec.rows {
			b.WriteString("  ")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%-12s", row[0])))
			b.WriteString(v.styles.Normal.Render(row[1]))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func dimensions(d int) string {
	if d == 0 {
		return "unset (empty index)"
	}
	return fmt.Sprintf("%d", d)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Stats returns the last loaded snapshot.
func (v *View) Stats() *domain.Stats {
	return v.stats
}

// Loading reports whether a refresh is in flight.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
