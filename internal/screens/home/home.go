package home

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mykolas-perevicius/edplay/internal/progress"
	"github.com/mykolas-perevicius/edplay/internal/router"
	"github.com/mykolas-perevicius/edplay/internal/screen"
	"github.com/mykolas-perevicius/edplay/internal/screens/complete"
	"github.com/mykolas-perevicius/edplay/internal/screens/history"
	"github.com/mykolas-perevicius/edplay/internal/screens/report"
	"github.com/mykolas-perevicius/edplay/internal/screens/welcome"
	"github.com/mykolas-perevicius/edplay/internal/store"
	"github.com/mykolas-perevicius/edplay/internal/ui/components"
	"github.com/mykolas-perevicius/edplay/internal/ui/layout"
	"github.com/mykolas-perevicius/edplay/internal/ui/theme"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Start     key.Binding
	ResetPath key.Binding
	Complete  key.Binding
	Levels    key.Binding
	History   key.Binding
	Report    key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "navigate")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Start:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "start path")),
		ResetPath: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset path")),
		Complete:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete lesson")),
		Levels:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "level")),
		History:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Report:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "analytics")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

// HomeScreen is the progress dashboard: one card per guided path.
type HomeScreen struct {
	tracker *progress.Tracker
	journal store.EventRepo
	keys    keyMap
	onboard bool

	paths    []progress.PathStatus
	selected int
	status   string
	failed   bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates the dashboard. journal may be nil, which hides history. When
// onboard is set the level picker opens first.
func New(tracker *progress.Tracker, journal store.EventRepo, onboard bool) *HomeScreen {
	h := &HomeScreen{
		tracker: tracker,
		journal: journal,
		keys:    defaultKeys(),
		onboard: onboard,
	}
	h.reload()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	if !h.onboard {
		return nil
	}
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: welcome.New(h.tracker)}
	}
}

func (h *HomeScreen) Title() string {
	return "Guided Paths"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	bindings := []key.Binding{h.keys.Up, h.keys.Start, h.keys.ResetPath, h.keys.Complete, h.keys.Levels}
	if h.journal != nil {
		bindings = append(bindings, h.keys.History)
	}
	bindings = append(bindings, h.keys.Report, h.keys.Quit)

	hints := make([]layout.KeyHint, 0, len(bindings))
	for _, b := range bindings {
		hints = append(hints, layout.KeyHint{Key: b.Help().Key, Description: b.Help().Desc})
	}
	return hints
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.RefreshMsg:
		h.reload()
		return h, nil

	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, h.keys.Up):
			if h.selected > 0 {
				h.selected--
			}
		case key.Matches(msg, h.keys.Down):
			if h.selected < len(h.paths)-1 {
				h.selected++
			}
		case key.Matches(msg, h.keys.Start):
			return h, h.startSelected()
		case key.Matches(msg, h.keys.ResetPath):
			return h, h.resetPath()
		case key.Matches(msg, h.keys.Complete):
			return h, push(complete.New(h.tracker))
		case key.Matches(msg, h.keys.Levels):
			return h, push(welcome.New(h.tracker))
		case key.Matches(msg, h.keys.History):
			if h.journal != nil {
				return h, push(history.New(h.journal))
			}
		case key.Matches(msg, h.keys.Report):
			return h, push(report.New(h.tracker))
		case key.Matches(msg, h.keys.Quit):
			return h, tea.Quit
		}
	}
	return h, nil
}

func (h *HomeScreen) startSelected() tea.Cmd {
	if h.selected >= len(h.paths) {
		return nil
	}
	p := h.paths[h.selected].Path
	if err := h.tracker.SetGuidedPath(context.Background(), p.ID); err != nil {
		h.setStatus(err.Error(), true)
		return nil
	}
	msg := "Started " + p.Title + "."
	if len(p.Lessons) > 0 {
		msg = fmt.Sprintf("Started %s. First lesson: %s", p.Title,
			h.tracker.Normalizer().BuildDocURL(p.Lessons[0]))
	}
	h.setStatus(msg, false)
	return refresh
}

func (h *HomeScreen) resetPath() tea.Cmd {
	if err := h.tracker.ResetGuidedPath(context.Background()); err != nil {
		h.setStatus(err.Error(), true)
		return nil
	}
	h.setStatus("Guided path cleared.", false)
	return refresh
}

func (h *HomeScreen) setStatus(s string, failed bool) {
	h.status = s
	h.failed = failed
}

func (h *HomeScreen) reload() {
	h.paths = h.tracker.PathProgress()
	if h.selected >= len(h.paths) {
		h.selected = max(len(h.paths)-1, 0)
	}
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(width-4, 96)
	rec := h.tracker.Record()

	var sections []string
	sections = append(sections, renderOverview(rec, cw))

	for i, st := range h.paths {
		sections = append(sections, h.renderCard(st, i == h.selected, cw))
	}

	if h.status != "" {
		style := theme.Done
		if h.failed {
			style = theme.Failed
		}
		sections = append(sections, style.Render(h.status))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.NewStyle().Width(width).Padding(1, 2).Render(content)
}

func renderOverview(rec progress.Record, width int) string {
	level := "not chosen"
	if rec.Level != nil {
		level = cases.Title(language.English).String(*rec.Level)
	}
	parts := []string{
		"Level: " + theme.Selected.Render(level),
		fmt.Sprintf("Completed lessons: %d", len(rec.CompletedLessons)),
	}
	if rec.LastVisited != nil {
		parts = append(parts, "Last visited: "+*rec.LastVisited)
	}
	return lipgloss.NewStyle().Width(width).Foreground(theme.Text).
		Render(strings.Join(parts, "   ·   ")) + "\n"
}

func (h *HomeScreen) renderCard(st progress.PathStatus, selected bool, width int) string {
	style := theme.Card
	if selected {
		style = theme.ActiveCard
	}
	inner := width - 6

	title := st.Path.Icon + " " + st.Path.Title
	switch {
	case st.Done():
		title += "  " + theme.Done.Render("✓ complete")
	case st.Active:
		title += "  " + theme.Pending.Render("● active")
	}

	lines := []string{
		theme.Title.Render(title),
		theme.Subtitle.Render(st.Path.Description),
		components.NewProgressBar("", st.Completed, st.Total, inner).View(),
	}
	if next := st.NextLesson(); next != "" {
		lines = append(lines, theme.Hint.Render("Next: "+h.tracker.Normalizer().BuildDocURL(next)))
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: s}
	}
}

func refresh() tea.Msg {
	return screen.RefreshMsg{}
}
