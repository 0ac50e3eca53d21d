package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/mykolas-perevicius/edplay/internal/progress"
	"github.com/mykolas-perevicius/edplay/internal/router"
	"github.com/mykolas-perevicius/edplay/internal/screen"
	"github.com/mykolas-perevicius/edplay/internal/store"
	"github.com/mykolas-perevicius/edplay/internal/ui/layout"
	"github.com/mykolas-perevicius/edplay/internal/ui/theme"
)

const pageSize = 50

type historyLoadedMsg struct {
	Sessions []sessionGroup
	Err      error
}

// sessionGroup is the run of events written by one process, newest first.
type sessionGroup struct {
	ID     string
	Start  time.Time
	End    time.Time
	Events []store.ProgressEventRecord
}

// HistoryScreen displays recent progress activity grouped by session.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []sessionGroup
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load
}

func (s *HistoryScreen) load() tea.Msg {
	events, err := s.eventRepo.QueryProgressEvents(context.Background(), store.QueryOpts{Limit: pageSize})
	if err != nil {
		return historyLoadedMsg{Err: err}
	}
	return historyLoadedMsg{Sessions: groupBySession(events)}
}

// groupBySession keeps first-seen order, so the newest session comes first.
func groupBySession(events []store.ProgressEventRecord) []sessionGroup {
	var groups []sessionGroup
	index := make(map[string]int)
	for _, e := range events {
		i, ok := index[e.SessionID]
		if !ok {
			i = len(groups)
			index[e.SessionID] = i
			groups = append(groups, sessionGroup{ID: e.SessionID, Start: e.Timestamp, End: e.Timestamp})
		}
		g := &groups[i]
		g.Events = append(g.Events, e)
		if e.Timestamp.Before(g.Start) {
			g.Start = e.Timestamp
		}
		if e.Timestamp.After(g.End) {
			g.End = e.Timestamp
		}
	}
	return groups
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.errMsg = ""
			s.sessions = msg.Sessions
			if s.selected >= len(s.sessions) {
				s.selected = max(len(s.sessions)-1, 0)
			}
		}
		s.loaded = true
		return s, nil

	case screen.RefreshMsg:
		return s, s.load

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No activity yet. Pick a path and start learning!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		completed := 0
		for _, e := range sess.Events {
			if e.Kind == progress.EventLessonCompleted {
				completed++
			}
		}

		line := fmt.Sprintf("%s%s  %s  %d events  %d lessons completed",
			prefix, sess.Start.Local().Format("Jan 02, 2006 15:04"),
			formatDuration(sess.End.Sub(sess.Start)), len(sess.Events), completed)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, e := range sess.Events {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(kindColor(e.Kind)).Render("    "+describe(e))))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func describe(e store.ProgressEventRecord) string {
	ts := e.Timestamp.Local().Format("15:04:05")
	switch e.Kind {
	case progress.EventLessonCompleted:
		return fmt.Sprintf("%s  completed %s", ts, e.Lesson)
	case progress.EventVisited:
		return fmt.Sprintf("%s  visited %s", ts, e.Lesson)
	case progress.EventPathStarted:
		return fmt.Sprintf("%s  started path %s", ts, e.PathID)
	case progress.EventPathAdvanced:
		return fmt.Sprintf("%s  advanced %s to %s", ts, e.PathID, e.Detail)
	case progress.EventPathReset:
		return fmt.Sprintf("%s  left guided path", ts)
	case progress.EventLevelSet:
		return fmt.Sprintf("%s  level set to %s", ts, e.Detail)
	case progress.EventOnboarded:
		return fmt.Sprintf("%s  finished onboarding", ts)
	case progress.EventReset:
		return fmt.Sprintf("%s  progress reset", ts)
	default:
		return fmt.Sprintf("%s  %s", ts, e.Kind)
	}
}

func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func kindColor(kind string) color.Color {
	switch kind {
	case progress.EventLessonCompleted:
		return theme.Success
	case progress.EventPathStarted, progress.EventPathAdvanced:
		return theme.Primary
	case progress.EventPathReset, progress.EventReset:
		return theme.Warning
	case progress.EventLevelSet, progress.EventOnboarded:
		return theme.Secondary
	default:
		return theme.Text
	}
}
