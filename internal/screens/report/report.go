// Package report shows the analytics export rendered for the terminal.
package report

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mykolas-perevicius/edplay/internal/analytics"
	"github.com/mykolas-perevicius/edplay/internal/progress"
	"github.com/mykolas-perevicius/edplay/internal/router"
	"github.com/mykolas-perevicius/edplay/internal/screen"
	"github.com/mykolas-perevicius/edplay/internal/ui/layout"
	"github.com/mykolas-perevicius/edplay/internal/ui/theme"
)

// ReportScreen renders the current analytics report as markdown.
type ReportScreen struct {
	tracker *progress.Tracker
	now     func() time.Time

	// rendered output for width
	width    int
	rendered []string
	errMsg   string
	offset   int
}

var _ screen.Screen = (*ReportScreen)(nil)
var _ screen.KeyHintProvider = (*ReportScreen)(nil)

// New creates a ReportScreen.
func New(tracker *progress.Tracker) *ReportScreen {
	return &ReportScreen{tracker: tracker, now: time.Now}
}

func (s *ReportScreen) Init() tea.Cmd {
	return nil
}

func (s *ReportScreen) Title() string {
	return "Analytics"
}

func (s *ReportScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ReportScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case screen.RefreshMsg:
		s.rendered = nil
		return s, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.offset < len(s.rendered)-1 {
				s.offset++
			}
		case "home", "g":
			s.offset = 0
		}
	}
	return s, nil
}

func (s *ReportScreen) render(width int) {
	if s.rendered != nil && s.width == width {
		return
	}
	s.width = width
	r := analytics.Build(s.tracker.Record(), s.tracker.PathProgress(), s.now())
	out, err := analytics.Render(r, width)
	if err != nil {
		s.errMsg = err.Error()
		s.rendered = []string{}
		return
	}
	s.errMsg = ""
	s.rendered = strings.Split(strings.TrimRight(out, "\n"), "\n")
	if s.offset >= len(s.rendered) {
		s.offset = max(len(s.rendered)-1, 0)
	}
}

func (s *ReportScreen) View(width, height int) string {
	s.render(width)
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\nError: " + s.errMsg)
	}
	end := len(s.rendered)
	if height > 0 {
		end = min(s.offset+height, end)
	}
	return strings.Join(s.rendered[s.offset:end], "\n")
}
