// Package complete is the prompt for crediting a lesson by path or URL.
package complete

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mykolas-perevicius/edplay/internal/progress"
	"github.com/mykolas-perevicius/edplay/internal/screen"
	"github.com/mykolas-perevicius/edplay/internal/ui/components"
	"github.com/mykolas-perevicius/edplay/internal/ui/layout"
	"github.com/mykolas-perevicius/edplay/internal/ui/theme"
)

// CompleteScreen marks lessons complete the same way the lesson page
// button does, advancing the active guided path.
type CompleteScreen struct {
	tracker *progress.Tracker
	input   components.LessonInput
	status  string
	failed  bool
}

var _ screen.Screen = (*CompleteScreen)(nil)
var _ screen.KeyHintProvider = (*CompleteScreen)(nil)

// New creates a CompleteScreen.
func New(tracker *progress.Tracker) *CompleteScreen {
	return &CompleteScreen{
		tracker: tracker,
		input:   components.NewLessonInput("easy/01_introduction_to_python.html", tracker.Normalizer()),
	}
}

func (c *CompleteScreen) Init() tea.Cmd {
	return c.input.Init()
}

func (c *CompleteScreen) Title() string {
	return "Mark Lesson Complete"
}

func (c *CompleteScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Complete"},
		{Key: "Esc", Description: "Back"},
	}
}

func (c *CompleteScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && kmsg.String() == "enter" {
		return c, c.submit()
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *CompleteScreen) submit() tea.Cmd {
	canonical := c.input.Canonical()
	if canonical == "" {
		c.input.Submit(false)
		c.status, c.failed = "Enter a lesson path or URL.", true
		return nil
	}

	updated, err := c.tracker.CompleteLesson(context.Background(), c.input.Value())
	if err != nil {
		c.input.Submit(false)
		c.status, c.failed = err.Error(), true
		return nil
	}
	c.input.Submit(true)
	c.failed = false
	if !updated {
		c.status = canonical + " was already complete."
		return nil
	}

	c.status = "Completed " + canonical + "."
	if active, ok := c.tracker.ActivePath(); ok {
		c.status += fmt.Sprintf(" %s: %d/%d", active.Path.Title, active.Cursor, active.Total)
	}
	c.input.Clear()
	return func() tea.Msg { return screen.RefreshMsg{} }
}

func (c *CompleteScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Lesson path or URL"))
	b.WriteString("\n\n")
	b.WriteString(c.input.View())
	if c.status != "" {
		style := theme.Done
		if c.failed {
			style = theme.Failed
		}
		b.WriteString("\n\n")
		b.WriteString(style.Render(c.status))
	}
	return lipgloss.NewStyle().Width(width).Padding(1, 2).Render(b.String())
}
