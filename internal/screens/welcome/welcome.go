// Package welcome is the first-run screen where the learner picks a
// starting level.
package welcome

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mykolas-perevicius/edplay/internal/catalog"
	"github.com/mykolas-perevicius/edplay/internal/progress"
	"github.com/mykolas-perevicius/edplay/internal/screen"
	"github.com/mykolas-perevicius/edplay/internal/ui/components"
	"github.com/mykolas-perevicius/edplay/internal/ui/layout"
	"github.com/mykolas-perevicius/edplay/internal/ui/theme"
)

type levelChosenMsg struct {
	id string
}

// WelcomeScreen lists the catalog levels. Choosing one records the level,
// marks onboarding done and shows where to begin.
type WelcomeScreen struct {
	tracker *progress.Tracker
	menu    components.Menu
	chosen  *catalog.Level
	errMsg  string
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen.
func New(tracker *progress.Tracker) *WelcomeScreen {
	caser := cases.Title(language.English)
	levels := tracker.Catalog().Levels()

	items := make([]components.MenuItem, 0, len(levels))
	for _, l := range levels {
		id := l.ID
		items = append(items, components.MenuItem{
			Label:  fmt.Sprintf("%s %s", l.Icon, caser.String(id)),
			Detail: l.Time,
			Action: func() tea.Cmd {
				return func() tea.Msg { return levelChosenMsg{id: id} }
			},
		})
	}

	w := &WelcomeScreen{tracker: tracker, menu: components.NewMenu(items)}
	if rec := tracker.Record(); rec.Level != nil {
		for i, l := range levels {
			if l.ID == *rec.Level {
				w.menu.Selected = i
			}
		}
	}
	return w
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return nil
}

func (w *WelcomeScreen) Title() string {
	return "Choose Your Level"
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Choose"},
		{Key: "Esc", Description: "Back"},
	}
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case levelChosenMsg:
		return w, w.choose(msg.id)
	case tea.KeyPressMsg:
		var cmd tea.Cmd
		w.menu, cmd = w.menu.Update(msg)
		return w, cmd
	}
	return w, nil
}

func (w *WelcomeScreen) choose(id string) tea.Cmd {
	ctx := context.Background()
	if err := w.tracker.SetLevel(ctx, id); err != nil {
		w.errMsg = err.Error()
		return nil
	}
	if err := w.tracker.SetOnboarded(ctx); err != nil {
		w.errMsg = err.Error()
		return nil
	}
	l, _ := w.tracker.Catalog().Level(id)
	w.chosen = &l
	w.errMsg = ""
	return func() tea.Msg { return screen.RefreshMsg{} }
}

func (w *WelcomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("What's your Python experience?"))
	b.WriteString("\n\n")
	b.WriteString(w.menu.View())

	if w.chosen != nil {
		b.WriteString("\n")
		b.WriteString(renderLevel(*w.chosen, w.tracker))
	}
	if w.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.Failed.Render("Error: " + w.errMsg))
	}
	return lipgloss.NewStyle().Width(width).Padding(1, 2).Render(b.String())
}

func renderLevel(l catalog.Level, tracker *progress.Tracker) string {
	norm := tracker.Normalizer()
	lines := []string{
		theme.Title.Render(l.Icon + " " + l.Title),
		theme.Body.Render(l.Description),
	}
	if l.Entry != "" {
		lines = append(lines, fmt.Sprintf("%s: %s", l.Action, norm.BuildDocURL(l.Entry)))
	}
	if l.OffersNotebook() {
		lines = append(lines, "Open in Colab: "+tracker.Catalog().NotebookURL(l.Notebook))
	}
	for _, o := range l.Options {
		lines = append(lines, fmt.Sprintf("  %s %s  %s", o.Icon, o.Label, theme.Hint.Render(norm.BuildDocURL(o.Path))))
	}
	if l.Time != "" {
		lines = append(lines, theme.Hint.Render("Estimated time: "+l.Time))
	}
	return theme.ActiveCard.Render(strings.Join(lines, "\n"))
}
