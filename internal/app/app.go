package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/mykolas-perevicius/edplay/internal/badge"
	"github.com/mykolas-perevicius/edplay/internal/progress"
	"github.com/mykolas-perevicius/edplay/internal/router"
	"github.com/mykolas-perevicius/edplay/internal/screen"
	"github.com/mykolas-perevicius/edplay/internal/screens/home"
	"github.com/mykolas-perevicius/edplay/internal/store"
	"github.com/mykolas-perevicius/edplay/internal/ui/layout"
)

// Options configures the dashboard.
type Options struct {
	Tracker *progress.Tracker
	Journal store.EventRepo // optional; enables the history screen

	// Changes delivers a value whenever another process rewrites the store.
	Changes <-chan struct{}

	// Onboard opens the level picker on start.
	Onboard bool
	Logger  *zap.Logger
}

type storeChangedMsg struct{}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	tracker *progress.Tracker
	changes <-chan struct{}
	logger  *zap.Logger
	lessons []string
	width   int
	height  int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	homeScreen := home.New(opts.Tracker, opts.Journal, opts.Onboard)
	return AppModel{
		router:  router.New(homeScreen),
		tracker: opts.Tracker,
		changes: opts.Changes,
		logger:  logger,
		lessons: catalogLessons(opts.Tracker),
	}
}

// catalogLessons lists every lesson of every guided path once, standing in
// for the course sidebar.
func catalogLessons(t *progress.Tracker) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range t.Catalog().Paths() {
		for _, l := range p.Lessons {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.waitForChange())
}

func (m AppModel) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeChangedMsg:
		if _, err := m.tracker.Load(context.Background()); err != nil {
			m.logger.Warn("reload progress", zap.Error(err))
		}
		return m, tea.Batch(m.router.Broadcast(screen.RefreshMsg{}), m.waitForChange())

	case screen.RefreshMsg:
		return m, m.router.Broadcast(msg)

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) summary() string {
	links := badge.Annotate(m.lessons, m.tracker.Record(), m.tracker.Normalizer())
	return badge.Summary(len(m.tracker.Record().CompletedLessons), len(links))
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.summary(), m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
		}
	}
	footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Tracker == nil {
		return fmt.Errorf("app: tracker is required")
	}
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
