package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
	"github.com/mykolas-perevicius/edplay/internal/ui/theme"
)

// LessonInput is a text input for a lesson path or URL that previews the
// canonical id the entry resolves to.
type LessonInput struct {
	Model     textinput.Model
	norm      *lessonpath.Normalizer
	submitted bool
	valid     bool
}

// NewLessonInput creates a focused lesson input.
func NewLessonInput(placeholder string, norm *lessonpath.Normalizer) LessonInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 512
	ti.Focus()

	return LessonInput{Model: ti, norm: norm}
}

// Init returns the initial command.
func (t LessonInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. Typing clears a previous submit result.
func (t LessonInput) Update(msg tea.Msg) (LessonInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyPressMsg); ok {
		t.submitted = false
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the input and the canonical preview.
func (t LessonInput) View() string {
	view := t.Model.View()
	if t.submitted {
		if t.valid {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	if c := t.Canonical(); c != "" {
		view += "\n" + theme.Hint.Render("→ "+c)
	}
	return view
}

// Value returns the raw input.
func (t LessonInput) Value() string {
	return t.Model.Value()
}

// Canonical returns the normalized lesson id for the input, "" when empty.
func (t LessonInput) Canonical() string {
	return t.norm.Normalize(t.Model.Value())
}

// Submit marks the input as submitted with a validation result.
func (t *LessonInput) Submit(valid bool) {
	t.submitted = true
	t.valid = valid
}

// Clear empties the input for the next entry.
func (t *LessonInput) Clear() {
	t.Model.Reset()
}
