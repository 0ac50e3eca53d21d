package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mykolas-perevicius/edplay/internal/catalog"
	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
	"github.com/mykolas-perevicius/edplay/internal/progress"
	"github.com/mykolas-perevicius/edplay/internal/router"
	"github.com/mykolas-perevicius/edplay/internal/screen"
	"github.com/mykolas-perevicius/edplay/internal/screens/welcome"
	"github.com/mykolas-perevicius/edplay/internal/store"
)

func newTracker(t *testing.T) *progress.Tracker {
	t.Helper()
	tr, err := progress.New(context.Background(), store.NewMemoryKV(), catalog.Default(), lessonpath.New("/"))
	require.NoError(t, err)
	return tr
}

func TestHomeScreen_Title(t *testing.T) {
	h := New(newTracker(t), nil, false)
	assert.Equal(t, "Guided Paths", h.Title())
}

func TestHomeScreen_InitOnboarding(t *testing.T) {
	h := New(newTracker(t), nil, false)
	assert.Nil(t, h.Init())

	h = New(newTracker(t), nil, true)
	cmd := h.Init()
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &welcome.WelcomeScreen{}, msg.Screen)
}

func TestHomeScreen_StartPath(t *testing.T) {
	tr := newTracker(t)
	h := New(tr, nil, false)

	// Second path in the default catalog.
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, screen.RefreshMsg{}, cmd())

	rec := tr.Record()
	require.NotNil(t, rec.GuidedPath)
	assert.Equal(t, catalog.Default().Paths()[1].ID, *rec.GuidedPath)
	assert.Contains(t, h.status, "Started")
}

func TestHomeScreen_ResetPath(t *testing.T) {
	tr := newTracker(t)
	require.NoError(t, tr.SetGuidedPath(context.Background(), "python-pro"))
	h := New(tr, nil, false)

	_, cmd := h.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	require.NotNil(t, cmd)
	assert.Nil(t, tr.Record().GuidedPath)
}

func TestHomeScreen_HistoryHiddenWithoutJournal(t *testing.T) {
	h := New(newTracker(t), nil, false)
	_, cmd := h.Update(tea.KeyPressMsg{Code: 'h', Text: "h"})
	assert.Nil(t, cmd)

	for _, hint := range h.KeyHints() {
		assert.NotEqual(t, "history", hint.Description)
	}
}

func TestHomeScreen_RefreshPicksUpChanges(t *testing.T) {
	tr := newTracker(t)
	h := New(tr, nil, false)

	p := catalog.Default().Paths()[0]
	_, err := tr.CompleteLesson(context.Background(), p.Lessons[0])
	require.NoError(t, err)

	h.Update(screen.RefreshMsg{})
	assert.Equal(t, 1, h.paths[0].Completed)
}

func TestHomeScreen_View(t *testing.T) {
	h := New(newTracker(t), nil, false)
	view := h.View(100, 40)
	for _, p := range catalog.Default().Paths() {
		assert.True(t, strings.Contains(view, p.Title), "missing %q", p.Title)
	}
}
