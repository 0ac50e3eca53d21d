package report

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mykolas-perevicius/edplay/internal/catalog"
	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
	"github.com/mykolas-perevicius/edplay/internal/progress"
	"github.com/mykolas-perevicius/edplay/internal/screen"
	"github.com/mykolas-perevicius/edplay/internal/store"
)

func newScreen(t *testing.T) (*ReportScreen, *progress.Tracker) {
	t.Helper()
	tr, err := progress.New(context.Background(), store.NewMemoryKV(), catalog.Default(), lessonpath.New("/"))
	require.NoError(t, err)
	s := New(tr)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s, tr
}

func TestReportScreen_View(t *testing.T) {
	s, _ := newScreen(t)
	view := s.View(80, 200)
	assert.Contains(t, view, catalog.Default().Paths()[0].Title)
	assert.Empty(t, s.errMsg)
}

func TestReportScreen_CachesPerWidth(t *testing.T) {
	s, tr := newScreen(t)
	s.View(80, 200)
	first := s.rendered

	_, err := tr.CompleteLesson(context.Background(), "easy/01_introduction_to_python.html")
	require.NoError(t, err)
	s.View(80, 200)
	assert.Equal(t, first, s.rendered)

	s.Update(screen.RefreshMsg{})
	assert.Nil(t, s.rendered)
	assert.Contains(t, s.View(80, 200), "/easy/01_introduction_to_python.html")
}

func TestReportScreen_Scroll(t *testing.T) {
	s, _ := newScreen(t)
	s.View(80, 5)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 2, s.offset)

	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 1, s.offset)
}
