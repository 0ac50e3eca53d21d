package app

import (
	"context"
	"fmt"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mykolas-perevicius/edplay/internal/catalog"
	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
	"github.com/mykolas-perevicius/edplay/internal/progress"
	"github.com/mykolas-perevicius/edplay/internal/store"
)

func newModel(t *testing.T, kv progress.KV, changes <-chan struct{}) (AppModel, *progress.Tracker) {
	t.Helper()
	tr, err := progress.New(context.Background(), kv, catalog.Default(), lessonpath.New("/"))
	require.NoError(t, err)
	return newAppModel(Options{Tracker: tr, Changes: changes}), tr
}

func TestSummaryCountsCatalogLessons(t *testing.T) {
	m, tr := newModel(t, store.NewMemoryKV(), nil)

	total := len(catalogLessons(tr))
	assert.Equal(t, "Progress: 0/"+itoa(total)+" lessons", m.summary())

	_, err := tr.CompleteLesson(context.Background(), catalog.Default().Paths()[0].Lessons[0])
	require.NoError(t, err)
	assert.Equal(t, "Progress: 1/"+itoa(total)+" lessons", m.summary())
}

func TestStoreChangeReloads(t *testing.T) {
	kv := store.NewMemoryKV()
	changes := make(chan struct{}, 1)
	m, tr := newModel(t, kv, changes)

	// Another process writes through its own tracker.
	other, err := progress.New(context.Background(), kv, catalog.Default(), lessonpath.New("/"))
	require.NoError(t, err)
	require.NoError(t, other.SetGuidedPath(context.Background(), "python-pro"))
	assert.Nil(t, tr.Record().GuidedPath)

	changes <- struct{}{}
	msg := m.waitForChange()()
	require.IsType(t, storeChangedMsg{}, msg)

	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd)
	require.NotNil(t, tr.Record().GuidedPath)
	assert.Equal(t, "python-pro", *tr.Record().GuidedPath)
}

func TestClosedChangesStopsWaiting(t *testing.T) {
	changes := make(chan struct{})
	close(changes)
	m, _ := newModel(t, store.NewMemoryKV(), changes)
	assert.Nil(t, m.waitForChange()())
}

func TestNoChangesChannel(t *testing.T) {
	m, _ := newModel(t, store.NewMemoryKV(), nil)
	assert.Nil(t, m.waitForChange())
}

func TestView(t *testing.T) {
	m, _ := newModel(t, store.NewMemoryKV(), nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	am := updated.(AppModel)
	assert.Equal(t, 100, am.width)
	assert.Equal(t, "Guided Paths", am.router.Active().Title())
	assert.Contains(t, am.router.View(am.width, 30), catalog.Default().Paths()[0].Title)
}

func TestCtrlCQuits(t *testing.T) {
	m, _ := newModel(t, store.NewMemoryKV(), nil)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func itoa(n int) string {
	return fmt.Sprint(n)
}
