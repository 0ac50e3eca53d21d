package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mykolas-perevicius/edplay/internal/progress"
	"github.com/mykolas-perevicius/edplay/internal/router"
	"github.com/mykolas-perevicius/edplay/internal/store"
)

type fakeRepo struct {
	events []store.ProgressEventRecord
	err    error
	opts   store.QueryOpts
}

func (f *fakeRepo) AppendProgressEvent(context.Context, store.ProgressEventData) error {
	return nil
}

func (f *fakeRepo) QueryProgressEvents(_ context.Context, opts store.QueryOpts) ([]store.ProgressEventRecord, error) {
	f.opts = opts
	return f.events, f.err
}

func event(id int64, session, kind, lesson string, ts time.Time) store.ProgressEventRecord {
	return store.ProgressEventRecord{
		ID: id,
		ProgressEventData: store.ProgressEventData{
			SessionID: session,
			Kind:      kind,
			Lesson:    lesson,
			Timestamp: ts,
		},
	}
}

func TestGroupBySession(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []store.ProgressEventRecord{
		event(4, "b", progress.EventLessonCompleted, "/easy/02.html", t0.Add(time.Hour+time.Minute)),
		event(3, "b", progress.EventVisited, "/easy/02.html", t0.Add(time.Hour)),
		event(2, "a", progress.EventLessonCompleted, "/easy/01.html", t0.Add(2*time.Minute)),
		event(1, "a", progress.EventPathStarted, "", t0),
	}

	groups := groupBySession(events)
	require.Len(t, groups, 2)
	assert.Equal(t, "b", groups[0].ID)
	assert.Equal(t, "a", groups[1].ID)
	assert.Len(t, groups[1].Events, 2)
	assert.Equal(t, t0, groups[1].Start)
	assert.Equal(t, t0.Add(2*time.Minute), groups[1].End)
}

func TestHistoryScreen_Load(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{events: []store.ProgressEventRecord{
		event(1, "s1", progress.EventLessonCompleted, "/easy/01.html", now),
	}}
	s := New(repo)

	msg := s.Init()()
	s.Update(msg)
	assert.Equal(t, pageSize, repo.opts.Limit)
	assert.True(t, s.loaded)
	require.Len(t, s.sessions, 1)

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Contains(t, s.View(120, 40), "completed /easy/01.html")
}

func TestHistoryScreen_Error(t *testing.T) {
	s := New(&fakeRepo{err: errors.New("db locked")})
	s.Update(s.Init()())
	assert.Contains(t, s.View(80, 24), "db locked")
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := New(&fakeRepo{})
	s.Update(s.Init()())
	assert.Contains(t, s.View(80, 24), "No activity yet")
}

func TestHistoryScreen_Esc(t *testing.T) {
	s := New(&fakeRepo{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}
