package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherFiresOnDatabaseWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	db := filepath.Join(dir, "edplay.db")
	require.NoError(t, os.WriteFile(db, []byte("v0"), 0o600))

	changed := make(chan struct{}, 8)
	w, err := New(db, func() { changed <- struct{}{} }, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	for i := range 3 {
		require.NoError(t, os.WriteFile(db, []byte{byte('a' + i)}, 0o600))
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	db := filepath.Join(dir, "edplay.db")

	changed := make(chan struct{}, 8)
	w, err := New(db, func() { changed <- struct{}{} }, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	select {
	case <-changed:
		t.Fatal("unexpected notification")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	w, err := New(filepath.Join(t.TempDir(), "edplay.db"), func() {})
	require.NoError(t, err)
	require.NoError(t, w.Start(ctx))

	cancel()
	w.Stop()
	w.Stop()
}

func TestWatcherStartMissingDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := New(filepath.Join(t.TempDir(), "missing", "edplay.db"), func() {})
	require.NoError(t, err)
	require.Error(t, w.Start(context.Background()))
	w.Stop()
}

func TestWatcherRestartsAfterContextEnds(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	db := filepath.Join(dir, "edplay.db")
	require.NoError(t, os.WriteFile(db, []byte("v0"), 0o600))

	changed := make(chan struct{}, 8)
	w, err := New(db, func() { changed <- struct{}{} }, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return !w.running
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, os.WriteFile(db, []byte("v1"), 0o600))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("restarted watcher did not notify")
	}
}
