// Package watch notices when another process rewrites the progress database
// so long-running views can reload it.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the file must stay quiet before a change fires.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a SQLite database file and its journal siblings and calls
// onChange once per burst of writes. It never merges anything; callers
// reload and accept the last writer's state.
type Watcher struct {
	mu       sync.Mutex
	fs       *fsnotify.Watcher
	dir      string
	names    map[string]bool
	debounce time.Duration
	onChange func()
	logger   *zap.Logger

	pending time.Time
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a Watcher for the database at path.
func New(path string, onChange func(), opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	base := filepath.Base(path)
	w := &Watcher{
		fs:  fw,
		dir: filepath.Dir(path),
		names: map[string]bool{
			base:              true,
			base + "-wal":     true,
			base + "-journal": true,
		},
		debounce: DefaultDebounce,
		onChange: onChange,
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Start begins watching. It does not block. A watcher whose context ended
// can be started again.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.fs.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.logger.Debug("watching database directory", zap.String("dir", w.dir))

	go w.run(ctx, w.stopCh, w.doneCh)
	return nil
}

// Stop ends the watch loop and releases the underlying watcher. It is safe
// to call more than once and on a watcher that was never started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	stop, done := w.stopCh, w.doneCh
	w.mu.Unlock()

	if running {
		close(stop)
	}
	if done != nil {
		<-done
	}
	if err := w.fs.Close(); err != nil {
		w.logger.Debug("closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	tick := time.NewTicker(max(w.debounce/4, time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.stopCh == stop {
				w.running = false
			}
			w.mu.Unlock()
			return
		case <-stop:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("database watcher error", zap.Error(err))
		case now := <-tick.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !w.names[filepath.Base(ev.Name)] {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	fire := !w.pending.IsZero() && now.Sub(w.pending) >= w.debounce
	if fire {
		w.pending = time.Time{}
	}
	w.mu.Unlock()

	if fire {
		w.logger.Debug("database changed on disk")
		w.onChange()
	}
}
