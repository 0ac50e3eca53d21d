// Package progress owns the learner's progress record: loading and
// self-healing it from storage, marking lessons complete, and driving the
// guided-path cursor and onboarding flag.
//
// A Tracker is created once per session and handed to every consumer. It is
// single-writer: callers must not mutate it from several goroutines.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/mykolas-perevicius/edplay/internal/catalog"
	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
	"github.com/mykolas-perevicius/edplay/internal/store"
)

// KV is the storage boundary the tracker persists through.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Journal receives an event for every successful mutation.
type Journal interface {
	AppendProgressEvent(ctx context.Context, data store.ProgressEventData) error
}

// Event kinds written to the journal.
const (
	EventLevelSet        = "level_set"
	EventVisited         = "visited"
	EventLessonCompleted = "lesson_completed"
	EventPathStarted     = "path_started"
	EventPathAdvanced    = "path_advanced"
	EventPathReset       = "path_reset"
	EventOnboarded       = "onboarded"
	EventReset           = "reset"
)

// Tracker holds the in-memory progress record and writes every change back
// to the key-value store as a whole record.
type Tracker struct {
	kv        KV
	catalog   *catalog.Catalog
	norm      *lessonpath.Normalizer
	now       func() time.Time
	logger    *zap.Logger
	journal   Journal
	sessionID string

	record Record
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source used for startedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithJournal records mutations to j, tagged with sessionID.
func WithJournal(j Journal, sessionID string) Option {
	return func(t *Tracker) {
		t.journal = j
		t.sessionID = sessionID
	}
}

// New creates a Tracker and loads the stored record.
func New(ctx context.Context, kv KV, cat *catalog.Catalog, norm *lessonpath.Normalizer, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		kv:      kv,
		catalog: cat,
		norm:    norm,
		now:     time.Now,
		logger:  zap.NewNop(),
		record:  DefaultRecord(),
	}
	for _, o := range opts {
		o(t)
	}
	if _, err := t.Load(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Record returns a copy of the current record.
func (t *Tracker) Record() Record {
	return t.record.clone()
}

// Normalizer returns the normalizer lesson references are resolved with.
func (t *Tracker) Normalizer() *lessonpath.Normalizer {
	return t.norm
}

// Catalog returns the guided-path catalog.
func (t *Tracker) Catalog() *catalog.Catalog {
	return t.catalog
}

// Load rereads the record from storage. A missing or unparseable value yields
// the default record; only storage failures are returned as errors.
func (t *Tracker) Load(ctx context.Context) (Record, error) {
	raw, ok, err := t.kv.Get(ctx, StorageKey)
	if err != nil {
		return Record{}, fmt.Errorf("load progress: %w", err)
	}

	rec := DefaultRecord()
	if ok {
		var parsed bool
		rec, parsed = decodeRecord(raw, t.norm)
		if !parsed {
			t.logger.Debug("discarding unparseable progress record", zap.Int("bytes", len(raw)))
		}
	}
	rec.GuidedIndex = t.clampIndex(rec)

	t.record = rec
	return rec.clone(), nil
}

// Save writes the whole record unconditionally.
func (t *Tracker) Save(ctx context.Context) error {
	return t.persist(ctx, t.record)
}

func (t *Tracker) persist(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := t.kv.Set(ctx, StorageKey, string(b)); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// commit applies mutate to a copy of the record and persists it when mutate
// reports a change. The in-memory record only moves on a successful write.
func (t *Tracker) commit(ctx context.Context, mutate func(*Record) bool) (bool, error) {
	next := t.record.clone()
	if !mutate(&next) {
		return false, nil
	}
	if err := t.persist(ctx, next); err != nil {
		return false, err
	}
	t.record = next
	return true, nil
}

// MarkLessonComplete adds a lesson to the completed set. It reports false
// without writing when the reference is empty or already complete.
func (t *Tracker) MarkLessonComplete(ctx context.Context, lesson string) (bool, error) {
	canonical := t.norm.Normalize(lesson)
	updated, err := t.commit(ctx, func(r *Record) bool {
		if canonical == "" || r.HasCompleted(canonical) {
			return false
		}
		r.CompletedLessons = append(r.CompletedLessons, canonical)
		return true
	})
	if updated {
		t.emit(ctx, store.ProgressEventData{Kind: EventLessonCompleted, Lesson: canonical})
	}
	return updated, err
}

// SetLevel records the learner's skill tier and stamps startedAt if unset.
func (t *Tracker) SetLevel(ctx context.Context, level string) error {
	if _, ok := t.catalog.Level(level); !ok {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownLevel, level)
	}
	_, err := t.commit(ctx, func(r *Record) bool {
		r.Level = &level
		t.stampStart(r)
		return true
	})
	if err == nil {
		t.emit(ctx, store.ProgressEventData{Kind: EventLevelSet, Detail: level})
	}
	return err
}

// SetLastVisited records the most recently viewed page.
func (t *Tracker) SetLastVisited(ctx context.Context, page string) error {
	canonical := t.norm.Normalize(page)
	_, err := t.commit(ctx, func(r *Record) bool {
		r.LastVisited = optional(canonical)
		return true
	})
	if err == nil && canonical != "" {
		t.emit(ctx, store.ProgressEventData{Kind: EventVisited, Lesson: canonical})
	}
	return err
}

// SetGuidedPath activates a guided path with its cursor at the start. The
// id is stored as given; an id missing from the catalog never advances.
func (t *Tracker) SetGuidedPath(ctx context.Context, pathID string) error {
	_, err := t.commit(ctx, func(r *Record) bool {
		r.GuidedPath = &pathID
		r.GuidedIndex = 0
		t.stampStart(r)
		return true
	})
	if err == nil {
		t.emit(ctx, store.ProgressEventData{Kind: EventPathStarted, PathID: pathID})
	}
	return err
}

// AdvanceGuidedPath moves the cursor past lesson when lesson sits at or
// beyond the cursor in the active path. The cursor never moves backwards;
// lessons outside the path and an inactive or unknown path are no-ops.
func (t *Tracker) AdvanceGuidedPath(ctx context.Context, lesson string) (bool, error) {
	if t.record.GuidedPath == nil {
		return false, nil
	}
	path, ok := t.catalog.Path(*t.record.GuidedPath)
	if !ok {
		return false, nil
	}

	idx := t.lessonIndex(path, lesson)
	updated, err := t.commit(ctx, func(r *Record) bool {
		if idx < 0 || idx < r.GuidedIndex {
			return false
		}
		r.GuidedIndex = idx + 1
		return true
	})
	if updated {
		t.emit(ctx, store.ProgressEventData{
			Kind:   EventPathAdvanced,
			PathID: path.ID,
			Lesson: t.norm.Normalize(lesson),
			Detail: fmt.Sprintf("%d/%d", idx+1, len(path.Lessons)),
		})
	}
	return updated, err
}

// ResetGuidedPath deactivates the guided path.
func (t *Tracker) ResetGuidedPath(ctx context.Context) error {
	_, err := t.commit(ctx, func(r *Record) bool {
		r.GuidedPath = nil
		r.GuidedIndex = 0
		return true
	})
	if err == nil {
		t.emit(ctx, store.ProgressEventData{Kind: EventPathReset})
	}
	return err
}

// CompleteLesson marks a lesson complete and, only when that changed the
// record, advances the guided path. This is what interactive controls call.
func (t *Tracker) CompleteLesson(ctx context.Context, lesson string) (bool, error) {
	updated, err := t.MarkLessonComplete(ctx, lesson)
	if err != nil || !updated {
		return updated, err
	}
	if _, err := t.AdvanceGuidedPath(ctx, lesson); err != nil {
		return true, err
	}
	return true, nil
}

// HasOnboarded reports whether first-run onboarding was completed.
func (t *Tracker) HasOnboarded(ctx context.Context) (bool, error) {
	v, ok, err := t.kv.Get(ctx, OnboardingKey)
	if err != nil {
		return false, fmt.Errorf("read onboarding flag: %w", err)
	}
	return ok && v == "true", nil
}

// SetOnboarded marks first-run onboarding as done.
func (t *Tracker) SetOnboarded(ctx context.Context) error {
	if err := t.kv.Set(ctx, OnboardingKey, "true"); err != nil {
		return fmt.Errorf("save onboarding flag: %w", err)
	}
	t.emit(ctx, store.ProgressEventData{Kind: EventOnboarded})
	return nil
}

// ShouldOnboard reports whether onboarding should be offered. force is the
// explicit override that shows it even to onboarded learners.
func (t *Tracker) ShouldOnboard(ctx context.Context, force bool) (bool, error) {
	if force {
		return true, nil
	}
	done, err := t.HasOnboarded(ctx)
	if err != nil {
		return false, err
	}
	return !done, nil
}

// Reset clears the progress record and the onboarding flag.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.kv.Remove(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	if err := t.kv.Remove(ctx, OnboardingKey); err != nil {
		return fmt.Errorf("clear onboarding flag: %w", err)
	}
	if _, err := t.Load(ctx); err != nil {
		return err
	}
	t.emit(ctx, store.ProgressEventData{Kind: EventReset})
	return nil
}

// IsCompleted reports whether a lesson reference, in any form, is complete.
func (t *Tracker) IsCompleted(lesson string) bool {
	canonical := t.norm.Normalize(lesson)
	return canonical != "" && t.record.HasCompleted(canonical)
}

func (t *Tracker) stampStart(r *Record) {
	if r.StartedAt == nil {
		ts := t.now().UTC().Format(TimeLayout)
		r.StartedAt = &ts
	}
}

// lessonIndex returns the position of lesson within path after
// normalizing both sides, or -1.
func (t *Tracker) lessonIndex(path catalog.GuidedPath, lesson string) int {
	target := t.norm.Normalize(lesson)
	if target == "" {
		return -1
	}
	return slices.IndexFunc(path.Lessons, func(l string) bool {
		return t.norm.Normalize(l) == target
	})
}

// clampIndex keeps a loaded cursor within the active path.
func (t *Tracker) clampIndex(r Record) int {
	idx := max(r.GuidedIndex, 0)
	if r.GuidedPath == nil {
		return idx
	}
	path, ok := t.catalog.Path(*r.GuidedPath)
	if !ok {
		return idx
	}
	return min(idx, len(path.Lessons))
}

func (t *Tracker) emit(ctx context.Context, data store.ProgressEventData) {
	if t.journal == nil {
		return
	}
	data.SessionID = t.sessionID
	data.Timestamp = t.now()
	if err := t.journal.AppendProgressEvent(ctx, data); err != nil {
		t.logger.Warn("failed to record progress event",
			zap.String("kind", data.Kind), zap.Error(err))
	}
}
